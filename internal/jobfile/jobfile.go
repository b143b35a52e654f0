// Package jobfile reads and writes the YAML job descriptor that is
// uploaded alongside the input files to describe a Voice Harbor job.
package jobfile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Params is the job descriptor uploaded as {job_id}.yaml. The server
// reads the agents to run and the files that belong to the job from it.
type Params struct {
	Agents []string `yaml:"agents"`
	Files  []string `yaml:"files"`
	Prefix string   `yaml:"prefix,omitempty"`
}

// DefaultAgents is the agent set used when the caller does not pick any.
var DefaultAgents = []string{"health-generic", "clinical"}

// Write serializes params to dir/{jobID}.yaml and returns the file path.
func Write(dir, jobID string, params Params) (string, error) {
	data, err := yaml.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("could not marshal job parameters: %w", err)
	}

	path := filepath.Join(dir, jobID+".yaml")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("could not write job file %s: %w", path, err)
	}
	return path, nil
}

// Read parses a job descriptor from disk.
func Read(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read job file %s: %w", path, err)
	}

	var params Params
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("could not parse job file %s: %w", path, err)
	}
	return &params, nil
}
