// Package credentials stores and resolves Voice Harbor developer tokens.
//
// A developer token obtained from the admin API is written to a timestamped
// YAML credential file so subsequent commands can pick it up without the
// user passing --token every time.
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	filePrefix = "VoiceHarbor_Developer.credential."
	fileSuffix = ".yaml"

	// EnvToken is the environment variable consulted when no token flag is given.
	EnvToken = "HARBOR_TOKEN"
)

// Credential is the on-disk shape of a stored developer token.
type Credential struct {
	DeveloperToken string `yaml:"developerToken"`
}

// Write stores a developer token in dir as a timestamped credential file
// and returns its path. The directory is created if needed.
func Write(dir, token string) (string, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("could not create credentials directory %s: %w", dir, err)
	}

	timestamp := time.Now().Format("20060102T150405")
	path := filepath.Join(dir, filePrefix+timestamp+fileSuffix)

	data, err := yaml.Marshal(Credential{DeveloperToken: token})
	if err != nil {
		return "", fmt.Errorf("could not marshal credential: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("could not write credential %s: %w", path, err)
	}
	return path, nil
}

// Read parses a credential file.
func Read(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read credential %s: %w", path, err)
	}
	var cred Credential
	if err := yaml.Unmarshal(data, &cred); err != nil {
		return nil, fmt.Errorf("could not parse credential %s: %w", path, err)
	}
	if cred.DeveloperToken == "" {
		return nil, fmt.Errorf("credential %s contains no developerToken", path)
	}
	return &cred, nil
}

// Latest returns the token from the newest credential file in dir.
// The timestamped file names sort chronologically, so the lexicographic
// maximum is the most recent credential.
func Latest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("could not read credentials directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return "", fmt.Errorf("no credential files found in %s", dir)
	}
	sort.Strings(names)

	cred, err := Read(filepath.Join(dir, names[len(names)-1]))
	if err != nil {
		return "", err
	}
	return cred.DeveloperToken, nil
}

// Resolve picks the token to use: an explicit flag value wins, then the
// HARBOR_TOKEN environment variable, then the newest stored credential.
// An empty result is not an error; the API treats the token as optional.
func Resolve(flagToken, credentialsDir string) string {
	if flagToken != "" {
		return flagToken
	}
	if env := os.Getenv(EnvToken); env != "" {
		return env
	}
	if token, err := Latest(credentialsDir); err == nil {
		return token
	}
	return ""
}
