package update

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/nijta-api/harbor-cli/internal/platform"
)

// State is the persistent update state stored in state.json.
type State struct {
	CurrentVersion  string    `json:"current_version"`
	PreviousVersion string    `json:"previous_version,omitempty"`
	AvailableUpdate string    `json:"available_update,omitempty"`
	LastCheck       time.Time `json:"last_check"`
	LastUpdate      time.Time `json:"last_update,omitzero"`
}

// DefaultCheckInterval is the minimum time between background update checks.
const DefaultCheckInterval = 24 * time.Hour

// UpdateDir returns the directory for update-related files.
func UpdateDir() string {
	return filepath.Join(platform.ConfigDir(), "update")
}

// StateFilePath returns the path to state.json.
func StateFilePath() string {
	return filepath.Join(UpdateDir(), "state.json")
}

// PendingBinaryPath returns the path a downloaded update is staged at.
func PendingBinaryPath() string {
	name := binaryName + ".pending"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(UpdateDir(), name)
}

// PreviousBinaryPath returns the path of the backup binary kept across an
// update.
func PreviousBinaryPath() string {
	name := binaryName + ".previous"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(UpdateDir(), name)
}

// LoadState reads the update state from disk, returning a default state if
// the file does not exist or is corrupt.
func LoadState() (*State, error) {
	data, err := os.ReadFile(StateFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return &State{}, nil
	}
	return &state, nil
}

// SaveState writes the update state to disk.
func SaveState(state *State) error {
	if err := os.MkdirAll(UpdateDir(), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(StateFilePath(), data, 0644)
}

// ShouldCheck reports whether enough time has passed since the last check.
func ShouldCheck(state *State) bool {
	return time.Since(state.LastCheck) >= DefaultCheckInterval
}

// RecordUpdate records a successful update.
func RecordUpdate(state *State, oldVersion, newVersion string) {
	state.PreviousVersion = oldVersion
	state.CurrentVersion = newVersion
	state.AvailableUpdate = ""
	state.LastUpdate = time.Now()
}
