package cron

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// loadState reads the scheduler state file. A missing file is not an
// error — it simply means no prior state exists.
func loadState(path string) (State, error) {
	state := State{Schedules: make(map[string]ScheduleState)}
	if path == "" {
		return state, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, err
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return state, err
	}
	if state.Schedules == nil {
		state.Schedules = make(map[string]ScheduleState)
	}
	return state, nil
}

// saveState serializes state to path as a full-overwrite write.
func saveState(path string, state State) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
