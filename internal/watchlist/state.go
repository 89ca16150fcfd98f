package watchlist

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// fileState is the on-disk shape of the watch-list.
type fileState struct {
	Symbols   []string  `json:"symbols"`
	UpdatedAt time.Time `json:"updated_at"`
}

// loadState reads the watch-list file. A missing file yields an empty state.
func loadState(filePath string) (*fileState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileState{}, nil
		}
		return nil, err
	}
	var state fileState
	if len(data) == 0 {
		return &state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// saveState writes the watch-list file, creating its directory if needed.
func saveState(filePath string, state *fileState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
