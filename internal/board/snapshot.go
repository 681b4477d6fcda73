package board

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const snapshotFile = "board.json"

// LoadSnapshot reads a board saved as JSON or YAML. The format is picked
// from the file extension.
func LoadSnapshot(path string) (Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Board{}, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var b Board
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &b); err != nil {
			return Board{}, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &b); err != nil {
			return Board{}, fmt.Errorf("failed to decode snapshot %s: %w", path, err)
		}
	}

	return b, nil
}

// Backup writes the board as indented JSON to <dir>/<board id>/board.json
// and returns the written path.
func Backup(b Board, dir string) (string, error) {
	if b.ID == "" {
		return "", fmt.Errorf("board has no id")
	}

	boardDir := filepath.Join(dir, b.ID)
	if err := os.MkdirAll(boardDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	data, err := json.MarshalIndent(b, "", "\t")
	if err != nil {
		return "", err
	}

	path := filepath.Join(boardDir, snapshotFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}
	return path, nil
}
