package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// HistoryPath returns the undo history file kept next to a layout:
// home.json keeps its history in home.history.json.
func HistoryPath(layoutPath string) string {
	return strings.TrimSuffix(layoutPath, filepath.Ext(layoutPath)) + ".history.json"
}

// SaveHistory writes the undo history for the layout at layoutPath.
func SaveHistory(layoutPath string, h model.History) error {
	return writeJSON(HistoryPath(layoutPath), "history", h)
}

// LoadHistory reads the undo history for the layout at layoutPath.
// A missing file yields an empty history.
func LoadHistory(layoutPath string) (model.History, error) {
	var h model.History
	if err := readJSON(HistoryPath(layoutPath), "history", &h); err != nil {
		if isMissing(err) {
			return model.NewHistory(), nil
		}
		return model.History{}, err
	}
	return h, nil
}

// ClearHistory removes the history file for layoutPath, if any.
func ClearHistory(layoutPath string) error {
	if err := os.Remove(HistoryPath(layoutPath)); err != nil && !isMissing(err) {
		return fmt.Errorf("failed to remove history file: %w", err)
	}
	return nil
}
