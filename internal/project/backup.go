package project

import (
	"errors"
	"time"

	"github.com/piwi3910/GridShuffle/internal/model"
)

const backupVersion = "1"

// ErrInvalidBackup is returned for a backup file without a version.
var ErrInvalidBackup = errors.New("invalid backup file: missing version field")

// BackupData is everything a backup carries: application config and
// layout templates. Layouts themselves are plain files and are not included.
type BackupData struct {
	Version   string                 `json:"version"`
	CreatedAt string                 `json:"created_at"`
	Config    model.AppConfig        `json:"config"`
	Templates []model.LayoutTemplate `json:"templates"`
}

// ExportAllData writes config and templates to a single JSON file at path.
func ExportAllData(path string, config model.AppConfig, templates model.TemplateStore) error {
	return writeJSON(path, "backup", BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Templates: templates.Templates,
	})
}

// ImportAllData reads a backup written by ExportAllData. The caller applies
// the returned config and templates.
func ImportAllData(path string) (BackupData, error) {
	var b BackupData
	if err := readJSON(path, "backup", &b); err != nil {
		return BackupData{}, err
	}
	if b.Version == "" {
		return BackupData{}, ErrInvalidBackup
	}
	if b.Config.RecentLayouts == nil {
		b.Config.RecentLayouts = []string{}
	}
	if b.Templates == nil {
		b.Templates = []model.LayoutTemplate{}
	}
	return b, nil
}
