package project

import (
	"path/filepath"
	"strings"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// SaveLayout writes a layout document to path, creating any missing parent
// directories.
func SaveLayout(path string, l model.Layout) error {
	return writeJSON(path, "layout", l)
}

// LoadLayout reads a layout document from path. It does not check that items
// fit the grid; engine.FromLayout does that.
func LoadLayout(path string) (model.Layout, error) {
	var l model.Layout
	if err := readJSON(path, "layout", &l); err != nil {
		return model.Layout{}, err
	}
	if l.Items == nil {
		l.Items = []model.Item{}
	}
	if l.Name == "" {
		l.Name = layoutNameFromPath(path)
	}
	return l, nil
}

func layoutNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
