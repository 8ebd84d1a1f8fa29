package project

import "github.com/piwi3910/GridShuffle/internal/model"

// SaveTemplates writes the template store to path.
func SaveTemplates(path string, store model.TemplateStore) error {
	return writeJSON(path, "templates", store)
}

// LoadTemplates reads the template store at path. A missing file is an
// empty store.
func LoadTemplates(path string) (model.TemplateStore, error) {
	var store model.TemplateStore
	if err := readJSON(path, "templates", &store); err != nil {
		if isMissing(err) {
			return model.NewTemplateStore(), nil
		}
		return model.TemplateStore{}, err
	}
	if store.Templates == nil {
		store.Templates = []model.LayoutTemplate{}
	}
	return store, nil
}
