package model

import (
	"time"

	"github.com/google/uuid"
)

// LayoutTemplate is a reusable starting arrangement: a grid and the items on it.
type LayoutTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CreatedAt   string   `json:"created_at"`
	Grid        GridSpec `json:"grid"`
	Items       []Item   `json:"items"`
}

// NewLayoutTemplate captures l as a template.
func NewLayoutTemplate(name, description string, l Layout) LayoutTemplate {
	return LayoutTemplate{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Grid:        l.Grid,
		Items:       copyItems(l.Items),
	}
}

// ToLayout creates a new Layout from this template.
// Items get fresh IDs so they are independent of the template.
func (t LayoutTemplate) ToLayout(name string) Layout {
	l := NewLayout(name, t.Grid)
	for _, it := range t.Items {
		fresh := NewItem(it.Label, it.Rect)
		fresh.Reorderable = it.Reorderable
		l.Items = append(l.Items, fresh)
	}
	return l
}

// TemplateStore holds a collection of layout templates.
type TemplateStore struct {
	Templates []LayoutTemplate `json:"templates"`
}

// NewTemplateStore creates an empty template store.
func NewTemplateStore() TemplateStore {
	return TemplateStore{
		Templates: []LayoutTemplate{},
	}
}

// Add adds a template to the store.
func (ts *TemplateStore) Add(t LayoutTemplate) {
	ts.Templates = append(ts.Templates, t)
}

// Remove removes a template by ID. Returns true if found and removed.
func (ts *TemplateStore) Remove(id string) bool {
	for i, t := range ts.Templates {
		if t.ID == id {
			ts.Templates = append(ts.Templates[:i], ts.Templates[i+1:]...)
			return true
		}
	}
	return false
}

// FindByName returns a pointer to the first template with the given name, or nil.
func (ts *TemplateStore) FindByName(name string) *LayoutTemplate {
	for i := range ts.Templates {
		if ts.Templates[i].Name == name {
			return &ts.Templates[i]
		}
	}
	return nil
}

// Names returns the template names in store order.
func (ts *TemplateStore) Names() []string {
	names := make([]string, len(ts.Templates))
	for i, t := range ts.Templates {
		names[i] = t.Name
	}
	return names
}

func copyItems(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	cp := make([]Item, len(items))
	copy(cp, items)
	return cp
}
