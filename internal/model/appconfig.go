package model

// AppConfig holds application-wide preferences and default settings.
type AppConfig struct {
	// Default grid applied to new layouts
	DefaultGrid    GridSpec `json:"default_grid" toml:"default_grid"`
	DefaultMinSpan Span     `json:"default_min_span" toml:"default_min_span"`

	// Application preferences
	LogLevel      string   `json:"log_level" toml:"log_level"` // "debug", "info", "warn", "error"
	RecentLayouts []string `json:"recent_layouts" toml:"recent_layouts"`
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults
// matching DefaultGridSpec().
func DefaultAppConfig() AppConfig {
	return AppConfig{
		DefaultGrid:    DefaultGridSpec(),
		DefaultMinSpan: Span{X: 1, Y: 1},
		LogLevel:       "info",
		RecentLayouts:  []string{},
	}
}

// ApplyToGrid copies the configured defaults into g, keeping any counts already set.
// This is used when creating a new layout so it inherits the user's saved defaults.
func (c AppConfig) ApplyToGrid(g *GridSpec) {
	if g.CountX <= 0 {
		g.CountX = c.DefaultGrid.CountX
	}
	if g.CountY <= 0 {
		g.CountY = c.DefaultGrid.CountY
	}
	g.CellWidth = c.DefaultGrid.CellWidth
	g.CellHeight = c.DefaultGrid.CellHeight
	g.WidthGap = c.DefaultGrid.WidthGap
	g.HeightGap = c.DefaultGrid.HeightGap
}

// AddRecent records path as the most recently used layout, keeping at most ten entries.
func (c *AppConfig) AddRecent(path string) {
	recent := []string{path}
	for _, p := range c.RecentLayouts {
		if p != path && len(recent) < 10 {
			recent = append(recent, p)
		}
	}
	c.RecentLayouts = recent
}
