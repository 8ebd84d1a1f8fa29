package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piwi3910/GridShuffle/internal/model"
)

// parseCell parses "x,y" into non-negative cell coordinates.
func parseCell(s string) (int, int, error) {
	a, b, err := splitPair(s, ",")
	if err != nil {
		return 0, 0, fmt.Errorf("cell %q: %w", s, err)
	}
	x, errX := strconv.Atoi(a)
	y, errY := strconv.Atoi(b)
	if errX != nil || errY != nil || x < 0 || y < 0 {
		return 0, 0, fmt.Errorf("cell %q: want non-negative integers x,y", s)
	}
	return x, y, nil
}

// parseSpan parses "WxH" into a span. Validity is left to the engine.
func parseSpan(s string) (model.Span, error) {
	a, b, err := splitPair(strings.ToLower(s), "x")
	if err != nil {
		return model.Span{}, fmt.Errorf("span %q: %w", s, err)
	}
	w, errW := strconv.Atoi(a)
	h, errH := strconv.Atoi(b)
	if errW != nil || errH != nil {
		return model.Span{}, fmt.Errorf("span %q: want integers WxH", s)
	}
	return model.Span{X: w, Y: h}, nil
}

// parsePoint parses "px,py" into a pixel point.
func parsePoint(s string) (model.Point, error) {
	a, b, err := splitPair(s, ",")
	if err != nil {
		return model.Point{}, fmt.Errorf("point %q: %w", s, err)
	}
	x, errX := strconv.ParseFloat(a, 64)
	y, errY := strconv.ParseFloat(b, 64)
	if errX != nil || errY != nil {
		return model.Point{}, fmt.Errorf("point %q: want numbers px,py", s)
	}
	return model.Point{X: x, Y: y}, nil
}

// parseDirection parses "dx,dy" into a unit push direction.
func parseDirection(s string) (model.Direction, error) {
	a, b, err := splitPair(s, ",")
	if err != nil {
		return model.Direction{}, fmt.Errorf("direction %q: %w", s, err)
	}
	dx, errX := strconv.Atoi(a)
	dy, errY := strconv.Atoi(b)
	if errX != nil || errY != nil || dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		return model.Direction{}, fmt.Errorf("direction %q: components must be -1, 0 or 1", s)
	}
	return model.Direction{X: dx, Y: dy}, nil
}

func splitPair(s, sep string) (string, string, error) {
	parts := strings.Split(s, sep)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("expected two values separated by %q", sep)
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
}

// parseFormats splits a comma-separated format list, dropping blanks and duplicates.
func parseFormats(s string) []string {
	var formats []string
	seen := map[string]bool{}
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats
}
