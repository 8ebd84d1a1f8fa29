package model

const defaultHistoryDepth = 50

// Snapshot captures a layout's grid and items at a point in time.
type Snapshot struct {
	Grid  GridSpec `json:"grid"`
	Items []Item   `json:"items"`
	Label string   `json:"label"` // what the change did, e.g. "add Clock"
}

// MakeSnapshot copies l into a snapshot.
func MakeSnapshot(l Layout, label string) Snapshot {
	return Snapshot{
		Grid:  l.Grid,
		Items: copyItems(l.Items),
		Label: label,
	}
}

// Apply returns l with the snapshot's grid and items.
func (s Snapshot) Apply(l Layout) Layout {
	l.Grid = s.Grid
	l.Items = copyItems(s.Items)
	return l
}

// History holds undo and redo stacks of layout snapshots. It is stored
// next to the layout file so edits can be undone across invocations.
type History struct {
	UndoStack []Snapshot `json:"undo"`
	RedoStack []Snapshot `json:"redo"`
	MaxDepth  int        `json:"max_depth"`

	// LastDirection is the push direction derived by the last preview
	// without an explicit direction, handed to the next commit.
	LastDirection *Direction `json:"last_direction,omitempty"`
}

// NewHistory creates a History with the default max depth of 50.
func NewHistory() History {
	return History{
		UndoStack: []Snapshot{},
		RedoStack: []Snapshot{},
		MaxDepth:  defaultHistoryDepth,
	}
}

func (h *History) depth() int {
	if h.MaxDepth <= 0 {
		return defaultHistoryDepth
	}
	return h.MaxDepth
}

// Push saves the state before a change and clears the redo stack.
func (h *History) Push(s Snapshot) {
	h.UndoStack = append(h.UndoStack, s)
	if n := h.depth(); len(h.UndoStack) > n {
		h.UndoStack = h.UndoStack[len(h.UndoStack)-n:]
	}
	h.RedoStack = []Snapshot{}
}

// Undo pops the most recent snapshot and pushes current onto the redo
// stack. It reports false when there is nothing to undo.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.UndoStack) == 0 {
		return Snapshot{}, false
	}
	last := h.UndoStack[len(h.UndoStack)-1]
	h.UndoStack = h.UndoStack[:len(h.UndoStack)-1]
	current.Label = last.Label
	h.RedoStack = append(h.RedoStack, current)
	return last, true
}

// Redo pops the most recent undone snapshot and pushes current back onto
// the undo stack. It reports false when there is nothing to redo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.RedoStack) == 0 {
		return Snapshot{}, false
	}
	next := h.RedoStack[len(h.RedoStack)-1]
	h.RedoStack = h.RedoStack[:len(h.RedoStack)-1]
	current.Label = next.Label
	h.UndoStack = append(h.UndoStack, current)
	return next, true
}

// CanUndo reports whether there are snapshots to undo.
func (h *History) CanUndo() bool { return len(h.UndoStack) > 0 }

// CanRedo reports whether there are snapshots to redo.
func (h *History) CanRedo() bool { return len(h.RedoStack) > 0 }

// Clear drops both stacks.
func (h *History) Clear() {
	h.UndoStack = []Snapshot{}
	h.RedoStack = []Snapshot{}
}
