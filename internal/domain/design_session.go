package domain

import "time"

const DefaultHistoryDepth = 50

// DesignHistory keeps the current design and the snapshots around it.
type DesignHistory struct {
	Current   Design   `json:"current"`
	UndoStack []Design `json:"undo"`
	RedoStack []Design `json:"redo"`
	Depth     int      `json:"depth"`
}

func NewDesignHistory(initial Design, depth int) DesignHistory {
	if depth <= 0 {
		depth = DefaultHistoryDepth
	}
	return DesignHistory{Current: initial, UndoStack: []Design{}, RedoStack: []Design{}, Depth: depth}
}

// Apply records the current design and moves to the changed one.
// A change that leaves the design untouched is not recorded.
func (h *DesignHistory) Apply(c DesignChange) bool {
	next := h.Current.Apply(c)
	if next == h.Current {
		return false
	}
	h.UndoStack = push(h.UndoStack, h.Current, h.Depth)
	h.RedoStack = []Design{}
	h.Current = next
	return true
}

func (h *DesignHistory) Undo() error {
	if len(h.UndoStack) == 0 {
		return ErrNothingToUndo
	}
	prev := h.UndoStack[len(h.UndoStack)-1]
	h.UndoStack = h.UndoStack[:len(h.UndoStack)-1]
	h.RedoStack = push(h.RedoStack, h.Current, h.Depth)
	h.Current = prev
	return nil
}

func (h *DesignHistory) Redo() error {
	if len(h.RedoStack) == 0 {
		return ErrNothingToRedo
	}
	next := h.RedoStack[len(h.RedoStack)-1]
	h.RedoStack = h.RedoStack[:len(h.RedoStack)-1]
	h.UndoStack = push(h.UndoStack, h.Current, h.Depth)
	h.Current = next
	return nil
}

func (h DesignHistory) CanUndo() bool { return len(h.UndoStack) > 0 }
func (h DesignHistory) CanRedo() bool { return len(h.RedoStack) > 0 }

func push(stack []Design, d Design, depth int) []Design {
	stack = append(stack, d)
	if depth > 0 && len(stack) > depth {
		stack = append([]Design(nil), stack[len(stack)-depth:]...)
	}
	return stack
}

// DesignSession is a customizer in progress.
type DesignSession struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	History   DesignHistory `json:"history"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
