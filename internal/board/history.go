package board

import "LiveCanvas/internal/render"

// Restorer is the surface undo writes back to.
type Restorer interface {
	Restore(*render.Snapshot)
}

// History is the linear undo stack of full-canvas snapshots. index points at
// the snapshot on display, -1 meaning the blank canvas.
//
// There is no redo: snapshots above the index stay in place until the next
// Push truncates them.
type History struct {
	target    Restorer
	snapshots []*render.Snapshot
	index     int
}

func NewHistory(target Restorer) *History {
	return &History{target: target, index: -1}
}

// Push drops everything above the current index and appends snap.
func (h *History) Push(snap *render.Snapshot) {
	keep := min(h.index+1, len(h.snapshots))
	clear(h.snapshots[keep:])
	h.snapshots = append(h.snapshots[:keep], snap)
	h.index = len(h.snapshots) - 1
}

// Undo steps back one snapshot and restores it onto the target. It reports
// false, doing nothing, when already at the blank canvas.
func (h *History) Undo() bool {
	if h.index < 0 {
		return false
	}
	if h.index >= len(h.snapshots) {
		h.index = len(h.snapshots) - 1
		if h.index < 0 {
			return false
		}
	}
	h.index--

	if h.target != nil {
		h.target.Restore(h.Current())
	}
	return true
}

func (h *History) Index() int { return h.index }
func (h *History) Len() int   { return len(h.snapshots) }

// Current is the snapshot on display, nil for the blank canvas.
func (h *History) Current() *render.Snapshot {
	if h.index < 0 || h.index >= len(h.snapshots) {
		return nil
	}
	return h.snapshots[h.index]
}
