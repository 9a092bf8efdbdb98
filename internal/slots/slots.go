// Package slots maps sounding pitches onto a fixed number of display columns.
//
// A Table keeps its occupied cells in strictly increasing pitch order. New
// pitches are placed near the column their pitch maps to linearly, shifting
// neighbouring runs by one cell when needed. When every cell is taken the
// cell chosen for the new pitch is overwritten.
package slots

import "fmt"

// Piano range, A0 to C8.
const (
	DefaultMinPitch uint8 = 21
	DefaultMaxPitch uint8 = 108
)

// NoteSlot is one occupied column: a pitch and its intensity per tracked channel.
type NoteSlot struct {
	Pitch     uint8
	Intensity []uint8
}

// Empty reports whether every channel intensity is zero.
func (s *NoteSlot) Empty() bool {
	for _, v := range s.Intensity {
		if v > 0 {
			return false
		}
	}
	return true
}

func (s *NoteSlot) clone() NoteSlot {
	return NoteSlot{Pitch: s.Pitch, Intensity: append([]uint8(nil), s.Intensity...)}
}

// Table is a fixed-capacity ordered slot table. It is not safe for concurrent use.
type Table struct {
	cells    []*NoteSlot
	channels int
	minPitch uint8
	maxPitch uint8
}

// Option customizes a Table.
type Option func(*Table)

// WithPitchRange sets the pitch range mapped onto the columns. Pitches
// outside it are ignored by SetNote.
func WithPitchRange(lowest, highest uint8) Option {
	return func(t *Table) {
		t.minPitch, t.maxPitch = lowest, highest
	}
}

// New creates a table with size columns tracking the given number of channels.
func New(size, channels int, opts ...Option) (*Table, error) {
	t := &Table{
		cells:    make([]*NoteSlot, size),
		channels: channels,
		minPitch: DefaultMinPitch,
		maxPitch: DefaultMaxPitch,
	}
	for _, opt := range opts {
		opt(t)
	}
	switch {
	case size < 1:
		return nil, fmt.Errorf("slot table needs at least one column, got %d", size)
	case channels < 1 || channels > 16:
		return nil, fmt.Errorf("tracked channel count must be 1..16, got %d", channels)
	case t.minPitch > t.maxPitch || t.maxPitch > 127:
		return nil, fmt.Errorf("invalid pitch range %d..%d", t.minPitch, t.maxPitch)
	}
	return t, nil
}

// Len returns the number of columns.
func (t *Table) Len() int { return len(t.cells) }

// Channels returns the number of tracked channels.
func (t *Table) Channels() int { return t.channels }

// Occupied returns the number of occupied columns.
func (t *Table) Occupied() int {
	n := 0
	for _, c := range t.cells {
		if c != nil {
			n++
		}
	}
	return n
}

// At returns a copy of the slot in column i.
func (t *Table) At(i int) (NoteSlot, bool) {
	if i < 0 || i >= len(t.cells) || t.cells[i] == nil {
		return NoteSlot{}, false
	}
	return t.cells[i].clone(), true
}

// Index returns the column holding pitch, or -1.
func (t *Table) Index(pitch uint8) int {
	for i, c := range t.cells {
		if c != nil && c.Pitch == pitch {
			return i
		}
	}
	return -1
}

// Pitches returns the pitch of every column, with -1 for empty ones.
func (t *Table) Pitches() []int {
	out := make([]int, len(t.cells))
	for i, c := range t.cells {
		out[i] = -1
		if c != nil {
			out[i] = int(c.Pitch)
		}
	}
	return out
}

// Reset empties every column.
func (t *Table) Reset() {
	clear(t.cells)
}

// SetNote records intensity for pitch on channel. A zero intensity on the
// last sounding channel frees the slot. Channels beyond the tracked count
// and pitches outside the range are ignored.
func (t *Table) SetNote(pitch uint8, channel uint8, intensity uint8) {
	c := int(channel)
	if c >= t.channels || pitch < t.minPitch || pitch > t.maxPitch {
		return
	}
	i := t.Index(pitch)
	if i < 0 {
		if intensity == 0 {
			return
		}
		i = t.vacate(pitch, t.candidate(t.ideal(pitch), pitch))
		t.cells[i] = &NoteSlot{Pitch: pitch, Intensity: make([]uint8, t.channels)}
	}
	t.cells[i].Intensity[c] = intensity
	if t.cells[i].Empty() {
		t.cells[i] = nil
	}
}

// SetChannel overwrites the intensity of channel in every slot where it is
// currently nonzero.
func (t *Table) SetChannel(channel uint8, intensity uint8) {
	c := int(channel)
	if c >= t.channels {
		return
	}
	for i, slot := range t.cells {
		if slot == nil || slot.Intensity[c] == 0 {
			continue
		}
		slot.Intensity[c] = intensity
		if slot.Empty() {
			t.cells[i] = nil
		}
	}
}

// ideal maps pitch linearly onto the columns.
func (t *Table) ideal(pitch uint8) int {
	span := int(t.maxPitch) - int(t.minPitch) + 1
	return len(t.cells) * (int(pitch) - int(t.minPitch)) / span
}

// candidate moves ideal so that inserting pitch there respects the order of
// existing occupants.
func (t *Table) candidate(ideal int, pitch uint8) int {
	n := len(t.cells)
	valid := -1
	for i := ideal + 1; i < n; i++ {
		if s := t.cells[i]; s != nil {
			if s.Pitch < pitch {
				valid = i
			} else if s.Pitch > pitch {
				break
			}
		}
	}
	if valid >= 0 {
		return valid
	}
	for i := ideal - 1; i >= 0; i-- {
		if s := t.cells[i]; s != nil {
			if s.Pitch > pitch {
				valid = i
			} else if s.Pitch < pitch {
				break
			}
		}
	}
	if valid >= 0 {
		return valid
	}
	return ideal
}

type direction int

const (
	none direction = iota
	up
	down
)

// vacate returns a free column for pitch at or next to idx, shifting runs of
// occupants by one column. With no free column anywhere the returned column
// still holds its occupant, which the caller overwrites. The walk changes
// direction at most once, so it is bounded by the table size.
func (t *Table) vacate(pitch uint8, idx int) int {
	last := len(t.cells) - 1
	prev := none
	for {
		occ := t.cells[idx]
		if occ == nil {
			return idx
		}
		switch {
		case pitch > occ.Pitch:
			if idx < last && prev != down {
				idx, prev = idx+1, up
				continue
			}
			if t.shiftDown(idx) {
				return idx
			}
			if idx < last && t.shiftUp(idx+1) {
				return idx + 1
			}
			return idx
		case pitch < occ.Pitch:
			if idx > 0 && prev != up {
				idx, prev = idx-1, down
				continue
			}
			if t.shiftUp(idx) {
				return idx
			}
			if idx > 0 && t.shiftDown(idx-1) {
				return idx - 1
			}
			return idx
		default:
			panic(fmt.Sprintf("slots: pitch %d already has column %d", pitch, idx))
		}
	}
}

// shiftUp moves the nearest empty column at or above lower down to lower by
// rotating the run between them one column up.
func (t *Table) shiftUp(lower int) bool {
	for gap := lower; gap < len(t.cells); gap++ {
		if t.cells[gap] == nil {
			run := t.cells[lower : gap+1]
			copy(run[1:], run[:len(run)-1])
			run[0] = nil
			return true
		}
	}
	return false
}

// shiftDown moves the nearest empty column at or below upper up to upper by
// rotating the run between them one column down.
func (t *Table) shiftDown(upper int) bool {
	for gap := upper; gap >= 0; gap-- {
		if t.cells[gap] == nil {
			run := t.cells[gap : upper+1]
			copy(run, run[1:])
			run[len(run)-1] = nil
			return true
		}
	}
	return false
}
