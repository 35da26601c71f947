package game

import (
	"fmt"
	"strings"
)

// ClickResult is the outcome of a click on the tableau.
type ClickResult int

const (
	ClickIgnored    ClickResult = iota // Click rejected, nothing changed
	ClickFlipped                       // First card of a selection turned face up
	ClickMatched                       // Second card matched the first
	ClickMismatched                    // Second card differs; both wait for ResolveMismatch
	ClickWon                           // Matched the last pair
)

func (r ClickResult) String() string {
	switch r {
	case ClickIgnored:
		return "Ignored"
	case ClickFlipped:
		return "Flipped"
	case ClickMatched:
		return "Matched"
	case ClickMismatched:
		return "Mismatched"
	case ClickWon:
		return "Won"
	default:
		return fmt.Sprintf("ClickResult(%d)", int(r))
	}
}

// Tableau enforces the matching rules over one epoch's card slots.
//
// At most two slots are ever flipped and not matched: the selection holds them
// until they are resolved.
type Tableau struct {
	epoch       Epoch
	slots       []CardSlot
	selection   []int
	matched     int
	interactive bool
}

// NewTableau creates a face down tableau, one slot per pair key.
// It starts non-interactive.
func NewTableau(epoch Epoch, pairKeys []int) *Tableau {
	slots := make([]CardSlot, len(pairKeys))
	for i, key := range pairKeys {
		slots[i] = CardSlot{Index: i, PairKey: key}
	}
	return &Tableau{
		epoch:     epoch,
		slots:     slots,
		selection: make([]int, 0, 2),
	}
}

func (t *Tableau) Epoch() Epoch { return t.epoch }

func (t *Tableau) Size() int { return len(t.slots) }

// SetInteractive enables or disables clicks.
func (t *Tableau) SetInteractive(interactive bool) { t.interactive = interactive }

func (t *Tableau) Interactive() bool { return t.interactive }

// Won reports whether every slot is matched. An empty tableau is never won.
func (t *Tableau) Won() bool {
	return len(t.slots) > 0 && t.matched == len(t.slots)
}

// PendingMismatch is true while two mismatched slots wait for ResolveMismatch.
func (t *Tableau) PendingMismatch() bool { return len(t.selection) == 2 }

// Selection returns a copy of the selected slot indices.
func (t *Tableau) Selection() []int {
	return append([]int(nil), t.selection...)
}

// Slots returns a copy of the slots.
func (t *Tableau) Slots() []CardSlot {
	return append([]CardSlot(nil), t.slots...)
}

// Slot returns a copy of slot i.
func (t *Tableau) Slot(i int) CardSlot { return t.slots[i] }

// FaceUpUnmatched counts slots flipped but not matched.
func (t *Tableau) FaceUpUnmatched() int {
	n := 0
	for _, s := range t.slots {
		if s.Flipped && !s.Matched {
			n++
		}
	}
	return n
}

// Click applies a click on slot i.
func (t *Tableau) Click(i int) ClickResult {
	if !t.interactive || t.Won() || i < 0 || i >= len(t.slots) || len(t.selection) >= 2 {
		return ClickIgnored
	}
	slot := &t.slots[i]
	if slot.Flipped || slot.Matched {
		return ClickIgnored
	}
	slot.Flipped = true
	t.selection = append(t.selection, i)
	if len(t.selection) < 2 {
		return ClickFlipped
	}

	a, b := &t.slots[t.selection[0]], &t.slots[t.selection[1]]
	if a.PairKey != b.PairKey {
		return ClickMismatched
	}
	a.Matched, b.Matched = true, true
	t.matched += 2
	t.selection = t.selection[:0]
	if t.Won() {
		return ClickWon
	}
	return ClickMatched
}

// ResolveMismatch turns a pending mismatched pair face down again and clears the selection.
// It returns false if there was no pending mismatch.
func (t *Tableau) ResolveMismatch() bool {
	if len(t.selection) != 2 {
		return false
	}
	for _, i := range t.selection {
		t.slots[i].Flipped = false
	}
	t.selection = t.selection[:0]
	return true
}

func (t *Tableau) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tableau epoch=%d, matched=%d/%d, selection=%v: ", t.epoch, t.matched, len(t.slots), t.selection)
	for _, s := range t.slots {
		switch {
		case s.Matched:
			sb.WriteByte('M')
		case s.Flipped:
			sb.WriteByte('F')
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
