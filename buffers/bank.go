// Package buffers implements the fixed-size text register file the
// evaluator reads and writes while walking a scraper function tree.
package buffers

// NumSlots is the number of addressable buffer slots. Slot 0 is never
// referenced by a valid AST; valid destinations and inputs fall in 1..20.
const NumSlots = 21

// MaxIndex is the highest valid buffer index.
const MaxIndex = NumSlots - 1

// Reserved slot indices with a conventional meaning, preserved across
// Reset: the primary input document, an item identifier, and a source
// locator (URL or path).
const (
	SlotInput  = 1
	SlotID     = 2
	SlotSource = 3
)

// Bank is the mutable text register file. The zero value is a bank
// with all slots empty. A Bank is never shared across top-level
// invocations; each chained call gets its own (see chain.Resolve).
type Bank struct {
	slots [NumSlots]string
	set   [NumSlots]bool
}

// New returns an empty bank.
func New() *Bank {
	return &Bank{}
}

// Get returns the string value of slot n. An unset or out-of-range
// slot reads as ""; use IsSet to tell an unset slot from an empty one.
func (b *Bank) Get(n int) string {
	if n < 1 || n > MaxIndex {
		return ""
	}
	return b.slots[n]
}

// IsSet reports whether slot n has been assigned (as opposed to never
// written).
func (b *Bank) IsSet(n int) bool {
	if n < 1 || n > MaxIndex {
		return false
	}
	return b.set[n]
}

// Set assigns slot n unconditionally.
func (b *Bank) Set(n int, v string) {
	if n < 1 || n > MaxIndex {
		return
	}
	b.slots[n] = v
	b.set[n] = true
}

// Init ensures slot n is set, defaulting to "" if it was never written.
// Used by append-mode writes so appending to an untouched slot starts
// from an empty string instead of panicking.
func (b *Bank) Init(n int) {
	if n < 1 || n > MaxIndex {
		return
	}
	if !b.set[n] {
		b.set[n] = true
	}
}

// Append concatenates v onto slot n, initializing it to "" first if unset.
func (b *Bank) Append(n int, v string) {
	if n < 1 || n > MaxIndex {
		return
	}
	b.Init(n)
	b.slots[n] += v
}

// Clear resets slot n to the empty string but marks it set (used by an
// Expression's clear="yes" attribute).
func (b *Bank) Clear(n int) {
	if n < 1 || n > MaxIndex {
		return
	}
	b.slots[n] = ""
	b.set[n] = true
}

// ResetPreserving clears every slot except SlotInput, SlotID, and
// SlotSource, implementing a Function's clearbuffers="yes" behavior.
func (b *Bank) ResetPreserving() {
	input, inputSet := b.slots[SlotInput], b.set[SlotInput]
	id, idSet := b.slots[SlotID], b.set[SlotID]
	src, srcSet := b.slots[SlotSource], b.set[SlotSource]

	*b = Bank{}

	b.slots[SlotInput], b.set[SlotInput] = input, inputSet
	b.slots[SlotID], b.set[SlotID] = id, idSet
	b.slots[SlotSource], b.set[SlotSource] = src, srcSet
}

// Snapshot returns a copy of the bank's current contents, keyed by
// slot index, for diagnostics tracing. Unset slots are omitted.
func (b *Bank) Snapshot() map[int]string {
	out := make(map[int]string)
	for i := 1; i <= MaxIndex; i++ {
		if b.set[i] {
			out[i] = b.slots[i]
		}
	}
	return out
}
