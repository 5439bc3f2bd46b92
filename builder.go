// builder.go - replays motor-advance/reverse and burn-line events into a
// row-addressed bitmap.
//
// Ported from original_source/print_mech_analyser/analyser/analyser.py's
// PrintoutBuilder; Go shape follows video_screen_buffer.go
// (ordered row list plus a cursor, grown lazily).

package printmech

// PrintoutBuilder accumulates burns into a row-addressed bitmap under
// advance/reverse motion.
type PrintoutBuilder struct {
	rows [][]byte // each row is HeadWidth bytes, values 0 or 1
	line int
}

// NewPrintoutBuilder returns a builder starting with a single blank,
// in-progress row at cursor 0.
func NewPrintoutBuilder() *PrintoutBuilder {
	return &PrintoutBuilder{
		rows: [][]byte{make([]byte, HeadWidth)},
		line: 0,
	}
}

// LineAdvance moves the cursor forward, appending a new blank row if the
// cursor runs off the end of the buffer.
func (b *PrintoutBuilder) LineAdvance() {
	b.line++
	if b.line >= len(b.rows) {
		b.rows = append(b.rows, make([]byte, HeadWidth))
	}
}

// LineReverse moves the cursor backward. At the top of the buffer it
// prepends a new blank row instead, so the cursor always addresses a real
// row.
func (b *PrintoutBuilder) LineReverse() {
	if b.line == 0 {
		b.rows = append([][]byte{make([]byte, HeadWidth)}, b.rows...)
		return
	}
	b.line--
}

// BurnLine ORs mask into the row currently addressed by the cursor. Burns
// accumulate: a pixel that has ever been set stays set.
func (b *PrintoutBuilder) BurnLine(mask []byte) {
	row := b.rows[b.line]
	for i := 0; i < len(row) && i < len(mask); i++ {
		if mask[i] != 0 {
			row[i] = 1
		}
	}
}

// GetImage returns a copy of the stable prefix (every row except the one
// currently being burned into), scaled from 0/1 to 0/255. It returns
// (nil, false) when fewer than two rows exist, since there is no stable
// row to report yet.
func (b *PrintoutBuilder) GetImage() (*Printout, bool) {
	if len(b.rows) <= 1 {
		return nil, false
	}

	stable := b.rows[:len(b.rows)-1]
	rows := make([][]byte, len(stable))
	for i, r := range stable {
		row := make([]byte, len(r))
		for x, v := range r {
			if v != 0 {
				row[x] = pixelBurned
			}
		}
		rows[i] = row
	}
	return &Printout{width: HeadWidth, rows: rows}, true
}

// Clear reduces the buffer to only the currently in-progress row and resets
// the cursor to 0. Used to implement "take" semantics on the worker
// boundary.
func (b *PrintoutBuilder) Clear() {
	last := b.rows[len(b.rows)-1]
	b.rows = [][]byte{last}
	b.line = 0
}

// Line returns the cursor's current row index, for tests and diagnostics.
func (b *PrintoutBuilder) Line() int {
	return b.line
}
