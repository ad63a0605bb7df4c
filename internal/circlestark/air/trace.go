package air

import (
	"github.com/cockroachdb/errors"

	"github.com/ZippelLabs/ZP1/internal/circlestark/field"
)

// ErrShortTrace is returned when a trace has fewer than 2 rows, which
// makes every transition constraint vacuous and almost certainly
// indicates a caller bug rather than a legitimately tiny program.
var ErrShortTrace = errors.New("air: trace must have at least 2 rows")

// Trace is the column-major execution trace: NumColumns columns, each a
// slice of N field elements where N is a power of two (padded with the
// padding-selector row if the real execution was shorter).
type Trace struct {
	Rows []Row
}

// NewTrace allocates a trace of n rows, all zeroed except the padding
// selector, which defaults to active (the caller overwrites real rows).
func NewTrace(n int) *Trace {
	rows := make([]Row, n)
	for i := range rows {
		rows[i][SelPAD] = field.One
	}
	return &Trace{Rows: rows}
}

// Column extracts one column as a contiguous slice, the representation
// the circle FFT and Merkle commitment operate on.
func (t *Trace) Column(c Column) []field.M31 {
	out := make([]field.M31, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[c]
	}
	return out
}

// Len returns the row count.
func (t *Trace) Len() int { return len(t.Rows) }

// Validate checks the structural invariants every AIR constraint in
// this package assumes before evaluation: power-of-two length, and
// every boolean-witness column actually holding 0 or 1 (ColCarry2 only
// outside BEQ rows, where it holds an inverse witness instead).
func (t *Trace) Validate() error {
	if len(t.Rows) < 2 {
		return ErrShortTrace
	}
	if len(t.Rows)&(len(t.Rows)-1) != 0 {
		return field.ErrBadSize
	}
	boolCols := []Column{
		SelADD, SelADDI, SelSUB, SelAND, SelOR, SelXOR, SelSLL, SelSLT, SelSLTU,
		SelBEQ, SelJAL, SelJALR, SelMUL, SelMULH, SelDIV, SelDIVU, SelREM,
		SelLW, SelLH, SelLB, SelSW, SelPAD,
		ColCarry, ColCarry2, ColBorrow, ColLSB, ColEqBit, ColLtBit,
		ColMemIsWrite, ColIsFirstRow,
	}
	for _, row := range t.Rows {
		for _, c := range boolCols {
			if c == ColCarry2 && row[SelBEQ].Equal(field.One) {
				continue
			}
			v := row[c]
			if !v.IsZero() && !v.Equal(field.One) {
				return errors.Newf("air: column %d holds non-boolean value %s", c, v)
			}
		}
		if err := validateOneHotSelector(row); err != nil {
			return err
		}
	}
	return nil
}

func validateOneHotSelector(row Row) error {
	opSelectors := []Column{
		SelADD, SelADDI, SelSUB, SelAND, SelOR, SelXOR, SelSLL, SelSLT, SelSLTU,
		SelBEQ, SelJAL, SelJALR, SelMUL, SelMULH, SelDIV, SelDIVU, SelREM,
		SelLW, SelLH, SelLB, SelSW, SelPAD,
	}
	active := 0
	for _, c := range opSelectors {
		if row[c].Equal(field.One) {
			active++
		}
	}
	if active != 1 {
		return errors.Newf("air: row must activate exactly one opcode selector, found %d", active)
	}
	return nil
}
