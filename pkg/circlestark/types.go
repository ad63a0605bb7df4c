package circlestark

import (
	"github.com/ZippelLabs/ZP1/internal/circlestark/air"
	"github.com/ZippelLabs/ZP1/internal/circlestark/protocol"
)

// Trace is a committed-to execution trace: one air.Row per cycle, padded
// to a power of two. Build one with trace.Run or air.NewTrace directly.
type Trace = air.Trace

// Row is a single trace cycle's worth of AIR columns.
type Row = air.Row

// Proof is the self-describing artifact Prove emits and Verify consumes.
type Proof = protocol.Proof

// Config controls the blowup factor, query count, and FRI termination
// size a Prove/Verify pair agrees on; both sides must use the same one.
type Config = protocol.SecurityConfig

// DefaultConfig targets roughly 80 bits of query soundness at a blowup
// factor of 16.
func DefaultConfig() Config {
	return protocol.DefaultSecurityConfig()
}

// TraceLogN returns log2 of tr's row count, the traceLogN argument
// Verify needs to reconstruct the domains Prove built its commitments
// over.
func TraceLogN(tr *Trace) uint {
	n := uint(0)
	for l := len(tr.Rows); l > 1; l >>= 1 {
		n++
	}
	return n
}
