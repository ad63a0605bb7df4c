package circlestark

import "github.com/ZippelLabs/ZP1/internal/circlestark/protocol"

// Prove generates a proof that tr is a valid execution trace under cfg,
// binding publicInputs into the Fiat-Shamir transcript so a verifier
// using the same publicInputs (and nothing else) can check it.
func Prove(tr *Trace, publicInputs []byte, cfg Config) (*Proof, error) {
	return protocol.Prove(tr, publicInputs, cfg)
}

// Verify checks proof against publicInputs and cfg, rejecting at the
// first inconsistency. traceLogN must match the log2 trace length Prove
// was called with; use TraceLogN(tr) when the trace is available, or
// the value agreed on with the prover otherwise.
func Verify(proof *Proof, publicInputs []byte, cfg Config, traceLogN uint) error {
	return protocol.Verify(proof, publicInputs, cfg, traceLogN)
}

// Encode serializes proof to its length-delimited wire format.
func Encode(proof *Proof) []byte {
	return proof.Encode()
}

// Decode parses the wire format Encode produced.
func Decode(data []byte) (*Proof, error) {
	return protocol.Decode(data)
}
