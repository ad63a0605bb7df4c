// Package circlestark is the public API for ZP1, a circle-STARK
// polynomial-commitment engine over the Mersenne-31 field that proves
// execution of a representative RV32IM instruction subset.
//
// # Features
//
//   - Circle-group FFT and canonical coset domains over M31
//   - Merkle-committed trace, LogUp accumulator, and composition columns
//   - A 21-opcode register-machine AIR with memory and register LogUp arguments
//   - DEEP-quotient composition and FRI low-degree testing over QM31
//   - A length-delimited proof encoding with a typed prover/verifier error taxonomy
//
// # Quick start
//
// Running a program and proving it:
//
//	prog := circlestark.NewProgram(circlestark.Addi(1, 0, 40), circlestark.Addi(2, 0, 2), circlestark.Add(3, 1, 2))
//	tr, err := circlestark.Run(prog, 64)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := circlestark.DefaultConfig()
//	proof, err := circlestark.Prove(tr, nil, cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := circlestark.Verify(proof, nil, cfg, circlestark.TraceLogN(tr)); err != nil {
//		log.Fatal("proof rejected:", err)
//	}
//
// # Architecture
//
// ZP1 follows a hybrid public/private layout:
//
//   - pkg/circlestark/: public API (this package) and the trace/emulator helpers it re-exports
//   - internal/circlestark/: field, circle, merkle, transcript, air and protocol implementation
//
// Everything under internal/ can be refactored without breaking the
// public surface exposed here.
//
// # References
//
//   - STARK paper: https://eprint.iacr.org/2018/046
//   - FRI paper: https://eccc.weizmann.ac.il/report/2017/134/
//   - Circle-STARKs: https://eprint.iacr.org/2024/278
package circlestark
