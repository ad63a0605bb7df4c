package protocol

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

// Kind discriminates the typed error categories the orchestrators can
// return, so a caller can branch on failure class without string
// matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotInvertible
	KindBadSize
	KindOutOfDomain
	KindMerkleVerifyFail
	KindChallengeRejection
	KindConstraintViolation
	KindMemoryPermutationFail
	KindRegisterPermutationFail
	KindFoldMismatch
	KindDeepQuotientMismatch
	KindOutOfDomainInsideDomain
	KindInsufficientSecurity
	KindVersionMismatch
)

func (k Kind) String() string {
	switch k {
	case KindNotInvertible:
		return "NotInvertible"
	case KindBadSize:
		return "BadSize"
	case KindOutOfDomain:
		return "OutOfDomain"
	case KindMerkleVerifyFail:
		return "MerkleVerifyFail"
	case KindChallengeRejection:
		return "ChallengeRejection"
	case KindConstraintViolation:
		return "ConstraintViolation"
	case KindMemoryPermutationFail:
		return "MemoryPermutationFail"
	case KindRegisterPermutationFail:
		return "RegisterPermutationFail"
	case KindFoldMismatch:
		return "FoldMismatch"
	case KindDeepQuotientMismatch:
		return "DeepQuotientMismatch"
	case KindOutOfDomainInsideDomain:
		return "OutOfDomainInsideDomain"
	case KindInsufficientSecurity:
		return "InsufficientSecurity"
	case KindVersionMismatch:
		return "VersionMismatch"
	default:
		return "Unknown"
	}
}

// ProveError is returned by Prove; it never carries secret trace values,
// only enough context (kind, and where applicable a row/layer/index) to
// debug a prover-side failure.
type ProveError struct {
	Kind Kind
	Msg  string

	// Row/AIRKind are meaningful for ConstraintViolation: the trace row
	// that failed to satisfy the AIR and the name of the violated
	// constraint group (e.g. "x0_nonzero").
	Row     int
	AIRKind string
}

func (e *ProveError) Error() string {
	if e.AIRKind != "" {
		return "protocol: prove: " + e.Kind.String() + "{kind: " + e.AIRKind + ", row: " + strconv.Itoa(e.Row) + "}: " + e.Msg
	}
	return "protocol: prove: " + e.Kind.String() + ": " + e.Msg
}

func newProveError(kind Kind, msg string) error {
	return errors.WithStack(&ProveError{Kind: kind, Msg: msg})
}

func newProveErrorAt(kind Kind, msg string, row int, airKind string) error {
	return errors.WithStack(&ProveError{Kind: kind, Msg: msg, Row: row, AIRKind: airKind})
}

// VerifyError is returned by Verify at the first inconsistency; the
// verifier never attempts partial verification or retries.
type VerifyError struct {
	Kind  Kind
	Msg   string
	Index int // meaningful for MerkleVerifyFail, FoldMismatch, DeepQuotientMismatch
	Layer int // meaningful for MerkleVerifyFail, FoldMismatch
}

func (e *VerifyError) Error() string {
	return "protocol: verify: " + e.Kind.String() + ": " + e.Msg
}

func newVerifyError(kind Kind, msg string) error {
	return errors.WithStack(&VerifyError{Kind: kind, Msg: msg})
}

func newVerifyErrorAt(kind Kind, msg string, layer, index int) error {
	return errors.WithStack(&VerifyError{Kind: kind, Msg: msg, Layer: layer, Index: index})
}
