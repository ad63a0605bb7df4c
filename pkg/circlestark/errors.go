package circlestark

import "github.com/ZippelLabs/ZP1/internal/circlestark/protocol"

// ErrorKind mirrors the internal protocol.Kind taxonomy so callers of
// this package can branch on failure class without reaching into
// internal/.
type ErrorKind = protocol.Kind

const (
	ErrUnknown                  = protocol.KindUnknown
	ErrNotInvertible            = protocol.KindNotInvertible
	ErrBadSize                  = protocol.KindBadSize
	ErrOutOfDomain              = protocol.KindOutOfDomain
	ErrMerkleVerifyFail         = protocol.KindMerkleVerifyFail
	ErrChallengeRejection       = protocol.KindChallengeRejection
	ErrConstraintViolation      = protocol.KindConstraintViolation
	ErrMemoryPermutationFail    = protocol.KindMemoryPermutationFail
	ErrRegisterPermutationFail  = protocol.KindRegisterPermutationFail
	ErrFoldMismatch             = protocol.KindFoldMismatch
	ErrDeepQuotientMismatch     = protocol.KindDeepQuotientMismatch
	ErrOutOfDomainInsideDomain  = protocol.KindOutOfDomainInsideDomain
	ErrInsufficientSecurity     = protocol.KindInsufficientSecurity
	ErrVersionMismatch          = protocol.KindVersionMismatch
)
