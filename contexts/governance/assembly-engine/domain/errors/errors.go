package errors

import "errors"

var (
	ErrAssemblyNotFound  = errors.New("assembly not found")
	ErrVotingNotFound    = errors.New("voting not found")
	ErrPropertyNotFound  = errors.New("property not registered in complex")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidProxy      = errors.New("proxy attendance requires a proxy holder name")
	ErrInvalidOption     = errors.New("option is not on the ballot")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAssemblyNotOpen   = errors.New("assembly is not open for this operation")
	ErrAlreadyCheckedIn  = errors.New("property is already checked in")
	ErrNotCheckedIn      = errors.New("property is not checked in")
	ErrNotEligible       = errors.New("property has no attendance record for the assembly")
	ErrVotingNotActive   = errors.New("voting is not active")
	ErrQuorumNotMet      = errors.New("quorum has not been reached")
	ErrVotingsPending    = errors.New("assembly has unresolved votings")
	ErrCoefficientSum    = errors.New("complex coefficients do not sum to 1.0")
	ErrConflict          = errors.New("write conflict")
)
