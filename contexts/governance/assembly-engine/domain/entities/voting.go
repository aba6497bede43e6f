package entities

import "time"

type VotingType string

const (
	VotingTypeSimpleMajority    VotingType = "SIMPLE_MAJORITY"
	VotingTypeQualifiedMajority VotingType = "QUALIFIED_MAJORITY"
	VotingTypeUnanimous         VotingType = "UNANIMOUS"
	VotingTypeCoefficientBased  VotingType = "COEFFICIENT_BASED"
)

type VotingStatus string

const (
	VotingStatusPending   VotingStatus = "PENDING"
	VotingStatusActive    VotingStatus = "ACTIVE"
	VotingStatusClosed    VotingStatus = "CLOSED"
	VotingStatusCancelled VotingStatus = "CANCELLED"
)

// DefaultQualifiedThreshold applies when a qualified-majority voting does not
// configure its own supermajority fraction.
const DefaultQualifiedThreshold = 0.67

// DefaultVotingOptions matches the ballot offered when an agenda point is put
// to a vote without explicit options.
var DefaultVotingOptions = []string{"APPROVE", "REJECT", "ABSTAIN"}

// Voting is one votable agenda item within an assembly, distinct from Vote
// (one property's ballot). Result is computed once at close and frozen.
type Voting struct {
	VotingID          string
	AssemblyID        string
	AgendaIndex       int
	Type              VotingType
	ApprovalThreshold float64
	Status            VotingStatus
	Options           []string
	StartTime         *time.Time
	EndTime           *time.Time
	Result            *TallyResult
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasOption reports whether value is a valid ballot option for the voting.
func (v Voting) HasOption(value string) bool {
	for _, option := range v.Options {
		if option == value {
			return true
		}
	}
	return false
}

// Terminal reports whether the voting can no longer transition.
func (v Voting) Terminal() bool {
	return v.Status == VotingStatusClosed || v.Status == VotingStatusCancelled
}

// Vote is one property's ballot in one voting. CoefficientWeight is copied
// from the registry at cast time and never re-read; a later ownership
// transfer does not re-weight an already cast vote.
type Vote struct {
	VoteID            string
	VotingID          string
	PropertyID        string
	AttendeeUserID    string
	OptionValue       string
	CoefficientWeight float64
	CastAt            time.Time
}

// OptionTally aggregates the votes cast for a single option.
type OptionTally struct {
	Count          int
	CoefficientSum float64
	Percentage     float64
}

// TallyResult is the coefficient-weighted outcome of a voting. LeadingOption
// is empty when no single option strictly leads (tie or empty ballot), and a
// voting without a leading option is never approved.
type TallyResult struct {
	VotingID                string
	PerOption               map[string]OptionTally
	TotalVotes              int
	TotalCoefficientCast    float64
	TotalComplexCoefficient float64
	LeadingOption           string
	Approved                bool
	ComputedAt              time.Time
}
