package entities

import (
	"math"
	"time"
)

type AssemblyType string

const (
	AssemblyTypeOrdinary      AssemblyType = "ORDINARY"
	AssemblyTypeExtraordinary AssemblyType = "EXTRAORDINARY"
	AssemblyTypeCommittee     AssemblyType = "COMMITTEE"
)

type AssemblyStatus string

const (
	AssemblyStatusScheduled  AssemblyStatus = "SCHEDULED"
	AssemblyStatusInProgress AssemblyStatus = "IN_PROGRESS"
	AssemblyStatusCompleted  AssemblyStatus = "COMPLETED"
	AssemblyStatusCancelled  AssemblyStatus = "CANCELLED"
)

// DefaultQuorumThreshold is the present-coefficient fraction required to
// open a vote when the assembly does not configure its own.
const DefaultQuorumThreshold = 0.51

type Assembly struct {
	AssemblyID      string
	ComplexID       string
	Type            AssemblyType
	Status          AssemblyStatus
	Title           string
	Description     string
	Location        string
	ScheduledDate   time.Time
	QuorumThreshold float64
	Agenda          []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type AttendanceKind string

const (
	AttendanceKindPresent AttendanceKind = "PRESENT"
	AttendanceKindProxy   AttendanceKind = "PROXY"
	AttendanceKindVirtual AttendanceKind = "VIRTUAL"
)

// Attendance is one property's check-in record for one assembly. A property
// checks in at most once per assembly; the attendee user may be updated when
// a different person re-checks-in for the same unit.
type Attendance struct {
	AttendanceID    string
	AssemblyID      string
	PropertyID      string
	AttendeeUserID  string
	Kind            AttendanceKind
	ProxyHolderName string
	CheckInTime     time.Time
	CheckOutTime    *time.Time
}

// Open reports whether the attendance still counts toward quorum.
func (a Attendance) Open() bool {
	return a.CheckOutTime == nil
}

// Property is a read-only projection from the ownership registry.
// Coefficient is the property's fractional share of total ownership.
type Property struct {
	PropertyID  string
	ComplexID   string
	Coefficient float64
}

// CoefficientTolerance bounds the accepted drift of a complex's coefficient
// sum from 1.0.
const CoefficientTolerance = 1e-6

// ValidCoefficientSet reports whether every coefficient is in (0, 1] and the
// set sums to 1.0 within tolerance. A misconfigured registry must be refused
// before any quorum or tally math runs on it.
func ValidCoefficientSet(properties []Property) bool {
	if len(properties) == 0 {
		return false
	}
	sum := 0.0
	for _, property := range properties {
		if property.Coefficient <= 0 || property.Coefficient > 1 {
			return false
		}
		sum += property.Coefficient
	}
	return math.Abs(sum-1.0) <= CoefficientTolerance
}

// TotalCoefficient sums the ownership shares of a property set.
func TotalCoefficient(properties []Property) float64 {
	sum := 0.0
	for _, property := range properties {
		sum += property.Coefficient
	}
	return sum
}

// QuorumStatus is recomputed from live attendance rows on every read; no
// running counter is maintained anywhere.
type QuorumStatus struct {
	AssemblyID         string
	PresentCount       int
	TotalProperties    int
	PresentCoefficient float64
	TotalCoefficient   float64
	QuorumPercentage   float64
	RequiredQuorum     float64
	QuorumMet          bool
	ComputedAt         time.Time
}
