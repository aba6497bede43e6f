package entities

import (
	"testing"
	"time"
)

func TestValidCoefficientSetAcceptsExactSum(t *testing.T) {
	properties := []Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
		{PropertyID: "apt-103", Coefficient: 0.2},
	}
	if !ValidCoefficientSet(properties) {
		t.Fatalf("expected coefficient set summing to 1.0 to be valid")
	}
}

func TestValidCoefficientSetAcceptsDriftWithinTolerance(t *testing.T) {
	properties := []Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
		{PropertyID: "apt-103", Coefficient: 0.2000000004},
	}
	if !ValidCoefficientSet(properties) {
		t.Fatalf("expected drift within tolerance to be valid")
	}
}

func TestValidCoefficientSetRejectsBadSum(t *testing.T) {
	properties := []Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
	}
	if ValidCoefficientSet(properties) {
		t.Fatalf("expected sum 0.8 to be rejected")
	}
}

func TestValidCoefficientSetRejectsNonPositiveCoefficient(t *testing.T) {
	properties := []Property{
		{PropertyID: "apt-101", Coefficient: 1.0},
		{PropertyID: "apt-102", Coefficient: 0.0},
	}
	if ValidCoefficientSet(properties) {
		t.Fatalf("expected zero coefficient to be rejected")
	}
}

func TestValidCoefficientSetRejectsEmptySet(t *testing.T) {
	if ValidCoefficientSet(nil) {
		t.Fatalf("expected empty property set to be rejected")
	}
}

func TestAttendanceOpen(t *testing.T) {
	attendance := Attendance{CheckInTime: time.Now()}
	if !attendance.Open() {
		t.Fatalf("expected attendance without checkout to be open")
	}
	checkout := time.Now()
	attendance.CheckOutTime = &checkout
	if attendance.Open() {
		t.Fatalf("expected checked-out attendance to be closed")
	}
}

func TestVotingHasOption(t *testing.T) {
	voting := Voting{Options: []string{"APPROVE", "REJECT", "ABSTAIN"}}
	if !voting.HasOption("REJECT") {
		t.Fatalf("expected REJECT to be a valid option")
	}
	if voting.HasOption("MAYBE") {
		t.Fatalf("expected MAYBE to be rejected")
	}
}
