package queries_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"asamblea/contexts/governance/assembly-engine/adapters/memory"
	"asamblea/contexts/governance/assembly-engine/application/queries"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func seedAssembly(store *memory.Store, threshold float64) entities.Assembly {
	store.SeedComplex("complex-1", []entities.Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
		{PropertyID: "apt-103", Coefficient: 0.2},
	})
	assembly := entities.Assembly{
		AssemblyID:      "assembly-1",
		ComplexID:       "complex-1",
		Type:            entities.AssemblyTypeOrdinary,
		Status:          entities.AssemblyStatusInProgress,
		Title:           "Annual ordinary assembly",
		ScheduledDate:   time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		QuorumThreshold: threshold,
		Agenda:          []string{"Budget approval", "Facade renovation"},
	}
	store.SetAssembly(assembly)
	return assembly
}

func checkIn(t *testing.T, store *memory.Store, propertyID string, at time.Time) {
	t.Helper()
	err := store.CreateAttendance(context.Background(), entities.Attendance{
		AttendanceID:   "att-" + propertyID,
		AssemblyID:     "assembly-1",
		PropertyID:     propertyID,
		AttendeeUserID: "user-" + propertyID,
		Kind:           entities.AttendanceKindPresent,
		CheckInTime:    at,
	})
	if err != nil {
		t.Fatalf("seed attendance for %s failed: %v", propertyID, err)
	}
}

func TestQuorumStatusBelowThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	store := memory.NewStore()
	seedAssembly(store, 0.51)
	checkIn(t, store, "apt-102", now)

	uc := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      fixedClock{now: now},
	}
	status, err := uc.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("quorum status failed: %v", err)
	}
	if status.QuorumMet {
		t.Fatalf("expected quorum not met at 0.3 present, got %+v", status)
	}
	if status.PresentCount != 1 || status.PresentCoefficient != 0.3 {
		t.Fatalf("unexpected presence: %+v", status)
	}
}

func TestQuorumStatusCrossesThreshold(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 10, 0, 0, time.UTC)
	store := memory.NewStore()
	seedAssembly(store, 0.51)
	checkIn(t, store, "apt-102", now)
	checkIn(t, store, "apt-101", now)

	uc := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      fixedClock{now: now},
	}
	status, err := uc.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("quorum status failed: %v", err)
	}
	if !status.QuorumMet {
		t.Fatalf("expected quorum met at 0.8 present, got %+v", status)
	}
	if status.QuorumPercentage < 79.9 || status.QuorumPercentage > 80.1 {
		t.Fatalf("unexpected quorum percentage: %v", status.QuorumPercentage)
	}
}

func TestQuorumStatusExcludesCheckedOutProperties(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 20, 0, 0, time.UTC)
	store := memory.NewStore()
	seedAssembly(store, 0.51)
	checkIn(t, store, "apt-101", now)
	checkIn(t, store, "apt-102", now)

	attendance, found, err := store.GetAttendance(context.Background(), "assembly-1", "apt-101")
	if err != nil || !found {
		t.Fatalf("load attendance failed: found=%v err=%v", found, err)
	}
	checkout := now.Add(10 * time.Minute)
	attendance.CheckOutTime = &checkout
	if err := store.UpdateAttendance(context.Background(), attendance); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	uc := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      fixedClock{now: now},
	}
	status, err := uc.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("quorum status failed: %v", err)
	}
	if status.QuorumMet {
		t.Fatalf("expected quorum lost after 0.5 checked out, got %+v", status)
	}
	if status.PresentCount != 1 || status.PresentCoefficient != 0.3 {
		t.Fatalf("unexpected presence after checkout: %+v", status)
	}
}

func TestQuorumStatusIsIdempotentAcrossReads(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	store := memory.NewStore()
	seedAssembly(store, 0.51)
	checkIn(t, store, "apt-101", now)
	checkIn(t, store, "apt-103", now)

	uc := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      fixedClock{now: now},
	}
	first, err := uc.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("first quorum read failed: %v", err)
	}
	second, err := uc.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("second quorum read failed: %v", err)
	}
	if first.PresentCoefficient != second.PresentCoefficient ||
		first.QuorumMet != second.QuorumMet ||
		first.PresentCount != second.PresentCount {
		t.Fatalf("repeated reads diverged: %+v vs %+v", first, second)
	}
}

func TestQuorumStatusRejectsBrokenCoefficientSet(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 40, 0, 0, time.UTC)
	store := memory.NewStore()
	store.SeedComplex("complex-1", []entities.Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
	})
	store.SetAssembly(entities.Assembly{
		AssemblyID: "assembly-1",
		ComplexID:  "complex-1",
		Status:     entities.AssemblyStatusInProgress,
	})

	uc := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      fixedClock{now: now},
	}
	_, err := uc.Status(context.Background(), "assembly-1")
	if !errors.Is(err, domainerrors.ErrCoefficientSum) {
		t.Fatalf("expected ErrCoefficientSum, got %v", err)
	}
}
