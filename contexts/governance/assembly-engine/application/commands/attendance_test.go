package commands_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"asamblea/contexts/governance/assembly-engine/adapters/memory"
	"asamblea/contexts/governance/assembly-engine/application/commands"
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

type seqIDGen struct {
	prefix string
	count  int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.count++
	return fmt.Sprintf("%s-%d", g.prefix, g.count), nil
}

type engineFixture struct {
	store      *memory.Store
	attendance commands.AttendanceUseCase
	sessions   commands.VotingUseCase
	assemblies commands.AssemblyUseCase
	quorum     queries.QuorumUseCase
}

func newFixture(now time.Time) engineFixture {
	store := memory.NewStore()
	clock := fixedClock{now: now}
	idGen := &seqIDGen{prefix: "id"}

	quorum := queries.QuorumUseCase{
		Assemblies: store,
		Attendance: store,
		Registry:   store,
		Clock:      clock,
	}
	tally := queries.TallyUseCase{
		Assemblies: store,
		Votes:      store,
		Registry:   store,
		Clock:      clock,
	}
	sessions := commands.VotingUseCase{
		Assemblies: store,
		Votings:    store,
		Votes:      store,
		Attendance: store,
		Registry:   store,
		Quorum:     quorum,
		Tally:      tally,
		Outbox:     store,
		Clock:      clock,
		IDGen:      idGen,
	}
	return engineFixture{
		store: store,
		attendance: commands.AttendanceUseCase{
			Assemblies: store,
			Attendance: store,
			Registry:   store,
			Quorum:     quorum,
			Outbox:     store,
			Clock:      clock,
			IDGen:      idGen,
		},
		sessions: sessions,
		assemblies: commands.AssemblyUseCase{
			Assemblies: store,
			Attendance: store,
			Votings:    store,
			Sessions:   sessions,
			Outbox:     store,
			Clock:      clock,
			IDGen:      idGen,
		},
		quorum: quorum,
	}
}

func (f engineFixture) seedComplex() {
	f.store.SeedComplex("complex-1", []entities.Property{
		{PropertyID: "apt-101", Coefficient: 0.5},
		{PropertyID: "apt-102", Coefficient: 0.3},
		{PropertyID: "apt-103", Coefficient: 0.2},
	})
}

func (f engineFixture) seedAssembly(status entities.AssemblyStatus) {
	f.seedComplex()
	f.store.SetAssembly(entities.Assembly{
		AssemblyID:      "assembly-1",
		ComplexID:       "complex-1",
		Type:            entities.AssemblyTypeOrdinary,
		Status:          status,
		Title:           "Annual ordinary assembly",
		ScheduledDate:   time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		QuorumThreshold: 0.51,
		Agenda:          []string{"Budget approval", "Facade renovation"},
	})
}

func (f engineFixture) checkIn(t *testing.T, propertyID string) entities.Attendance {
	t.Helper()
	result, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: propertyID,
		UserID:     "user-" + propertyID,
		Kind:       entities.AttendanceKindPresent,
	})
	if err != nil {
		t.Fatalf("check-in %s failed: %v", propertyID, err)
	}
	return result.Attendance
}

func pendingEventTypes(t *testing.T, store *memory.Store) []string {
	t.Helper()
	rows, err := store.ListPendingOutbox(context.Background(), 100)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	types := make([]string, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.EventType)
	}
	return types
}

func TestCheckInCreatesAttendance(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	attendance := f.checkIn(t, "apt-101")
	if attendance.AssemblyID != "assembly-1" || attendance.PropertyID != "apt-101" {
		t.Fatalf("unexpected attendance: %+v", attendance)
	}
	if !attendance.CheckInTime.Equal(now) {
		t.Fatalf("expected check-in at %v, got %v", now, attendance.CheckInTime)
	}
}

func TestCheckInIsIdempotentPerProperty(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	first := f.checkIn(t, "apt-101")
	result, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: "apt-101",
		UserID:     "user-apt-101",
		Kind:       entities.AttendanceKindPresent,
	})
	if err != nil {
		t.Fatalf("duplicate check-in failed: %v", err)
	}
	if !result.AlreadyCheckedIn {
		t.Fatalf("expected duplicate flag on replay")
	}
	if result.Attendance.AttendanceID != first.AttendanceID {
		t.Fatalf("expected same attendance record, got %q vs %q", result.Attendance.AttendanceID, first.AttendanceID)
	}

	status, err := f.quorum.Status(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("quorum status failed: %v", err)
	}
	if status.PresentCount != 1 {
		t.Fatalf("expected single attendance after replay, got %d", status.PresentCount)
	}
}

func TestCheckInByDifferentUserUpdatesAttendee(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	f.checkIn(t, "apt-101")
	result, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: "apt-101",
		UserID:     "user-other",
		Kind:       entities.AttendanceKindPresent,
	})
	if err != nil {
		t.Fatalf("re-check-in failed: %v", err)
	}
	if result.Attendance.AttendeeUserID != "user-other" {
		t.Fatalf("expected attendee updated, got %q", result.Attendance.AttendeeUserID)
	}
}

func TestCheckInRejectsProxyWithoutHolderName(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	_, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: "apt-101",
		UserID:     "user-1",
		Kind:       entities.AttendanceKindProxy,
	})
	if !errors.Is(err, domainerrors.ErrInvalidProxy) {
		t.Fatalf("expected ErrInvalidProxy, got %v", err)
	}
}

func TestCheckInRejectsUnknownProperty(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	_, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: "apt-999",
		UserID:     "user-1",
		Kind:       entities.AttendanceKindPresent,
	})
	if !errors.Is(err, domainerrors.ErrPropertyNotFound) {
		t.Fatalf("expected ErrPropertyNotFound, got %v", err)
	}
}

func TestCheckInRejectsClosedAssembly(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusCompleted)

	_, err := f.attendance.CheckIn(context.Background(), commands.CheckInCommand{
		AssemblyID: "assembly-1",
		PropertyID: "apt-101",
		UserID:     "user-1",
		Kind:       entities.AttendanceKindPresent,
	})
	if !errors.Is(err, domainerrors.ErrAssemblyNotOpen) {
		t.Fatalf("expected ErrAssemblyNotOpen, got %v", err)
	}
}

func TestCheckInEmitsQuorumReachedOnCrossing(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	f.checkIn(t, "apt-102")
	if types := pendingEventTypes(t, f.store); len(types) != 0 {
		t.Fatalf("expected no events below threshold, got %v", types)
	}

	f.checkIn(t, "apt-101")
	types := pendingEventTypes(t, f.store)
	if len(types) != 1 || types[0] != "assembly.quorum_reached" {
		t.Fatalf("expected quorum_reached event after crossing, got %v", types)
	}

	// A further check-in stays above threshold and must not re-fire.
	f.checkIn(t, "apt-103")
	if types := pendingEventTypes(t, f.store); len(types) != 1 {
		t.Fatalf("expected no duplicate quorum event, got %v", types)
	}
}

func TestCheckOutClosesAttendanceWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.checkIn(t, "apt-101")

	attendance, err := f.attendance.CheckOut(context.Background(), "assembly-1", "apt-101")
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	if attendance.CheckOutTime == nil {
		t.Fatalf("expected checkout time to be set")
	}

	// Second check-out is a no-op returning the same record.
	again, err := f.attendance.CheckOut(context.Background(), "assembly-1", "apt-101")
	if err != nil {
		t.Fatalf("repeated check-out failed: %v", err)
	}
	if !again.CheckOutTime.Equal(*attendance.CheckOutTime) {
		t.Fatalf("expected checkout time unchanged, got %v", again.CheckOutTime)
	}
}

func TestCheckOutUnknownPropertyFails(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 5, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	_, err := f.attendance.CheckOut(context.Background(), "assembly-1", "apt-101")
	if !errors.Is(err, domainerrors.ErrNotCheckedIn) {
		t.Fatalf("expected ErrNotCheckedIn, got %v", err)
	}
}
