package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"asamblea/contexts/governance/assembly-engine/application/commands"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
)

func TestScheduleDefaultsQuorumThreshold(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedComplex()

	assembly, err := f.assemblies.Schedule(context.Background(), commands.ScheduleAssemblyCommand{
		ComplexID:     "complex-1",
		Type:          entities.AssemblyTypeOrdinary,
		Title:         "Annual ordinary assembly",
		ScheduledDate: time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC),
		Agenda:        []string{"Budget approval"},
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if assembly.QuorumThreshold != 0.51 {
		t.Fatalf("expected default threshold 0.51, got %v", assembly.QuorumThreshold)
	}
	if assembly.Status != entities.AssemblyStatusScheduled {
		t.Fatalf("expected scheduled status, got %v", assembly.Status)
	}
}

func TestScheduleRejectsInvalidInput(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedComplex()

	cases := []commands.ScheduleAssemblyCommand{
		{Type: entities.AssemblyTypeOrdinary, Title: "x", ScheduledDate: now},
		{ComplexID: "complex-1", Type: entities.AssemblyTypeOrdinary, ScheduledDate: now},
		{ComplexID: "complex-1", Type: "WEEKLY", Title: "x", ScheduledDate: now},
		{ComplexID: "complex-1", Type: entities.AssemblyTypeOrdinary, Title: "x", ScheduledDate: now, QuorumThreshold: 1.5},
	}
	for i, cmd := range cases {
		if _, err := f.assemblies.Schedule(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestStartTransitionsScheduledAssembly(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusScheduled)

	assembly, err := f.assemblies.Start(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if assembly.Status != entities.AssemblyStatusInProgress {
		t.Fatalf("expected in-progress status, got %v", assembly.Status)
	}

	if _, err := f.assemblies.Start(context.Background(), "assembly-1"); !errors.Is(err, domainerrors.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double start, got %v", err)
	}
}

func TestOpenVotingRequiresOpenAssembly(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusScheduled)

	_, err := f.assemblies.OpenVoting(context.Background(), commands.OpenVotingCommand{
		AssemblyID:  "assembly-1",
		AgendaIndex: 0,
		Type:        entities.VotingTypeSimpleMajority,
	})
	if !errors.Is(err, domainerrors.ErrAssemblyNotOpen) {
		t.Fatalf("expected ErrAssemblyNotOpen, got %v", err)
	}
}

func TestOpenVotingValidatesAgendaIndex(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)

	_, err := f.assemblies.OpenVoting(context.Background(), commands.OpenVotingCommand{
		AssemblyID:  "assembly-1",
		AgendaIndex: 5,
		Type:        entities.VotingTypeSimpleMajority,
	})
	if !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for agenda index out of range, got %v", err)
	}
}

func TestOpenVotingActivatesWhenQuorumHolds(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 15, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.checkIn(t, "apt-101")
	f.checkIn(t, "apt-102")

	voting, err := f.assemblies.OpenVoting(context.Background(), commands.OpenVotingCommand{
		AssemblyID:  "assembly-1",
		AgendaIndex: 0,
		Type:        entities.VotingTypeQualifiedMajority,
	})
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}
	if voting.Status != entities.VotingStatusActive {
		t.Fatalf("expected active voting, got %v", voting.Status)
	}
	if voting.ApprovalThreshold != 0.67 {
		t.Fatalf("expected qualified default 0.67, got %v", voting.ApprovalThreshold)
	}
	if len(voting.Options) != len(entities.DefaultVotingOptions) {
		t.Fatalf("expected default ballot options, got %v", voting.Options)
	}
}

func TestOpenVotingLeavesPendingRecordBelowQuorum(t *testing.T) {
	now := time.Date(2026, 3, 10, 18, 15, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.checkIn(t, "apt-103")

	_, err := f.assemblies.OpenVoting(context.Background(), commands.OpenVotingCommand{
		AssemblyID:  "assembly-1",
		AgendaIndex: 0,
		Type:        entities.VotingTypeSimpleMajority,
	})
	if !errors.Is(err, domainerrors.ErrQuorumNotMet) {
		t.Fatalf("expected ErrQuorumNotMet, got %v", err)
	}

	voting, found, err := f.store.GetVotingByAgenda(context.Background(), "assembly-1", 0)
	if err != nil || !found {
		t.Fatalf("expected pending voting record, found=%v err=%v", found, err)
	}
	if voting.Status != entities.VotingStatusPending {
		t.Fatalf("expected pending status after failed activation, got %v", voting.Status)
	}

	// After more check-ins the same agenda item resumes instead of duplicating.
	f.checkIn(t, "apt-101")
	resumed, err := f.assemblies.OpenVoting(context.Background(), commands.OpenVotingCommand{
		AssemblyID:  "assembly-1",
		AgendaIndex: 0,
		Type:        entities.VotingTypeSimpleMajority,
	})
	if err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if resumed.VotingID != voting.VotingID {
		t.Fatalf("expected same voting resumed, got %q vs %q", resumed.VotingID, voting.VotingID)
	}
	if resumed.Status != entities.VotingStatusActive {
		t.Fatalf("expected active voting after resume, got %v", resumed.Status)
	}
}

func TestCompleteBlockedByOpenVoting(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.seedVoting(entities.VotingStatusActive)

	_, err := f.assemblies.Complete(context.Background(), "assembly-1")
	if !errors.Is(err, domainerrors.ErrVotingsPending) {
		t.Fatalf("expected ErrVotingsPending, got %v", err)
	}
}

func TestCompleteChecksOutOpenAttendances(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.checkIn(t, "apt-101")

	assembly, err := f.assemblies.Complete(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if assembly.Status != entities.AssemblyStatusCompleted {
		t.Fatalf("expected completed status, got %v", assembly.Status)
	}

	attendance, found, err := f.store.GetAttendance(context.Background(), "assembly-1", "apt-101")
	if err != nil || !found {
		t.Fatalf("load attendance failed: found=%v err=%v", found, err)
	}
	if attendance.CheckOutTime == nil || !attendance.CheckOutTime.Equal(now) {
		t.Fatalf("expected attendance checked out at completion, got %+v", attendance)
	}
}

func TestCancelCascadesToVotings(t *testing.T) {
	now := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedAssembly(entities.AssemblyStatusInProgress)
	f.seedVoting(entities.VotingStatusActive)

	assembly, err := f.assemblies.Cancel(context.Background(), "assembly-1")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if assembly.Status != entities.AssemblyStatusCancelled {
		t.Fatalf("expected cancelled status, got %v", assembly.Status)
	}

	voting, err := f.store.GetVoting(context.Background(), "voting-1")
	if err != nil {
		t.Fatalf("load voting failed: %v", err)
	}
	if voting.Status != entities.VotingStatusCancelled {
		t.Fatalf("expected voting cancelled with assembly, got %v", voting.Status)
	}
}

// Full session walk-through for a three-property complex: schedule, start,
// check-ins crossing quorum, one voting per agenda item, close, complete.
func TestAssemblyLifecycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	f := newFixture(now)
	f.seedComplex()

	assembly, err := f.assemblies.Schedule(ctx, commands.ScheduleAssemblyCommand{
		ComplexID:     "complex-1",
		Type:          entities.AssemblyTypeOrdinary,
		Title:         "Annual ordinary assembly",
		ScheduledDate: now,
		Agenda:        []string{"Budget approval", "Facade renovation"},
	})
	if err != nil {
		t.Fatalf("schedule failed: %v", err)
	}
	if _, err := f.assemblies.Start(ctx, assembly.AssemblyID); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	for _, propertyID := range []string{"apt-101", "apt-102", "apt-103"} {
		_, err := f.attendance.CheckIn(ctx, commands.CheckInCommand{
			AssemblyID: assembly.AssemblyID,
			PropertyID: propertyID,
			UserID:     "user-" + propertyID,
			Kind:       entities.AttendanceKindPresent,
		})
		if err != nil {
			t.Fatalf("check-in %s failed: %v", propertyID, err)
		}
	}

	quorum, err := f.quorum.Status(ctx, assembly.AssemblyID)
	if err != nil {
		t.Fatalf("quorum status failed: %v", err)
	}
	if !quorum.QuorumMet || quorum.QuorumPercentage < 99.9 {
		t.Fatalf("expected full quorum, got %+v", quorum)
	}

	voting, err := f.assemblies.OpenVoting(ctx, commands.OpenVotingCommand{
		AssemblyID:  assembly.AssemblyID,
		AgendaIndex: 0,
		Type:        entities.VotingTypeSimpleMajority,
	})
	if err != nil {
		t.Fatalf("open voting failed: %v", err)
	}

	ballots := map[string]string{
		"apt-101": "APPROVE",
		"apt-102": "APPROVE",
		"apt-103": "REJECT",
	}
	for propertyID, option := range ballots {
		_, err := f.sessions.CastVote(ctx, commands.CastVoteCommand{
			VotingID:    voting.VotingID,
			PropertyID:  propertyID,
			UserID:      "user-" + propertyID,
			OptionValue: option,
		})
		if err != nil {
			t.Fatalf("cast %s failed: %v", propertyID, err)
		}
	}

	closed, err := f.sessions.Close(ctx, voting.VotingID)
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.Result == nil || !closed.Result.Approved || closed.Result.LeadingOption != "APPROVE" {
		t.Fatalf("expected 0.8 APPROVE to pass, got %+v", closed.Result)
	}
	if closed.Result.TotalVotes != 3 {
		t.Fatalf("expected three ballots counted, got %d", closed.Result.TotalVotes)
	}

	completed, err := f.assemblies.Complete(ctx, assembly.AssemblyID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != entities.AssemblyStatusCompleted {
		t.Fatalf("expected completed assembly, got %v", completed.Status)
	}

	wantEvents := map[string]int{
		"assembly.started":        1,
		"assembly.quorum_reached": 1,
		"assembly.voting_opened":  1,
		"assembly.voting_closed":  1,
		"assembly.completed":      1,
	}
	counts := map[string]int{}
	for _, eventType := range pendingEventTypes(t, f.store) {
		counts[eventType]++
	}
	for eventType, want := range wantEvents {
		if counts[eventType] != want {
			t.Fatalf("expected %d %s events, got %d (all: %v)", want, eventType, counts[eventType], counts)
		}
	}
}
