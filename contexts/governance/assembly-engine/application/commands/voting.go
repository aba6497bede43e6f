package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "asamblea/contexts/governance/assembly-engine/application"
	"asamblea/contexts/governance/assembly-engine/application/queries"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	domainevents "asamblea/contexts/governance/assembly-engine/domain/events"
	"asamblea/contexts/governance/assembly-engine/ports"
)

// CastVoteCommand is one property's ballot for one voting.
type CastVoteCommand struct {
	VotingID    string
	PropertyID  string
	UserID      string
	OptionValue string
}

// CastVoteResult marks whether the submission replaced an earlier ballot
// from the same property (last-write-wins while the voting is active).
type CastVoteResult struct {
	Vote      entities.Vote
	WasUpdate bool
}

// VotingUseCase drives the voting session state machine:
// PENDING -> ACTIVE -> CLOSED, with cancel allowed from PENDING or ACTIVE.
// CLOSED and CANCELLED are terminal.
type VotingUseCase struct {
	Assemblies ports.AssemblyRepository
	Votings    ports.VotingRepository
	Votes      ports.VoteRepository
	Attendance ports.AttendanceRepository
	Registry   ports.OwnershipRegistry
	Quorum     queries.QuorumUseCase
	Tally      queries.TallyUseCase
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Activate opens a pending voting for ballots. Quorum must hold at the
// moment of activation.
func (uc VotingUseCase) Activate(ctx context.Context, votingID string) (entities.Voting, error) {
	logger := application.ResolveLogger(uc.Logger)
	votingID = strings.TrimSpace(votingID)
	if votingID == "" {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}

	voting, err := uc.Votings.GetVoting(ctx, votingID)
	if err != nil {
		return entities.Voting{}, err
	}
	if voting.Status != entities.VotingStatusPending {
		return entities.Voting{}, domainerrors.ErrInvalidTransition
	}

	quorum, err := uc.Quorum.Status(ctx, voting.AssemblyID)
	if err != nil {
		return entities.Voting{}, err
	}
	if !quorum.QuorumMet {
		logger.Warn("voting activation blocked by quorum",
			"event", "assembly_voting_quorum_not_met",
			"module", "governance/assembly-engine",
			"layer", "application",
			"voting_id", votingID,
			"assembly_id", voting.AssemblyID,
			"quorum_percentage", quorum.QuorumPercentage,
			"required_quorum", quorum.RequiredQuorum,
		)
		return entities.Voting{}, domainerrors.ErrQuorumNotMet
	}

	now := uc.now()
	voting.Status = entities.VotingStatusActive
	voting.StartTime = &now
	voting.UpdatedAt = now
	if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
		return entities.Voting{}, err
	}
	if err := uc.appendEvent(ctx, domainevents.VotingOpened{
		VotingID:    voting.VotingID,
		AssemblyID:  voting.AssemblyID,
		AgendaIndex: voting.AgendaIndex,
	}, now); err != nil {
		return entities.Voting{}, err
	}

	logger.Info("voting activated",
		"event", "assembly_voting_activated",
		"module", "governance/assembly-engine",
		"layer", "application",
		"voting_id", voting.VotingID,
		"assembly_id", voting.AssemblyID,
		"agenda_index", voting.AgendaIndex,
	)
	return voting, nil
}

// CastVote upserts the ballot for (votingID, propertyID). Eligibility is
// gated on an attendance record for the voting's assembly: a property that
// never checked in cannot vote. The ownership coefficient is snapshotted
// onto the vote at cast time.
func (uc VotingUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	votingID := strings.TrimSpace(cmd.VotingID)
	propertyID := strings.TrimSpace(cmd.PropertyID)
	userID := strings.TrimSpace(cmd.UserID)
	option := strings.TrimSpace(cmd.OptionValue)

	if votingID == "" || propertyID == "" || userID == "" || option == "" {
		return CastVoteResult{}, domainerrors.ErrInvalidInput
	}

	voting, err := uc.Votings.GetVoting(ctx, votingID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if voting.Status != entities.VotingStatusActive {
		return CastVoteResult{}, domainerrors.ErrVotingNotActive
	}
	if !voting.HasOption(option) {
		return CastVoteResult{}, domainerrors.ErrInvalidOption
	}

	if _, found, err := uc.Attendance.GetAttendance(ctx, voting.AssemblyID, propertyID); err != nil {
		return CastVoteResult{}, err
	} else if !found {
		logger.Warn("vote rejected for property without attendance",
			"event", "assembly_vote_not_eligible",
			"module", "governance/assembly-engine",
			"layer", "application",
			"voting_id", votingID,
			"property_id", propertyID,
		)
		return CastVoteResult{}, domainerrors.ErrNotEligible
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, voting.AssemblyID)
	if err != nil {
		return CastVoteResult{}, err
	}
	coefficient, err := uc.Registry.GetCoefficient(ctx, assembly.ComplexID, propertyID)
	if err != nil {
		return CastVoteResult{}, err
	}

	_, hadPrior, err := uc.Votes.GetVoteByProperty(ctx, votingID, propertyID)
	if err != nil {
		return CastVoteResult{}, err
	}

	voteID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	stored, err := uc.Votes.UpsertVote(ctx, entities.Vote{
		VoteID:            voteID,
		VotingID:          votingID,
		PropertyID:        propertyID,
		AttendeeUserID:    userID,
		OptionValue:       option,
		CoefficientWeight: coefficient,
		CastAt:            uc.now(),
	})
	if err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote recorded",
		"event", "assembly_vote_recorded",
		"module", "governance/assembly-engine",
		"layer", "application",
		"voting_id", votingID,
		"property_id", propertyID,
		"option", option,
		"coefficient_weight", stored.CoefficientWeight,
		"was_update", hadPrior,
	)
	return CastVoteResult{Vote: stored, WasUpdate: hadPrior}, nil
}

// Close ends the ballot window, then computes and freezes the tally. The
// status flip commits before the tally read, so any cast that lands after it
// fails with VotingNotActive rather than being silently dropped or counted.
func (uc VotingUseCase) Close(ctx context.Context, votingID string) (entities.Voting, error) {
	logger := application.ResolveLogger(uc.Logger)
	votingID = strings.TrimSpace(votingID)
	if votingID == "" {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}

	voting, err := uc.Votings.GetVoting(ctx, votingID)
	if err != nil {
		return entities.Voting{}, err
	}
	if voting.Status != entities.VotingStatusActive {
		return entities.Voting{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	voting.Status = entities.VotingStatusClosed
	voting.EndTime = &now
	voting.UpdatedAt = now
	if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
		return entities.Voting{}, err
	}

	result, err := uc.Tally.Compute(ctx, voting)
	if err != nil {
		return entities.Voting{}, err
	}
	voting.Result = &result
	if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
		return entities.Voting{}, err
	}

	if err := uc.appendEvent(ctx, domainevents.VotingClosed{
		VotingID:   voting.VotingID,
		AssemblyID: voting.AssemblyID,
		Result:     result,
	}, now); err != nil {
		return entities.Voting{}, err
	}

	logger.Info("voting closed",
		"event", "assembly_voting_closed",
		"module", "governance/assembly-engine",
		"layer", "application",
		"voting_id", voting.VotingID,
		"assembly_id", voting.AssemblyID,
		"approved", result.Approved,
		"leading_option", result.LeadingOption,
		"total_coefficient_cast", result.TotalCoefficientCast,
	)
	return voting, nil
}

// Cancel discards a pending or active voting. Cast votes stay stored for
// audit but a cancelled voting is never tallied.
func (uc VotingUseCase) Cancel(ctx context.Context, votingID string) (entities.Voting, error) {
	logger := application.ResolveLogger(uc.Logger)
	votingID = strings.TrimSpace(votingID)
	if votingID == "" {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}

	voting, err := uc.Votings.GetVoting(ctx, votingID)
	if err != nil {
		return entities.Voting{}, err
	}
	if voting.Terminal() {
		return entities.Voting{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	voting.Status = entities.VotingStatusCancelled
	voting.EndTime = &now
	voting.UpdatedAt = now
	if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
		return entities.Voting{}, err
	}

	logger.Info("voting cancelled",
		"event", "assembly_voting_cancelled",
		"module", "governance/assembly-engine",
		"layer", "application",
		"voting_id", voting.VotingID,
		"assembly_id", voting.AssemblyID,
	)
	return voting, nil
}

func (uc VotingUseCase) appendEvent(ctx context.Context, event domainevents.Event, occurredAt time.Time) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newEngineEnvelope(eventID, event, occurredAt)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

func (uc VotingUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
