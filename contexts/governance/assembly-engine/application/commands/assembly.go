package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "asamblea/contexts/governance/assembly-engine/application"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	domainevents "asamblea/contexts/governance/assembly-engine/domain/events"
	"asamblea/contexts/governance/assembly-engine/ports"
)

// ScheduleAssemblyCommand creates an assembly in SCHEDULED state.
type ScheduleAssemblyCommand struct {
	ComplexID       string
	Type            entities.AssemblyType
	Title           string
	Description     string
	Location        string
	ScheduledDate   time.Time
	QuorumThreshold float64
	Agenda          []string
}

// OpenVotingCommand opens (or resumes opening) the voting for one agenda
// point of an in-progress assembly.
type OpenVotingCommand struct {
	AssemblyID        string
	AgendaIndex       int
	Type              entities.VotingType
	ApprovalThreshold float64
	Options           []string
}

// AssemblyUseCase coordinates the assembly lifecycle:
// SCHEDULED -> IN_PROGRESS -> COMPLETED, with cancel allowed from
// SCHEDULED or IN_PROGRESS. Voting sessions are delegated to Sessions.
type AssemblyUseCase struct {
	Assemblies ports.AssemblyRepository
	Attendance ports.AttendanceRepository
	Votings    ports.VotingRepository
	Sessions   VotingUseCase
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// Schedule registers a new assembly. The quorum threshold defaults to the
// legal 51% when the caller does not configure one.
func (uc AssemblyUseCase) Schedule(ctx context.Context, cmd ScheduleAssemblyCommand) (entities.Assembly, error) {
	logger := application.ResolveLogger(uc.Logger)
	complexID := strings.TrimSpace(cmd.ComplexID)
	title := strings.TrimSpace(cmd.Title)

	if complexID == "" || title == "" || !validAssemblyType(cmd.Type) || cmd.ScheduledDate.IsZero() {
		return entities.Assembly{}, domainerrors.ErrInvalidInput
	}
	if cmd.QuorumThreshold < 0 || cmd.QuorumThreshold > 1 {
		return entities.Assembly{}, domainerrors.ErrInvalidInput
	}

	threshold := cmd.QuorumThreshold
	if threshold == 0 {
		threshold = entities.DefaultQuorumThreshold
	}

	assemblyID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Assembly{}, err
	}
	now := uc.now()
	assembly := entities.Assembly{
		AssemblyID:      assemblyID,
		ComplexID:       complexID,
		Type:            cmd.Type,
		Status:          entities.AssemblyStatusScheduled,
		Title:           title,
		Description:     strings.TrimSpace(cmd.Description),
		Location:        strings.TrimSpace(cmd.Location),
		ScheduledDate:   cmd.ScheduledDate.UTC(),
		QuorumThreshold: threshold,
		Agenda:          cmd.Agenda,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Assemblies.SaveAssembly(ctx, assembly); err != nil {
		return entities.Assembly{}, err
	}

	logger.Info("assembly scheduled",
		"event", "assembly_scheduled",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assembly.AssemblyID,
		"complex_id", assembly.ComplexID,
		"assembly_type", string(assembly.Type),
		"quorum_threshold", assembly.QuorumThreshold,
	)
	return assembly, nil
}

// Start moves a scheduled assembly into session. Check-ins are accepted
// while SCHEDULED too, so early arrivals already count when the session
// formally opens.
func (uc AssemblyUseCase) Start(ctx context.Context, assemblyID string) (entities.Assembly, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID = strings.TrimSpace(assemblyID)
	if assemblyID == "" {
		return entities.Assembly{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	if assembly.Status != entities.AssemblyStatusScheduled {
		return entities.Assembly{}, domainerrors.ErrInvalidTransition
	}

	now := uc.now()
	assembly.Status = entities.AssemblyStatusInProgress
	assembly.UpdatedAt = now
	if err := uc.Assemblies.SaveAssembly(ctx, assembly); err != nil {
		return entities.Assembly{}, err
	}
	if err := uc.appendEvent(ctx, domainevents.AssemblyStarted{AssemblyID: assemblyID}, now); err != nil {
		return entities.Assembly{}, err
	}

	logger.Info("assembly started",
		"event", "assembly_started",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assemblyID,
	)
	return assembly, nil
}

// OpenVoting creates the voting for the agenda point if none exists yet and
// activates it. Activation is quorum-gated, so the call surfaces
// ErrQuorumNotMet without leaving more than a PENDING voting behind; retrying
// after more check-ins resumes on the same record.
func (uc AssemblyUseCase) OpenVoting(ctx context.Context, cmd OpenVotingCommand) (entities.Voting, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID := strings.TrimSpace(cmd.AssemblyID)
	if assemblyID == "" || !validVotingType(cmd.Type) {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}
	if cmd.ApprovalThreshold < 0 || cmd.ApprovalThreshold > 1 {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return entities.Voting{}, err
	}
	if assembly.Status != entities.AssemblyStatusInProgress {
		return entities.Voting{}, domainerrors.ErrAssemblyNotOpen
	}
	if cmd.AgendaIndex < 0 || cmd.AgendaIndex >= len(assembly.Agenda) {
		return entities.Voting{}, domainerrors.ErrInvalidInput
	}

	voting, found, err := uc.Votings.GetVotingByAgenda(ctx, assemblyID, cmd.AgendaIndex)
	if err != nil {
		return entities.Voting{}, err
	}
	if found {
		if voting.Terminal() {
			return entities.Voting{}, domainerrors.ErrInvalidTransition
		}
		if voting.Status == entities.VotingStatusActive {
			return voting, nil
		}
	} else {
		options := normalizeOptions(cmd.Options)
		if options == nil {
			options = append([]string(nil), entities.DefaultVotingOptions...)
		}
		if len(options) < 2 {
			return entities.Voting{}, domainerrors.ErrInvalidInput
		}

		votingID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.Voting{}, err
		}
		now := uc.now()
		voting = entities.Voting{
			VotingID:          votingID,
			AssemblyID:        assemblyID,
			AgendaIndex:       cmd.AgendaIndex,
			Type:              cmd.Type,
			ApprovalThreshold: defaultApprovalThreshold(cmd.Type, cmd.ApprovalThreshold),
			Status:            entities.VotingStatusPending,
			Options:           options,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
			return entities.Voting{}, err
		}
		logger.Info("voting created for agenda point",
			"event", "assembly_voting_created",
			"module", "governance/assembly-engine",
			"layer", "application",
			"voting_id", voting.VotingID,
			"assembly_id", assemblyID,
			"agenda_index", cmd.AgendaIndex,
			"voting_type", string(voting.Type),
		)
	}

	return uc.Sessions.Activate(ctx, voting.VotingID)
}

// Complete closes the assembly. Every voting must have reached a terminal
// state first; open attendance windows are checked out as the session ends.
func (uc AssemblyUseCase) Complete(ctx context.Context, assemblyID string) (entities.Assembly, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID = strings.TrimSpace(assemblyID)
	if assemblyID == "" {
		return entities.Assembly{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	if assembly.Status != entities.AssemblyStatusInProgress {
		return entities.Assembly{}, domainerrors.ErrInvalidTransition
	}

	votings, err := uc.Votings.ListVotings(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	for _, voting := range votings {
		if !voting.Terminal() {
			logger.Warn("assembly completion blocked by open voting",
				"event", "assembly_completion_blocked",
				"module", "governance/assembly-engine",
				"layer", "application",
				"assembly_id", assemblyID,
				"voting_id", voting.VotingID,
				"voting_status", string(voting.Status),
			)
			return entities.Assembly{}, domainerrors.ErrVotingsPending
		}
	}

	now := uc.now()
	attendance, err := uc.Attendance.ListAttendance(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	for _, record := range attendance {
		if !record.Open() {
			continue
		}
		checkout := now
		record.CheckOutTime = &checkout
		if err := uc.Attendance.UpdateAttendance(ctx, record); err != nil {
			return entities.Assembly{}, err
		}
	}

	assembly.Status = entities.AssemblyStatusCompleted
	assembly.UpdatedAt = now
	if err := uc.Assemblies.SaveAssembly(ctx, assembly); err != nil {
		return entities.Assembly{}, err
	}
	if err := uc.appendEvent(ctx, domainevents.AssemblyCompleted{AssemblyID: assemblyID}, now); err != nil {
		return entities.Assembly{}, err
	}

	logger.Info("assembly completed",
		"event", "assembly_completed",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assemblyID,
		"votings_held", len(votings),
	)
	return assembly, nil
}

// Cancel aborts a scheduled or in-progress assembly. Pending and active
// votings under it are cancelled too; closed results stay frozen.
func (uc AssemblyUseCase) Cancel(ctx context.Context, assemblyID string) (entities.Assembly, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID = strings.TrimSpace(assemblyID)
	if assemblyID == "" {
		return entities.Assembly{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	if assembly.Status != entities.AssemblyStatusScheduled && assembly.Status != entities.AssemblyStatusInProgress {
		return entities.Assembly{}, domainerrors.ErrInvalidTransition
	}

	votings, err := uc.Votings.ListVotings(ctx, assemblyID)
	if err != nil {
		return entities.Assembly{}, err
	}
	now := uc.now()
	for _, voting := range votings {
		if voting.Terminal() {
			continue
		}
		voting.Status = entities.VotingStatusCancelled
		voting.EndTime = &now
		voting.UpdatedAt = now
		if err := uc.Votings.SaveVoting(ctx, voting); err != nil {
			return entities.Assembly{}, err
		}
	}

	assembly.Status = entities.AssemblyStatusCancelled
	assembly.UpdatedAt = now
	if err := uc.Assemblies.SaveAssembly(ctx, assembly); err != nil {
		return entities.Assembly{}, err
	}
	if err := uc.appendEvent(ctx, domainevents.AssemblyCancelled{AssemblyID: assemblyID}, now); err != nil {
		return entities.Assembly{}, err
	}

	logger.Info("assembly cancelled",
		"event", "assembly_cancelled",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assemblyID,
	)
	return assembly, nil
}

func (uc AssemblyUseCase) appendEvent(ctx context.Context, event domainevents.Event, occurredAt time.Time) error {
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

func (uc AssemblyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validAssemblyType(kind entities.AssemblyType) bool {
	switch kind {
	case entities.AssemblyTypeOrdinary, entities.AssemblyTypeExtraordinary, entities.AssemblyTypeCommittee:
		return true
	default:
		return false
	}
}

func validVotingType(kind entities.VotingType) bool {
	switch kind {
	case entities.VotingTypeSimpleMajority, entities.VotingTypeQualifiedMajority,
		entities.VotingTypeUnanimous, entities.VotingTypeCoefficientBased:
		return true
	default:
		return false
	}
}

func defaultApprovalThreshold(kind entities.VotingType, threshold float64) float64 {
	if threshold > 0 {
		return threshold
	}
	switch kind {
	case entities.VotingTypeQualifiedMajority:
		return entities.DefaultQualifiedThreshold
	case entities.VotingTypeCoefficientBased:
		return entities.DefaultQuorumThreshold
	default:
		return 0
	}
}

func normalizeOptions(options []string) []string {
	if len(options) == 0 {
		return nil
	}
	normalized := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			continue
		}
		if _, dup := seen[option]; dup {
			continue
		}
		seen[option] = struct{}{}
		normalized = append(normalized, option)
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
