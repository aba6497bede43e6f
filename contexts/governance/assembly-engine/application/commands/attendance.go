package commands

import (
	"context"
	"errors"
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

// CheckInCommand registers one property's presence at an assembly.
type CheckInCommand struct {
	AssemblyID      string
	PropertyID      string
	UserID          string
	Kind            entities.AttendanceKind
	ProxyHolderName string
}

// CheckInResult flags replays so the transport layer can report duplicate
// check-in attempts (network retries) as the informational outcome they are.
type CheckInResult struct {
	Attendance       entities.Attendance
	AlreadyCheckedIn bool
}

// AttendanceUseCase tracks check-in/check-out and fires QuorumReached when a
// check-in pushes the present coefficient across the assembly threshold.
type AttendanceUseCase struct {
	Assemblies ports.AssemblyRepository
	Attendance ports.AttendanceRepository
	Registry   ports.OwnershipRegistry
	Quorum     queries.QuorumUseCase
	Outbox     ports.OutboxWriter
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

// CheckIn is idempotent per (assemblyID, propertyID): a duplicate attempt
// returns the existing record instead of erroring. When a different user
// re-checks-in for the same property, the attendee on the record is updated;
// the property, not the person, is what counts toward quorum.
func (uc AttendanceUseCase) CheckIn(ctx context.Context, cmd CheckInCommand) (CheckInResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID := strings.TrimSpace(cmd.AssemblyID)
	propertyID := strings.TrimSpace(cmd.PropertyID)
	userID := strings.TrimSpace(cmd.UserID)

	if assemblyID == "" || propertyID == "" || userID == "" || !validAttendanceKind(cmd.Kind) {
		logger.Warn("check-in validation failed",
			"event", "assembly_checkin_validation_failed",
			"module", "governance/assembly-engine",
			"layer", "application",
			"assembly_id", assemblyID,
			"property_id", propertyID,
		)
		return CheckInResult{}, domainerrors.ErrInvalidInput
	}
	if cmd.Kind == entities.AttendanceKindProxy && strings.TrimSpace(cmd.ProxyHolderName) == "" {
		return CheckInResult{}, domainerrors.ErrInvalidProxy
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return CheckInResult{}, err
	}
	if assembly.Status != entities.AssemblyStatusScheduled && assembly.Status != entities.AssemblyStatusInProgress {
		return CheckInResult{}, domainerrors.ErrAssemblyNotOpen
	}
	if _, err := uc.Registry.GetCoefficient(ctx, assembly.ComplexID, propertyID); err != nil {
		return CheckInResult{}, err
	}

	if existing, found, err := uc.Attendance.GetAttendance(ctx, assemblyID, propertyID); err != nil {
		return CheckInResult{}, err
	} else if found {
		if existing.AttendeeUserID != userID {
			existing.AttendeeUserID = userID
			if err := uc.Attendance.UpdateAttendance(ctx, existing); err != nil {
				return CheckInResult{}, err
			}
		}
		logger.Info("duplicate check-in returned existing record",
			"event", "assembly_checkin_replayed",
			"module", "governance/assembly-engine",
			"layer", "application",
			"assembly_id", assemblyID,
			"property_id", propertyID,
			"attendance_id", existing.AttendanceID,
		)
		return CheckInResult{Attendance: existing, AlreadyCheckedIn: true}, nil
	}

	quorumBefore, err := uc.Quorum.Status(ctx, assemblyID)
	if err != nil {
		return CheckInResult{}, err
	}

	now := uc.now()
	attendanceID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return CheckInResult{}, err
	}
	attendance := entities.Attendance{
		AttendanceID:    attendanceID,
		AssemblyID:      assemblyID,
		PropertyID:      propertyID,
		AttendeeUserID:  userID,
		Kind:            cmd.Kind,
		ProxyHolderName: strings.TrimSpace(cmd.ProxyHolderName),
		CheckInTime:     now,
	}
	if err := uc.Attendance.CreateAttendance(ctx, attendance); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyCheckedIn) {
			// Lost the race to a concurrent check-in for the same property;
			// first committer wins and this caller gets the stored row.
			existing, found, getErr := uc.Attendance.GetAttendance(ctx, assemblyID, propertyID)
			if getErr != nil {
				return CheckInResult{}, getErr
			}
			if found {
				return CheckInResult{Attendance: existing, AlreadyCheckedIn: true}, nil
			}
		}
		return CheckInResult{}, err
	}

	quorumAfter, err := uc.Quorum.Status(ctx, assemblyID)
	if err != nil {
		return CheckInResult{}, err
	}
	if !quorumBefore.QuorumMet && quorumAfter.QuorumMet {
		if err := uc.appendEvent(ctx, domainevents.QuorumReached{
			AssemblyID: assemblyID,
			Percentage: quorumAfter.QuorumPercentage,
		}, now); err != nil {
			return CheckInResult{}, err
		}
	}

	logger.Info("property checked in",
		"event", "assembly_checkin_recorded",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assemblyID,
		"property_id", propertyID,
		"attendance_id", attendance.AttendanceID,
		"kind", string(attendance.Kind),
		"present_coefficient", quorumAfter.PresentCoefficient,
		"quorum_met", quorumAfter.QuorumMet,
	)
	return CheckInResult{Attendance: attendance}, nil
}

// CheckOut closes the attendance window for a property. Checking out an
// already checked-out property returns the record unchanged.
func (uc AttendanceUseCase) CheckOut(ctx context.Context, assemblyID string, propertyID string) (entities.Attendance, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID = strings.TrimSpace(assemblyID)
	propertyID = strings.TrimSpace(propertyID)
	if assemblyID == "" || propertyID == "" {
		return entities.Attendance{}, domainerrors.ErrInvalidInput
	}

	attendance, found, err := uc.Attendance.GetAttendance(ctx, assemblyID, propertyID)
	if err != nil {
		return entities.Attendance{}, err
	}
	if !found {
		return entities.Attendance{}, domainerrors.ErrNotCheckedIn
	}
	if !attendance.Open() {
		return attendance, nil
	}

	now := uc.now()
	attendance.CheckOutTime = &now
	if err := uc.Attendance.UpdateAttendance(ctx, attendance); err != nil {
		return entities.Attendance{}, err
	}

	logger.Info("property checked out",
		"event", "assembly_checkout_recorded",
		"module", "governance/assembly-engine",
		"layer", "application",
		"assembly_id", assemblyID,
		"property_id", propertyID,
		"attendance_id", attendance.AttendanceID,
	)
	return attendance, nil
}

func (uc AttendanceUseCase) appendEvent(ctx context.Context, event domainevents.Event, occurredAt time.Time) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
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

func (uc AttendanceUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func validAttendanceKind(kind entities.AttendanceKind) bool {
	switch kind {
	case entities.AttendanceKindPresent, entities.AttendanceKindProxy, entities.AttendanceKindVirtual:
		return true
	default:
		return false
	}
}
