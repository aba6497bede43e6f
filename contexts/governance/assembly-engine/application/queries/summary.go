package queries

import (
	"context"

	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	"asamblea/contexts/governance/assembly-engine/ports"
)

// AssemblySummary is the read model handed to minutes generation: the
// assembly record, the quorum snapshot, every attendance row, and every
// voting with its frozen result.
type AssemblySummary struct {
	Assembly   entities.Assembly
	Quorum     entities.QuorumStatus
	Attendance []entities.Attendance
	Votings    []entities.Voting
}

type SummaryUseCase struct {
	Assemblies ports.AssemblyRepository
	Attendance ports.AttendanceRepository
	Votings    ports.VotingRepository
	Quorum     QuorumUseCase
}

func (uc SummaryUseCase) Summary(ctx context.Context, assemblyID string) (AssemblySummary, error) {
	assemblyID = trimmedID(assemblyID)
	if assemblyID == "" {
		return AssemblySummary{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return AssemblySummary{}, err
	}
	quorum, err := uc.Quorum.Status(ctx, assemblyID)
	if err != nil {
		return AssemblySummary{}, err
	}
	attendance, err := uc.Attendance.ListAttendance(ctx, assemblyID)
	if err != nil {
		return AssemblySummary{}, err
	}
	votings, err := uc.Votings.ListVotings(ctx, assemblyID)
	if err != nil {
		return AssemblySummary{}, err
	}

	return AssemblySummary{
		Assembly:   assembly,
		Quorum:     quorum,
		Attendance: attendance,
		Votings:    votings,
	}, nil
}
