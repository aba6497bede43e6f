package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "asamblea/contexts/governance/assembly-engine/application"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	"asamblea/contexts/governance/assembly-engine/ports"
)

// QuorumUseCase computes quorum by folding over the live attendance rows and
// registry coefficients on every read. Nothing is cached: a concurrent
// check-in or check-out is reflected by the next read without any counter
// reconciliation.
type QuorumUseCase struct {
	Assemblies ports.AssemblyRepository
	Attendance ports.AttendanceRepository
	Registry   ports.OwnershipRegistry
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc QuorumUseCase) Status(ctx context.Context, assemblyID string) (entities.QuorumStatus, error) {
	logger := application.ResolveLogger(uc.Logger)
	assemblyID = strings.TrimSpace(assemblyID)
	if assemblyID == "" {
		return entities.QuorumStatus{}, domainerrors.ErrInvalidInput
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return entities.QuorumStatus{}, err
	}

	properties, err := uc.Registry.GetAllCoefficients(ctx, assembly.ComplexID)
	if err != nil {
		return entities.QuorumStatus{}, err
	}
	if !entities.ValidCoefficientSet(properties) {
		logger.Error("coefficient set rejected",
			"event", "assembly_quorum_coefficients_invalid",
			"module", "governance/assembly-engine",
			"layer", "application",
			"assembly_id", assemblyID,
			"complex_id", assembly.ComplexID,
			"property_count", len(properties),
		)
		return entities.QuorumStatus{}, domainerrors.ErrCoefficientSum
	}

	coefficients := make(map[string]float64, len(properties))
	for _, property := range properties {
		coefficients[property.PropertyID] = property.Coefficient
	}

	rows, err := uc.Attendance.ListAttendance(ctx, assemblyID)
	if err != nil {
		return entities.QuorumStatus{}, err
	}

	present := 0.0
	presentCount := 0
	for _, attendance := range rows {
		if !attendance.Open() {
			continue
		}
		coefficient, ok := coefficients[attendance.PropertyID]
		if !ok {
			continue
		}
		present += coefficient
		presentCount++
	}

	total := entities.TotalCoefficient(properties)
	threshold := assembly.QuorumThreshold
	if threshold <= 0 {
		threshold = entities.DefaultQuorumThreshold
	}

	status := entities.QuorumStatus{
		AssemblyID:         assemblyID,
		PresentCount:       presentCount,
		TotalProperties:    len(properties),
		PresentCoefficient: present,
		TotalCoefficient:   total,
		QuorumPercentage:   present / total * 100,
		RequiredQuorum:     threshold,
		QuorumMet:          present/total >= threshold,
		ComputedAt:         uc.now(),
	}
	return status, nil
}

func (uc QuorumUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
