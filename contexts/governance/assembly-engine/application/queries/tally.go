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

// TallyUseCase aggregates cast votes by option, weighted by the coefficient
// snapshot captured at cast time, and applies the voting-type approval rule.
type TallyUseCase struct {
	Assemblies ports.AssemblyRepository
	Votes      ports.VoteRepository
	Registry   ports.OwnershipRegistry
	Clock      ports.Clock
	Logger     *slog.Logger
}

// Compute folds the current vote rows for the voting into a TallyResult. The
// caller decides whether the result is frozen (close) or a live preview.
func (uc TallyUseCase) Compute(ctx context.Context, voting entities.Voting) (entities.TallyResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	votes, err := uc.Votes.ListVotes(ctx, voting.VotingID)
	if err != nil {
		return entities.TallyResult{}, err
	}

	assembly, err := uc.Assemblies.GetAssembly(ctx, voting.AssemblyID)
	if err != nil {
		return entities.TallyResult{}, err
	}
	properties, err := uc.Registry.GetAllCoefficients(ctx, assembly.ComplexID)
	if err != nil {
		return entities.TallyResult{}, err
	}
	if !entities.ValidCoefficientSet(properties) {
		return entities.TallyResult{}, domainerrors.ErrCoefficientSum
	}

	perOption := make(map[string]entities.OptionTally)
	totalCast := 0.0
	for _, vote := range votes {
		tally := perOption[vote.OptionValue]
		tally.Count++
		tally.CoefficientSum += vote.CoefficientWeight
		perOption[vote.OptionValue] = tally
		totalCast += vote.CoefficientWeight
	}
	if totalCast > 0 {
		for option, tally := range perOption {
			tally.Percentage = tally.CoefficientSum / totalCast * 100
			perOption[option] = tally
		}
	}

	result := entities.TallyResult{
		VotingID:                voting.VotingID,
		PerOption:               perOption,
		TotalVotes:              len(votes),
		TotalCoefficientCast:    totalCast,
		TotalComplexCoefficient: entities.TotalCoefficient(properties),
		LeadingOption:           leadingOption(perOption),
		ComputedAt:              uc.now(),
	}
	result.Approved = approved(voting, result)

	logger.Info("tally computed",
		"event", "assembly_tally_computed",
		"module", "governance/assembly-engine",
		"layer", "application",
		"voting_id", voting.VotingID,
		"voting_type", string(voting.Type),
		"total_votes", result.TotalVotes,
		"total_coefficient_cast", result.TotalCoefficientCast,
		"leading_option", result.LeadingOption,
		"approved", result.Approved,
	)
	return result, nil
}

// Results returns the frozen result of a closed voting, or a live preview
// while the voting is active. Pending and cancelled votings have no tally.
func (uc TallyUseCase) Results(ctx context.Context, voting entities.Voting) (entities.TallyResult, error) {
	switch voting.Status {
	case entities.VotingStatusClosed:
		if voting.Result != nil {
			return *voting.Result, nil
		}
		return uc.Compute(ctx, voting)
	case entities.VotingStatusActive:
		return uc.Compute(ctx, voting)
	default:
		return entities.TallyResult{}, domainerrors.ErrVotingNotActive
	}
}

// leadingOption picks the option with the strictly greatest coefficient sum.
// Equal sums mean no leader: an ambiguous outcome must not silently approve.
func leadingOption(perOption map[string]entities.OptionTally) string {
	leader := ""
	best := 0.0
	tied := false
	for option, tally := range perOption {
		switch {
		case tally.CoefficientSum > best:
			leader = option
			best = tally.CoefficientSum
			tied = false
		case tally.CoefficientSum == best && leader != "":
			tied = true
		}
	}
	if tied {
		return ""
	}
	return leader
}

func approved(voting entities.Voting, result entities.TallyResult) bool {
	if result.TotalCoefficientCast <= 0 || result.LeadingOption == "" {
		return false
	}
	lead := result.PerOption[result.LeadingOption].CoefficientSum

	switch voting.Type {
	case entities.VotingTypeSimpleMajority:
		return lead > 0.5*result.TotalCoefficientCast
	case entities.VotingTypeQualifiedMajority:
		threshold := voting.ApprovalThreshold
		if threshold <= 0 {
			threshold = entities.DefaultQualifiedThreshold
		}
		return lead >= threshold*result.TotalCoefficientCast
	case entities.VotingTypeUnanimous:
		return len(result.PerOption) == 1
	case entities.VotingTypeCoefficientBased:
		threshold := voting.ApprovalThreshold
		if threshold <= 0 {
			threshold = entities.DefaultQuorumThreshold
		}
		return lead >= threshold*result.TotalComplexCoefficient
	default:
		return false
	}
}

func (uc TallyUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// trimmedID normalizes identifiers arriving from transport.
func trimmedID(value string) string {
	return strings.TrimSpace(value)
}
