package httpadapter

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"asamblea/contexts/governance/assembly-engine/application/commands"
	"asamblea/contexts/governance/assembly-engine/application/queries"
	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	httptransport "asamblea/contexts/governance/assembly-engine/transport/http"
)

type Handler struct {
	Assemblies commands.AssemblyUseCase
	Attendance commands.AttendanceUseCase
	Sessions   commands.VotingUseCase
	Quorum     queries.QuorumUseCase
	Tally      queries.TallyUseCase
	Summaries  queries.SummaryUseCase
	Logger     *slog.Logger
}

func (h Handler) ScheduleAssemblyHandler(
	ctx context.Context,
	req httptransport.ScheduleAssemblyRequest,
) (httptransport.AssemblyResponse, error) {
	scheduledDate, err := time.Parse(time.RFC3339, req.ScheduledDate)
	if err != nil {
		return httptransport.AssemblyResponse{}, domainerrors.ErrInvalidInput
	}
	assembly, err := h.Assemblies.Schedule(ctx, commands.ScheduleAssemblyCommand{
		ComplexID:       req.ComplexID,
		Type:            entities.AssemblyType(req.Type),
		Title:           req.Title,
		Description:     req.Description,
		Location:        req.Location,
		ScheduledDate:   scheduledDate,
		QuorumThreshold: req.QuorumThreshold,
		Agenda:          req.Agenda,
	})
	if err != nil {
		return httptransport.AssemblyResponse{}, err
	}
	return mapAssembly(assembly), nil
}

func (h Handler) GetAssemblyHandler(ctx context.Context, assemblyID string) (httptransport.AssemblyResponse, error) {
	assembly, err := h.Assemblies.Assemblies.GetAssembly(ctx, assemblyID)
	if err != nil {
		return httptransport.AssemblyResponse{}, err
	}
	return mapAssembly(assembly), nil
}

func (h Handler) StartAssemblyHandler(ctx context.Context, assemblyID string) (httptransport.AssemblyResponse, error) {
	assembly, err := h.Assemblies.Start(ctx, assemblyID)
	if err != nil {
		return httptransport.AssemblyResponse{}, err
	}
	return mapAssembly(assembly), nil
}

func (h Handler) CompleteAssemblyHandler(ctx context.Context, assemblyID string) (httptransport.AssemblyResponse, error) {
	assembly, err := h.Assemblies.Complete(ctx, assemblyID)
	if err != nil {
		return httptransport.AssemblyResponse{}, err
	}
	return mapAssembly(assembly), nil
}

func (h Handler) CancelAssemblyHandler(ctx context.Context, assemblyID string) (httptransport.AssemblyResponse, error) {
	assembly, err := h.Assemblies.Cancel(ctx, assemblyID)
	if err != nil {
		return httptransport.AssemblyResponse{}, err
	}
	return mapAssembly(assembly), nil
}

func (h Handler) CheckInHandler(
	ctx context.Context,
	assemblyID string,
	userID string,
	req httptransport.CheckInRequest,
) (httptransport.AttendanceResponse, error) {
	result, err := h.Attendance.CheckIn(ctx, commands.CheckInCommand{
		AssemblyID:      assemblyID,
		PropertyID:      req.PropertyID,
		UserID:          userID,
		Kind:            entities.AttendanceKind(req.Kind),
		ProxyHolderName: req.ProxyHolderName,
	})
	if err != nil {
		return httptransport.AttendanceResponse{}, err
	}
	resp := mapAttendance(result.Attendance)
	resp.AlreadyCheckedIn = result.AlreadyCheckedIn
	return resp, nil
}

func (h Handler) CheckOutHandler(
	ctx context.Context,
	assemblyID string,
	req httptransport.CheckOutRequest,
) (httptransport.AttendanceResponse, error) {
	attendance, err := h.Attendance.CheckOut(ctx, assemblyID, req.PropertyID)
	if err != nil {
		return httptransport.AttendanceResponse{}, err
	}
	return mapAttendance(attendance), nil
}

func (h Handler) QuorumHandler(ctx context.Context, assemblyID string) (httptransport.QuorumResponse, error) {
	quorum, err := h.Quorum.Status(ctx, assemblyID)
	if err != nil {
		return httptransport.QuorumResponse{}, err
	}
	return mapQuorum(quorum), nil
}

func (h Handler) OpenVotingHandler(
	ctx context.Context,
	assemblyID string,
	req httptransport.OpenVotingRequest,
) (httptransport.VotingResponse, error) {
	voting, err := h.Assemblies.OpenVoting(ctx, commands.OpenVotingCommand{
		AssemblyID:        assemblyID,
		AgendaIndex:       req.AgendaIndex,
		Type:              entities.VotingType(req.Type),
		ApprovalThreshold: req.ApprovalThreshold,
		Options:           req.Options,
	})
	if err != nil {
		return httptransport.VotingResponse{}, err
	}
	return mapVoting(voting), nil
}

func (h Handler) CastVoteHandler(
	ctx context.Context,
	votingID string,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.VoteResponse, error) {
	result, err := h.Sessions.CastVote(ctx, commands.CastVoteCommand{
		VotingID:    votingID,
		PropertyID:  req.PropertyID,
		UserID:      userID,
		OptionValue: req.OptionValue,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return httptransport.VoteResponse{
		VoteID:            result.Vote.VoteID,
		VotingID:          result.Vote.VotingID,
		PropertyID:        result.Vote.PropertyID,
		AttendeeUserID:    result.Vote.AttendeeUserID,
		OptionValue:       result.Vote.OptionValue,
		CoefficientWeight: result.Vote.CoefficientWeight,
		CastAt:            httptransport.FormatTime(result.Vote.CastAt),
		WasUpdate:         result.WasUpdate,
	}, nil
}

func (h Handler) CloseVotingHandler(ctx context.Context, votingID string) (httptransport.VotingResponse, error) {
	voting, err := h.Sessions.Close(ctx, votingID)
	if err != nil {
		return httptransport.VotingResponse{}, err
	}
	return mapVoting(voting), nil
}

func (h Handler) CancelVotingHandler(ctx context.Context, votingID string) (httptransport.VotingResponse, error) {
	voting, err := h.Sessions.Cancel(ctx, votingID)
	if err != nil {
		return httptransport.VotingResponse{}, err
	}
	return mapVoting(voting), nil
}

func (h Handler) VotingResultsHandler(ctx context.Context, votingID string) (httptransport.TallyResponse, error) {
	voting, err := h.Sessions.Votings.GetVoting(ctx, votingID)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	result, err := h.Tally.Results(ctx, voting)
	if err != nil {
		return httptransport.TallyResponse{}, err
	}
	return mapTally(result), nil
}

func (h Handler) AssemblySummaryHandler(ctx context.Context, assemblyID string) (httptransport.AssemblySummaryResponse, error) {
	summary, err := h.Summaries.Summary(ctx, assemblyID)
	if err != nil {
		return httptransport.AssemblySummaryResponse{}, err
	}
	attendance := make([]httptransport.AttendanceResponse, 0, len(summary.Attendance))
	for _, record := range summary.Attendance {
		attendance = append(attendance, mapAttendance(record))
	}
	votings := make([]httptransport.VotingResponse, 0, len(summary.Votings))
	for _, voting := range summary.Votings {
		votings = append(votings, mapVoting(voting))
	}
	return httptransport.AssemblySummaryResponse{
		Assembly:   mapAssembly(summary.Assembly),
		Quorum:     mapQuorum(summary.Quorum),
		Attendance: attendance,
		Votings:    votings,
	}, nil
}

func mapAssembly(assembly entities.Assembly) httptransport.AssemblyResponse {
	return httptransport.AssemblyResponse{
		AssemblyID:      assembly.AssemblyID,
		ComplexID:       assembly.ComplexID,
		Type:            string(assembly.Type),
		Status:          string(assembly.Status),
		Title:           assembly.Title,
		Description:     assembly.Description,
		Location:        assembly.Location,
		ScheduledDate:   httptransport.FormatTime(assembly.ScheduledDate),
		QuorumThreshold: assembly.QuorumThreshold,
		Agenda:          assembly.Agenda,
	}
}

func mapAttendance(attendance entities.Attendance) httptransport.AttendanceResponse {
	return httptransport.AttendanceResponse{
		AttendanceID:    attendance.AttendanceID,
		AssemblyID:      attendance.AssemblyID,
		PropertyID:      attendance.PropertyID,
		AttendeeUserID:  attendance.AttendeeUserID,
		Kind:            string(attendance.Kind),
		ProxyHolderName: attendance.ProxyHolderName,
		CheckInTime:     httptransport.FormatTime(attendance.CheckInTime),
		CheckOutTime:    httptransport.FormatOptionalTime(attendance.CheckOutTime),
	}
}

func mapQuorum(quorum entities.QuorumStatus) httptransport.QuorumResponse {
	return httptransport.QuorumResponse{
		AssemblyID:         quorum.AssemblyID,
		PresentCount:       quorum.PresentCount,
		TotalProperties:    quorum.TotalProperties,
		PresentCoefficient: quorum.PresentCoefficient,
		TotalCoefficient:   quorum.TotalCoefficient,
		QuorumPercentage:   quorum.QuorumPercentage,
		RequiredQuorum:     quorum.RequiredQuorum,
		QuorumMet:          quorum.QuorumMet,
		ComputedAt:         httptransport.FormatTime(quorum.ComputedAt),
	}
}

func mapVoting(voting entities.Voting) httptransport.VotingResponse {
	resp := httptransport.VotingResponse{
		VotingID:          voting.VotingID,
		AssemblyID:        voting.AssemblyID,
		AgendaIndex:       voting.AgendaIndex,
		Type:              string(voting.Type),
		ApprovalThreshold: voting.ApprovalThreshold,
		Status:            string(voting.Status),
		Options:           voting.Options,
		StartTime:         httptransport.FormatOptionalTime(voting.StartTime),
		EndTime:           httptransport.FormatOptionalTime(voting.EndTime),
	}
	if voting.Result != nil {
		tally := mapTally(*voting.Result)
		resp.Result = &tally
	}
	return resp
}

func mapTally(result entities.TallyResult) httptransport.TallyResponse {
	options := make([]httptransport.OptionTallyItem, 0, len(result.PerOption))
	for option, tally := range result.PerOption {
		options = append(options, httptransport.OptionTallyItem{
			Option:         option,
			Count:          tally.Count,
			CoefficientSum: tally.CoefficientSum,
			Percentage:     tally.Percentage,
		})
	}
	sort.Slice(options, func(i, j int) bool {
		return options[i].Option < options[j].Option
	})
	return httptransport.TallyResponse{
		VotingID:                result.VotingID,
		Options:                 options,
		TotalVotes:              result.TotalVotes,
		TotalCoefficientCast:    result.TotalCoefficientCast,
		TotalComplexCoefficient: result.TotalComplexCoefficient,
		LeadingOption:           result.LeadingOption,
		Approved:                result.Approved,
		ComputedAt:              httptransport.FormatTime(result.ComputedAt),
	}
}
