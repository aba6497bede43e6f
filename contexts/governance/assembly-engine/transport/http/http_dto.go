package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ScheduleAssemblyRequest struct {
	ComplexID       string   `json:"complex_id" validate:"required"`
	Type            string   `json:"type" validate:"required,oneof=ORDINARY EXTRAORDINARY COMMITTEE"`
	Title           string   `json:"title" validate:"required"`
	Description     string   `json:"description,omitempty"`
	Location        string   `json:"location,omitempty"`
	ScheduledDate   string   `json:"scheduled_date" validate:"required"`
	QuorumThreshold float64  `json:"quorum_threshold,omitempty" validate:"gte=0,lte=1"`
	Agenda          []string `json:"agenda" validate:"required,min=1,dive,required"`
}

type AssemblyResponse struct {
	AssemblyID      string   `json:"assembly_id"`
	ComplexID       string   `json:"complex_id"`
	Type            string   `json:"type"`
	Status          string   `json:"status"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Location        string   `json:"location,omitempty"`
	ScheduledDate   string   `json:"scheduled_date"`
	QuorumThreshold float64  `json:"quorum_threshold"`
	Agenda          []string `json:"agenda"`
}

type CheckInRequest struct {
	PropertyID      string `json:"property_id" validate:"required"`
	Kind            string `json:"kind" validate:"required,oneof=PRESENT PROXY VIRTUAL"`
	ProxyHolderName string `json:"proxy_holder_name,omitempty" validate:"required_if=Kind PROXY"`
}

type AttendanceResponse struct {
	AttendanceID     string `json:"attendance_id"`
	AssemblyID       string `json:"assembly_id"`
	PropertyID       string `json:"property_id"`
	AttendeeUserID   string `json:"attendee_user_id"`
	Kind             string `json:"kind"`
	ProxyHolderName  string `json:"proxy_holder_name,omitempty"`
	CheckInTime      string `json:"check_in_time"`
	CheckOutTime     string `json:"check_out_time,omitempty"`
	AlreadyCheckedIn bool   `json:"already_checked_in,omitempty"`
}

type CheckOutRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
}

type QuorumResponse struct {
	AssemblyID         string  `json:"assembly_id"`
	PresentCount       int     `json:"present_count"`
	TotalProperties    int     `json:"total_properties"`
	PresentCoefficient float64 `json:"present_coefficient"`
	TotalCoefficient   float64 `json:"total_coefficient"`
	QuorumPercentage   float64 `json:"quorum_percentage"`
	RequiredQuorum     float64 `json:"required_quorum"`
	QuorumMet          bool    `json:"quorum_met"`
	ComputedAt         string  `json:"computed_at"`
}

type OpenVotingRequest struct {
	AgendaIndex       int      `json:"agenda_index" validate:"gte=0"`
	Type              string   `json:"type" validate:"required,oneof=SIMPLE_MAJORITY QUALIFIED_MAJORITY UNANIMOUS COEFFICIENT_BASED"`
	ApprovalThreshold float64  `json:"approval_threshold,omitempty" validate:"gte=0,lte=1"`
	Options           []string `json:"options,omitempty" validate:"omitempty,min=2,dive,required"`
}

type VotingResponse struct {
	VotingID          string         `json:"voting_id"`
	AssemblyID        string         `json:"assembly_id"`
	AgendaIndex       int            `json:"agenda_index"`
	Type              string         `json:"type"`
	ApprovalThreshold float64        `json:"approval_threshold,omitempty"`
	Status            string         `json:"status"`
	Options           []string       `json:"options"`
	StartTime         string         `json:"start_time,omitempty"`
	EndTime           string         `json:"end_time,omitempty"`
	Result            *TallyResponse `json:"result,omitempty"`
}

type CastVoteRequest struct {
	PropertyID  string `json:"property_id" validate:"required"`
	OptionValue string `json:"option_value" validate:"required"`
}

type VoteResponse struct {
	VoteID            string  `json:"vote_id"`
	VotingID          string  `json:"voting_id"`
	PropertyID        string  `json:"property_id"`
	AttendeeUserID    string  `json:"attendee_user_id"`
	OptionValue       string  `json:"option_value"`
	CoefficientWeight float64 `json:"coefficient_weight"`
	CastAt            string  `json:"cast_at"`
	WasUpdate         bool    `json:"was_update,omitempty"`
}

type OptionTallyItem struct {
	Option         string  `json:"option"`
	Count          int     `json:"count"`
	CoefficientSum float64 `json:"coefficient_sum"`
	Percentage     float64 `json:"percentage"`
}

type TallyResponse struct {
	VotingID                string            `json:"voting_id"`
	Options                 []OptionTallyItem `json:"options"`
	TotalVotes              int               `json:"total_votes"`
	TotalCoefficientCast    float64           `json:"total_coefficient_cast"`
	TotalComplexCoefficient float64           `json:"total_complex_coefficient"`
	LeadingOption           string            `json:"leading_option,omitempty"`
	Approved                bool              `json:"approved"`
	ComputedAt              string            `json:"computed_at"`
}

type AssemblySummaryResponse struct {
	Assembly   AssemblyResponse     `json:"assembly"`
	Quorum     QuorumResponse       `json:"quorum"`
	Attendance []AttendanceResponse `json:"attendance"`
	Votings    []VotingResponse     `json:"votings"`
}

// FormatTime renders timestamps the way every engine response does.
func FormatTime(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}

// FormatOptionalTime renders a nullable timestamp, empty when absent.
func FormatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return FormatTime(*value)
}
