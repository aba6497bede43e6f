package events

import "asamblea/contexts/governance/assembly-engine/domain/entities"

// Event is the closed set of domain events the engine emits toward the
// notification dispatcher. The unexported marker keeps the union sealed so
// consumers can switch over every variant exhaustively.
type Event interface {
	EventType() string
	PartitionKey() string
	isEvent()
}

// QuorumReached fires once per assembly, when a check-in pushes the present
// coefficient across the configured threshold.
type QuorumReached struct {
	AssemblyID string  `json:"assembly_id"`
	Percentage float64 `json:"percentage"`
}

func (QuorumReached) EventType() string { return "assembly.quorum_reached" }
func (e QuorumReached) PartitionKey() string { return e.AssemblyID }
func (QuorumReached) isEvent() {}

// AssemblyStarted fires when a scheduled assembly transitions to in-progress.
type AssemblyStarted struct {
	AssemblyID string `json:"assembly_id"`
}

func (AssemblyStarted) EventType() string { return "assembly.started" }
func (e AssemblyStarted) PartitionKey() string { return e.AssemblyID }
func (AssemblyStarted) isEvent() {}

// VotingOpened fires after a voting session activates.
type VotingOpened struct {
	VotingID    string `json:"voting_id"`
	AssemblyID  string `json:"assembly_id"`
	AgendaIndex int    `json:"agenda_index"`
}

func (VotingOpened) EventType() string { return "assembly.voting_opened" }
func (e VotingOpened) PartitionKey() string { return e.AssemblyID }
func (VotingOpened) isEvent() {}

// VotingClosed carries the frozen tally computed at close.
type VotingClosed struct {
	VotingID   string               `json:"voting_id"`
	AssemblyID string               `json:"assembly_id"`
	Result     entities.TallyResult `json:"result"`
}

func (VotingClosed) EventType() string { return "assembly.voting_closed" }
func (e VotingClosed) PartitionKey() string { return e.AssemblyID }
func (VotingClosed) isEvent() {}

// AssemblyCompleted fires after every voting resolved and all open
// attendances were checked out.
type AssemblyCompleted struct {
	AssemblyID string `json:"assembly_id"`
}

func (AssemblyCompleted) EventType() string { return "assembly.completed" }
func (e AssemblyCompleted) PartitionKey() string { return e.AssemblyID }
func (AssemblyCompleted) isEvent() {}

// AssemblyCancelled fires when an assembly is cancelled; the record itself is
// retained for audit.
type AssemblyCancelled struct {
	AssemblyID string `json:"assembly_id"`
}

func (AssemblyCancelled) EventType() string { return "assembly.cancelled" }
func (e AssemblyCancelled) PartitionKey() string { return e.AssemblyID }
func (AssemblyCancelled) isEvent() {}
