package ports

import (
	"context"
	"time"

	"asamblea/contexts/governance/assembly-engine/domain/entities"
)

type AssemblyRepository interface {
	SaveAssembly(ctx context.Context, assembly entities.Assembly) error
	GetAssembly(ctx context.Context, assemblyID string) (entities.Assembly, error)
	ListAssemblies(ctx context.Context, complexID string) ([]entities.Assembly, error)
}

// AttendanceRepository enforces the (assemblyID, propertyID) uniqueness
// constraint at the storage layer: CreateAttendance fails with
// ErrAlreadyCheckedIn when a row already exists, so a race between two
// concurrent check-ins for the same property resolves first-committer-wins.
type AttendanceRepository interface {
	CreateAttendance(ctx context.Context, attendance entities.Attendance) error
	UpdateAttendance(ctx context.Context, attendance entities.Attendance) error
	GetAttendance(ctx context.Context, assemblyID string, propertyID string) (entities.Attendance, bool, error)
	ListAttendance(ctx context.Context, assemblyID string) ([]entities.Attendance, error)
}

type VotingRepository interface {
	SaveVoting(ctx context.Context, voting entities.Voting) error
	GetVoting(ctx context.Context, votingID string) (entities.Voting, error)
	GetVotingByAgenda(ctx context.Context, assemblyID string, agendaIndex int) (entities.Voting, bool, error)
	ListVotings(ctx context.Context, assemblyID string) ([]entities.Voting, error)
}

// VoteRepository upserts ballots keyed by (votingID, propertyID):
// last-committer-wins while the voting is active. The returned vote is the
// stored row after the upsert.
type VoteRepository interface {
	UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error)
	GetVoteByProperty(ctx context.Context, votingID string, propertyID string) (entities.Vote, bool, error)
	ListVotes(ctx context.Context, votingID string) ([]entities.Vote, error)
}

// OwnershipRegistry is the external inventory of properties and ownership
// coefficients. The engine trusts it for identity of properties but verifies
// the coefficient-sum invariant before doing quorum or tally math.
type OwnershipRegistry interface {
	GetCoefficient(ctx context.Context, complexID string, propertyID string) (float64, error)
	GetAllCoefficients(ctx context.Context, complexID string) ([]entities.Property, error)
}

// EventEnvelope is the canonical wire shape handed to the notification
// dispatcher through the outbox.
type EventEnvelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	SourceService string    `json:"source_service"`
	SchemaVersion int       `json:"schema_version"`
	PartitionKey  string    `json:"partition_key"`
	Data          []byte    `json:"data"`
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
