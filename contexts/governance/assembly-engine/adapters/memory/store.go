package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	"asamblea/contexts/governance/assembly-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory adapter backing all engine ports. One mutex guards
// every map so the uniqueness checks and writes in CreateAttendance and
// UpsertVote are atomic, matching the database constraints they stand in for.
type Store struct {
	mu sync.RWMutex

	assemblies map[string]entities.Assembly
	attendance map[string]entities.Attendance
	votings    map[string]entities.Voting
	votes      map[string]entities.Vote
	properties map[string][]entities.Property
	outbox     map[string]outboxRecord
}

func NewStore() *Store {
	return &Store{
		assemblies: make(map[string]entities.Assembly),
		attendance: make(map[string]entities.Attendance),
		votings:    make(map[string]entities.Voting),
		votes:      make(map[string]entities.Vote),
		properties: make(map[string][]entities.Property),
		outbox:     make(map[string]outboxRecord),
	}
}

// SeedComplex replaces the property inventory of a complex.
func (s *Store) SeedComplex(complexID string, properties []entities.Property) {
	s.mu.Lock()
	defer s.mu.Unlock()
	complexID = strings.TrimSpace(complexID)
	items := make([]entities.Property, 0, len(properties))
	for _, property := range properties {
		items = append(items, entities.Property{
			PropertyID:  strings.TrimSpace(property.PropertyID),
			ComplexID:   complexID,
			Coefficient: property.Coefficient,
		})
	}
	s.properties[complexID] = items
}

func (s *Store) SetAssembly(assembly entities.Assembly) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assemblies[strings.TrimSpace(assembly.AssemblyID)] = assembly
}

func (s *Store) SaveAssembly(_ context.Context, assembly entities.Assembly) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assemblies[strings.TrimSpace(assembly.AssemblyID)] = assembly
	return nil
}

func (s *Store) GetAssembly(_ context.Context, assemblyID string) (entities.Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assembly, ok := s.assemblies[strings.TrimSpace(assemblyID)]
	if !ok {
		return entities.Assembly{}, domainerrors.ErrAssemblyNotFound
	}
	return assembly, nil
}

func (s *Store) ListAssemblies(_ context.Context, complexID string) ([]entities.Assembly, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	complexID = strings.TrimSpace(complexID)
	items := make([]entities.Assembly, 0)
	for _, assembly := range s.assemblies {
		if complexID == "" || assembly.ComplexID == complexID {
			items = append(items, assembly)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ScheduledDate.Before(items[j].ScheduledDate)
	})
	return items, nil
}

func (s *Store) CreateAttendance(_ context.Context, attendance entities.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attendanceKey(attendance.AssemblyID, attendance.PropertyID)
	if _, exists := s.attendance[key]; exists {
		return domainerrors.ErrAlreadyCheckedIn
	}
	s.attendance[key] = attendance
	return nil
}

func (s *Store) UpdateAttendance(_ context.Context, attendance entities.Attendance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := attendanceKey(attendance.AssemblyID, attendance.PropertyID)
	if _, exists := s.attendance[key]; !exists {
		return domainerrors.ErrNotCheckedIn
	}
	s.attendance[key] = attendance
	return nil
}

func (s *Store) GetAttendance(
	_ context.Context,
	assemblyID string,
	propertyID string,
) (entities.Attendance, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attendance, ok := s.attendance[attendanceKey(assemblyID, propertyID)]
	if !ok {
		return entities.Attendance{}, false, nil
	}
	return attendance, true, nil
}

func (s *Store) ListAttendance(_ context.Context, assemblyID string) ([]entities.Attendance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assemblyID = strings.TrimSpace(assemblyID)
	items := make([]entities.Attendance, 0)
	for _, attendance := range s.attendance {
		if attendance.AssemblyID == assemblyID {
			items = append(items, attendance)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CheckInTime.Before(items[j].CheckInTime)
	})
	return items, nil
}

func (s *Store) SaveVoting(_ context.Context, voting entities.Voting) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votings[strings.TrimSpace(voting.VotingID)] = voting
	return nil
}

func (s *Store) GetVoting(_ context.Context, votingID string) (entities.Voting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voting, ok := s.votings[strings.TrimSpace(votingID)]
	if !ok {
		return entities.Voting{}, domainerrors.ErrVotingNotFound
	}
	return voting, nil
}

func (s *Store) GetVotingByAgenda(
	_ context.Context,
	assemblyID string,
	agendaIndex int,
) (entities.Voting, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assemblyID = strings.TrimSpace(assemblyID)
	for _, voting := range s.votings {
		if voting.AssemblyID == assemblyID && voting.AgendaIndex == agendaIndex {
			return voting, true, nil
		}
	}
	return entities.Voting{}, false, nil
}

func (s *Store) ListVotings(_ context.Context, assemblyID string) ([]entities.Voting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assemblyID = strings.TrimSpace(assemblyID)
	items := make([]entities.Voting, 0)
	for _, voting := range s.votings {
		if voting.AssemblyID == assemblyID {
			items = append(items, voting)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AgendaIndex < items[j].AgendaIndex
	})
	return items, nil
}

func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := voteKey(vote.VotingID, vote.PropertyID)
	if existing, ok := s.votes[key]; ok {
		// The row identity survives re-votes; only the ballot content moves.
		vote.VoteID = existing.VoteID
	}
	s.votes[key] = vote
	return vote, nil
}

func (s *Store) GetVoteByProperty(
	_ context.Context,
	votingID string,
	propertyID string,
) (entities.Vote, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vote, ok := s.votes[voteKey(votingID, propertyID)]
	if !ok {
		return entities.Vote{}, false, nil
	}
	return vote, true, nil
}

func (s *Store) ListVotes(_ context.Context, votingID string) ([]entities.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votingID = strings.TrimSpace(votingID)
	items := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.VotingID == votingID {
			items = append(items, vote)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CastAt.Before(items[j].CastAt)
	})
	return items, nil
}

func (s *Store) GetCoefficient(_ context.Context, complexID string, propertyID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	propertyID = strings.TrimSpace(propertyID)
	for _, property := range s.properties[strings.TrimSpace(complexID)] {
		if property.PropertyID == propertyID {
			return property.Coefficient, nil
		}
	}
	return 0, domainerrors.ErrPropertyNotFound
}

func (s *Store) GetAllCoefficients(_ context.Context, complexID string) ([]entities.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.properties[strings.TrimSpace(complexID)]
	out := make([]entities.Property, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		items = append(items, row.message)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func attendanceKey(assemblyID string, propertyID string) string {
	return strings.TrimSpace(assemblyID) + "/" + strings.TrimSpace(propertyID)
}

func voteKey(votingID string, propertyID string) string {
	return strings.TrimSpace(votingID) + "/" + strings.TrimSpace(propertyID)
}
