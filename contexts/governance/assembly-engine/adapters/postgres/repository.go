package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"asamblea/contexts/governance/assembly-engine/domain/entities"
	domainerrors "asamblea/contexts/governance/assembly-engine/domain/errors"
	"asamblea/contexts/governance/assembly-engine/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveAssembly(ctx context.Context, assembly entities.Assembly) error {
	row, err := assemblyModelFromEntity(assembly)
	if err != nil {
		return r.logError("assembly_repo_save_assembly_marshal_failed", err,
			"assembly_id", strings.TrimSpace(assembly.AssemblyID),
		)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":           row.Status,
			"title":            row.Title,
			"description":      row.Description,
			"location":         row.Location,
			"scheduled_date":   row.ScheduledDate,
			"quorum_threshold": row.QuorumThreshold,
			"agenda":           row.Agenda,
			"updated_at":       row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("assembly_repo_save_assembly_failed", create.Error,
			"assembly_id", strings.TrimSpace(assembly.AssemblyID),
		)
	}
	return nil
}

func (r *Repository) GetAssembly(ctx context.Context, assemblyID string) (entities.Assembly, error) {
	var row assemblyModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(assemblyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Assembly{}, domainerrors.ErrAssemblyNotFound
		}
		return entities.Assembly{}, r.logError("assembly_repo_get_assembly_failed", err,
			"assembly_id", strings.TrimSpace(assemblyID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListAssemblies(ctx context.Context, complexID string) ([]entities.Assembly, error) {
	tx := r.db.WithContext(ctx).Model(&assemblyModel{})
	if strings.TrimSpace(complexID) != "" {
		tx = tx.Where("complex_id = ?", strings.TrimSpace(complexID))
	}
	var rows []assemblyModel
	if err := tx.Order("scheduled_date ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_assemblies_failed", err,
			"complex_id", strings.TrimSpace(complexID),
		)
	}
	items := make([]entities.Assembly, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, r.logError("assembly_repo_list_assemblies_decode_failed", err, "assembly_id", row.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) CreateAttendance(ctx context.Context, attendance entities.Attendance) error {
	row := attendanceModelFromEntity(attendance)
	create := r.db.WithContext(ctx).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			// The (assembly_id, property_id) unique index resolves concurrent
			// check-ins for the same property first-committer-wins.
			return domainerrors.ErrAlreadyCheckedIn
		}
		return r.logError("assembly_repo_create_attendance_failed", create.Error,
			"assembly_id", strings.TrimSpace(attendance.AssemblyID),
			"property_id", strings.TrimSpace(attendance.PropertyID),
		)
	}
	return nil
}

func (r *Repository) UpdateAttendance(ctx context.Context, attendance entities.Attendance) error {
	result := r.db.WithContext(ctx).
		Model(&attendanceModel{}).
		Where("assembly_id = ?", strings.TrimSpace(attendance.AssemblyID)).
		Where("property_id = ?", strings.TrimSpace(attendance.PropertyID)).
		Updates(map[string]any{
			"attendee_user_id":  strings.TrimSpace(attendance.AttendeeUserID),
			"kind":              string(attendance.Kind),
			"proxy_holder_name": strings.TrimSpace(attendance.ProxyHolderName),
			"check_out_time":    normalizeOptionalTime(attendance.CheckOutTime),
		})
	if result.Error != nil {
		return r.logError("assembly_repo_update_attendance_failed", result.Error,
			"assembly_id", strings.TrimSpace(attendance.AssemblyID),
			"property_id", strings.TrimSpace(attendance.PropertyID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotCheckedIn
	}
	return nil
}

func (r *Repository) GetAttendance(
	ctx context.Context,
	assemblyID string,
	propertyID string,
) (entities.Attendance, bool, error) {
	var row attendanceModel
	err := r.db.WithContext(ctx).
		Where("assembly_id = ?", strings.TrimSpace(assemblyID)).
		Where("property_id = ?", strings.TrimSpace(propertyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Attendance{}, false, nil
		}
		return entities.Attendance{}, false, r.logError("assembly_repo_get_attendance_failed", err,
			"assembly_id", strings.TrimSpace(assemblyID),
			"property_id", strings.TrimSpace(propertyID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListAttendance(ctx context.Context, assemblyID string) ([]entities.Attendance, error) {
	var rows []attendanceModel
	if err := r.db.WithContext(ctx).
		Where("assembly_id = ?", strings.TrimSpace(assemblyID)).
		Order("check_in_time ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_attendance_failed", err,
			"assembly_id", strings.TrimSpace(assemblyID),
		)
	}
	items := make([]entities.Attendance, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SaveVoting(ctx context.Context, voting entities.Voting) error {
	row, err := votingModelFromEntity(voting)
	if err != nil {
		return r.logError("assembly_repo_save_voting_marshal_failed", err,
			"voting_id", strings.TrimSpace(voting.VotingID),
		)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":     row.Status,
			"options":    row.Options,
			"start_time": row.StartTime,
			"end_time":   row.EndTime,
			"result":     row.Result,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return domainerrors.ErrConflict
		}
		return r.logError("assembly_repo_save_voting_failed", create.Error,
			"voting_id", strings.TrimSpace(voting.VotingID),
		)
	}
	return nil
}

func (r *Repository) GetVoting(ctx context.Context, votingID string) (entities.Voting, error) {
	var row votingModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(votingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voting{}, domainerrors.ErrVotingNotFound
		}
		return entities.Voting{}, r.logError("assembly_repo_get_voting_failed", err,
			"voting_id", strings.TrimSpace(votingID),
		)
	}
	return row.toEntity()
}

func (r *Repository) GetVotingByAgenda(
	ctx context.Context,
	assemblyID string,
	agendaIndex int,
) (entities.Voting, bool, error) {
	var row votingModel
	err := r.db.WithContext(ctx).
		Where("assembly_id = ?", strings.TrimSpace(assemblyID)).
		Where("agenda_index = ?", agendaIndex).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Voting{}, false, nil
		}
		return entities.Voting{}, false, r.logError("assembly_repo_get_voting_by_agenda_failed", err,
			"assembly_id", strings.TrimSpace(assemblyID),
			"agenda_index", agendaIndex,
		)
	}
	voting, decodeErr := row.toEntity()
	if decodeErr != nil {
		return entities.Voting{}, false, r.logError("assembly_repo_get_voting_by_agenda_decode_failed", decodeErr,
			"voting_id", row.ID,
		)
	}
	return voting, true, nil
}

func (r *Repository) ListVotings(ctx context.Context, assemblyID string) ([]entities.Voting, error) {
	var rows []votingModel
	if err := r.db.WithContext(ctx).
		Where("assembly_id = ?", strings.TrimSpace(assemblyID)).
		Order("agenda_index ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_votings_failed", err,
			"assembly_id", strings.TrimSpace(assemblyID),
		)
	}
	items := make([]entities.Voting, 0, len(rows))
	for _, row := range rows {
		item, err := row.toEntity()
		if err != nil {
			return nil, r.logError("assembly_repo_list_votings_decode_failed", err, "voting_id", row.ID)
		}
		items = append(items, item)
	}
	return items, nil
}

func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error) {
	row := voteModelFromEntity(vote)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "voting_id"}, {Name: "property_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"attendee_user_id":   row.AttendeeUserID,
			"option_value":       row.OptionValue,
			"coefficient_weight": row.CoefficientWeight,
			"cast_at":            row.CastAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return entities.Vote{}, r.logError("assembly_repo_upsert_vote_failed", create.Error,
			"voting_id", strings.TrimSpace(vote.VotingID),
			"property_id", strings.TrimSpace(vote.PropertyID),
		)
	}

	var stored voteModel
	if err := r.db.WithContext(ctx).
		Where("voting_id = ?", row.VotingID).
		Where("property_id = ?", row.PropertyID).
		First(&stored).Error; err != nil {
		return entities.Vote{}, r.logError("assembly_repo_upsert_vote_load_failed", err,
			"voting_id", row.VotingID,
			"property_id", row.PropertyID,
		)
	}
	return stored.toEntity(), nil
}

func (r *Repository) GetVoteByProperty(
	ctx context.Context,
	votingID string,
	propertyID string,
) (entities.Vote, bool, error) {
	var row voteModel
	err := r.db.WithContext(ctx).
		Where("voting_id = ?", strings.TrimSpace(votingID)).
		Where("property_id = ?", strings.TrimSpace(propertyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Vote{}, false, nil
		}
		return entities.Vote{}, false, r.logError("assembly_repo_get_vote_by_property_failed", err,
			"voting_id", strings.TrimSpace(votingID),
			"property_id", strings.TrimSpace(propertyID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListVotes(ctx context.Context, votingID string) ([]entities.Vote, error) {
	var rows []voteModel
	if err := r.db.WithContext(ctx).
		Where("voting_id = ?", strings.TrimSpace(votingID)).
		Order("cast_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_votes_failed", err,
			"voting_id", strings.TrimSpace(votingID),
		)
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetCoefficient(ctx context.Context, complexID string, propertyID string) (float64, error) {
	var row propertyModel
	err := r.db.WithContext(ctx).
		Where("complex_id = ?", strings.TrimSpace(complexID)).
		Where("id = ?", strings.TrimSpace(propertyID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainerrors.ErrPropertyNotFound
		}
		return 0, r.logError("assembly_repo_get_coefficient_failed", err,
			"complex_id", strings.TrimSpace(complexID),
			"property_id", strings.TrimSpace(propertyID),
		)
	}
	return row.Coefficient, nil
}

func (r *Repository) GetAllCoefficients(ctx context.Context, complexID string) ([]entities.Property, error) {
	var rows []propertyModel
	if err := r.db.WithContext(ctx).
		Where("complex_id = ?", strings.TrimSpace(complexID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_get_all_coefficients_failed", err,
			"complex_id", strings.TrimSpace(complexID),
		)
	}
	items := make([]entities.Property, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.Property{
			PropertyID:  row.ID,
			ComplexID:   row.ComplexID,
			Coefficient: row.Coefficient,
		})
	}
	return items, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("assembly_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
			"event_type", strings.TrimSpace(envelope.EventType),
		)
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("assembly_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	if create.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := r.db.WithContext(ctx).
		Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).Error; err != nil {
		return r.logError("assembly_repo_append_outbox_load_existing_failed", err,
			"outbox_id", row.OutboxID,
		)
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("assembly_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("assembly_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrConflict
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/assembly-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("assembly repository operation failed", fields...)
	return err
}

type assemblyModel struct {
	ID              string    `gorm:"column:id;primaryKey"`
	ComplexID       string    `gorm:"column:complex_id"`
	Type            string    `gorm:"column:type"`
	Status          string    `gorm:"column:status"`
	Title           string    `gorm:"column:title"`
	Description     string    `gorm:"column:description"`
	Location        string    `gorm:"column:location"`
	ScheduledDate   time.Time `gorm:"column:scheduled_date"`
	QuorumThreshold float64   `gorm:"column:quorum_threshold"`
	Agenda          []byte    `gorm:"column:agenda"`
	CreatedAt       time.Time `gorm:"column:created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at"`
}

func (assemblyModel) TableName() string {
	return "assemblies"
}

func assemblyModelFromEntity(assembly entities.Assembly) (assemblyModel, error) {
	agenda, err := json.Marshal(assembly.Agenda)
	if err != nil {
		return assemblyModel{}, err
	}
	row := assemblyModel{
		ID:              strings.TrimSpace(assembly.AssemblyID),
		ComplexID:       strings.TrimSpace(assembly.ComplexID),
		Type:            string(assembly.Type),
		Status:          string(assembly.Status),
		Title:           strings.TrimSpace(assembly.Title),
		Description:     assembly.Description,
		Location:        assembly.Location,
		ScheduledDate:   assembly.ScheduledDate.UTC(),
		QuorumThreshold: assembly.QuorumThreshold,
		Agenda:          agenda,
		CreatedAt:       assembly.CreatedAt.UTC(),
		UpdatedAt:       assembly.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m assemblyModel) toEntity() (entities.Assembly, error) {
	var agenda []string
	if len(m.Agenda) > 0 {
		if err := json.Unmarshal(m.Agenda, &agenda); err != nil {
			return entities.Assembly{}, err
		}
	}
	return entities.Assembly{
		AssemblyID:      m.ID,
		ComplexID:       m.ComplexID,
		Type:            entities.AssemblyType(m.Type),
		Status:          entities.AssemblyStatus(m.Status),
		Title:           m.Title,
		Description:     m.Description,
		Location:        m.Location,
		ScheduledDate:   m.ScheduledDate.UTC(),
		QuorumThreshold: m.QuorumThreshold,
		Agenda:          agenda,
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}, nil
}

type attendanceModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	AssemblyID      string     `gorm:"column:assembly_id;uniqueIndex:idx_attendance_assembly_property"`
	PropertyID      string     `gorm:"column:property_id;uniqueIndex:idx_attendance_assembly_property"`
	AttendeeUserID  string     `gorm:"column:attendee_user_id"`
	Kind            string     `gorm:"column:kind"`
	ProxyHolderName string     `gorm:"column:proxy_holder_name"`
	CheckInTime     time.Time  `gorm:"column:check_in_time"`
	CheckOutTime    *time.Time `gorm:"column:check_out_time"`
}

func (attendanceModel) TableName() string {
	return "assembly_attendance"
}

func attendanceModelFromEntity(attendance entities.Attendance) attendanceModel {
	return attendanceModel{
		ID:              strings.TrimSpace(attendance.AttendanceID),
		AssemblyID:      strings.TrimSpace(attendance.AssemblyID),
		PropertyID:      strings.TrimSpace(attendance.PropertyID),
		AttendeeUserID:  strings.TrimSpace(attendance.AttendeeUserID),
		Kind:            string(attendance.Kind),
		ProxyHolderName: strings.TrimSpace(attendance.ProxyHolderName),
		CheckInTime:     attendance.CheckInTime.UTC(),
		CheckOutTime:    normalizeOptionalTime(attendance.CheckOutTime),
	}
}

func (m attendanceModel) toEntity() entities.Attendance {
	return entities.Attendance{
		AttendanceID:    m.ID,
		AssemblyID:      m.AssemblyID,
		PropertyID:      m.PropertyID,
		AttendeeUserID:  m.AttendeeUserID,
		Kind:            entities.AttendanceKind(m.Kind),
		ProxyHolderName: m.ProxyHolderName,
		CheckInTime:     m.CheckInTime.UTC(),
		CheckOutTime:    normalizeOptionalTime(m.CheckOutTime),
	}
}

type votingModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	AssemblyID        string     `gorm:"column:assembly_id;uniqueIndex:idx_voting_assembly_agenda"`
	AgendaIndex       int        `gorm:"column:agenda_index;uniqueIndex:idx_voting_assembly_agenda"`
	Type              string     `gorm:"column:type"`
	ApprovalThreshold float64    `gorm:"column:approval_threshold"`
	Status            string     `gorm:"column:status"`
	Options           []byte     `gorm:"column:options"`
	StartTime         *time.Time `gorm:"column:start_time"`
	EndTime           *time.Time `gorm:"column:end_time"`
	Result            []byte     `gorm:"column:result"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (votingModel) TableName() string {
	return "assembly_votings"
}

func votingModelFromEntity(voting entities.Voting) (votingModel, error) {
	options, err := json.Marshal(voting.Options)
	if err != nil {
		return votingModel{}, err
	}
	var result []byte
	if voting.Result != nil {
		result, err = json.Marshal(voting.Result)
		if err != nil {
			return votingModel{}, err
		}
	}
	row := votingModel{
		ID:                strings.TrimSpace(voting.VotingID),
		AssemblyID:        strings.TrimSpace(voting.AssemblyID),
		AgendaIndex:       voting.AgendaIndex,
		Type:              string(voting.Type),
		ApprovalThreshold: voting.ApprovalThreshold,
		Status:            string(voting.Status),
		Options:           options,
		StartTime:         normalizeOptionalTime(voting.StartTime),
		EndTime:           normalizeOptionalTime(voting.EndTime),
		Result:            result,
		CreatedAt:         voting.CreatedAt.UTC(),
		UpdatedAt:         voting.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m votingModel) toEntity() (entities.Voting, error) {
	var options []string
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return entities.Voting{}, err
		}
	}
	var result *entities.TallyResult
	if len(m.Result) > 0 {
		result = &entities.TallyResult{}
		if err := json.Unmarshal(m.Result, result); err != nil {
			return entities.Voting{}, err
		}
	}
	return entities.Voting{
		VotingID:          m.ID,
		AssemblyID:        m.AssemblyID,
		AgendaIndex:       m.AgendaIndex,
		Type:              entities.VotingType(m.Type),
		ApprovalThreshold: m.ApprovalThreshold,
		Status:            entities.VotingStatus(m.Status),
		Options:           options,
		StartTime:         normalizeOptionalTime(m.StartTime),
		EndTime:           normalizeOptionalTime(m.EndTime),
		Result:            result,
		CreatedAt:         m.CreatedAt.UTC(),
		UpdatedAt:         m.UpdatedAt.UTC(),
	}, nil
}

type voteModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	VotingID          string    `gorm:"column:voting_id;uniqueIndex:idx_vote_voting_property"`
	PropertyID        string    `gorm:"column:property_id;uniqueIndex:idx_vote_voting_property"`
	AttendeeUserID    string    `gorm:"column:attendee_user_id"`
	OptionValue       string    `gorm:"column:option_value"`
	CoefficientWeight float64   `gorm:"column:coefficient_weight"`
	CastAt            time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "assembly_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:                strings.TrimSpace(vote.VoteID),
		VotingID:          strings.TrimSpace(vote.VotingID),
		PropertyID:        strings.TrimSpace(vote.PropertyID),
		AttendeeUserID:    strings.TrimSpace(vote.AttendeeUserID),
		OptionValue:       strings.TrimSpace(vote.OptionValue),
		CoefficientWeight: vote.CoefficientWeight,
		CastAt:            vote.CastAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:            m.ID,
		VotingID:          m.VotingID,
		PropertyID:        m.PropertyID,
		AttendeeUserID:    m.AttendeeUserID,
		OptionValue:       m.OptionValue,
		CoefficientWeight: m.CoefficientWeight,
		CastAt:            m.CastAt.UTC(),
	}
}

type propertyModel struct {
	ID          string  `gorm:"column:id;primaryKey"`
	ComplexID   string  `gorm:"column:complex_id"`
	Coefficient float64 `gorm:"column:coefficient"`
}

func (propertyModel) TableName() string {
	return "properties"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "assembly_outbox"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.AssemblyRepository = (*Repository)(nil)
var _ ports.AttendanceRepository = (*Repository)(nil)
var _ ports.VotingRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.OwnershipRegistry = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
