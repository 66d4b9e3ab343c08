package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"plenum/contexts/governance/meeting-service/domain/entities"
	domainerrors "plenum/contexts/governance/meeting-service/domain/errors"
	"plenum/contexts/governance/meeting-service/ports"
	"plenum/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
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

func (r *Repository) SaveMeeting(ctx context.Context, meeting entities.Meeting) error {
	row := meetingModelFromEntity(meeting)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("meeting_repo_save_meeting_failed", err, "meeting_id", meeting.MeetingID)
	}
	return nil
}

func (r *Repository) GetMeeting(ctx context.Context, meetingID string) (entities.Meeting, error) {
	var row meetingModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Meeting{}, domainerrors.ErrMeetingNotFound
		}
		return entities.Meeting{}, r.logError("meeting_repo_get_meeting_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListMeetings(ctx context.Context) ([]entities.Meeting, error) {
	var rows []meetingModel
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("meeting_repo_list_meetings_failed", err)
	}
	items := make([]entities.Meeting, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

// UpdateMeetingStatus applies a status-guarded update so concurrent
// lifecycle commands cannot both win the same transition.
func (r *Repository) UpdateMeetingStatus(
	ctx context.Context,
	meetingID string,
	from entities.MeetingStatus,
	to entities.MeetingStatus,
	startedAt *time.Time,
	closedAt *time.Time,
	updatedAt time.Time,
) (bool, error) {
	updates := map[string]any{
		"status":     string(to),
		"updated_at": updatedAt.UTC(),
	}
	if startedAt != nil {
		updates["started_at"] = startedAt.UTC()
	}
	if closedAt != nil {
		updates["closed_at"] = closedAt.UTC()
	}
	result := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(meetingID), string(from)).
		Updates(updates)
	if result.Error != nil {
		return false, r.logError("meeting_repo_update_status_failed", result.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SetQuorumMet(ctx context.Context, meetingID string, quorumMet bool, updatedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&meetingModel{}).
		Where("id = ?", strings.TrimSpace(meetingID)).
		Updates(map[string]any{
			"quorum_met": quorumMet,
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("meeting_repo_set_quorum_failed", result.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMeetingNotFound
	}
	return nil
}

func (r *Repository) DeleteMeeting(ctx context.Context, meetingID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		Delete(&meetingModel{})
	if result.Error != nil {
		return r.logError("meeting_repo_delete_meeting_failed", result.Error, "meeting_id", strings.TrimSpace(meetingID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMeetingNotFound
	}
	return nil
}

func (r *Repository) SaveParticipant(ctx context.Context, participant entities.Participant) error {
	row := participantModelFromEntity(participant)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateParticipant
		}
		return r.logError("meeting_repo_save_participant_failed", err,
			"meeting_id", participant.MeetingID,
			"user_id", participant.UserID,
		)
	}
	return nil
}

func (r *Repository) UpdateParticipant(ctx context.Context, participant entities.Participant) error {
	row := participantModelFromEntity(participant)
	result := r.db.WithContext(ctx).
		Model(&participantModel{}).
		Where("meeting_id = ? AND user_id = ?", row.MeetingID, row.UserID).
		Updates(map[string]any{
			"role":        row.Role,
			"can_vote":    row.CanVote,
			"vote_weight": row.VoteWeight,
			"attendance":  row.Attendance,
			"updated_at":  row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("meeting_repo_update_participant_failed", result.Error,
			"meeting_id", participant.MeetingID,
			"user_id", participant.UserID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrParticipantNotFound
	}
	return nil
}

func (r *Repository) GetParticipant(ctx context.Context, meetingID string, userID string) (entities.Participant, error) {
	var row participantModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id = ?", strings.TrimSpace(meetingID), strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Participant{}, domainerrors.ErrParticipantNotFound
		}
		return entities.Participant{}, r.logError("meeting_repo_get_participant_failed", err,
			"meeting_id", strings.TrimSpace(meetingID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListParticipants(ctx context.Context, meetingID string) ([]entities.Participant, error) {
	var rows []participantModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("joined_at ASC, user_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("meeting_repo_list_participants_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	items := make([]entities.Participant, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteParticipantsByMeeting(ctx context.Context, meetingID string) error {
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Delete(&participantModel{}).Error; err != nil {
		return r.logError("meeting_repo_delete_participants_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return nil
}

func (r *Repository) SaveAgendaItem(ctx context.Context, item entities.AgendaItem) error {
	row := agendaItemModelFromEntity(item)
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("meeting_repo_save_agenda_item_failed", err, "agenda_item_id", item.AgendaItemID)
	}
	return nil
}

func (r *Repository) GetAgendaItem(ctx context.Context, agendaItemID string) (entities.AgendaItem, error) {
	var row agendaItemModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agendaItemID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AgendaItem{}, domainerrors.ErrAgendaItemNotFound
		}
		return entities.AgendaItem{}, r.logError("meeting_repo_get_agenda_item_failed", err, "agenda_item_id", strings.TrimSpace(agendaItemID))
	}
	return row.toEntity(), nil
}

func (r *Repository) ListAgendaItems(ctx context.Context, meetingID string) ([]entities.AgendaItem, error) {
	var rows []agendaItemModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("item_order ASC, created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("meeting_repo_list_agenda_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	items := make([]entities.AgendaItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteAgendaItem(ctx context.Context, agendaItemID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(agendaItemID)).
		Delete(&agendaItemModel{})
	if result.Error != nil {
		return r.logError("meeting_repo_delete_agenda_item_failed", result.Error, "agenda_item_id", strings.TrimSpace(agendaItemID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAgendaItemNotFound
	}
	return nil
}

func (r *Repository) DeleteAgendaByMeeting(ctx context.Context, meetingID string) error {
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Delete(&agendaItemModel{}).Error; err != nil {
		return r.logError("meeting_repo_delete_agenda_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message outbox.Message) error {
	row := outboxModel{
		OutboxID:     message.OutboxID,
		EventType:    message.EventType,
		PartitionKey: message.PartitionKey,
		Payload:      append([]byte(nil), message.Payload...),
		Status:       message.Status,
		CreatedAt:    message.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("meeting_repo_append_outbox_failed", err, "outbox_id", message.OutboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("meeting_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		items = append(items, outbox.Message{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ? AND status = ?", strings.TrimSpace(outboxID), outbox.StatusPending).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("meeting_repo_mark_outbox_published_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/meeting-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("meeting repository operation failed", fields...)
	return err
}

type meetingModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Title          string     `gorm:"column:title"`
	Description    string     `gorm:"column:description"`
	Location       string     `gorm:"column:location"`
	Status         string     `gorm:"column:status"`
	QuorumType     string     `gorm:"column:quorum_type"`
	QuorumRequired float64    `gorm:"column:quorum_required"`
	QuorumMet      bool       `gorm:"column:quorum_met"`
	CreatedBy      string     `gorm:"column:created_by"`
	ScheduledFor   *time.Time `gorm:"column:scheduled_for"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	ClosedAt       *time.Time `gorm:"column:closed_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (meetingModel) TableName() string {
	return "meetings"
}

func meetingModelFromEntity(meeting entities.Meeting) meetingModel {
	row := meetingModel{
		ID:             strings.TrimSpace(meeting.MeetingID),
		Title:          strings.TrimSpace(meeting.Title),
		Description:    meeting.Description,
		Location:       strings.TrimSpace(meeting.Location),
		Status:         string(meeting.Status),
		QuorumType:     string(meeting.QuorumType),
		QuorumRequired: meeting.QuorumRequired,
		QuorumMet:      meeting.QuorumMet,
		CreatedBy:      strings.TrimSpace(meeting.CreatedBy),
		ScheduledFor:   normalizeOptionalTime(meeting.ScheduledFor),
		StartedAt:      normalizeOptionalTime(meeting.StartedAt),
		ClosedAt:       normalizeOptionalTime(meeting.ClosedAt),
		CreatedAt:      meeting.CreatedAt.UTC(),
		UpdatedAt:      meeting.UpdatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row
}

func (m meetingModel) toEntity() entities.Meeting {
	return entities.Meeting{
		MeetingID:      m.ID,
		Title:          m.Title,
		Description:    m.Description,
		Location:       m.Location,
		Status:         entities.MeetingStatus(m.Status),
		QuorumType:     entities.QuorumType(m.QuorumType),
		QuorumRequired: m.QuorumRequired,
		QuorumMet:      m.QuorumMet,
		CreatedBy:      m.CreatedBy,
		ScheduledFor:   normalizeOptionalTime(m.ScheduledFor),
		StartedAt:      normalizeOptionalTime(m.StartedAt),
		ClosedAt:       normalizeOptionalTime(m.ClosedAt),
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type participantModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	MeetingID  string    `gorm:"column:meeting_id;uniqueIndex:ux_meeting_participants_meeting_user"`
	UserID     string    `gorm:"column:user_id;uniqueIndex:ux_meeting_participants_meeting_user"`
	Role       string    `gorm:"column:role"`
	CanVote    bool      `gorm:"column:can_vote"`
	VoteWeight float64   `gorm:"column:vote_weight"`
	Attendance string    `gorm:"column:attendance"`
	JoinedAt   time.Time `gorm:"column:joined_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (participantModel) TableName() string {
	return "meeting_participants"
}

func participantModelFromEntity(participant entities.Participant) participantModel {
	return participantModel{
		ID:         strings.TrimSpace(participant.ParticipantID),
		MeetingID:  strings.TrimSpace(participant.MeetingID),
		UserID:     strings.TrimSpace(participant.UserID),
		Role:       string(participant.Role),
		CanVote:    participant.CanVote,
		VoteWeight: participant.VoteWeight,
		Attendance: string(participant.Attendance),
		JoinedAt:   participant.JoinedAt.UTC(),
		UpdatedAt:  participant.UpdatedAt.UTC(),
	}
}

func (m participantModel) toEntity() entities.Participant {
	return entities.Participant{
		ParticipantID: m.ID,
		MeetingID:     m.MeetingID,
		UserID:        m.UserID,
		Role:          entities.ParticipantRole(m.Role),
		CanVote:       m.CanVote,
		VoteWeight:    m.VoteWeight,
		Attendance:    entities.Attendance(m.Attendance),
		JoinedAt:      m.JoinedAt.UTC(),
		UpdatedAt:     m.UpdatedAt.UTC(),
	}
}

// item_order avoids the reserved word "order" as a column name.
type agendaItemModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	MeetingID   string    `gorm:"column:meeting_id;index"`
	Title       string    `gorm:"column:title"`
	ItemType    string    `gorm:"column:item_type"`
	ItemOrder   int       `gorm:"column:item_order"`
	Status      string    `gorm:"column:status"`
	DurationMin int       `gorm:"column:duration_min"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (agendaItemModel) TableName() string {
	return "meeting_agenda_items"
}

func agendaItemModelFromEntity(item entities.AgendaItem) agendaItemModel {
	return agendaItemModel{
		ID:          strings.TrimSpace(item.AgendaItemID),
		MeetingID:   strings.TrimSpace(item.MeetingID),
		Title:       strings.TrimSpace(item.Title),
		ItemType:    strings.TrimSpace(item.ItemType),
		ItemOrder:   item.Order,
		Status:      string(item.Status),
		DurationMin: item.DurationMin,
		CreatedAt:   item.CreatedAt.UTC(),
		UpdatedAt:   item.UpdatedAt.UTC(),
	}
}

func (m agendaItemModel) toEntity() entities.AgendaItem {
	return entities.AgendaItem{
		AgendaItemID: m.ID,
		MeetingID:    m.MeetingID,
		Title:        m.Title,
		ItemType:     m.ItemType,
		Order:        m.ItemOrder,
		Status:       entities.AgendaItemStatus(m.Status),
		DurationMin:  m.DurationMin,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
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
	return "meeting_outbox"
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

var _ ports.MeetingRepository = (*Repository)(nil)
var _ ports.ParticipantRepository = (*Repository)(nil)
var _ ports.AgendaRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
