package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"plenum/contexts/governance/motion-service/domain/entities"
	domainerrors "plenum/contexts/governance/motion-service/domain/errors"
	"plenum/contexts/governance/motion-service/ports"
	"plenum/internal/shared/outbox"

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

func (r *Repository) SaveMotion(ctx context.Context, motion entities.Motion) error {
	row, err := motionModelFromEntity(motion)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Save(&row).Error; err != nil {
		return r.logError("motion_repo_save_motion_failed", err, "motion_id", motion.MotionID)
	}
	return nil
}

func (r *Repository) GetMotion(ctx context.Context, motionID string) (entities.Motion, error) {
	var row motionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(motionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Motion{}, domainerrors.ErrMotionNotFound
		}
		return entities.Motion{}, r.logError("motion_repo_get_motion_failed", err, "motion_id", strings.TrimSpace(motionID))
	}
	return row.toEntity()
}

func (r *Repository) ListMotionsByMeeting(ctx context.Context, meetingID string) ([]entities.Motion, error) {
	var rows []motionModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("motion_repo_list_motions_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	items := make([]entities.Motion, 0, len(rows))
	for _, row := range rows {
		motion, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, motion)
	}
	return items, nil
}

func (r *Repository) DeleteMotion(ctx context.Context, motionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(motionID)).
		Delete(&motionModel{})
	if result.Error != nil {
		return r.logError("motion_repo_delete_motion_failed", result.Error, "motion_id", strings.TrimSpace(motionID))
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrMotionNotFound
	}
	return nil
}

// UpdateWorkflowState applies a state-guarded update. The WHERE clause pins
// the expected current state so concurrent transitions cannot both win.
func (r *Repository) UpdateWorkflowState(
	ctx context.Context,
	motionID string,
	from entities.WorkflowState,
	to entities.WorkflowState,
	updatedAt time.Time,
) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&motionModel{}).
		Where("id = ? AND state = ?", strings.TrimSpace(motionID), string(from)).
		Updates(map[string]any{
			"state":      string(to),
			"updated_at": updatedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("motion_repo_update_state_failed", result.Error, "motion_id", strings.TrimSpace(motionID))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) AppendTransition(ctx context.Context, record entities.TransitionRecord) error {
	row := transitionModel{
		ID:         strings.TrimSpace(record.RecordID),
		MotionID:   strings.TrimSpace(record.MotionID),
		FromState:  string(record.FromState),
		ToState:    string(record.ToState),
		ActorID:    strings.TrimSpace(record.ActorID),
		OccurredAt: record.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("motion_repo_append_transition_failed", err, "motion_id", record.MotionID)
	}
	return nil
}

func (r *Repository) ListTransitions(ctx context.Context, motionID string) ([]entities.TransitionRecord, error) {
	var rows []transitionModel
	err := r.db.WithContext(ctx).
		Where("motion_id = ?", strings.TrimSpace(motionID)).
		Order("occurred_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("motion_repo_list_transitions_failed", err, "motion_id", strings.TrimSpace(motionID))
	}
	items := make([]entities.TransitionRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.TransitionRecord{
			RecordID:   row.ID,
			MotionID:   row.MotionID,
			FromState:  entities.WorkflowState(row.FromState),
			ToState:    entities.WorkflowState(row.ToState),
			ActorID:    row.ActorID,
			OccurredAt: row.OccurredAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MeetingInfo(ctx context.Context, meetingID string) (ports.MeetingProjection, bool, error) {
	var row meetingProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(meetingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.MeetingProjection{}, false, nil
		}
		return ports.MeetingProjection{}, false, r.logError("motion_repo_meeting_info_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return ports.MeetingProjection{
		MeetingID: row.ID,
		OwnerID:   row.CreatedBy,
		Status:    row.Status,
	}, true, nil
}

func (r *Repository) Participant(ctx context.Context, meetingID string, userID string) (ports.ParticipantProjection, bool, error) {
	var row participantProjectionModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ? AND user_id = ?", strings.TrimSpace(meetingID), strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ParticipantProjection{}, false, nil
		}
		return ports.ParticipantProjection{}, false, r.logError("motion_repo_participant_failed", err,
			"meeting_id", strings.TrimSpace(meetingID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return ports.ParticipantProjection{
		MeetingID: row.MeetingID,
		UserID:    row.UserID,
		Role:      row.Role,
	}, true, nil
}

func (r *Repository) PollByMotion(ctx context.Context, motionID string) (ports.PollProjection, bool, error) {
	var row pollProjectionModel
	err := r.db.WithContext(ctx).
		Where("motion_id = ?", strings.TrimSpace(motionID)).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.PollProjection{}, false, nil
		}
		return ports.PollProjection{}, false, r.logError("motion_repo_poll_by_motion_failed", err, "motion_id", strings.TrimSpace(motionID))
	}
	return ports.PollProjection{
		PollID: row.ID,
		Status: row.Status,
	}, true, nil
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
		return r.logError("motion_repo_append_outbox_failed", err, "outbox_id", message.OutboxID)
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
		return nil, r.logError("motion_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("motion_repo_mark_outbox_published_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/motion-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("motion repository operation failed", fields...)
	return err
}

type motionModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	MeetingID    string    `gorm:"column:meeting_id"`
	AgendaItemID *string   `gorm:"column:agenda_item_id"`
	Title        string    `gorm:"column:title"`
	Text         string    `gorm:"column:text"`
	SubmittedBy  string    `gorm:"column:submitted_by"`
	Supporters   []byte    `gorm:"column:supporters"`
	State        string    `gorm:"column:state"`
	Category     string    `gorm:"column:category"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (motionModel) TableName() string {
	return "motions"
}

func motionModelFromEntity(motion entities.Motion) (motionModel, error) {
	supporters, err := json.Marshal(motion.Supporters)
	if err != nil {
		return motionModel{}, err
	}
	row := motionModel{
		ID:          strings.TrimSpace(motion.MotionID),
		MeetingID:   strings.TrimSpace(motion.MeetingID),
		Title:       strings.TrimSpace(motion.Title),
		Text:        motion.Text,
		SubmittedBy: strings.TrimSpace(motion.SubmittedBy),
		Supporters:  supporters,
		State:       string(motion.State),
		Category:    strings.TrimSpace(motion.Category),
		CreatedAt:   motion.CreatedAt.UTC(),
		UpdatedAt:   motion.UpdatedAt.UTC(),
	}
	if agendaItemID := strings.TrimSpace(motion.AgendaItemID); agendaItemID != "" {
		row.AgendaItemID = &agendaItemID
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m motionModel) toEntity() (entities.Motion, error) {
	var supporters []string
	if len(m.Supporters) > 0 {
		if err := json.Unmarshal(m.Supporters, &supporters); err != nil {
			return entities.Motion{}, err
		}
	}
	motion := entities.Motion{
		MotionID:    m.ID,
		MeetingID:   m.MeetingID,
		Title:       m.Title,
		Text:        m.Text,
		SubmittedBy: m.SubmittedBy,
		Supporters:  supporters,
		State:       entities.WorkflowState(m.State),
		Category:    m.Category,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
	if m.AgendaItemID != nil {
		motion.AgendaItemID = strings.TrimSpace(*m.AgendaItemID)
	}
	return motion, nil
}

type transitionModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	MotionID   string    `gorm:"column:motion_id;index"`
	FromState  string    `gorm:"column:from_state"`
	ToState    string    `gorm:"column:to_state"`
	ActorID    string    `gorm:"column:actor_id"`
	OccurredAt time.Time `gorm:"column:occurred_at"`
}

func (transitionModel) TableName() string {
	return "motion_transitions"
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
	return "motion_outbox"
}

// meetingProjectionModel reads the meetings table owned by the meeting module.
type meetingProjectionModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	CreatedBy string `gorm:"column:created_by"`
	Status    string `gorm:"column:status"`
}

func (meetingProjectionModel) TableName() string {
	return "meetings"
}

// participantProjectionModel reads the participants table owned by the
// meeting module.
type participantProjectionModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	MeetingID string `gorm:"column:meeting_id"`
	UserID    string `gorm:"column:user_id"`
	Role      string `gorm:"column:role"`
}

func (participantProjectionModel) TableName() string {
	return "meeting_participants"
}

// pollProjectionModel reads the polls table owned by the poll module.
type pollProjectionModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	MotionID  *string   `gorm:"column:motion_id"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (pollProjectionModel) TableName() string {
	return "polls"
}

var _ ports.MotionRepository = (*Repository)(nil)
var _ ports.MeetingDirectory = (*Repository)(nil)
var _ ports.PollDirectory = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
