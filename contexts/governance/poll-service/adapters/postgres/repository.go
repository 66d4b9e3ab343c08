package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"plenum/contexts/governance/poll-service/domain/entities"
	domainerrors "plenum/contexts/governance/poll-service/domain/errors"
	"plenum/contexts/governance/poll-service/ports"
	"plenum/internal/shared/outbox"

	"github.com/google/uuid"
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

func (r *Repository) SavePoll(ctx context.Context, poll entities.Poll) error {
	row, err := pollModelFromEntity(poll)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("poll_repo_save_poll_failed", err, "poll_id", poll.PollID)
	}
	return nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID string) (entities.Poll, error) {
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(pollID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrPollNotFound
		}
		return entities.Poll{}, r.logError("poll_repo_get_poll_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	return row.toEntity()
}

func (r *Repository) GetPollByMotion(ctx context.Context, motionID string) (entities.Poll, bool, error) {
	motionID = strings.TrimSpace(motionID)
	if motionID == "" {
		return entities.Poll{}, false, nil
	}
	var row pollModel
	err := r.db.WithContext(ctx).
		Where("motion_id = ?", motionID).
		Order("created_at DESC").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, false, nil
		}
		return entities.Poll{}, false, r.logError("poll_repo_get_poll_by_motion_failed", err, "motion_id", motionID)
	}
	poll, err := row.toEntity()
	if err != nil {
		return entities.Poll{}, false, err
	}
	return poll, true, nil
}

func (r *Repository) ListPollsByMeeting(ctx context.Context, meetingID string) ([]entities.Poll, error) {
	var rows []pollModel
	err := r.db.WithContext(ctx).
		Where("meeting_id = ?", strings.TrimSpace(meetingID)).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("poll_repo_list_polls_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	items := make([]entities.Poll, 0, len(rows))
	for _, row := range rows {
		poll, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, poll)
	}
	return items, nil
}

func (r *Repository) MarkPollOpen(ctx context.Context, pollID string, openedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(pollID), string(entities.PollStatusDraft)).
		Updates(map[string]any{
			"status":     string(entities.PollStatusOpen),
			"opened_at":  openedAt.UTC(),
			"updated_at": openedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("poll_repo_mark_open_failed", result.Error, "poll_id", strings.TrimSpace(pollID))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkPollClosed(
	ctx context.Context,
	pollID string,
	results entities.TallyResult,
	closedAt time.Time,
) (bool, error) {
	payload, err := json.Marshal(results)
	if err != nil {
		return false, err
	}
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(pollID), string(entities.PollStatusOpen)).
		Updates(map[string]any{
			"status":     string(entities.PollStatusClosed),
			"results":    payload,
			"closed_at":  closedAt.UTC(),
			"updated_at": closedAt.UTC(),
		})
	if result.Error != nil {
		return false, r.logError("poll_repo_mark_closed_failed", result.Error, "poll_id", strings.TrimSpace(pollID))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) MarkPollPublished(ctx context.Context, pollID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Where("id = ? AND status = ?", strings.TrimSpace(pollID), string(entities.PollStatusClosed)).
		Update("status", string(entities.PollStatusPublished))
	if result.Error != nil {
		return false, r.logError("poll_repo_mark_published_failed", result.Error, "poll_id", strings.TrimSpace(pollID))
	}
	return result.RowsAffected > 0, nil
}

func (r *Repository) SaveVote(ctx context.Context, vote entities.Vote) error {
	row, err := voteModelFromEntity(vote)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDuplicateVote
		}
		return r.logError("poll_repo_save_vote_failed", err,
			"poll_id", vote.PollID,
			"vote_id", vote.VoteID,
		)
	}
	return nil
}

func (r *Repository) ListVotesByPoll(ctx context.Context, pollID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("poll_id = ?", strings.TrimSpace(pollID)).
		Order("cast_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("poll_repo_list_votes_failed", err, "poll_id", strings.TrimSpace(pollID))
	}
	items := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		vote, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		items = append(items, vote)
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
		return ports.MeetingProjection{}, false, r.logError("poll_repo_meeting_info_failed", err, "meeting_id", strings.TrimSpace(meetingID))
	}
	return ports.MeetingProjection{
		MeetingID: row.ID,
		OwnerID:   row.CreatedBy,
		Status:    row.Status,
		QuorumMet: row.QuorumMet,
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
		return ports.ParticipantProjection{}, false, r.logError("poll_repo_participant_failed", err,
			"meeting_id", strings.TrimSpace(meetingID),
			"user_id", strings.TrimSpace(userID),
		)
	}
	return ports.ParticipantProjection{
		MeetingID:  row.MeetingID,
		UserID:     row.UserID,
		Role:       row.Role,
		CanVote:    row.CanVote,
		VoteWeight: row.VoteWeight,
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
		return r.logError("poll_repo_append_outbox_failed", err, "outbox_id", message.OutboxID)
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
		return nil, r.logError("poll_repo_list_pending_outbox_failed", err, "limit", limit)
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
		return r.logError("poll_repo_mark_outbox_published_failed", result.Error, "outbox_id", strings.TrimSpace(outboxID))
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/poll-service",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

// SystemClock satisfies ports.Clock with wall-clock time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies ports.IDGenerator with random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type pollModel struct {
	ID        string     `gorm:"column:id;primaryKey"`
	MeetingID string     `gorm:"column:meeting_id"`
	MotionID  *string    `gorm:"column:motion_id"`
	Title     string     `gorm:"column:title"`
	PollType  string     `gorm:"column:poll_type"`
	Options   []byte     `gorm:"column:options"`
	Status    string     `gorm:"column:status"`
	Anonymous bool       `gorm:"column:anonymous"`
	Results   []byte     `gorm:"column:results"`
	CreatedBy string     `gorm:"column:created_by"`
	OpenedAt  *time.Time `gorm:"column:opened_at"`
	ClosedAt  *time.Time `gorm:"column:closed_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

func pollModelFromEntity(poll entities.Poll) (pollModel, error) {
	options, err := json.Marshal(poll.Options)
	if err != nil {
		return pollModel{}, err
	}
	row := pollModel{
		ID:        strings.TrimSpace(poll.PollID),
		MeetingID: strings.TrimSpace(poll.MeetingID),
		Title:     strings.TrimSpace(poll.Title),
		PollType:  string(poll.Type),
		Options:   options,
		Status:    string(poll.Status),
		Anonymous: poll.Anonymous,
		CreatedBy: strings.TrimSpace(poll.CreatedBy),
		OpenedAt:  normalizeOptionalTime(poll.OpenedAt),
		ClosedAt:  normalizeOptionalTime(poll.ClosedAt),
		CreatedAt: poll.CreatedAt.UTC(),
		UpdatedAt: poll.UpdatedAt.UTC(),
	}
	if motionID := strings.TrimSpace(poll.MotionID); motionID != "" {
		row.MotionID = &motionID
	}
	if poll.Results != nil {
		payload, err := json.Marshal(poll.Results)
		if err != nil {
			return pollModel{}, err
		}
		row.Results = payload
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	if row.UpdatedAt.IsZero() {
		row.UpdatedAt = row.CreatedAt
	}
	return row, nil
}

func (m pollModel) toEntity() (entities.Poll, error) {
	var options []entities.Option
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &options); err != nil {
			return entities.Poll{}, err
		}
	}
	poll := entities.Poll{
		PollID:    m.ID,
		MeetingID: m.MeetingID,
		Title:     m.Title,
		Type:      entities.PollType(m.PollType),
		Options:   options,
		Status:    entities.PollStatus(m.Status),
		Anonymous: m.Anonymous,
		CreatedBy: m.CreatedBy,
		OpenedAt:  normalizeOptionalTime(m.OpenedAt),
		ClosedAt:  normalizeOptionalTime(m.ClosedAt),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
	if m.MotionID != nil {
		poll.MotionID = strings.TrimSpace(*m.MotionID)
	}
	if len(m.Results) > 0 {
		var results entities.TallyResult
		if err := json.Unmarshal(m.Results, &results); err != nil {
			return entities.Poll{}, err
		}
		poll.Results = &results
	}
	return poll, nil
}

type voteModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	PollID        string    `gorm:"column:poll_id;uniqueIndex:ux_poll_votes_poll_user"`
	UserID        string    `gorm:"column:user_id;uniqueIndex:ux_poll_votes_poll_user"`
	Value         []byte    `gorm:"column:value"`
	Weight        float64   `gorm:"column:weight"`
	DelegatedFrom *string   `gorm:"column:delegated_from"`
	CastAt        time.Time `gorm:"column:cast_at"`
}

func (voteModel) TableName() string {
	return "poll_votes"
}

func voteModelFromEntity(vote entities.Vote) (voteModel, error) {
	value, err := json.Marshal(vote.Value)
	if err != nil {
		return voteModel{}, err
	}
	row := voteModel{
		ID:     strings.TrimSpace(vote.VoteID),
		PollID: strings.TrimSpace(vote.PollID),
		UserID: strings.TrimSpace(vote.UserID),
		Value:  value,
		Weight: vote.Weight,
		CastAt: vote.CastAt.UTC(),
	}
	if delegated := strings.TrimSpace(vote.DelegatedFrom); delegated != "" {
		row.DelegatedFrom = &delegated
	}
	if row.CastAt.IsZero() {
		row.CastAt = time.Now().UTC()
	}
	return row, nil
}

func (m voteModel) toEntity() (entities.Vote, error) {
	var value entities.VoteValue
	if len(m.Value) > 0 {
		if err := json.Unmarshal(m.Value, &value); err != nil {
			return entities.Vote{}, err
		}
	}
	vote := entities.Vote{
		VoteID: m.ID,
		PollID: m.PollID,
		UserID: m.UserID,
		Value:  value,
		Weight: m.Weight,
		CastAt: m.CastAt.UTC(),
	}
	if m.DelegatedFrom != nil {
		vote.DelegatedFrom = strings.TrimSpace(*m.DelegatedFrom)
	}
	return vote, nil
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
	return "poll_outbox"
}

// meetingProjectionModel reads the meetings table owned by the meeting module.
type meetingProjectionModel struct {
	ID        string `gorm:"column:id;primaryKey"`
	CreatedBy string `gorm:"column:created_by"`
	Status    string `gorm:"column:status"`
	QuorumMet bool   `gorm:"column:quorum_met"`
}

func (meetingProjectionModel) TableName() string {
	return "meetings"
}

// participantProjectionModel reads the participants table owned by the
// meeting module.
type participantProjectionModel struct {
	ID         string  `gorm:"column:id;primaryKey"`
	MeetingID  string  `gorm:"column:meeting_id"`
	UserID     string  `gorm:"column:user_id"`
	Role       string  `gorm:"column:role"`
	CanVote    bool    `gorm:"column:can_vote"`
	VoteWeight float64 `gorm:"column:vote_weight"`
}

func (participantProjectionModel) TableName() string {
	return "meeting_participants"
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

var _ ports.PollRepository = (*Repository)(nil)
var _ ports.VoteRepository = (*Repository)(nil)
var _ ports.MeetingDirectory = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
