package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"whatsfleet/internal/domain/broadcast"
	"whatsfleet/internal/infra/database"
	"whatsfleet/pkg/logger"
)

// BroadcastRepository implements broadcast.Repository using Bun ORM.
type BroadcastRepository struct {
	db     *bun.DB
	logger logger.Logger
}

func NewBroadcastRepository(db *bun.DB, log logger.Logger) broadcast.Repository {
	return &BroadcastRepository{db: db, logger: log}
}

func (r *BroadcastRepository) Create(ctx context.Context, b *broadcast.Broadcast) error {
	model, err := database.ToBroadcastModel(b)
	if err != nil {
		return err
	}
	if _, err := r.db.NewInsert().Model(model).Exec(ctx); err != nil {
		r.logger.ErrorWithError("failed to create broadcast", err, logger.Fields{"broadcast_id": b.ID()})
		return fmt.Errorf("failed to create broadcast: %w", err)
	}
	return nil
}

func (r *BroadcastRepository) GetByID(ctx context.Context, id string) (*broadcast.Broadcast, error) {
	var model database.BroadcastModel
	err := r.db.NewSelect().Model(&model).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, broadcast.ErrBroadcastNotFound
		}
		return nil, fmt.Errorf("failed to get broadcast by id: %w", err)
	}
	return database.FromBroadcastModel(&model)
}

func (r *BroadcastRepository) List(ctx context.Context, ownerID string, limit, offset int) ([]*broadcast.Broadcast, int, error) {
	var models []database.BroadcastModel
	err := r.db.NewSelect().Model(&models).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list broadcasts: %w", err)
	}

	total, err := r.db.NewSelect().Model((*database.BroadcastModel)(nil)).
		Where("owner_id = ?", ownerID).Count(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count broadcasts: %w", err)
	}

	broadcasts := make([]*broadcast.Broadcast, 0, len(models))
	for i := range models {
		b, err := database.FromBroadcastModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert broadcast model", err, logger.Fields{"broadcast_id": models[i].ID})
			continue
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, total, nil
}

func (r *BroadcastRepository) Update(ctx context.Context, b *broadcast.Broadcast) error {
	model, err := database.ToBroadcastModel(b)
	if err != nil {
		return err
	}
	result, err := r.db.NewUpdate().Model(model).Where("id = ?", b.ID()).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update broadcast: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return broadcast.ErrBroadcastNotFound
	}
	return nil
}

// ListDue returns draft broadcasts whose scheduled_at has elapsed, feeding
// the 30s scheduler tick (C8, §4.5).
func (r *BroadcastRepository) ListDue(ctx context.Context, limit int) ([]*broadcast.Broadcast, error) {
	var models []database.BroadcastModel
	err := r.db.NewSelect().Model(&models).
		Where("status = ?", string(broadcast.StatusDraft)).
		Where("scheduled_at <= ?", time.Now()).
		Order("scheduled_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list due broadcasts: %w", err)
	}
	broadcasts := make([]*broadcast.Broadcast, 0, len(models))
	for i := range models {
		b, err := database.FromBroadcastModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert broadcast model", err, logger.Fields{"broadcast_id": models[i].ID})
			continue
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, nil
}

// BeginProcessing atomically flips draft -> processing, the same claim
// idiom DeviceRepository.ClaimUnassigned uses for device assignment.
func (r *BroadcastRepository) BeginProcessing(ctx context.Context, id string) (bool, error) {
	result, err := r.db.NewUpdate().
		Model((*database.BroadcastModel)(nil)).
		Set("status = ?", string(broadcast.StatusProcessing)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", id).
		Where("status = ?", string(broadcast.StatusDraft)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin processing broadcast: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows == 1, nil
}

// ListProcessingWithoutJob feeds the always-on queueing-tick fallback (§4.5,
// §9): processing broadcasts that currently have no live broadcast_jobs row.
func (r *BroadcastRepository) ListProcessingWithoutJob(ctx context.Context, limit int) ([]*broadcast.Broadcast, error) {
	var models []database.BroadcastModel
	err := r.db.NewSelect().Model(&models).
		Where("status = ?", string(broadcast.StatusProcessing)).
		Where(`id NOT IN (SELECT broadcast_id FROM broadcast_jobs WHERE status IN (?, ?))`,
			string(broadcast.JobQueued), string(broadcast.JobRunning)).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list processing broadcasts without job: %w", err)
	}
	broadcasts := make([]*broadcast.Broadcast, 0, len(models))
	for i := range models {
		b, err := database.FromBroadcastModel(&models[i])
		if err != nil {
			r.logger.ErrorWithError("failed to convert broadcast model", err, logger.Fields{"broadcast_id": models[i].ID})
			continue
		}
		broadcasts = append(broadcasts, b)
	}
	return broadcasts, nil
}

// QueueRepository implements broadcast.QueueRepository against broadcast_jobs,
// the literal durable queue backing C6.
type QueueRepository struct {
	db     *bun.DB
	logger logger.Logger
}

func NewQueueRepository(db *bun.DB, log logger.Logger) broadcast.QueueRepository {
	return &QueueRepository{db: db, logger: log}
}

func (r *QueueRepository) Enqueue(ctx context.Context, broadcastID string) error {
	model := &database.BroadcastJobModel{
		ID:          uuid.New().String(),
		BroadcastID: broadcastID,
		Status:      string(broadcast.JobQueued),
	}
	_, err := r.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to enqueue broadcast job: %w", err)
	}
	return nil
}

// Claim atomically takes one due, queued job for serverID. The UPDATE only
// matches rows still queued and due, so a single-row affect means this
// server won the claim; any subsequent SELECT just reads back the winner.
func (r *QueueRepository) Claim(ctx context.Context, serverID string) (*broadcast.Job, bool, error) {
	var candidate database.BroadcastJobModel
	err := r.db.NewSelect().Model(&candidate).
		Where("status = ?", string(broadcast.JobQueued)).
		Where("next_attempt_at <= ?", time.Now().Unix()).
		Order("next_attempt_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to find claimable job: %w", err)
	}

	result, err := r.db.NewUpdate().
		Model((*database.BroadcastJobModel)(nil)).
		Set("status = ?", string(broadcast.JobRunning)).
		Set("claimed_by = ?", serverID).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", candidate.ID).
		Where("status = ?", string(broadcast.JobQueued)).
		Exec(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to claim job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows != 1 {
		return nil, false, nil
	}

	candidate.Status = string(broadcast.JobRunning)
	candidate.ClaimedBy = serverID
	return database.FromBroadcastJobModel(&candidate), true, nil
}

func (r *QueueRepository) Complete(ctx context.Context, jobID string) error {
	_, err := r.db.NewUpdate().
		Model((*database.BroadcastJobModel)(nil)).
		Set("status = ?", string(broadcast.JobDone)).
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", jobID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}
	return nil
}

// Retry bumps the attempt counter, or marks the job permanently failed once
// maxAttempts is exhausted (§4.5 worker retry policy).
func (r *QueueRepository) Retry(ctx context.Context, jobID string, lastError string, nextAttemptAt int64, maxAttempts int) error {
	var job database.BroadcastJobModel
	if err := r.db.NewSelect().Model(&job).Where("id = ?", jobID).Scan(ctx); err != nil {
		return fmt.Errorf("failed to load job for retry: %w", err)
	}

	nextAttempt := job.Attempt + 1
	status := string(broadcast.JobQueued)
	if nextAttempt >= maxAttempts {
		status = string(broadcast.JobFailed)
	}

	_, err := r.db.NewUpdate().
		Model((*database.BroadcastJobModel)(nil)).
		Set("status = ?", status).
		Set("attempt = ?", nextAttempt).
		Set("next_attempt_at = ?", nextAttemptAt).
		Set("last_error = ?", lastError).
		Set("claimed_by = ''").
		Set("updated_at = CURRENT_TIMESTAMP").
		Where("id = ?", jobID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to retry job: %w", err)
	}
	return nil
}

func (r *QueueRepository) HasLiveJob(ctx context.Context, broadcastID string) (bool, error) {
	count, err := r.db.NewSelect().Model((*database.BroadcastJobModel)(nil)).
		Where("broadcast_id = ?", broadcastID).
		Where("status IN (?, ?)", string(broadcast.JobQueued), string(broadcast.JobRunning)).
		Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check live job: %w", err)
	}
	return count > 0, nil
}
