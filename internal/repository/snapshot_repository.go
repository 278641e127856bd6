package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campushq/enrollment-api/internal/models"
)

// SnapshotRepository persists the enrollment ledger's state in Redis as
// three independently keyed whole-structure JSON documents. The contract is
// load/replace, never incremental update; concurrent writers would be
// last-writer-wins, which the ledger documents as a known limitation.
type SnapshotRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewSnapshotRepository constructs a snapshot repository.
func NewSnapshotRepository(client *redis.Client, prefix string, logger *zap.Logger) *SnapshotRepository {
	if prefix == "" {
		prefix = "enrollment"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRepository{client: client, prefix: prefix, logger: logger}
}

func (r *SnapshotRepository) key(name string) string {
	return r.prefix + ":" + name
}

// Load reads all three snapshots. Missing keys yield empty maps so a fresh
// deployment starts from a clean ledger.
func (r *SnapshotRepository) Load(ctx context.Context) (models.StudentRecords, error) {
	records := models.StudentRecords{
		Enrolled:   make(map[string][]models.Course),
		Waitlisted: make(map[string][]models.Course),
		Schedules:  make(map[string]models.WeekSchedule),
	}
	if err := r.load(ctx, r.key("enrolled"), &records.Enrolled); err != nil {
		return records, err
	}
	if err := r.load(ctx, r.key("waitlist"), &records.Waitlisted); err != nil {
		return records, err
	}
	if err := r.load(ctx, r.key("schedules"), &records.Schedules); err != nil {
		return records, err
	}
	return records, nil
}

// Save rewrites all three snapshots.
func (r *SnapshotRepository) Save(ctx context.Context, records models.StudentRecords) error {
	if err := r.save(ctx, r.key("enrolled"), records.Enrolled); err != nil {
		return err
	}
	if err := r.save(ctx, r.key("waitlist"), records.Waitlisted); err != nil {
		return err
	}
	return r.save(ctx, r.key("schedules"), records.Schedules)
}

func (r *SnapshotRepository) load(ctx context.Context, key string, dest interface{}) error {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal snapshot %s: %w", key, err)
	}
	return nil
}

func (r *SnapshotRepository) save(ctx context.Context, key string, value interface{}) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot %s: %w", key, err)
	}
	if err := r.client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
