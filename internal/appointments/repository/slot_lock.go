package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	appointmentserrors "clinic/internal/appointments/errors"
	"clinic/pkg/config"
	"clinic/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const LockCollectionName = "Appointment_locks"

type mongoSlotLockRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
		now:        time.Now,
	}
}

// Acquire inserts a lock document keyed by key and returns the owner token
// needed to release it. The TTL index reaps expired locks only about once a
// minute, so an expired holder is cleared here before a single retry.
func (r *mongoSlotLockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, error) {
	owner := uuid.NewString()
	err := r.insert(ctx, key, owner, ttl)
	if err == nil {
		return owner, nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "expires_at": bson.M{"$lte": r.now()}})
	if err != nil {
		return "", fmt.Errorf("failed to clear expired lock %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return "", fmt.Errorf("%w: %s", appointmentserrors.ErrLockHeld, key)
	}

	if err := r.insert(ctx, key, owner, ttl); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("%w: %s", appointmentserrors.ErrLockHeld, key)
		}
		return "", fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return owner, nil
}

// Release drops the lock only while owner still holds it. A lock that expired
// and was taken over by another request is left alone.
func (r *mongoSlotLockRepository) Release(ctx context.Context, key, owner string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key, "owner": owner})
	return err
}

func (r *mongoSlotLockRepository) insert(ctx context.Context, key, owner string, ttl time.Duration) error {
	now := r.now()
	_, err := r.collection.InsertOne(ctx, &model.AppointmentLock{
		ID:        key,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	return err
}

type memorySlotLockRepository struct {
	mu    sync.Mutex
	locks map[string]model.AppointmentLock
	now   func() time.Time
}

func NewMemorySlotLockRepository() SlotLockRepository {
	return &memorySlotLockRepository{
		locks: make(map[string]model.AppointmentLock),
		now:   time.Now,
	}
}

func (r *memorySlotLockRepository) Acquire(_ context.Context, key string, ttl time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if held, ok := r.locks[key]; ok && now.Before(held.ExpiresAt) {
		return "", fmt.Errorf("%w: %s", appointmentserrors.ErrLockHeld, key)
	}
	owner := uuid.NewString()
	r.locks[key] = model.AppointmentLock{ID: key, Owner: owner, ExpiresAt: now.Add(ttl), CreatedAt: now}
	return owner, nil
}

func (r *memorySlotLockRepository) Release(_ context.Context, key, owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if held, ok := r.locks[key]; ok && held.Owner == owner {
		delete(r.locks, key)
	}
	return nil
}
