package appointments

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic/internal/appointments/domain"
	appointmentserrors "clinic/internal/appointments/errors"
	"clinic/internal/appointments/repository"
	mongoMigration "clinic/internal/migrations/mongo"
	"clinic/pkg/client"
	"clinic/pkg/config"
	"clinic/pkg/logger"
	"clinic/test/integration/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func setup(t *testing.T, capacity int) (repository.AppointmentRepository, repository.SlotLockRepository, *testutil.MongoHelper) {
	t.Helper()
	mongo := testutil.NewMongoHelper(t)

	cfg := &config.Config{
		MongoDatabaseName: mongo.DBName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		SlotCapacity:      capacity,
		Location:          time.UTC,
		Log:               logger.Discard(),
		Client:            &client.Client{Mongo: &client.MongoClient{Client: mongo.Client}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, mongoMigration.RunMigration(ctx, mongo.Client, mongo.DBName, cfg.Log))

	return repository.NewMongoAppointmentRepository(cfg), repository.NewMongoSlotLockRepository(cfg), mongo
}

func booking(t *testing.T, patientID string, date time.Time, at string) *domain.Appointment {
	t.Helper()
	a, err := domain.NewAppointment(domain.AppointmentParams{
		PatientID:       patientID,
		PatientName:     "Integration Patient",
		ReasonForVisit:  "General consultation",
		AppointmentDate: date,
		AppointmentTime: at,
	})
	require.NoError(t, err)
	return a
}

func nextWeek() time.Time {
	return domain.StartOfDay(time.Now().UTC()).AddDate(0, 0, 7)
}

func TestMongoRepository_RoundTrip(t *testing.T) {
	repo, _, _ := setup(t, 4)
	ctx := context.Background()

	created, err := repo.Create(ctx, booking(t, "p1", nextWeek(), "09:30"))
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID().Value())
	require.NoError(t, err)
	assert.True(t, found.Equals(created))
	assert.Equal(t, "09:30", found.AppointmentTime().String())
	assert.True(t, domain.SameDay(nextWeek(), found.AppointmentDate()))

	confirmed, err := found.Confirm()
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, confirmed))

	found, err = repo.FindByID(ctx, created.ID().Value())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, found.Status())

	require.NoError(t, repo.Delete(ctx, created.ID().Value()))
	_, err = repo.FindByID(ctx, created.ID().Value())
	assert.ErrorIs(t, err, appointmentserrors.ErrNotFound)
}

func TestMongoRepository_UniqueIndexesHoldUnderConcurrency(t *testing.T) {
	repo, _, mongo := setup(t, 2)
	ctx := context.Background()
	day := nextWeek()

	bookings := make([]*domain.Appointment, 8)
	for i := range bookings {
		bookings[i] = booking(t, "patient-"+string(rune('a'+i)), day, "10:00")
	}

	var wg sync.WaitGroup
	errs := make([]error, len(bookings))
	for i := range bookings {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Create(ctx, bookings[i])
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, appointmentserrors.ErrSlotTaken)
	}
	// Racing writers may pick the same seat; the loser is rejected, never
	// stored, so the slot can end up below capacity but never above it.
	assert.GreaterOrEqual(t, succeeded, 1)
	assert.LessOrEqual(t, succeeded, 2)
	assert.EqualValues(t, succeeded, mongo.CountDocuments(t, repository.CollectionName, bson.M{"active": true}))

	_, err := repo.Create(ctx, booking(t, "patient-a", day, "15:00"))
	if errs[0] == nil {
		assert.ErrorIs(t, err, appointmentserrors.ErrDuplicateBooking)
	}
}

func TestMongoSlotLocks(t *testing.T) {
	_, locks, _ := setup(t, 4)
	ctx := context.Background()
	at, err := domain.NewAppointmentTime("09:00")
	require.NoError(t, err)
	key := repository.SlotLockKey(nextWeek(), at)

	owner, err := locks.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, appointmentserrors.ErrLockHeld)

	require.NoError(t, locks.Release(ctx, key, "someone-else"))
	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.ErrorIs(t, err, appointmentserrors.ErrLockHeld, "only the owner can release")

	require.NoError(t, locks.Release(ctx, key, owner))
	_, err = locks.Acquire(ctx, key, time.Minute)
	assert.NoError(t, err)
}
