package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clinic/internal/appointments/domain"
	appointmentserrors "clinic/internal/appointments/errors"
	"clinic/internal/appointments/mapper"
	"clinic/pkg/config"
	mongotx "clinic/pkg/db/mongo"
	"clinic/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionName = "Appointments"

	// Unique partial indexes over active appointments. The migration job
	// creates them; the names are matched when mapping duplicate key errors.
	PatientDayIndex = "uniq_active_patient_day"
	SlotSeatIndex   = "uniq_active_slot_seat"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
	now        func() time.Time
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
		now:        time.Now,
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without detaching it from its session.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// Create assigns the lowest free seat of the slot and inserts. The unique
// indexes are the final word when two writers race for the same seat or day.
func (r *mongoAppointmentRepository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc := mapper.ToModel(appointment)
	doc.ID = ""
	doc.Date = doc.Date.UTC()
	doc.CreatedAt = doc.CreatedAt.UTC().Truncate(time.Millisecond)

	seat, err := r.freeSeat(ctx, doc.DateKey, doc.AppointmentTime, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}
	doc.SlotIndex = seat

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, r.mapWriteError(err, "failed to create appointment")
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	id, err := domain.NewAppointmentID(oid.Hex())
	if err != nil {
		return nil, err
	}
	return appointment.WithID(id), nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var doc model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return r.toDomain(&doc)
}

func (r *mongoAppointmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(chronological()).
		SetLimit(int64(limit)).
		SetSkip(offset)

	return r.find(ctx, bson.M{}, opts)
}

func (r *mongoAppointmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	return count, nil
}

// Update replaces the booking fields. A seat is kept while the slot is
// unchanged and reassigned when the appointment moves.
func (r *mongoAppointmentRepository) Update(ctx context.Context, appointment *domain.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	id := appointment.ID().Value()
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	var current model.Appointment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID},
		options.FindOne().SetProjection(bson.M{"date_key": 1, "time": 1, "slot_index": 1, "active": 1}),
	).Decode(&current)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return appointmentserrors.ErrNotFound
		}
		return fmt.Errorf("failed to load appointment: %w", err)
	}

	doc := mapper.ToModel(appointment)
	seat := current.SlotIndex
	movedSlot := current.DateKey != doc.DateKey || current.AppointmentTime != doc.AppointmentTime
	if doc.Active && (movedSlot || !current.Active) {
		if seat, err = r.freeSeat(ctx, doc.DateKey, doc.AppointmentTime, objectID); err != nil {
			return err
		}
	}

	update := bson.M{
		"$set": bson.M{
			"patient_id":       doc.PatientID,
			"patient_name":     doc.PatientName,
			"reason_for_visit": doc.ReasonForVisit,
			"appointment_date": doc.Date.UTC(),
			"date_key":         doc.DateKey,
			"time":             doc.AppointmentTime,
			"time_minutes":     doc.TimeMinutes,
			"status":           doc.Status,
			"active":           doc.Active,
			"slot_index":       seat,
			"contact_number":   doc.ContactNumber,
			"doctor_name":      doc.DoctorName,
			"updated_at":       doc.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return r.mapWriteError(err, "failed to update appointment")
	}

	if result.MatchedCount == 0 {
		return appointmentserrors.ErrNotFound
	}

	return nil
}

func (r *mongoAppointmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	if result.DeletedCount == 0 {
		return appointmentserrors.ErrNotFound
	}

	return nil
}

func (r *mongoAppointmentRepository) GetAll(ctx context.Context) ([]*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.find(ctx, bson.M{}, options.Find().SetSort(chronological()))
}

func (r *mongoAppointmentRepository) GetTodayAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"date_key": r.todayKey()}
	return r.find(ctx, filter, options.Find().SetSort(chronological()))
}

func (r *mongoAppointmentRepository) GetTodayConfirmedAppointments(ctx context.Context) ([]*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date_key": r.todayKey(),
		"status":   string(domain.StatusConfirmed),
	}
	return r.find(ctx, filter, options.Find().SetSort(chronological()))
}

// Date keys are zero padded YYYY-MM-DD, so string order is calendar order.
func (r *mongoAppointmentRepository) GetAppointmentsByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date_key": bson.M{
			"$gte": domain.DateKey(start),
			"$lte": domain.DateKey(end),
		},
	}
	return r.find(ctx, filter, options.Find().SetSort(chronological()))
}

func (r *mongoAppointmentRepository) CheckTimeSlotAvailability(ctx context.Context, date time.Time, at domain.AppointmentTime, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"date_key": domain.DateKey(date),
		"time":     at.String(),
		"active":   true,
	}
	if err := excludeFrom(filter, excludeID); err != nil {
		return false, err
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to count slot bookings: %w", err)
	}
	return count < int64(r.cfg.SlotCapacity), nil
}

func (r *mongoAppointmentRepository) CheckPatientDuplicateAppointment(ctx context.Context, patientID string, date time.Time, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"patient_id": patientID,
		"date_key":   domain.DateKey(date),
		"active":     true,
	}
	if err := excludeFrom(filter, excludeID); err != nil {
		return false, err
	}

	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to count patient bookings: %w", err)
	}
	return count > 0, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

func (r *mongoAppointmentRepository) Ping(ctx context.Context) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.db.Client().Ping(ctx, readpref.Primary())
}

// freeSeat returns the lowest seat in [0, SlotCapacity) not held by another
// active appointment of the slot.
func (r *mongoAppointmentRepository) freeSeat(ctx context.Context, dateKey, at string, exclude primitive.ObjectID) (int, error) {
	filter := bson.M{
		"date_key": dateKey,
		"time":     at,
		"active":   true,
	}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"slot_index": 1}))
	if err != nil {
		return 0, fmt.Errorf("failed to read slot seats: %w", err)
	}
	defer cursor.Close(ctx)

	var taken []struct {
		SlotIndex int `bson:"slot_index"`
	}
	if err := cursor.All(ctx, &taken); err != nil {
		return 0, fmt.Errorf("failed to decode slot seats: %w", err)
	}

	used := make(map[int]bool, len(taken))
	for _, t := range taken {
		used[t.SlotIndex] = true
	}
	for seat := 0; seat < r.cfg.SlotCapacity; seat++ {
		if !used[seat] {
			return seat, nil
		}
	}
	return 0, appointmentserrors.ErrSlotTaken
}

func (r *mongoAppointmentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*domain.Appointment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []*model.Appointment
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	appointments := make([]*domain.Appointment, 0, len(docs))
	for _, doc := range docs {
		a, err := r.toDomain(doc)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, nil
}

func (r *mongoAppointmentRepository) toDomain(doc *model.Appointment) (*domain.Appointment, error) {
	a, err := mapper.FromModel(doc, r.cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("stored appointment %s is invalid: %w", doc.ID, err)
	}
	return a, nil
}

func (r *mongoAppointmentRepository) mapWriteError(err error, msg string) error {
	switch {
	case mongotx.IsDuplicateKeyOn(err, SlotSeatIndex):
		return fmt.Errorf("%w: %v", appointmentserrors.ErrSlotTaken, err)
	case mongotx.IsDuplicateKeyOn(err, PatientDayIndex):
		return fmt.Errorf("%w: %v", appointmentserrors.ErrDuplicateBooking, err)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}

func (r *mongoAppointmentRepository) todayKey() string {
	return domain.DateKey(r.now().In(r.cfg.Location))
}

func chronological() bson.D {
	return bson.D{
		{Key: "date_key", Value: 1},
		{Key: "time_minutes", Value: 1},
		{Key: "created_at", Value: 1},
	}
}

func excludeFrom(filter bson.M, excludeID string) error {
	if excludeID == "" {
		return nil
	}
	objectID, err := primitive.ObjectIDFromHex(excludeID)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmentserrors.ErrInvalidID, excludeID)
	}
	filter["_id"] = bson.M{"$ne": objectID}
	return nil
}
