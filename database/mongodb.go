package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"clinic-booking-chatbot/config"
	"clinic-booking-chatbot/models"
	"clinic-booking-chatbot/utils"
)

const (
	doctorsCollection      = "doctors"
	appointmentsCollection = "appointments"
	countersCollection     = "counters"
	messagesCollection     = "messages"

	appointmentCounterID = "appointment_id"
)

// MongoStore is the MongoDB scheduling store. It also records chat messages.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// ConnectMongoDB establishes connection to MongoDB, creates indexes and
// seeds the doctor catalog when the collection is empty.
func ConnectMongoDB(ctx context.Context, cfg *config.Config, doctors []models.Doctor, logger *zap.Logger) (*MongoStore, error) {
	logger = utils.OrNop(logger)
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.BuildDatabaseURI()).
		SetMaxPoolSize(uint64(cfg.Database.MaxConnections)).
		SetMinPoolSize(uint64(cfg.Database.MinConnections)).
		SetMaxConnIdleTime(cfg.Database.MaxIdleTime)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("Connected to MongoDB", zap.String("database", cfg.Database.Name))

	return openMongoStore(ctx, client, cfg.Database.Name, doctors, logger)
}

// openMongoStore prepares the database on a connected client. The client is
// disconnected when preparation fails.
func openMongoStore(ctx context.Context, client *mongo.Client, dbName string, doctors []models.Doctor, logger *zap.Logger) (*MongoStore, error) {
	s := &MongoStore{client: client, db: client.Database(dbName), logger: utils.OrNop(logger)}

	err := s.createIndexes(ctx)
	if err != nil {
		err = fmt.Errorf("failed to create indexes: %w", err)
	} else {
		err = s.seedDoctors(ctx, doctors)
	}
	if err != nil {
		if cerr := s.Close(context.Background()); cerr != nil {
			s.logger.Warn("Failed to release MongoDB client", zap.Error(cerr))
		}
		return nil, err
	}
	return s, nil
}

// createIndexes creates necessary indexes
func (s *MongoStore) createIndexes(ctx context.Context) error {
	doctorIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "specialty", Value: 1}}},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if _, err := s.db.Collection(doctorsCollection).Indexes().CreateMany(ctx, doctorIndexes); err != nil {
		return fmt.Errorf("failed to create doctor indexes: %w", err)
	}

	appointmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "appointment_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "patient_name", Value: 1}}},
		{
			Keys: bson.D{
				{Key: "doctor_name", Value: 1},
				{Key: "appointment_date", Value: 1},
			},
		},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}
	if _, err := s.db.Collection(appointmentsCollection).Indexes().CreateMany(ctx, appointmentIndexes); err != nil {
		return fmt.Errorf("failed to create appointment indexes: %w", err)
	}

	messageIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := s.db.Collection(messagesCollection).Indexes().CreateMany(ctx, messageIndexes); err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}

	s.logger.Debug("Database indexes created successfully")
	return nil
}

func (s *MongoStore) seedDoctors(ctx context.Context, doctors []models.Doctor) error {
	coll := s.db.Collection(doctorsCollection)
	n, err := coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 || len(doctors) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(doctors))
	for _, d := range doctors {
		docs = append(docs, d)
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("seed doctors: %w", err)
	}
	s.logger.Info("Seeded doctor catalog", zap.Int("doctors", len(doctors)))
	return nil
}

func (s *MongoStore) GetAvailableDoctors(ctx context.Context, specialty string) ([]models.Doctor, error) {
	doctors := []models.Doctor{}
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	if specialty == "" {
		return doctors, nil
	}

	filter := bson.M{"specialty": primitive.Regex{Pattern: regexp.QuoteMeta(specialty), Options: "i"}}
	cursor, err := s.db.Collection(doctorsCollection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find doctors: %w", err)
	}
	if err := cursor.All(ctx, &doctors); err != nil {
		return nil, fmt.Errorf("decode doctors: %w", err)
	}
	return doctors, nil
}

// nextAppointmentID atomically increments the appointment counter.
func (s *MongoStore) nextAppointmentID(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.db.Collection(countersCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": appointmentCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next appointment id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MongoStore) BookAppointment(ctx context.Context, req models.BookingRequest) (int64, error) {
	if err := validateBooking(req); err != nil {
		return 0, err
	}
	id, err := s.nextAppointmentID(ctx)
	if err != nil {
		return 0, err
	}
	appt := models.NewAppointment(id, req, time.Now().UTC())
	if _, err := s.db.Collection(appointmentsCollection).InsertOne(ctx, appt); err != nil {
		return 0, fmt.Errorf("insert appointment: %w", err)
	}
	return id, nil
}

func (s *MongoStore) GetAppointment(ctx context.Context, id int64) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.Collection(appointmentsCollection).FindOne(ctx, bson.M{"appointment_id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &appt, nil
}

func (s *MongoStore) FindAppointments(ctx context.Context, patientName string) ([]models.Appointment, error) {
	filter := bson.M{"patient_name": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(strings.TrimSpace(patientName)) + "$",
		Options: "i",
	}}
	cursor, err := s.db.Collection(appointmentsCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "appointment_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	appointments := []models.Appointment{}
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

func (s *MongoStore) CancelAppointment(ctx context.Context, id int64) error {
	res, err := s.db.Collection(appointmentsCollection).UpdateOne(ctx,
		bson.M{"appointment_id": id},
		bson.M{"$set": bson.M{"status": models.AppointmentCancelled}},
	)
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	if res.MatchedCount == 0 {
		return models.ErrAppointmentNotFound
	}
	return nil
}

// SaveMessage records one chat exchange.
func (s *MongoStore) SaveMessage(ctx context.Context, message *models.Message) error {
	if message.ID.IsZero() {
		message.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(messagesCollection).InsertOne(ctx, message); err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	s.logger.Info("Disconnected from MongoDB")
	return nil
}
