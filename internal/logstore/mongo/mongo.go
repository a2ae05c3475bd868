package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"urlshort/internal/models"
)

const (
	databaseName   = "url_shortener"
	collectionName = "access_logs"
)

type accessLogDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ShortCode string             `bson:"short_code"`
	IP        string             `bson:"ip"`
	Timestamp primitive.DateTime `bson:"timestamp"`
	UserAgent string             `bson:"user_agent,omitempty"`
}

func (d *accessLogDocument) ToAccessLog() models.AccessLog {
	return models.AccessLog{
		ID:        d.ID.Hex(),
		ShortCode: d.ShortCode,
		IP:        d.IP,
		Timestamp: d.Timestamp.Time().UTC(),
		UserAgent: d.UserAgent,
	}
}

// AccessLogRepository appends access events to a MongoDB collection.
// The collection is treated as a schema-less append-only sink: events are
// never updated or deleted, and the resolution path never reads them back.
type AccessLogRepository struct {
	collection *mongo.Collection
}

// Connect establishes a MongoDB client and verifies the connection.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	const op = "logstore.mongo.Connect"

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect to mongodb: %w", op, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("%s: failed to ping mongodb: %w", op, err)
	}

	return client, nil
}

func NewAccessLogRepository(client *mongo.Client) *AccessLogRepository {
	return &AccessLogRepository{
		collection: client.Database(databaseName).Collection(collectionName),
	}
}

// Append inserts a single access event. Safe for concurrent use; no ordering
// guarantee is made between events.
func (r *AccessLogRepository) Append(ctx context.Context, event models.AccessLog) error {
	const op = "logstore.mongo.AccessLogRepository.Append"

	doc := accessLogDocument{
		ShortCode: event.ShortCode,
		IP:        event.IP,
		Timestamp: primitive.NewDateTimeFromTime(event.Timestamp),
		UserAgent: event.UserAgent,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("%s: failed to append access log: %w", op, err)
	}

	return nil
}

// Recent returns up to limit of the most recently appended access events,
// newest first.
func (r *AccessLogRepository) Recent(ctx context.Context, limit int64) ([]models.AccessLog, error) {
	const op = "logstore.mongo.AccessLogRepository.Recent"

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(limit)

	cur, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to query access logs: %w", op, err)
	}
	defer cur.Close(ctx)

	var docs []accessLogDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: failed to decode access logs: %w", op, err)
	}

	logs := make([]models.AccessLog, 0, len(docs))
	for i := range docs {
		logs = append(logs, docs[i].ToAccessLog())
	}

	return logs, nil
}
