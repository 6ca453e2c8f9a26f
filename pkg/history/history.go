// Package history records completed scheduling runs to MongoDB for
// later analysis or regression tracking - purely additive and optional,
// mirroring the shape of pkg/memo's Store implementations (a thin
// wrapper constructed from an already-configured client, Close
// releasing it) even though its write-only, append-style access
// pattern has no Get/Delete to share with that interface.
package history

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Run is one recorded scheduling run: the input program's hash, the
// final scheduled unit labels in order, the peak register pressure
// [chain.Chain.ComputeRPAgainstDAG] observed, and the wall-clock
// duration of the schedule call (pipeline included).
type Run struct {
	InputHash string    `bson:"input_hash"`
	Schedule  []string  `bson:"schedule"`
	PeakRP    int       `bson:"peak_rp"`
	WallTime  time.Duration `bson:"wall_time_ns"`
	RecordedAt time.Time `bson:"recorded_at"`
}

// Store persists [Run] documents to a MongoDB collection.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect dials uri and returns a Store writing to database.collection.
// An empty uri disables history entirely; callers should check
// [config.HistoryConfig].URI before calling Connect.
func Connect(ctx context.Context, uri, database, collection string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Record inserts run as a new document.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.RecordedAt.IsZero() {
		run.RecordedAt = time.Now()
	}
	_, err := s.collection.InsertOne(ctx, run)
	return err
}

// RecentByInputHash returns the most recent runs for a given input
// hash, newest first, for regression comparison ("did peak RP get
// worse for this exact program since last time").
func (s *Store) RecentByInputHash(ctx context.Context, inputHash string, limit int64) ([]Run, error) {
	opts := options.Find().SetSort(bson.D{{Key: "recorded_at", Value: -1}}).SetLimit(limit)
	cur, err := s.collection.Find(ctx, bson.M{"input_hash": inputHash}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var runs []Run
	if err := cur.All(ctx, &runs); err != nil {
		return nil, err
	}
	return runs, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
