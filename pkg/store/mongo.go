package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/boardviz/pkg/board"
	apperr "github.com/matzehuels/boardviz/pkg/errors"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "boardviz"
	DefaultMongoCollection = "snapshots"
)

// mongoDocument is the stored shape: {_id: "GameState0", board: [[...], ...]}.
type mongoDocument struct {
	ID    string `bson:"_id"`
	Board []any  `bson:"board"`
}

// Mongo stores one document per snapshot key.
type Mongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// OpenMongo connects to uri and verifies the connection.
func OpenMongo(ctx context.Context, uri, database, collection string) (*Mongo, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "ping mongo")
	}
	return &Mongo{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// Snapshot loads the document with _id == key.
func (m *Mongo) Snapshot(ctx context.Context, key string) (board.Snapshot, bool, error) {
	snap, ok, err := m.get(ctx, key)
	record(ctx, KindMongo, key, ok, err)
	return snap, ok, err
}

func (m *Mongo) get(ctx context.Context, key string) (board.Snapshot, bool, error) {
	var doc mongoDocument
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return board.Snapshot{}, false, nil
	}
	if err != nil {
		return board.Snapshot{}, false, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo find %s", key)
	}
	b, err := board.FromRows(normalizeRows(doc.Board))
	if err != nil {
		return board.Snapshot{}, false, apperr.Wrap(apperr.ErrCodeInvalidSnapshot, err, "snapshot %s", key)
	}
	return board.Snapshot{Key: key, Board: b}, true, nil
}

// normalizeRows converts BSON arrays into plain slices so board.FromRows can
// read them.
func normalizeRows(rows []any) []any {
	if rows == nil {
		return nil
	}
	out := make([]any, len(rows))
	for i, r := range rows {
		if a, ok := r.(primitive.A); ok {
			out[i] = []any(a)
			continue
		}
		out[i] = r
	}
	return out
}

// Put upserts the document for snap.
func (m *Mongo) Put(ctx context.Context, snap board.Snapshot) error {
	if err := apperr.ValidateKey(snap.Key); err != nil {
		return err
	}
	rows := snap.Board.Rows()
	doc := mongoDocument{ID: snap.Key, Board: make([]any, len(rows))}
	for i, r := range rows {
		doc.Board[i] = r
	}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": snap.Key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo upsert %s", snap.Key)
	}
	return nil
}

// Delete removes the document for key.
func (m *Mongo) Delete(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo delete %s", key)
	}
	return nil
}

// Keys lists document ids in ascending order.
func (m *Mongo) Keys(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo find")
	}
	defer cur.Close(ctx)

	var keys []string
	for cur.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo decode")
		}
		keys = append(keys, doc.ID)
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStoreUnavailable, err, "mongo cursor")
	}
	return keys, nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

var _ Store = (*Mongo)(nil)
