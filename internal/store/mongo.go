package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore backs the dashboard with a MongoDB database. Subscriptions use
// change streams when the server supports them (replica set) and fall back
// to polling otherwise.
type MongoStore struct {
	client       *mongo.Client
	database     string
	pollInterval time.Duration
}

// NewMongoStore connects to the given URI.
func NewMongoStore(ctx context.Context, uri, database string, pollInterval time.Duration) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &MongoStore{client: client, database: database, pollInterval: pollInterval}, nil
}

// collection maps a tenant-scoped path onto a Mongo collection name,
// e.g. "tenants/tenant_demo_1/products" -> "tenants.tenant_demo_1.products".
func (s *MongoStore) collection(col string) *mongo.Collection {
	name := strings.ReplaceAll(col, "/", ".")
	return s.client.Database(s.database).Collection(name)
}

func (s *MongoStore) Create(ctx context.Context, col string, doc Doc) (string, error) {
	insert := bson.M{"createdAt": time.Now().UTC()}
	for k, v := range doc {
		insert[k] = v
	}
	res, err := s.collection(col).InsertOne(ctx, insert)
	if err != nil {
		return "", err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex(), nil
	}
	return AsString(res.InsertedID), nil
}

func (s *MongoStore) Update(ctx context.Context, col string, id string, fields Doc) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	res, err := s.collection(col).UpdateOne(ctx, bson.M{"_id": mongoID(id)}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, col string, id string) error {
	res, err := s.collection(col).DeleteOne(ctx, bson.M{"_id": mongoID(id)})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListOnce(ctx context.Context, col string) ([]Doc, error) {
	cursor, err := s.collection(col).Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []Doc
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		docs = append(docs, mongoDoc(raw))
	}
	return docs, cursor.Err()
}

func (s *MongoStore) Subscribe(ctx context.Context, col string, fn func([]Doc)) (CancelFunc, error) {
	initial, err := s.ListOnce(ctx, col)
	if err != nil {
		return nil, err
	}

	stream, err := s.collection(col).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		// Standalone servers have no change streams.
		return pollSubscribe(ctx, col, s.pollInterval, s.ListOnce, fn)
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer stream.Close(context.Background())
		fn(initial)
		for stream.Next(ctx) {
			docs, err := s.ListOnce(ctx, col)
			if err != nil {
				continue
			}
			fn(docs)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}

func (s *MongoStore) DecrementStock(ctx context.Context, col string, id string, qty int) error {
	filter := bson.M{"_id": mongoID(id), "stock": bson.M{"$gte": qty}}
	res, err := s.collection(col).UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}
	count, err := s.collection(col).CountDocuments(ctx, bson.M{"_id": mongoID(id)})
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// mongoID translates a store id back into the _id the driver assigned.
func mongoID(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// mongoDoc normalizes a raw BSON document: _id becomes the "id" string and
// nested bson values are converted to plain Go types.
func mongoDoc(raw bson.M) Doc {
	doc := make(Doc, len(raw))
	for k, v := range raw {
		if k == "_id" {
			if oid, ok := v.(primitive.ObjectID); ok {
				doc["id"] = oid.Hex()
			} else {
				doc["id"] = AsString(v)
			}
			continue
		}
		doc[k] = mongoValue(v)
	}
	return doc
}

func mongoValue(v any) any {
	switch val := v.(type) {
	case primitive.DateTime:
		return val.Time()
	case bson.M:
		return mongoDoc(val)
	case primitive.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = mongoValue(item)
		}
		return out
	default:
		return v
	}
}
