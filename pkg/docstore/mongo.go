package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Mongo stores each document with its id as _id. Dates come back as
// primitive.DateTime.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

func (m *Mongo) Collection(name string) Collection {
	return &mongoCollection{coll: m.db.Collection(name)}
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *Mongo) Close() error {
	return m.client.Disconnect(context.Background())
}

type mongoCollection struct {
	coll *mongo.Collection
}

func (c *mongoCollection) Get(ctx context.Context, id string) (*Snapshot, error) {
	var doc bson.M
	err := c.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Snapshot{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return fromBSON(doc), nil
}

// Set replaces the document through an aggregation pipeline so that sentinel fields
// can use $$NOW. Plain values are wrapped in $literal to keep strings starting with
// "$" from being read as field paths.
func (c *mongoCollection) Set(ctx context.Context, id string, fields Fields) error {
	plain, stamps := splitSentinels(fields)

	doc := bson.D{{Key: "_id", Value: id}}
	for _, k := range sortedKeys(plain) {
		doc = append(doc, bson.E{Key: k, Value: bson.D{{Key: "$literal", Value: plain[k]}}})
	}
	for _, k := range stamps {
		doc = append(doc, bson.E{Key: k, Value: "$$NOW"})
	}

	pipeline := mongo.Pipeline{{{Key: "$replaceWith", Value: doc}}}
	_, err := c.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, pipeline, options.Update().SetUpsert(true))
	return err
}

func (c *mongoCollection) Update(ctx context.Context, id string, fields Fields) error {
	plain, stamps := splitSentinels(fields)

	update := bson.D{}
	if len(plain) > 0 {
		set := bson.D{}
		for _, k := range sortedKeys(plain) {
			set = append(set, bson.E{Key: k, Value: plain[k]})
		}
		update = append(update, bson.E{Key: "$set", Value: set})
	}
	if len(stamps) > 0 {
		current := bson.D{}
		for _, k := range stamps {
			current = append(current, bson.E{Key: k, Value: true})
		}
		update = append(update, bson.E{Key: "$currentDate", Value: current})
	}
	if len(update) == 0 {
		return nil
	}

	res, err := c.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection) Delete(ctx context.Context, id string) error {
	_, err := c.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	return err
}

func (c *mongoCollection) OrderedScan(ctx context.Context, field string) ([]*Snapshot, error) {
	return c.find(ctx, options.Find().SetSort(bson.D{{Key: field, Value: 1}}))
}

func (c *mongoCollection) Scan(ctx context.Context) ([]*Snapshot, error) {
	return c.find(ctx, options.Find())
}

func (c *mongoCollection) find(ctx context.Context, opts *options.FindOptions) ([]*Snapshot, error) {
	cur, err := c.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	var docs []bson.M
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromBSON(d))
	}
	return out, nil
}

func fromBSON(doc bson.M) *Snapshot {
	id := fmt.Sprint(doc["_id"])
	delete(doc, "_id")
	return &Snapshot{ID: id, Exists: true, Data: Fields(doc)}
}
