package repository

import (
	"context"
	"errors"

	"github.com/authordata/author-service/internal/author"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements Store on a MongoDB collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	return &MongoRepo{col: col}
}

// EnsureIndexes creates the ascending index backing the list sort.
func (m *MongoRepo) EnsureIndexes(ctx context.Context) error {
	idx := mongo.IndexModel{Keys: bson.D{{Key: author.SortField, Value: 1}}}
	_, err := m.col.Indexes().CreateOne(ctx, idx)
	return err
}

func (m *MongoRepo) List(ctx context.Context, skip, limit int64) ([]author.Document, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: author.SortField, Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	cur, err := m.col.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []author.Document{}
	for cur.Next(ctx) {
		var d bson.M
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) Get(ctx context.Context, id primitive.ObjectID) (author.Document, error) {
	var d bson.M
	err := m.col.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}

func (m *MongoRepo) Insert(ctx context.Context, doc bson.D) (*author.InsertResult, error) {
	res, err := m.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	return &author.InsertResult{Acknowledged: true, InsertedID: res.InsertedID}, nil
}

func (m *MongoRepo) Delete(ctx context.Context, id primitive.ObjectID) (*author.DeleteResult, error) {
	res, err := m.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return nil, err
	}
	return &author.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

func (m *MongoRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.D) (*author.UpdateResult, error) {
	res, err := m.col.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: fields}},
		options.Update().SetUpsert(false),
	)
	if err != nil {
		return nil, err
	}
	return &author.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
		UpsertedID:    res.UpsertedID,
	}, nil
}
