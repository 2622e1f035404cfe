package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func ns(mt *mtest.T) string {
	return mt.Coll.Database().Name() + "." + mt.Coll.Name()
}

func TestMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("list decodes the batch in order", func(mt *mtest.T) {
		a, b := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "author", Value: "Achebe"}},
			bson.D{{Key: "_id", Value: b}, {Key: "author", Value: "Borges"}},
		))
		repo := NewMongoRepo(mt.Coll)

		docs, err := repo.List(context.Background(), 3, 3)
		require.NoError(mt, err)
		require.Len(mt, docs, 2)
		require.Equal(mt, a, docs[0]["_id"])
		require.Equal(mt, "Borges", docs[1]["author"])
	})

	mt.Run("list sends sort skip and limit", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		_, err := NewMongoRepo(mt.Coll).List(context.Background(), 6, 3)
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		require.Equal(mt, "find", started.CommandName)
		cmd := started.Command
		sort := cmd.Lookup("sort").Document()
		elems, err := sort.Elements()
		require.NoError(mt, err)
		require.Len(mt, elems, 1)
		require.Equal(mt, "author", elems[0].Key())
		require.Equal(mt, int64(1), elems[0].Value().AsInt64())
		require.Equal(mt, int64(6), cmd.Lookup("skip").AsInt64())
		require.Equal(mt, int64(3), cmd.Lookup("limit").AsInt64())
		filter, err := cmd.Lookup("filter").Document().Elements()
		require.NoError(mt, err)
		require.Empty(mt, filter)
	})

	mt.Run("list past the end is empty", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		docs, err := NewMongoRepo(mt.Coll).List(context.Background(), 300, 3)
		require.NoError(mt, err)
		require.NotNil(mt, docs)
		require.Empty(mt, docs)
	})

	mt.Run("list surfaces command errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "bad skip", Name: "BadValue"}))
		_, err := NewMongoRepo(mt.Coll).List(context.Background(), 0, 3)
		require.Error(mt, err)
	})

	mt.Run("get found", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: id}, {Key: "author", Value: bson.D{{Key: "name", Value: "Jane"}}}},
		))
		doc, err := NewMongoRepo(mt.Coll).Get(context.Background(), id)
		require.NoError(mt, err)
		require.Equal(mt, id, doc["_id"])
		require.Equal(mt, bson.M{"name": "Jane"}, doc["author"])
	})

	mt.Run("get missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt), mtest.FirstBatch))
		_, err := NewMongoRepo(mt.Coll).Get(context.Background(), primitive.NewObjectID())
		require.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("insert returns generated id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		res, err := NewMongoRepo(mt.Coll).Insert(context.Background(), bson.D{{Key: "author", Value: bson.D{{Key: "name", Value: "Jane"}}}})
		require.NoError(mt, err)
		require.True(mt, res.Acknowledged)
		_, ok := res.InsertedID.(primitive.ObjectID)
		require.True(mt, ok)
	})

	mt.Run("insert write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key error"}))
		_, err := NewMongoRepo(mt.Coll).Insert(context.Background(), bson.D{{Key: "author", Value: "x"}})
		require.Error(mt, err)
	})

	mt.Run("delete reports count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		res, err := NewMongoRepo(mt.Coll).Delete(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		require.Equal(mt, int64(0), res.DeletedCount)
	})

	mt.Run("update reports counts", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		res, err := NewMongoRepo(mt.Coll).Update(context.Background(), primitive.NewObjectID(), bson.D{{Key: "name", Value: "x"}})
		require.NoError(mt, err)
		require.Equal(mt, int64(1), res.MatchedCount)
		require.Equal(mt, int64(1), res.ModifiedCount)
		require.Equal(mt, int64(0), res.UpsertedCount)
	})

	mt.Run("update sends $set without upsert", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		_, err := NewMongoRepo(mt.Coll).Update(context.Background(), id, bson.D{{Key: "name", Value: "x"}})
		require.NoError(mt, err)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		require.Equal(mt, "update", started.CommandName)
		stmt := started.Command.Lookup("updates", "0").Document()
		require.Equal(mt, id, stmt.Lookup("q", "_id").ObjectID())
		require.Equal(mt, "x", stmt.Lookup("u", "$set", "name").StringValue())
		upsert, ok := stmt.Lookup("upsert").BooleanOK()
		require.True(mt, !ok || !upsert, "update must never upsert")
	})

	mt.Run("update missing matches nothing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		res, err := NewMongoRepo(mt.Coll).Update(context.Background(), primitive.NewObjectID(), bson.D{{Key: "name", Value: "x"}})
		require.NoError(mt, err)
		require.Equal(mt, int64(0), res.MatchedCount)
		require.Nil(mt, res.UpsertedID)
	})
}
