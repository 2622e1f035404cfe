package repository

import (
	"context"
	"errors"

	"github.com/authordata/author-service/internal/author"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Store is the persistence surface of the author collection. Each method
// performs exactly one store call.
type Store interface {
	// List returns documents sorted ascending by the author field, skipping
	// skip and returning at most limit of them.
	List(ctx context.Context, skip, limit int64) ([]author.Document, error)
	// Get returns ErrNotFound when no document has the id.
	Get(ctx context.Context, id primitive.ObjectID) (author.Document, error)
	Insert(ctx context.Context, doc bson.D) (*author.InsertResult, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*author.DeleteResult, error)
	// Update applies fields as a $set onto the matching document. It never
	// creates a document.
	Update(ctx context.Context, id primitive.ObjectID, fields bson.D) (*author.UpdateResult, error)
}
