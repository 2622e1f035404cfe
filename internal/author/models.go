package author

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SortField orders list pages.
const SortField = "author"

// PayloadField is the key the create payload is stored under.
const PayloadField = "author"

// DefaultPageSize is the number of documents returned per list page.
const DefaultPageSize = 3

// Document is a schema-free author record as read back from the store.
// Nested documents decode as bson.M so the value renders as plain JSON.
type Document = bson.M

// InsertResult mirrors the driver result of a single insert.
type InsertResult struct {
	Acknowledged bool        `json:"acknowledged"`
	InsertedID   interface{} `json:"insertedId"`
}

// DeleteResult mirrors the driver result of a single delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// UpdateResult mirrors the driver result of a single update.
type UpdateResult struct {
	Acknowledged  bool        `json:"acknowledged"`
	MatchedCount  int64       `json:"matchedCount"`
	ModifiedCount int64       `json:"modifiedCount"`
	UpsertedCount int64       `json:"upsertedCount"`
	UpsertedID    interface{} `json:"upsertedId"`
}

// ParseID validates the external form of an identifier: exactly 24
// hexadecimal characters.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}

// IsValidID reports whether s is a well-formed identifier.
func IsValidID(s string) bool {
	_, err := ParseID(s)
	return err == nil
}

var errBadPage = errors.New("page must be a non-negative integer")

// ParsePage reads the zero-based page index from the raw query value.
// An absent value is page 0. In strict mode anything other than a
// non-negative integer whose offset fits in int64 is rejected; otherwise
// such values fall back to page 0.
func ParsePage(raw string, pageSize int64, strict bool) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	page, err := strconv.ParseInt(raw, 10, 64)
	if err == nil && page >= 0 && (pageSize <= 0 || page <= math.MaxInt64/pageSize) {
		return page, nil
	}
	if !strict {
		return 0, nil
	}
	return 0, &Error{Op: OpList, Kind: ErrInvalidRequest, Err: errBadPage}
}
