package repository

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/authordata/author-service/internal/author"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepo is an in-memory Store used by unit tests and the --memory dev
// mode. It follows the server's semantics for the operations the service
// issues: BSON sort order on the author field, $set with dotted paths,
// immutable _id, no upsert.
type MemoryRepo struct {
	mu    sync.RWMutex
	docs  map[primitive.ObjectID]bson.D
	order []primitive.ObjectID
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{docs: make(map[primitive.ObjectID]bson.D)}
}

// Len reports the number of stored documents.
func (m *MemoryRepo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// Ping always succeeds unless ctx is done.
func (m *MemoryRepo) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryRepo) List(ctx context.Context, skip, limit int64) ([]author.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if skip < 0 || limit < 0 {
		return nil, fmt.Errorf("skip and limit must be non-negative")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]primitive.ObjectID, len(m.order))
	copy(ids, m.order)
	sort.SliceStable(ids, func(i, j int) bool {
		a, _ := lookup(m.docs[ids[i]], author.SortField)
		b, _ := lookup(m.docs[ids[j]], author.SortField)
		return compareValues(a, b) < 0
	})

	out := []author.Document{}
	if skip >= int64(len(ids)) {
		return out, nil
	}
	ids = ids[skip:]
	if limit > 0 && limit < int64(len(ids)) {
		ids = ids[:limit]
	}
	for _, id := range ids {
		out = append(out, toM(m.docs[id]))
	}
	return out, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id primitive.ObjectID) (author.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return toM(d), nil
}

func (m *MemoryRepo) Insert(ctx context.Context, doc bson.D) (*author.InsertResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := copyValue(doc).(bson.D)
	var id primitive.ObjectID
	if v, ok := lookup(stored, "_id"); ok {
		oid, isOID := v.(primitive.ObjectID)
		if !isOID {
			return nil, fmt.Errorf("memory store only supports ObjectID _id values, got %T", v)
		}
		id = oid
	} else {
		id = primitive.NewObjectID()
		stored = append(bson.D{{Key: "_id", Value: id}}, stored...)
	}
	if _, dup := m.docs[id]; dup {
		return nil, fmt.Errorf("E11000 duplicate key error: _id %s", id.Hex())
	}
	m.docs[id] = stored
	m.order = append(m.order, id)
	return &author.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id primitive.ObjectID) (*author.DeleteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return &author.DeleteResult{Acknowledged: true}, nil
	}
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return &author.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

func (m *MemoryRepo) Update(ctx context.Context, id primitive.ObjectID, fields bson.D) (*author.UpdateResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.docs[id]
	if !ok {
		return &author.UpdateResult{Acknowledged: true}, nil
	}
	next := copyValue(cur).(bson.D)
	for _, e := range fields {
		if e.Key == "" || strings.HasPrefix(e.Key, "$") {
			return nil, fmt.Errorf("invalid field name %q in $set", e.Key)
		}
		if e.Key == "_id" || strings.HasPrefix(e.Key, "_id.") {
			if e.Key != "_id" || !reflect.DeepEqual(e.Value, id) {
				return nil, fmt.Errorf("performing an update on the path '_id' would modify the immutable field '_id'")
			}
			continue
		}
		var err error
		next, err = setPath(next, strings.Split(e.Key, "."), copyValue(e.Value))
		if err != nil {
			return nil, err
		}
	}
	res := &author.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if !reflect.DeepEqual(cur, next) {
		m.docs[id] = next
		res.ModifiedCount = 1
	}
	return res, nil
}

func lookup(d bson.D, key string) (interface{}, bool) {
	for _, e := range d {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// setPath assigns v at the dotted path inside d, creating intermediate
// documents as needed.
func setPath(d bson.D, path []string, v interface{}) (bson.D, error) {
	key := path[0]
	if key == "" {
		return nil, fmt.Errorf("empty field name in update path")
	}
	for i, e := range d {
		if e.Key != key {
			continue
		}
		if len(path) == 1 {
			d[i].Value = v
			return d, nil
		}
		child, ok := e.Value.(bson.D)
		if !ok {
			return nil, fmt.Errorf("cannot create field '%s' in element {%s: %v}", path[1], key, e.Value)
		}
		updated, err := setPath(child, path[1:], v)
		if err != nil {
			return nil, err
		}
		d[i].Value = updated
		return d, nil
	}
	if len(path) == 1 {
		return append(d, bson.E{Key: key, Value: v}), nil
	}
	child, err := setPath(bson.D{}, path[1:], v)
	if err != nil {
		return nil, err
	}
	return append(d, bson.E{Key: key, Value: child}), nil
}

func copyValue(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.D:
		out := make(bson.D, len(x))
		for i, e := range x {
			out[i] = bson.E{Key: e.Key, Value: copyValue(e.Value)}
		}
		return out
	case bson.M:
		out := make(bson.M, len(x))
		for k, e := range x {
			out[k] = copyValue(e)
		}
		return out
	case bson.A:
		out := make(bson.A, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []interface{}:
		out := make(bson.A, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	default:
		return v
	}
}

// toM converts a stored document to the shape the Mongo store decodes into.
func toM(d bson.D) bson.M {
	out := make(bson.M, len(d))
	for _, e := range d {
		out[e.Key] = toMValue(e.Value)
	}
	return out
}

func toMValue(v interface{}) interface{} {
	switch x := v.(type) {
	case bson.D:
		return toM(x)
	case bson.A:
		out := make(bson.A, len(x))
		for i, e := range x {
			out[i] = toMValue(e)
		}
		return out
	default:
		return v
	}
}
