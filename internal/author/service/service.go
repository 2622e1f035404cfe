package service

import (
	"context"
	"errors"
	"time"

	"github.com/authordata/author-service/internal/author"
	"github.com/authordata/author-service/internal/author/repository"
	"github.com/authordata/author-service/pkg/logger"
	"github.com/authordata/author-service/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson"
)

// Service defines the author operations used by the handler layer.
type Service interface {
	List(ctx context.Context, page int64) ([]author.Document, error)
	Get(ctx context.Context, id string) (author.Document, error)
	Create(ctx context.Context, payload bson.D) (*author.InsertResult, error)
	Delete(ctx context.Context, id string) (*author.DeleteResult, error)
	Update(ctx context.Context, id string, fields bson.D) (*author.UpdateResult, error)
	PageSize() int64
}

// AuthorService validates input and issues one store call per operation.
type AuthorService struct {
	store    repository.Store
	pageSize int64
	timeout  time.Duration
}

type Option func(*AuthorService)

// WithPageSize overrides the number of documents per list page.
func WithPageSize(n int) Option {
	return func(s *AuthorService) {
		if n > 0 {
			s.pageSize = int64(n)
		}
	}
}

// WithTimeout bounds every store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *AuthorService) { s.timeout = d }
}

func New(store repository.Store, opts ...Option) *AuthorService {
	s := &AuthorService{store: store, pageSize: author.DefaultPageSize}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *AuthorService) PageSize() int64 { return s.pageSize }

// List returns page `page` of documents sorted ascending by author.
func (s *AuthorService) List(ctx context.Context, page int64) ([]author.Document, error) {
	if page < 0 {
		return nil, &author.Error{Op: author.OpList, Kind: author.ErrInvalidRequest, Err: errors.New("negative page")}
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	start := time.Now()
	docs, err := s.store.List(ctx, page*s.pageSize, s.pageSize)
	s.observe(author.OpList, start, err)
	if err != nil {
		return nil, s.fail(author.OpList, err)
	}
	if docs == nil {
		docs = []author.Document{}
	}
	return docs, nil
}

func (s *AuthorService) Get(ctx context.Context, id string) (author.Document, error) {
	oid, err := author.ParseID(id)
	if err != nil {
		return nil, &author.Error{Op: author.OpGet, Kind: author.ErrInvalidID}
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	start := time.Now()
	doc, err := s.store.Get(ctx, oid)
	if errors.Is(err, repository.ErrNotFound) {
		s.observe(author.OpGet, start, nil)
		return nil, &author.Error{Op: author.OpGet, Kind: author.ErrNotFound}
	}
	s.observe(author.OpGet, start, err)
	if err != nil {
		return nil, s.fail(author.OpGet, err)
	}
	return doc, nil
}

// Create stores the payload nested under the author field.
func (s *AuthorService) Create(ctx context.Context, payload bson.D) (*author.InsertResult, error) {
	if payload == nil {
		payload = bson.D{}
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	start := time.Now()
	res, err := s.store.Insert(ctx, bson.D{{Key: author.PayloadField, Value: payload}})
	s.observe(author.OpCreate, start, err)
	if err != nil {
		return nil, s.fail(author.OpCreate, err)
	}
	return res, nil
}

func (s *AuthorService) Delete(ctx context.Context, id string) (*author.DeleteResult, error) {
	oid, err := author.ParseID(id)
	if err != nil {
		return nil, &author.Error{Op: author.OpDelete, Kind: author.ErrInvalidID}
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	start := time.Now()
	res, err := s.store.Delete(ctx, oid)
	s.observe(author.OpDelete, start, err)
	if err != nil {
		return nil, s.fail(author.OpDelete, err)
	}
	return res, nil
}

// Update overwrites the given fields on an existing document. A missing
// document is reported through MatchedCount, never created.
func (s *AuthorService) Update(ctx context.Context, id string, fields bson.D) (*author.UpdateResult, error) {
	oid, err := author.ParseID(id)
	if err != nil {
		return nil, &author.Error{Op: author.OpUpdate, Kind: author.ErrInvalidID}
	}
	if fields == nil {
		fields = bson.D{}
	}
	ctx, cancel := s.storeContext(ctx)
	defer cancel()
	start := time.Now()
	res, err := s.store.Update(ctx, oid, fields)
	s.observe(author.OpUpdate, start, err)
	if err != nil {
		return nil, s.fail(author.OpUpdate, err)
	}
	return res, nil
}

func (s *AuthorService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *AuthorService) fail(op author.Op, err error) error {
	logger.Warnf("author %s failed: %v", op, err)
	return &author.Error{Op: op, Kind: author.ErrStore, Err: err}
}

func (s *AuthorService) observe(op author.Op, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	elapsed := time.Since(start)
	metrics.StoreOperationDuration.WithLabelValues(string(op), outcome).Observe(elapsed.Seconds())
	logger.Debugf("author %s: %s in %s", op, outcome, elapsed)
}
