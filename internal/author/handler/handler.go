package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/authordata/author-service/internal/author"
	"github.com/authordata/author-service/internal/author/service"
	"github.com/authordata/author-service/internal/config"
	"github.com/authordata/author-service/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

// legacyMessages are the per-operation bodies of legacy error mode.
var legacyMessages = map[author.Op]string{
	author.OpList:   "Could not fetch the documents",
	author.OpGet:    "Could not fetch the documents",
	author.OpCreate: "Could not create a new document",
	author.OpDelete: "Could not delete a document by id",
	author.OpUpdate: "Could not Update a document by id",
}

const legacyInvalidID = "Not a variable document id"

var errNotObject = errors.New("request body must be a JSON object")

// Handler serves the /author resource.
type Handler struct {
	svc    service.Service
	strict bool
}

// New returns a handler rendering errors in the given mode (config.ErrorModeStrict
// or config.ErrorModeLegacy).
func New(svc service.Service, errorMode string) *Handler {
	return &Handler{svc: svc, strict: errorMode != config.ErrorModeLegacy}
}

// Register routes under /author
func (h *Handler) Register(r gin.IRouter) {
	g := r.Group("/author")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.PATCH("/:id", h.Update)
}

// List returns one page of authors; query `p` selects the zero-based page.
func (h *Handler) List(c *gin.Context) {
	page, err := author.ParsePage(c.Query("p"), h.svc.PageSize(), h.strict)
	if err != nil {
		h.fail(c, author.OpList, err)
		return
	}
	docs, err := h.svc.List(c.Request.Context(), page)
	if err != nil {
		h.fail(c, author.OpList, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if !h.strict && errors.Is(err, author.ErrNotFound) {
			c.JSON(http.StatusOK, nil)
			return
		}
		h.fail(c, author.OpGet, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) Create(c *gin.Context) {
	body, err := readObject(c)
	if err != nil {
		h.fail(c, author.OpCreate, err)
		return
	}
	res, err := h.svc.Create(c.Request.Context(), body)
	if err != nil {
		h.fail(c, author.OpCreate, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Delete(c *gin.Context) {
	res, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, author.OpDelete, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Update(c *gin.Context) {
	id := c.Param("id")
	if !author.IsValidID(id) {
		h.fail(c, author.OpUpdate, &author.Error{Op: author.OpUpdate, Kind: author.ErrInvalidID})
		return
	}
	fields, err := readObject(c)
	if err != nil {
		h.fail(c, author.OpUpdate, err)
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, author.OpUpdate, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// readObject parses the request body as a single JSON object, keeping field
// order. Extended JSON wrappers such as {"$date": ...} are honored. An empty
// body is an empty object; null, arrays, scalars and trailing input are not
// objects.
func readObject(c *gin.Context) (bson.D, error) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, &author.Error{Kind: author.ErrInvalidRequest, Err: err}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return bson.D{}, nil
	}
	if trimmed[0] != '{' || !json.Valid(trimmed) {
		return nil, &author.Error{Kind: author.ErrInvalidRequest, Err: errNotObject}
	}
	var d bson.D
	if err := bson.UnmarshalExtJSON(trimmed, false, &d); err != nil {
		return nil, &author.Error{Kind: author.ErrInvalidRequest, Err: errNotObject}
	}
	if d == nil {
		d = bson.D{}
	}
	return d, nil
}

func (h *Handler) fail(c *gin.Context, op author.Op, err error) {
	kind := author.KindOf(err)
	if h.strict {
		status, code, msg := http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"
		switch kind {
		case author.ErrInvalidID:
			status, code, msg = http.StatusBadRequest, "INVALID_ID", "not a valid document id"
		case author.ErrInvalidRequest:
			status, code, msg = http.StatusBadRequest, "INVALID_REQUEST", requestMessage(err)
		case author.ErrNotFound:
			status, code, msg = http.StatusNotFound, "NOT_FOUND", "document not found"
		case author.ErrStore:
			status, code, msg = http.StatusBadGateway, "STORE_FAILURE", legacyMessages[op]
		}
		c.JSON(status, gin.H{"error": msg, "code": code, "request_id": c.GetString(middleware.RequestIDKey)})
		return
	}

	switch kind {
	case author.ErrInvalidID:
		c.JSON(http.StatusInternalServerError, gin.H{"error": legacyInvalidID})
	case author.ErrInvalidRequest:
		c.JSON(http.StatusBadRequest, gin.H{"error": requestMessage(err)})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": legacyMessages[op]})
	}
}

func requestMessage(err error) string {
	var e *author.Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return "invalid request"
}
