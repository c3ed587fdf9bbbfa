// Package stubserver is an in-memory double of the extraction service's REST
// interface for local development and tests. It does not extract anything from
// the PDF; an Extractor supplies the Berufe.
package stubserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/zentrum/internal/api"
	"github.com/Veraticus/zentrum/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadBytes bounds the accepted PDF size.
const maxUploadBytes = 32 << 20

// ErrUnparsable is returned by an Extractor that cannot read the document.
var ErrUnparsable = errors.New("PDF could not be parsed")

// Extractor turns an uploaded document into Berufe.
type Extractor func(fileName string, content []byte) ([]model.Beruf, error)

// Request is what the server recorded about one incoming request.
type Request struct {
	Method    string
	Path      string
	APIKey    string
	BaseURL   string
	RequestID string
}

// Server holds extractions in memory in upload order.
type Server struct {
	extract  Extractor
	now      func() time.Time
	logger   *slog.Logger
	items    map[string]*model.Extraction
	order    []string
	requests []Request
	mu       sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithExtractor replaces the default extractor.
func WithExtractor(e Extractor) Option {
	return func(s *Server) {
		if e != nil {
			s.extract = e
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty server.
func New(opts ...Option) *Server {
	s := &Server{
		extract: DefaultExtractor,
		now:     time.Now,
		logger:  slog.Default(),
		items:   make(map[string]*model.Extraction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DefaultExtractor accepts anything that starts with the PDF magic bytes and
// yields a single Beruf named after the file.
func DefaultExtractor(fileName string, content []byte) ([]model.Beruf, error) {
	if !bytes.HasPrefix(content, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: missing PDF header", ErrUnparsable)
	}
	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	return []model.Beruf{{
		Beschreibung:     name,
		BerufNr:          []int{},
		PruefungsBereich: []model.PruefungsBereich{},
	}}, nil
}

// Seed stores e as if it had been uploaded. An empty ID gets a new one.
func (s *Server) Seed(e model.Extraction) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if _, exists := s.items[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.items[e.ID] = &e
	return e.ID
}

// Requests returns the recorded requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.requests)
}

// Handler returns the HTTP handler serving the extraction routes.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.recordRequest())

	g := r.Group(api.BasePath)
	g.POST("", s.upload)
	g.GET("", s.list)
	g.GET("/:id", s.get)
	g.POST("/:id/verify", s.verify)
	g.DELETE("/:id", s.delete)
	g.GET("/:id/berufe", s.berufe)
	g.GET("/:id/berufe/:index", s.beruf)

	r.NoRoute(func(c *gin.Context) {
		s.fail(c, http.StatusNotFound, "No route for "+c.Request.Method+" "+c.Request.URL.Path)
	})
	return r
}

func (s *Server) recordRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		req := Request{
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			APIKey:    c.GetHeader(api.HeaderAPIKey),
			BaseURL:   c.GetHeader(api.HeaderBaseURL),
			RequestID: c.GetHeader(api.HeaderRequestID),
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		c.Next()

		s.logger.Debug("stub request",
			"method", req.Method,
			"path", req.Path,
			"status", c.Writer.Status(),
			"has_api_key", req.APIKey != "",
			"base_url_override", req.BaseURL != "",
			"request_id", req.RequestID,
			"elapsed_ms", s.now().Sub(start).Milliseconds())
	}
}

// errorBody mirrors the service's error response.
type errorBody struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Status    int       `json:"status"`
}

func (s *Server) fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorBody{
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
		Timestamp: s.now().UTC(),
	})
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		s.fail(c, http.StatusBadRequest, "Required part 'file' is not present.")
		return
	}
	if form := c.Request.MultipartForm; form != nil && (len(form.File) != 1 || len(form.File["file"]) != 1) {
		s.fail(c, http.StatusBadRequest, "Exactly one file is accepted.")
		return
	}
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" && !(api.File{ContentType: ct}).IsPDF() {
		s.fail(c, http.StatusUnsupportedMediaType, "Only PDF files are accepted, got "+ct)
		return
	}

	f, err := fh.Open()
	if err != nil {
		s.fail(c, http.StatusBadRequest, "Could not read uploaded file.")
		return
	}
	defer func() { _ = f.Close() }()
	content, err := io.ReadAll(f)
	if err != nil {
		s.fail(c, http.StatusBadRequest, "Could not read uploaded file.")
		return
	}

	berufe, err := s.extract(fh.Filename, content)
	if err != nil {
		s.fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if berufe == nil {
		berufe = []model.Beruf{}
	}

	e := model.Extraction{
		ID:             uuid.NewString(),
		SourceFileName: fh.Filename,
		ExtractedAt:    s.now().UTC(),
		Berufe:         berufe,
	}
	s.Seed(e)
	s.logger.Info("extraction stored", "id", e.ID, "file", e.SourceFileName, "berufe", len(berufe))

	c.JSON(http.StatusCreated, e.Summary())
}

func (s *Server) list(c *gin.Context) {
	s.mu.Lock()
	out := make([]model.ExtractionSummary, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Summary())
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, out)
}

// lookup returns a copy of the extraction or writes a 404.
func (s *Server) lookup(c *gin.Context) (model.Extraction, bool) {
	id := c.Param("id")
	s.mu.Lock()
	e, ok := s.items[id]
	var out model.Extraction
	if ok {
		out = *e
	}
	s.mu.Unlock()

	if !ok {
		s.fail(c, http.StatusNotFound, "Extraction not found: "+id)
		return model.Extraction{}, false
	}
	return out, true
}

func (s *Server) get(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) verify(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}

	result := Verify(e.Berufe)
	result.VerifiedAt = s.now().UTC()
	e.Verification = &result

	s.mu.Lock()
	if _, still := s.items[e.ID]; !still {
		s.mu.Unlock()
		s.fail(c, http.StatusNotFound, "Extraction not found: "+e.ID)
		return
	}
	s.items[e.ID] = &e
	s.mu.Unlock()

	s.logger.Info("extraction verified", "id", e.ID, "valid", result.Valid, "issues", len(result.Issues))
	c.JSON(http.StatusOK, e)
}

func (s *Server) delete(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
		s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	}
	s.mu.Unlock()

	if !ok {
		s.fail(c, http.StatusNotFound, "Extraction not found: "+id)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) berufe(c *gin.Context) {
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, e.Berufe)
}

func (s *Server) beruf(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		s.fail(c, http.StatusBadRequest, "Invalid Beruf index: "+c.Param("index"))
		return
	}
	e, ok := s.lookup(c)
	if !ok {
		return
	}
	if index < 0 || index >= len(e.Berufe) {
		s.fail(c, http.StatusNotFound, fmt.Sprintf("Beruf index %d out of range [0, %d)", index, len(e.Berufe)))
		return
	}
	c.JSON(http.StatusOK, e.Berufe[index])
}
