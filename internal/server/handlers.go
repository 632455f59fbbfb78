package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/crimson-sun/taxon/internal/batch"
	"github.com/crimson-sun/taxon/internal/engine/normalizer"
	"github.com/crimson-sun/taxon/internal/model"
	"github.com/crimson-sun/taxon/internal/tabular"
)

// MaxBatchTexts caps the texts accepted by one JSON batch request.
const MaxBatchTexts = 10000

// Service is the classification surface the handlers need. *engine.Engine
// satisfies it.
type Service interface {
	batch.Classifier
	Taxonomy() []model.Category
}

// Handler serves the HTML and JSON routes.
type Handler struct {
	svc       Service
	runner    *batch.Runner
	uploadDir string
	resultDir string
	maxUpload int64
	logger    *slog.Logger
}

// HandlerConfig configures a Handler.
type HandlerConfig struct {
	UploadDir   string
	ResultDir   string
	MaxUploadMB int64
	Workers     int
	Logger      *slog.Logger
}

// NewHandler creates the upload and result directories and returns a
// Handler over svc.
func NewHandler(svc Service, cfg HandlerConfig) (*Handler, error) {
	for _, dir := range []string{cfg.UploadDir, cfg.ResultDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		svc:       svc,
		runner:    batch.New(svc, batch.WithWorkers(cfg.Workers), batch.WithLogger(logger)),
		uploadDir: cfg.UploadDir,
		resultDir: cfg.ResultDir,
		maxUpload: cfg.MaxUploadMB << 20,
		logger:    logger,
	}, nil
}

type pageData struct {
	Input      string
	Prediction *model.Prediction
	Error      string
	Accept     string
}

func (h *Handler) render(c *gin.Context, code int, data pageData) {
	data.Accept = strings.Join(tabular.Extensions(), ",")
	c.HTML(code, "index.html", data)
}

// Index serves the form.
func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, pageData{})
}

// ClassifyText classifies the form field input_text. An empty field
// redirects back to the form.
func (h *Handler) ClassifyText(c *gin.Context) {
	text := c.PostForm("input_text")
	if text == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	p := h.svc.Classify(text)
	h.render(c, http.StatusOK, pageData{Input: text, Prediction: &p})
}

// ClassifyFile classifies the description column of an uploaded table and
// responds with the result as an XLSX attachment.
func (h *Handler) ClassifyFile(c *gin.Context) {
	if c.Request.ContentLength > h.maxUpload {
		h.fail(c, http.StatusRequestEntityTooLarge, "file too large", errors.New("request body exceeds upload limit"))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(c, http.StatusRequestEntityTooLarge, "file too large", err)
			return
		}
		h.fail(c, http.StatusBadRequest, "no file uploaded", err)
		return
	}

	name := uploadName(fh.Filename)
	if _, err := tabular.Lookup(name); err != nil {
		h.fail(c, http.StatusBadRequest,
			"unsupported format, use one of "+strings.Join(tabular.Extensions(), ", "), err)
		return
	}

	// A per-request directory keeps concurrent uploads of the same name apart.
	id := uuid.New().String()
	in := filepath.Join(h.uploadDir, id, name)
	out := filepath.Join(h.resultDir, id, tabular.ResultName(name))
	for _, dir := range []string{filepath.Dir(in), filepath.Dir(out)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			h.fail(c, http.StatusInternalServerError, "cannot store upload", err)
			return
		}
	}
	if err := c.SaveUploadedFile(fh, in); err != nil {
		h.fail(c, http.StatusInternalServerError, "cannot store upload", err)
		return
	}

	summary, err := h.runner.RunFile(c.Request.Context(), in, out)
	switch {
	case errors.Is(err, tabular.ErrMissingColumn):
		h.fail(c, http.StatusBadRequest, fmt.Sprintf("the file must contain a %q column", batch.InputColumn), err)
		return
	case errors.Is(err, tabular.ErrRaggedRow):
		h.fail(c, http.StatusBadRequest, "a row has more values than the header", err)
		return
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.fail(c, http.StatusServiceUnavailable, "classification cancelled", err)
		return
	case errors.Is(err, batch.ErrWrite):
		h.fail(c, http.StatusInternalServerError, "cannot write result", err)
		return
	case err != nil:
		h.fail(c, http.StatusBadRequest, "cannot read file", err)
		return
	}

	h.logger.InfoContext(c.Request.Context(), "file classified",
		"request_id", GetRequestID(c),
		"file", name,
		"rows", summary.Rows,
	)
	c.FileAttachment(out, filepath.Base(out))
}

// fail renders the form with an error message.
func (h *Handler) fail(c *gin.Context, code int, msg string, err error) {
	_ = c.Error(err)
	h.render(c, code, pageData{Error: msg})
	c.Abort()
}

// uploadName reduces a client-supplied file name to a safe base name.
func uploadName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return "upload"
	}
	return base
}

type classifyRequest struct {
	Text string `json:"text" binding:"required"`
}

type batchRequest struct {
	Texts []any `json:"texts" binding:"required"`
}

type batchResponse struct {
	Predictions []model.Record `json:"predictions"`
	Summary     batch.Summary  `json:"summary"`
}

// Classify handles POST /v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "text is required", err)
		return
	}
	respondOK(c, model.NewRecord(req.Text, h.svc.Classify(req.Text)))
}

// ClassifyBatch handles POST /v1/classify/batch. Elements may be strings,
// numbers or null; predictions come back in request order.
func (h *Handler) ClassifyBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "texts is required", err)
		return
	}
	if len(req.Texts) > MaxBatchTexts {
		respondError(c, http.StatusBadRequest,
			fmt.Sprintf("at most %d texts per request", MaxBatchTexts), nil)
		return
	}

	preds, err := h.runner.Run(c.Request.Context(), req.Texts)
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "batch cancelled", err)
		return
	}
	recs := make([]model.Record, len(preds))
	for i, p := range preds {
		recs[i] = model.NewRecord(normalizer.Text(req.Texts[i]), p)
	}
	respondOK(c, batchResponse{Predictions: recs, Summary: batch.Summarize(preds)})
}

// Taxonomy handles GET /v1/taxonomy.
func (h *Handler) Taxonomy(c *gin.Context) {
	respondOK(c, gin.H{"categories": h.svc.Taxonomy()})
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok", "level1_classes": len(h.svc.Taxonomy())})
}
