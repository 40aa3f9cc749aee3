// Package api exposes the suggester's HTTP surface: the classification
// endpoint, admin operations for sync and training, and health probes.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/suqly/category-suggester/internal/domain"
	"github.com/suqly/category-suggester/internal/logger"
	"github.com/suqly/category-suggester/internal/syncer"
	"github.com/suqly/category-suggester/internal/telemetry"
)

// Classifier serves classification requests.
type Classifier interface {
	Classify(ctx context.Context, text string, lang domain.Language) ([]domain.Suggestion, error)
}

// SyncRunner runs a full category synchronization.
type SyncRunner interface {
	FullSync(ctx context.Context) (syncer.Report, error)
}

// Trainer builds per-language prediction models.
type Trainer interface {
	Train(docs []domain.TrainingDocument, lang domain.Language) error
	Ready(lang domain.Language) bool
}

// DocumentStore is the document surface the admin endpoints need.
type DocumentStore interface {
	GetAllDocuments(ctx context.Context) ([]domain.TrainingDocument, error)
	GetLeafDocuments(ctx context.Context) ([]domain.TrainingDocument, error)
	AppendExample(ctx context.Context, categoryID int64, lang domain.Language, text string) error
	Ping(ctx context.Context) error
}

// DatabasePinger reports relational store reachability for readiness.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}

// Handler handles HTTP requests for the suggester API.
type Handler struct {
	classifier Classifier
	syncer     SyncRunner
	trainer    Trainer
	store      DocumentStore
	db         DatabasePinger
	telemetry  *telemetry.Provider
	logger     logger.Logger
}

// NewHandler creates a new API handler. tel may be nil.
func NewHandler(
	classifier Classifier,
	sync SyncRunner,
	trainer Trainer,
	store DocumentStore,
	db DatabasePinger,
	tel *telemetry.Provider,
	log logger.Logger,
) *Handler {
	return &Handler{
		classifier: classifier,
		syncer:     sync,
		trainer:    trainer,
		store:      store,
		db:         db,
		telemetry:  tel,
		logger:     log,
	}
}

// Classify handles POST /api/v1/classify
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid classification request", logger.Error(err))
		writeError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
		return
	}

	suggestions, err := h.classifier.Classify(c.Request.Context(), req.Text, domain.Language(req.Language))
	if err != nil {
		h.writeClassifyError(c, req.Language, err)
		return
	}

	c.JSON(http.StatusOK, toClassifyResponse(suggestions))
}

func (h *Handler) writeClassifyError(c *gin.Context, language string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.recordClassifyFailure(c, language, codeInvalidInput)
		writeError(c, http.StatusBadRequest, codeInvalidInput, err.Error())

	case errors.Is(err, domain.ErrModelNotReady):
		h.recordClassifyFailure(c, language, codeModelNotReady)
		writeError(c, http.StatusServiceUnavailable, codeModelNotReady,
			"no trained model for this language yet")

	case errors.Is(err, domain.ErrDatabaseUnavailable):
		h.logger.Error("classification failed, no usable data", logger.Error(err))
		h.recordClassifyFailure(c, language, codeDatabaseUnavailable)
		writeError(c, http.StatusServiceUnavailable, codeDatabaseUnavailable,
			"document store unavailable and no cached snapshot")

	default:
		h.logger.Error("classification failed", logger.Error(err))
		h.recordClassifyFailure(c, language, codeInternal)
		writeError(c, http.StatusInternalServerError, codeInternal, "classification failed")
	}
}

func (h *Handler) recordClassifyFailure(c *gin.Context, language, code string) {
	if h.telemetry == nil {
		return
	}
	h.telemetry.RecordClassificationFailure(c.Request.Context(), language, code)
}

// Sync handles POST /api/v1/sync
func (h *Handler) Sync(c *gin.Context) {
	start := time.Now()
	report, err := h.syncer.FullSync(c.Request.Context())
	if err != nil {
		h.logger.Error("full sync failed", logger.Error(err))
		writeError(c, http.StatusInternalServerError, codeSyncFailed, err.Error())
		return
	}

	if h.telemetry != nil {
		h.telemetry.RecordSync(c.Request.Context(), report.Synced, report.Failed, time.Since(start))
	}

	c.JSON(http.StatusOK, SyncResponse{Synced: report.Synced, Failed: report.Failed})
}

// Train handles POST /api/v1/train
func (h *Handler) Train(c *gin.Context) {
	// The body is optional; an empty request trains every language.
	var req TrainRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
			return
		}
	}

	languages, ok := requestedLanguages(req.Language)
	if !ok {
		writeError(c, http.StatusBadRequest, codeInvalidInput,
			"unsupported language "+strconv.Quote(req.Language))
		return
	}

	docs, err := h.store.GetLeafDocuments(c.Request.Context())
	if err != nil {
		h.logger.Error("fetching training documents failed", logger.Error(err))
		writeError(c, http.StatusServiceUnavailable, codeDatabaseUnavailable, err.Error())
		return
	}

	resp := TrainResponse{Results: make([]TrainResult, 0, len(languages))}
	for _, lang := range languages {
		start := time.Now()
		trainErr := h.trainer.Train(docs, lang)
		if h.telemetry != nil {
			h.telemetry.RecordTraining(c.Request.Context(), string(lang), trainErr, time.Since(start))
		}
		result := TrainResult{Language: string(lang), Trained: trainErr == nil}
		if trainErr != nil {
			result.Error = trainErr.Error()
			h.logger.Warn("training failed",
				logger.String("language", string(lang)),
				logger.Error(trainErr))
		}
		resp.Results = append(resp.Results, result)
	}

	c.JSON(http.StatusOK, resp)
}

// ListDocuments handles GET /api/v1/documents
func (h *Handler) ListDocuments(c *gin.Context) {
	var (
		docs []domain.TrainingDocument
		err  error
	)

	if c.Query("leaf") == "true" {
		docs, err = h.store.GetLeafDocuments(c.Request.Context())
	} else {
		docs, err = h.store.GetAllDocuments(c.Request.Context())
	}
	if err != nil {
		h.logger.Error("listing documents failed", logger.Error(err))
		writeError(c, http.StatusServiceUnavailable, codeDatabaseUnavailable, err.Error())
		return
	}

	c.JSON(http.StatusOK, DocumentsResponse{Documents: docs, Total: len(docs)})
}

// AppendExample handles POST /api/v1/documents/:id/examples
func (h *Handler) AppendExample(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidInput, "invalid category id")
		return
	}

	var req AppendExampleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidInput, err.Error())
		return
	}

	lang := domain.Language(req.Language)
	if !lang.Supported() {
		writeError(c, http.StatusBadRequest, codeInvalidInput,
			"unsupported language "+strconv.Quote(req.Language))
		return
	}

	if err := h.store.AppendExample(c.Request.Context(), categoryID, lang, req.Example); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			writeError(c, http.StatusNotFound, codeNotFound, "training document not found")
			return
		}
		h.logger.Error("appending example failed",
			logger.Int64("category_id", categoryID),
			logger.Error(err))
		writeError(c, http.StatusServiceUnavailable, codeDatabaseUnavailable, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadyCheck handles GET /ready. Ready means both backing stores answer and
// at least one language has a trained model.
func (h *Handler) ReadyCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if err := h.db.PingContext(c.Request.Context()); err != nil {
		checks["database"] = err.Error()
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.store.Ping(c.Request.Context()); err != nil {
		checks["document_store"] = err.Error()
		ready = false
	} else {
		checks["document_store"] = "ok"
	}

	trained := false
	for _, lang := range domain.Languages() {
		if h.trainer.Ready(lang) {
			trained = true
			break
		}
	}
	checks["model"] = map[bool]string{true: "ok", false: "no trained model"}[trained]
	ready = ready && trained

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}

// requestedLanguages resolves a train request's language field: empty means
// every supported language.
func requestedLanguages(code string) ([]domain.Language, bool) {
	if code == "" {
		return domain.Languages(), true
	}

	lang := domain.Language(code)
	if !lang.Supported() {
		return nil, false
	}
	return []domain.Language{lang}, true
}
