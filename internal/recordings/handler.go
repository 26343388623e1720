// Package recordings implements the ingestion path and read endpoints for
// audio submissions: container validation, metadata validation, two-phase
// persistence against Postgres and object storage.
package recordings

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voicebank/backend/internal/audio"
	"github.com/voicebank/backend/internal/models"
	"github.com/voicebank/backend/pkg/cache"
	"github.com/voicebank/backend/pkg/response"
	"github.com/voicebank/backend/pkg/storage"
)

const (
	countCacheTTL = time.Minute
	// maxRandomCount caps how many recordings one random read may request.
	maxRandomCount = 50
)

// Store is the recording persistence the handler needs. Satisfied by *Repository.
type Store interface {
	Insert(ctx context.Context, id uuid.UUID, rec *models.NewRecording) (*models.Recording, error)
	MarkCommitted(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Recording, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]models.Recording, error)
	Random(ctx context.Context, count int) ([]models.Recording, error)
	Count(ctx context.Context) (int64, error)
}

// BlobStore uploads audio objects. Satisfied by *storage.S3.
type BlobStore interface {
	Upload(ctx context.Context, key string, body io.Reader) (string, error)
}

// Handler handles recording HTTP endpoints.
type Handler struct {
	store           Store
	blobs           BlobStore
	counts          *cache.Cache // optional; nil disables stat caching
	maxStringLength int
	logger          *zap.Logger
}

// NewHandler creates a recordings handler. counts may be nil.
func NewHandler(store Store, blobs BlobStore, counts *cache.Cache, maxStringLength int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, blobs: blobs, counts: counts, maxStringLength: maxStringLength, logger: logger}
}

// Create handles POST /recordings/. The multipart body carries an `audio`
// part (Ogg Opus stream) and a `metadata` part (JSON document). Both are
// validated before any write; the row is inserted pending, the blob
// uploaded, then the row committed.
func (h *Handler) Create(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		if isBodyTooLarge(err) {
			response.ContentTooLarge(c, "upload exceeds size limit")
			return
		}
		response.BadRequest(c, "audio part missing")
		return
	}
	stream, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("open audio part failed", zap.Error(err))
		response.Internal(c, "failed to read upload")
		return
	}
	defer stream.Close()

	// Container validity is checked before anything touches the database.
	if err := audio.ValidateOggOpus(stream); err != nil {
		if !errors.Is(err, audio.ErrInvalidContainer) {
			h.logger.Error("container validation failed", zap.Error(err))
			response.Internal(c, "failed to read upload")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	metaRaw := c.PostForm("metadata")
	if metaRaw == "" {
		response.BadRequest(c, "metadata part missing")
		return
	}
	newRec, err := ParseMetadata([]byte(metaRaw), h.maxStringLength)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	id := uuid.New()

	created, err := h.store.Insert(ctx, id, newRec)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidReference):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrDuplicateID):
			// Random 128-bit ids colliding means something is deeply wrong.
			h.logger.Error("generated id collided", zap.String("id", id.String()))
			response.Internal(c, "failed to store recording")
		default:
			h.logger.Error("insert recording failed", zap.Error(err))
			response.Internal(c, "failed to store recording")
		}
		return
	}

	key := storage.RecordingKey(id.String())
	if _, err := h.blobs.Upload(ctx, key, stream); err != nil {
		// The row exists but the blob does not; leave it pending for the
		// reconciler and surface the failure.
		h.logger.Error("recording partially committed: blob upload failed",
			zap.String("id", id.String()), zap.String("key", key), zap.Error(err))
		response.Internal(c, "failed to store audio")
		return
	}
	if err := h.store.MarkCommitted(ctx, id); err != nil {
		h.logger.Error("recording partially committed: commit flip failed",
			zap.String("id", id.String()), zap.Error(err))
		response.Internal(c, "failed to store recording")
		return
	}

	if h.counts != nil {
		h.counts.InvalidateCount(ctx)
	}
	response.Created(c, created)
}

// GetByID handles GET /recordings/:id/.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid recording id")
		return
	}
	rec, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "recording not found")
			return
		}
		h.logger.Error("get recording failed", zap.String("id", id.String()), zap.Error(err))
		response.Internal(c, "failed to load recording")
		return
	}
	response.OK(c, rec)
}

// GetChildren handles GET /recordings/:id/children/. Zero children is a
// 404, matching the behavior clients already depend on.
func (h *Handler) GetChildren(c *gin.Context) {
	parentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid recording id")
		return
	}
	children, err := h.store.ListByParent(c.Request.Context(), parentID)
	if err != nil {
		h.logger.Error("list children failed", zap.String("parent_id", parentID.String()), zap.Error(err))
		response.Internal(c, "failed to load recordings")
		return
	}
	if len(children) == 0 {
		response.NotFound(c, "no recordings found")
		return
	}
	response.OK(c, children)
}

// Random handles GET /random/:count/. Returns up to count committed
// recordings in random order; an empty archive yields an empty list, not
// a 404.
func (h *Handler) Random(c *gin.Context) {
	count, err := strconv.Atoi(c.Param("count"))
	if err != nil || count < 1 {
		response.BadRequest(c, "count must be a positive integer")
		return
	}
	if count > maxRandomCount {
		count = maxRandomCount
	}
	recs, err := h.store.Random(c.Request.Context(), count)
	if err != nil {
		h.logger.Error("random recordings failed", zap.Error(err))
		response.Internal(c, "failed to load recordings")
		return
	}
	if recs == nil {
		recs = []models.Recording{}
	}
	response.OK(c, recs)
}

// Stats handles GET /stats/. The count is cached briefly when Redis is
// configured.
func (h *Handler) Stats(c *gin.Context) {
	ctx := c.Request.Context()
	if h.counts != nil {
		if count, ok := h.counts.GetCount(ctx); ok {
			response.OK(c, gin.H{"count": count})
			return
		}
	}
	count, err := h.store.Count(ctx)
	if err != nil {
		h.logger.Error("count recordings failed", zap.Error(err))
		response.Internal(c, "failed to count recordings")
		return
	}
	if h.counts != nil {
		h.counts.SetCount(ctx, count, countCacheTTL)
	}
	response.OK(c, gin.H{"count": count})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
