package labels

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voicebank/backend/internal/models"
	"github.com/voicebank/backend/pkg/response"
)

// Store lists the lookup tables. Satisfied by *Repository.
type Store interface {
	Categories(ctx context.Context) ([]models.Label, error)
	Ages(ctx context.Context) ([]models.Label, error)
	Genders(ctx context.Context) ([]models.Label, error)
}

// Handler serves the lookup list endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a labels handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// Categories handles GET /labels/categories/.
func (h *Handler) Categories(c *gin.Context) {
	h.serve(c, "categories", h.store.Categories)
}

// Ages handles GET /labels/ages/.
func (h *Handler) Ages(c *gin.Context) {
	h.serve(c, "ages", h.store.Ages)
}

// Genders handles GET /labels/genders/.
func (h *Handler) Genders(c *gin.Context) {
	h.serve(c, "genders", h.store.Genders)
}

func (h *Handler) serve(c *gin.Context, name string, list func(context.Context) ([]models.Label, error)) {
	rows, err := list(c.Request.Context())
	if err != nil {
		h.logger.Error("list labels failed", zap.String("table", name), zap.Error(err))
		response.Internal(c, "failed to list "+name)
		return
	}
	if rows == nil {
		rows = []models.Label{}
	}
	response.OK(c, rows)
}
