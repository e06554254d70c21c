package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/postloop/postloop/internal/filestore"
	"github.com/postloop/postloop/internal/pkg/errcode"
	"github.com/postloop/postloop/internal/pkg/response"
)

type FileHandler struct {
	store filestore.Store
}

func NewFileHandler(store filestore.Store) *FileHandler {
	return &FileHandler{store: store}
}

// Get serves a parked export artifact by key. The exporter prefixes
// every key with the owning tenant, so a tenant can only fetch its own
// artifacts; foreign keys read as absent.
func (h *FileHandler) Get(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		response.Error(c, errcode.ErrInvalid, "key required")
		return
	}
	if !strings.HasPrefix(key, getTenantID(c)+"-") {
		response.Error(c, errcode.ErrNotFound, "artifact not found")
		return
	}
	reader, err := h.store.Open(c.Request.Context(), key)
	if err != nil {
		response.Error(c, errcode.ErrNotFound, "artifact not found")
		return
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, errcode.ErrInternal, "read artifact failed")
		return
	}
	c.Data(200, "application/octet-stream", data)
}
