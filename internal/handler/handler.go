package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
)

// RowIngestor is the slice of the ingestion gateway the handlers use.
type RowIngestor interface {
	Ingest(ctx context.Context, req ingest.Request) (ingest.Result, error)
	InsertRow(ctx context.Context, tableID string, row ingest.Row) error
}

// BlobWriter is the slice of the blob gateway the handlers use.
type BlobWriter interface {
	Write(ctx context.Context, key string, payload []byte) (string, error)
}

type Handler struct {
	ingestor       RowIngestor
	blobs          BlobWriter
	defaultTableID string
}

func NewHandler(ingestor RowIngestor, blobs BlobWriter, defaultTableID string) *Handler {
	return &Handler{
		ingestor:       ingestor,
		blobs:          blobs,
		defaultTableID: defaultTableID,
	}
}

// RegisterRoutes attaches every authenticated route. The caller decides
// which router group (and therefore which middleware) they live under.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/tests/server-time", h.serverTime)

	r.POST("/upload/:resource", h.upload)
	r.POST("/data/to-bigquery", h.dataToWarehouse)
	r.POST("/data/to-storage", h.dataToStorage)

	// Planned pipelines without a contract yet respond 501 instead of
	// silently succeeding.
	r.POST("/pubsub/to-bigquery", h.notImplemented)
	r.POST("/eventarc/gcs-to-bigquery", h.notImplemented)
	r.POST("/database/mysql-to-bigquery", h.notImplemented)
	r.POST("/database/bigquery-to-mysql", h.notImplemented)
}

// serverTime answers with the current server time. Exists to exercise the
// admission middleware end to end.
func (h *Handler) serverTime(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"message": "Authenticated request. Server time: " + time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) notImplemented(c *gin.Context) {
	respond(c, http.StatusNotImplemented, "not implemented")
}
