package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
)

// dataToWarehouse streams one decoded JSON record into the pre-configured
// destination table, outside any load job.
func (h *Handler) dataToWarehouse(c *gin.Context) {
	var row ingest.Row
	if err := c.ShouldBindJSON(&row); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(row) == 0 {
		respond(c, http.StatusBadRequest, "empty record")
		return
	}

	err := h.ingestor.InsertRow(c.Request.Context(), h.defaultTableID, row)
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrBadTableID):
			respond(c, http.StatusBadRequest, "invalid table identifier")
		case errors.Is(err, ingest.ErrNotFound):
			respond(c, http.StatusNotFound, "destination table not found")
		default:
			// Insert failures are server-side failures, not 404s.
			respond(c, http.StatusInternalServerError, "failed to insert row")
		}
		return
	}

	respond(c, http.StatusOK, "row inserted")
}

// dataToStorage writes the raw request body to the object store under a
// generated key. An empty body still produces an (empty) object.
func (h *Handler) dataToStorage(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		respond(c, http.StatusBadRequest, "unreadable request body")
		return
	}

	key, err := h.blobs.Write(c.Request.Context(), "", payload)
	if err != nil {
		respond(c, http.StatusInternalServerError, "failed to send data to storage")
		return
	}

	respond(c, http.StatusOK, gin.H{
		"message": "data uploaded to storage",
		"object":  key,
	})
}
