package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
)

// campaignRow is the fixed record shape accepted by the upload route.
type campaignRow struct {
	Date        string  `json:"date" binding:"required"`
	Campaign    string  `json:"campaign" binding:"required"`
	Clicks      int64   `json:"clicks"`
	Impressions int64   `json:"impressions"`
	Cost        float64 `json:"cost"`
}

type uploadRequest struct {
	TableID          string   `json:"table_id"`
	WriteDisposition string   `json:"write_disposition"`
	PartitionField   string   `json:"partition_field"`
	ClusteringFields []string `json:"clustering_fields"`

	Rows []campaignRow `json:"rows"`
}

// campaignSchema fixes column names, types, and order for the upload
// route. The gateway and sink receive it exactly as written here.
var campaignSchema = []ingest.Field{
	{Name: "date", Type: ingest.TypeDate},
	{Name: "campaign", Type: ingest.TypeString},
	{Name: "clicks", Type: ingest.TypeInteger},
	{Name: "impressions", Type: ingest.TypeInteger},
	{Name: "cost", Type: ingest.TypeFloat},
}

// upload validates a campaign record batch against the fixed schema and
// submits it as one day-partitioned load job.
func (h *Handler) upload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond(c, http.StatusBadRequest, "invalid request body")
		return
	}

	tableID := req.TableID
	if tableID == "" {
		tableID = h.defaultTableID
	}

	strategy := ingest.WriteStrategy(req.WriteDisposition)
	if req.WriteDisposition == "" {
		strategy = ingest.WriteAppend
	}
	if !strategy.Valid() {
		respond(c, http.StatusBadRequest, "unknown write disposition")
		return
	}

	partitionField := req.PartitionField
	if partitionField == "" {
		partitionField = "date"
	}

	rows := make([]ingest.Row, len(req.Rows))
	for i, r := range req.Rows {
		rows[i] = ingest.Row{
			"date":        r.Date,
			"campaign":    r.Campaign,
			"clicks":      r.Clicks,
			"impressions": r.Impressions,
			"cost":        r.Cost,
		}
	}

	result, err := h.ingestor.Ingest(c.Request.Context(), ingest.Request{
		TableID:          tableID,
		Rows:             rows,
		Schema:           campaignSchema,
		Strategy:         strategy,
		PartitionField:   partitionField,
		ClusteringFields: req.ClusteringFields,
		CheckExists:      true,
	})
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrBadTableID), errors.Is(err, ingest.ErrInvalidInput):
			respond(c, http.StatusBadRequest, "invalid request")
		case errors.Is(err, ingest.ErrNotFound):
			respond(c, http.StatusNotFound, "destination table not found")
		default:
			respond(c, http.StatusInternalServerError, "failed to upload data to warehouse")
		}
		return
	}

	respond(c, http.StatusOK, string(result))
}
