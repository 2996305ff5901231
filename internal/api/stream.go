package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"startup-foundry/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamJobStatusHandler handles GET /api/jobs/:jobId/stream
//
// Upgrades the connection to a websocket and pushes job snapshots until
// the job reaches a terminal status or the client goes away.
func (h *Handlers) StreamJobStatusHandler(c *gin.Context) {
	jobID := c.Param("jobId")

	if _, err := h.jobService.Get(jobID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[STREAM] ERROR: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastUpdate time.Time
	for {
		job, err := h.jobService.Get(jobID)
		if err != nil {
			// Job was pruned while the client was watching
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "job expired"))
			return
		}

		if job.UpdatedAt.After(lastUpdate) {
			lastUpdate = job.UpdatedAt
			if err := conn.WriteJSON(job); err != nil {
				return
			}
		}

		if job.Status == models.JobStatusCompleted || job.Status == models.JobStatusFailed {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(job.Status)))
			return
		}

		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}
	}
}
