package dashboard

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// handleEvents streams an "import" event for every import run recorded
// after the client connected, so open dashboards know to refresh.
func (s *server) handleEvents(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	db := s.db.WithContext(ctx)

	lastSeenID, err := lastImportID(db)
	if err != nil {
		s.log.WithError(err).Warn("events: read last import")
	}

	writeSSE(c.Writer, "connected", map[string]any{"type": "connected", "importing": s.importing(ctx)})
	c.Writer.Flush()

	ticker := time.NewTicker(s.pollInterval)
	heartbeat := time.NewTicker(s.heartbeat)
	defer ticker.Stop()
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			writeSSE(c.Writer, "heartbeat", map[string]string{
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			c.Writer.Flush()
		case <-ticker.C:
			runs, err := importsSince(db, lastSeenID)
			if err != nil || len(runs) == 0 {
				continue
			}
			for _, run := range runs {
				writeSSE(c.Writer, "import", importEvent(run))
			}
			lastSeenID = runs[len(runs)-1].ID
			c.Writer.Flush()
		}
	}
}

// writeSSE writes a single SSE event to the writer.
func writeSSE(w io.Writer, event string, data any) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, string(jsonData))
}
