package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stocktake-scan-service/internal/broadcast"
	"stocktake-scan-service/internal/logger"
	"stocktake-scan-service/internal/middleware"
	"stocktake-scan-service/pkg/utils"
)

type StreamHandler struct {
	hub       *broadcast.Hub
	keepAlive time.Duration
}

func NewStreamHandler(hub *broadcast.Hub, keepAlive time.Duration) *StreamHandler {
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	return &StreamHandler{hub: hub, keepAlive: keepAlive}
}

func (h *StreamHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/events/stream", h.Stream)
}

// Stream serves the Server-Sent Events feed of scan activity. Each open
// connection registers one hub subscriber; the subscription lives exactly
// as long as the transport, so a client disconnect deregisters promptly
// via the request context.
func (h *StreamHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	sub := h.hub.Subscribe()
	defer h.hub.Unsubscribe(sub)

	requestID := middleware.GetRequestID(c)
	logger.Info("Stream listener connected",
		zap.String("request_id", requestID),
		zap.Int("active_listeners", h.hub.SubscriberCount()),
		zap.String("event", "stream_connected"),
	)
	defer logger.Info("Stream listener disconnected",
		zap.String("request_id", requestID),
		zap.String("event", "stream_disconnected"),
	)

	c.SSEvent("connected", gin.H{"time": time.Now()})
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.keepAlive)
	defer keepAlive.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case payload, ok := <-sub.C:
			if !ok {
				// Hub closed (shutdown) or this subscriber was dropped.
				return false
			}
			c.Render(-1, sseEvent{name: "scan_event", data: payload})
			return true
		case <-keepAlive.C:
			c.SSEvent("keepalive", gin.H{"time": time.Now()})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// BroadcastMetrics exposes fan-out counters for the dashboard health view.
func (h *StreamHandler) BroadcastMetrics(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Broadcast metrics", h.hub.Metrics())
}

// sseEvent renders a named SSE event whose data is already-serialized JSON,
// so one broadcast marshals once regardless of listener count.
type sseEvent struct {
	name string
	data []byte
}

func (e sseEvent) Render(w http.ResponseWriter) error {
	e.WriteContentType(w)
	if _, err := w.Write([]byte("event: " + e.name + "\ndata: ")); err != nil {
		return err
	}
	if _, err := w.Write(e.data); err != nil {
		return err
	}
	_, err := w.Write([]byte("\n\n"))
	return err
}

func (e sseEvent) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
}
