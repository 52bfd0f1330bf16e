package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const storageEvent = "storage"

// streamEvents отдаёт SSE-поток: событие storage на каждое изменение корзины.
// Событие не несёт содержимого корзины, клиент сам запрашивает /api/cart.
func (h *Handler) streamEvents(c *gin.Context) {
	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event stream is not available"})
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	ch, unsubscribe := h.events.Subscribe()
	defer unsubscribe()

	c.SSEvent("connected", gin.H{})
	c.Writer.Flush()
	h.logger.Debug("sse client connected")

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			h.logger.Debug("sse client disconnected")
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(storageEvent, gin.H{})
			c.Writer.Flush()
		}
	}
}
