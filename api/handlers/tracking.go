package handlers

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/DanishNadar/ttp-tracker/interfaces"
	"github.com/DanishNadar/ttp-tracker/internal/enum"
	ttp_errors "github.com/DanishNadar/ttp-tracker/internal/errors"
	"github.com/DanishNadar/ttp-tracker/internal/logger"
	"github.com/DanishNadar/ttp-tracker/internal/metrics"
	"github.com/DanishNadar/ttp-tracker/internal/models"
	"github.com/DanishNadar/ttp-tracker/internal/tracing"
)

const (
	maxMessageIDLength = 120
	pixelSuffix        = ".png"
	publishTimeout     = 5 * time.Second
)

// 1x1 transparent PNG
var pixelPNG = []byte(
	"\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01" +
		"\x08\x06\x00\x00\x00\x1f\x15\xc4\x89\x00\x00\x00\nIDATx\x9cc`\x00\x00" +
		"\x00\x02\x00\x01\xe2!\xbc3\x00\x00\x00\x00IEND\xaeB`\x82",
)

// PixelBytes returns a copy of the image served for opens
func PixelBytes() []byte {
	out := make([]byte, len(pixelPNG))
	copy(out, pixelPNG)
	return out
}

type TrackingHandler struct {
	events    interfaces.TrackingEventRepository
	publisher interfaces.EventPublisher
	metrics   *metrics.Metrics
	secret    string
	log       logger.Logger
}

func NewTrackingHandler(events interfaces.TrackingEventRepository, publisher interfaces.EventPublisher,
	m *metrics.Metrics, secret string, log logger.Logger) *TrackingHandler {
	return &TrackingHandler{
		events:    events,
		publisher: publisher,
		metrics:   m,
		secret:    secret,
		log:       log,
	}
}

// Pixel serves GET /pixel/:file where file is {message id}.png
func (h *TrackingHandler) Pixel() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := opentracing.SpanFromContext(ctx)

		file := c.Param("file")
		if !strings.HasSuffix(file, pixelSuffix) {
			c.Status(http.StatusNotFound)
			return
		}
		if !h.authorized(c) {
			h.reject(c, span, http.StatusForbidden, ttp_errors.ErrForbidden)
			return
		}
		messageID := strings.TrimSuffix(file, pixelSuffix)
		if !validMessageID(messageID) {
			h.reject(c, span, http.StatusBadRequest, ttp_errors.ErrInvalidMessageID)
			return
		}

		h.record(ctx, c, messageID, enum.TrackingEventOpen, "")

		noCache(c)
		c.Data(http.StatusOK, "image/png", pixelPNG)
	}
}

// Click serves GET /l/:id?u=target and redirects to the target
func (h *TrackingHandler) Click() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span := opentracing.SpanFromContext(ctx)

		if !h.authorized(c) {
			h.reject(c, span, http.StatusForbidden, ttp_errors.ErrForbidden)
			return
		}
		messageID := c.Param("id")
		if !validMessageID(messageID) {
			h.reject(c, span, http.StatusBadRequest, ttp_errors.ErrInvalidMessageID)
			return
		}
		target := c.Query("u")
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			h.reject(c, span, http.StatusBadRequest, ttp_errors.ErrInvalidTarget)
			return
		}

		h.record(ctx, c, messageID, enum.TrackingEventClick, target)

		noCache(c)
		c.Redirect(http.StatusFound, target)
	}
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// record stores the event and fans it out. Failures never change the response.
func (h *TrackingHandler) record(ctx context.Context, c *gin.Context, messageID string, eventType enum.TrackingEventType, target string) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TrackingHandler.record")
	defer span.Finish()
	tracing.TagMessageId(span, messageID)
	span.SetTag("event-type", eventType.String())

	event := &models.TrackingEvent{
		MessageID: messageID,
		EventType: eventType,
		IP:        ClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		TargetURL: target,
	}

	if err := h.events.Create(ctx, event); err != nil {
		tracing.TraceErr(span, err)
		h.metrics.TrackingStoreError()
		h.log.Errorf("Failed to store %s event for %s: %v", eventType, messageID, err)
		return
	}
	h.metrics.TrackingEvent(eventType)

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := h.publisher.PublishTrackingEvent(publishCtx, event); err != nil {
		tracing.TraceErr(span, err)
		h.log.Warnf("Failed to publish %s event for %s: %v", eventType, messageID, err)
	}
}

func (h *TrackingHandler) authorized(c *gin.Context) bool {
	if h.secret == "" {
		return true
	}
	return secretMatches(c.Query("k"), h.secret)
}

func secretMatches(given, secret string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(secret)) == 1
}

func (h *TrackingHandler) reject(c *gin.Context, span opentracing.Span, status int, err error) {
	if span != nil {
		tracing.TraceErr(span, err)
	}
	h.metrics.TrackingRejected(strconv.Itoa(status))
	c.AbortWithStatus(status)
}

func validMessageID(id string) bool {
	return id != "" && len(id) <= maxMessageIDLength
}

func noCache(c *gin.Context) {
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
}

// ClientIP prefers the first X-Forwarded-For hop and falls back to the peer address
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
