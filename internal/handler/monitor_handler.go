package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/veritest/veritest-backend/internal/config"
	"github.com/veritest/veritest-backend/internal/middleware"
	"github.com/veritest/veritest-backend/internal/response"
	"github.com/veritest/veritest-backend/internal/service"
	ws "github.com/veritest/veritest-backend/internal/websocket"
)

const monitorKeepAlive = 30 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// MonitorHandler streams live violation events to exam staff over WebSocket.
type MonitorHandler struct {
	rdb      *redis.Client
	catalog  service.ExamCatalog
	policy   service.AccessPolicy
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(rdb *redis.Client, catalog service.ExamCatalog, policy service.AccessPolicy, log zerolog.Logger, allowedOrigins []string) *MonitorHandler {
	return &MonitorHandler{
		rdb:      rdb,
		catalog:  catalog,
		policy:   policy,
		log:      log.With().Str("component", "monitor_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// MonitorExam godoc
// WS /ws/v1/exams/:exam_id/monitor
// Subscribes the caller to the exam's violation channel. Teacher (owner)
// and admin only; events are forwarded as they are published.
func (h *MonitorHandler) MonitorExam(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.catalog.GetExam(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	if err := h.policy.CanViewResults(claims.Role, claims.UserID, exam); err != nil {
		failDomain(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	monLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("exam_id", examID.String()).
		Logger()
	monLog.Info().Msg("Staff attached to live monitor")

	reqCtx := c.Request.Context()

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ExamMonitorChannel(examID.String()))
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Reader goroutine: answers pings and detects client disconnects.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					monLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if string(raw) == "ping" {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	keepAlive := time.NewTicker(monitorKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-reqCtx.Done():
			monLog.Info().Msg("Staff disconnected from live monitor")
			return

		case <-done:
			monLog.Debug().Msg("Connection closed")
			return

		case msg := <-ch:
			// Payloads are published pre-serialized; forward verbatim.
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				monLog.Debug().Err(err).Msg("Write failed, closing")
				return
			}

		case <-keepAlive.C:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
