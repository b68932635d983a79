package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/itgc-audit/backend/internal/auth"
	"github.com/itgc-audit/backend/internal/config"
	"github.com/itgc-audit/backend/internal/events"
	"github.com/itgc-audit/backend/internal/middleware"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/itgc-audit/backend/internal/rbac"
	"github.com/itgc-audit/backend/internal/services"
	"go.uber.org/zap"
)

// wsBacklogSize is how many recent audit events a new connection receives.
const wsBacklogSize = 20

// WSHub fans the audit stream out to connected dashboards. Only actors allowed
// to view the audit trail may connect.
type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	revocations auth.RevocationStore
	profiles    middleware.ProfileLookup
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[int64][]*websocket.Conn
}

func NewWSHub(
	cfg *config.Config,
	subscriber events.Subscriber,
	revocations auth.RevocationStore,
	profiles middleware.ProfileLookup,
	log *zap.Logger,
) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		revocations: revocations,
		profiles:    profiles,
		log:         log,
		connections: make(map[int64][]*websocket.Conn),
	}
}

func (h *WSHub) Start(ctx context.Context) error {
	return h.subscriber.Subscribe(ctx, events.StreamAudit, h.broadcast)
}

func (h *WSHub) broadcast(event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.connections {
		for _, conn := range conns {
			_ = conn.WriteMessage(websocket.TextMessage, data)
		}
	}
}

func (h *WSHub) replayBacklog(conn *websocket.Conn, actorID int64) {
	backlog, err := h.subscriber.Recent(context.Background(), events.StreamAudit, wsBacklogSize)
	if err != nil {
		h.log.Warn("failed to load audit backlog", zap.Int64("actor_id", actorID), zap.Error(err))
		return
	}
	for _, event := range backlog {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

// authorize validates the query token and the caller's view_audit permission.
func (h *WSHub) authorize(ctx context.Context, tokenStr string) (int64, error) {
	if tokenStr == "" {
		return 0, errors.New("missing token")
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		return 0, errors.New("invalid token")
	}
	if h.revocations != nil {
		revoked, err := auth.Revoked(ctx, h.revocations, claims)
		if err != nil || revoked {
			return 0, errors.New("invalid token")
		}
	}

	var profile *models.ActorProfile
	if !claims.IsStaff {
		p, err := h.profiles.GetByActor(ctx, claims.ActorID)
		if err != nil && !errors.Is(err, services.ErrNotFound) {
			return 0, errors.New("permission check failed")
		}
		profile = p
	}
	if !rbac.Allowed(claims.IsStaff, profile, rbac.PermViewAudit) {
		return 0, errors.New("permission denied")
	}
	return claims.ActorID, nil
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	actorID, err := h.authorize(context.Background(), conn.Query("token"))
	if err != nil {
		msg, _ := json.Marshal(fiber.Map{"error": err.Error()})
		_ = conn.WriteMessage(websocket.TextMessage, msg)
		conn.Close()
		return
	}

	// Replay under the write lock so no broadcast interleaves with the backlog.
	h.mu.Lock()
	h.replayBacklog(conn, actorID)
	h.connections[actorID] = append(h.connections[actorID], conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		conns := h.connections[actorID]
		for i, c := range conns {
			if c == conn {
				h.connections[actorID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.connections[actorID]) == 0 {
			delete(h.connections, actorID)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
