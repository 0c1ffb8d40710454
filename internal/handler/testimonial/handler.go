package testimonial

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	model "github.com/zhouzirui/showcase/backend/internal/model/testimonial"
	"github.com/zhouzirui/showcase/backend/internal/service/broadcast"
	"github.com/zhouzirui/showcase/backend/internal/service/rotation"
	"github.com/zhouzirui/showcase/backend/pkg/utils"
)

const defaultHeartbeat = 15 * time.Second

// Handler 推荐语轮播的HTTP处理器
type Handler struct {
	content   model.Store
	engine    *rotation.Engine
	hub       *broadcast.Hub
	logger    *zap.Logger
	upgrader  websocket.Upgrader
	heartbeat time.Duration
}

// New 创建推荐语处理器
func New(content model.Store, engine *rotation.Engine, hub *broadcast.Hub, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		content: content,
		engine:  engine,
		hub:     hub,
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		heartbeat: defaultHeartbeat,
	}
}

// RegisterRoutes 注册推荐语相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/testimonials", func(r chi.Router) {
		r.Get("/", h.handleListContent)
		r.Get("/visible", h.handleSnapshot)
		r.Post("/rotate", h.handleRotate)
		r.Post("/rotation/start", h.handleStartRotation)
		r.Post("/rotation/stop", h.handleStopRotation)
		r.Get("/stream", h.handleStream)
		r.Get("/{name}", h.handleFindByName)
	})
	r.Get("/ws/testimonials", h.handleWebSocket)
}

// handleListContent 返回完整推荐语内容池
func (h *Handler) handleListContent(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.content.List())
}

// handleFindByName 按名字查找单条推荐语
func (h *Handler) handleFindByName(w http.ResponseWriter, r *http.Request) {
	item, ok := h.content.FindByName(chi.URLParam(r, "name"))
	if !ok {
		h.respondError(w, http.StatusNotFound, "testimonial not found")
		return
	}
	h.respond(w, http.StatusOK, item)
}

// handleSnapshot 返回当前展示状态
func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.engine.Snapshot())
}

type rotateRequest struct {
	Direction string `json:"direction"`
}

type rotateResponse struct {
	Outcome   rotation.Outcome   `json:"outcome"`
	Direction rotation.Direction `json:"direction"`
}

// handleRotate 处理“上一条/下一条”按钮触发
func (h *Handler) handleRotate(w http.ResponseWriter, r *http.Request) {
	var payload rotateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	direction, ok := parseManualDirection(payload.Direction)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "direction must be next or previous")
		return
	}

	outcome := h.engine.Replace(direction)
	h.respond(w, http.StatusAccepted, rotateResponse{Outcome: outcome, Direction: direction})
}

// handleStartRotation 启动自动轮播
func (h *Handler) handleStartRotation(w http.ResponseWriter, r *http.Request) {
	h.engine.StartAutoRotation()
	h.respond(w, http.StatusOK, h.engine.Snapshot())
}

// handleStopRotation 停止自动轮播
func (h *Handler) handleStopRotation(w http.ResponseWriter, r *http.Request) {
	h.engine.StopAutoRotation()
	h.respond(w, http.StatusOK, h.engine.Snapshot())
}

// handleStream 以SSE推送渲染事件，先发送一次完整快照
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	sub := h.hub.Subscribe()
	defer sub.Close()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	log := h.logger.With(zap.String("subscriber", sub.ID), zap.String("transport", "sse"))
	log.Debug("carousel stream opened")

	if err := utils.SendSSEEvent(w, flusher, "snapshot", "", h.engine.Snapshot()); err != nil {
		log.Debug("carousel stream write failed", zap.Error(err))
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("carousel stream closed")
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(event.Type), event.ID, event); err != nil {
				log.Debug("carousel stream write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}

// parseManualDirection 只接受页面按钮的方向，auto 保留给内部定时器
func parseManualDirection(raw string) (rotation.Direction, bool) {
	direction, ok := rotation.ParseDirection(raw)
	if !ok || direction == rotation.DirectionAuto {
		return "", false
	}
	return direction, true
}

func (h *Handler) respond(w http.ResponseWriter, status int, payload interface{}) {
	if err := utils.RespondJSON(w, status, payload); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	if err := utils.RespondError(w, status, message); err != nil {
		h.logger.Warn("failed to encode error response", zap.Error(err))
	}
}
