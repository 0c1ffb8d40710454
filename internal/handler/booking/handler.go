package booking

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	model "github.com/zhouzirui/showcase/backend/internal/model/booking"
	bookingService "github.com/zhouzirui/showcase/backend/internal/service/booking"
	"github.com/zhouzirui/showcase/backend/pkg/utils"
)

// Handler 预约表单的HTTP处理器
type Handler struct {
	svc    *bookingService.Service
	logger *zap.Logger
}

// New 创建预约处理器
func New(svc *bookingService.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes 注册预约相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/booking", h.handleSubmit)
}

// handleSubmit 校验表单后投递给邮件服务
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var payload model.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 16<<10)).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.svc.Submit(r.Context(), payload)
	if err != nil {
		var verr *bookingService.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.RespondFieldErrors(w, http.StatusUnprocessableEntity, "validation failed", verr.Fields)
		case errors.Is(err, bookingService.ErrDispatchFailed):
			utils.RespondError(w, http.StatusBadGateway, "booking could not be delivered, please try again")
		default:
			h.logger.Error("booking submit failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	utils.RespondJSON(w, http.StatusCreated, map[string]string{
		"id":     b.ID,
		"status": "received",
	})
}
