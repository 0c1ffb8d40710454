package gallery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/showcase/backend/internal/model/gallery"
	"github.com/zhouzirui/showcase/backend/pkg/utils"
)

// Handler 图库与灯箱的HTTP处理器
type Handler struct {
	store *gallery.Store
}

// New 创建图库处理器
func New(store *gallery.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes 注册图库相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/gallery", h.handleList)
	r.Get("/gallery/{index}", h.handleLightbox)
}

type lightboxResponse struct {
	Index int           `json:"index"`
	Total int           `json:"total"`
	Image gallery.Image `json:"image"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.List())
}

// handleLightbox 返回灯箱中 index 经 step 移动后的图片，首尾循环
func (h *Handler) handleLightbox(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "index must be an integer")
		return
	}

	step := gallery.Step(r.URL.Query().Get("step"))
	image, at, err := h.store.Navigate(index, step)
	switch {
	case errors.Is(err, gallery.ErrUnknownStep):
		utils.RespondError(w, http.StatusBadRequest, "step must be next or previous")
		return
	case errors.Is(err, gallery.ErrIndexOutOfRange), errors.Is(err, gallery.ErrEmptyGallery):
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, lightboxResponse{
		Index: at,
		Total: len(h.store.List()),
		Image: image,
	})
}
