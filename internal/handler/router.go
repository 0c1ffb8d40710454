package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/showcase/backend/internal/handler/booking"
	"github.com/zhouzirui/showcase/backend/internal/handler/gallery"
	"github.com/zhouzirui/showcase/backend/internal/handler/testimonial"
	middlewarePkg "github.com/zhouzirui/showcase/backend/internal/middleware"
	"github.com/zhouzirui/showcase/backend/pkg/utils"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Testimonials *testimonial.Handler
	Gallery      *gallery.Handler
	Booking      *booking.Handler
}

// NewRouter wires HTTP routes to core services.
func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(api chi.Router) {
		if h.Testimonials != nil {
			h.Testimonials.RegisterRoutes(api)
		}
		if h.Gallery != nil {
			h.Gallery.RegisterRoutes(api)
		}
		if h.Booking != nil {
			h.Booking.RegisterRoutes(api)
		} else {
			api.Post("/booking", func(w http.ResponseWriter, r *http.Request) {
				utils.RespondError(w, http.StatusServiceUnavailable, "booking unavailable")
			})
		}
	})

	return r
}
