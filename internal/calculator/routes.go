package calculator

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts all calculator endpoints onto the given router
// under the /calculator prefix.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/calculator", func(r chi.Router) {
		r.Get("/", h.State)
		r.Post("/press", h.Press)
		r.Put("/expression", h.SetExpression)
		r.Post("/evaluate", h.Evaluate)
		r.Post("/clear", h.Clear)

		r.Get("/history", h.History)
		r.Delete("/history", h.ClearHistory)
		r.Post("/history/{id}/recall", h.Recall)
	})
}
