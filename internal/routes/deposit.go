package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/depositflow/depositflow/internal/deposit"
)

// RegisterDepositRoutes wires the deposit lifecycle endpoints. All of them
// require an authenticated session; role checks happen in the service.
func RegisterDepositRoutes(r fiber.Router, h *deposit.Handler) {
	group := r.Group("/deposit")
	group.Post("/request", h.Request)
	group.Post("/respond", h.Respond)
	group.Post("/accept", h.Accept)
	group.Post("/dispute", h.Dispute)
	group.Get("/status", h.Status)
}
