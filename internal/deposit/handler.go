package deposit

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/depositflow/depositflow/internal/middleware"
	"github.com/depositflow/depositflow/internal/session"
	"github.com/depositflow/depositflow/internal/storage"
)

// Handler exposes deposit endpoints.
type Handler struct {
	service *Service
	files   storage.Store
}

// NewHandler constructs a deposit HTTP handler.
func NewHandler(service *Service, files storage.Store) *Handler {
	return &Handler{service: service, files: files}
}

type requestRefundRequest struct {
	Amount int64 `json:"amount"`
}

// Request creates a pending refund claim for the calling tenant.
func (h *Handler) Request(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	var req requestRefundRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	d, err := h.service.RequestRefund(c.UserContext(), sess, req.Amount)
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":    "deposit refund requested",
		"deposit_id": d.ID,
		"status":     d.Status,
	})
}

// Respond records a landlord/agent response. The request is multipart: a
// deposit_id and deduction field plus an optional documentation file, which
// is stored before the transition (and left in place if the transition fails).
func (h *Handler) Respond(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	depositID, err := strconv.ParseInt(c.FormValue("deposit_id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "deposit_id is required")
	}
	deduction, err := strconv.ParseInt(c.FormValue("deduction"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "deduction is required")
	}

	var docRef string
	if fh, err := c.FormFile("documentation"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		defer f.Close()
		docRef, err = h.files.Save(c.UserContext(), fh.Filename, f)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "store documentation")
		}
	}

	if err := h.service.Respond(c.UserContext(), sess, depositID, deduction, docRef); err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"message": "response submitted"})
}

// Accept marks the caller's responded deposit as accepted.
func (h *Handler) Accept(c *fiber.Ctx) error {
	return h.settle(c, (*Service).Accept, "deposit response accepted")
}

// Dispute marks the caller's responded deposit as disputed.
func (h *Handler) Dispute(c *fiber.Ctx) error {
	return h.settle(c, (*Service).Dispute, "deposit response disputed")
}

func (h *Handler) settle(c *fiber.Ctx, op func(*Service, context.Context, session.Session) error, message string) error {
	sess, ok := middleware.SessionFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	if err := op(h.service, c.UserContext(), sess); err != nil {
		return mapError(err)
	}

	return c.JSON(fiber.Map{"message": message})
}

// Status returns the caller's latest deposit together with email and role.
func (h *Handler) Status(c *fiber.Ctx) error {
	sess, ok := middleware.SessionFromCtx(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "authentication required")
	}

	view, err := h.service.Status(c.UserContext(), sess)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(view)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrNotAllowed):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNoPendingDeposit):
		return fiber.NewError(http.StatusNotFound, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, "storage failure")
	}
}
