package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/depositflow/depositflow/internal/identity"
	"github.com/depositflow/depositflow/internal/middleware"
	"github.com/depositflow/depositflow/internal/session"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// RegisterIdentityRoutes wires the public registration and login endpoints.
func RegisterIdentityRoutes(r fiber.Router, ids *identity.Service, sessions session.Store, rateLimiter fiber.Handler, logger *slog.Logger) {
	r.Post("/register", func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Register(c.UserContext(), identity.Credentials{Email: req.Email, Password: req.Password, Role: req.Role})
		if err != nil {
			switch {
			case errors.Is(err, identity.ErrInvalidInput):
				return fiber.NewError(http.StatusBadRequest, err.Error())
			case errors.Is(err, identity.ErrEmailTaken):
				return fiber.NewError(http.StatusConflict, err.Error())
			default:
				return fiber.NewError(http.StatusInternalServerError, "registration failed")
			}
		}
		if logger != nil {
			logger.Info("user registered",
				slog.Int64("user_id", user.ID),
				slog.String("role", string(user.Role)),
			)
		}
		return c.Status(http.StatusCreated).JSON(fiber.Map{
			"message": "registration successful",
			"user_id": user.ID,
		})
	})

	login := func(c *fiber.Ctx) error {
		var req credentialsRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		user, err := ids.Authenticate(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidCredentials) {
				return fiber.NewError(http.StatusUnauthorized, err.Error())
			}
			return fiber.NewError(http.StatusInternalServerError, "login failed")
		}
		sess, err := sessions.Create(c.UserContext(), user)
		if err != nil {
			return fiber.NewError(http.StatusInternalServerError, "session creation failed")
		}
		c.Cookie(&fiber.Cookie{
			Name:     middleware.SessionCookie,
			Value:    sess.Token,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Expires:  time.Now().Add(24 * time.Hour),
		})
		return c.JSON(fiber.Map{
			"message": "login successful",
			"token":   sess.Token,
			"role":    user.Role,
		})
	}
	if rateLimiter != nil {
		r.Post("/login", rateLimiter, login)
	} else {
		r.Post("/login", login)
	}
}

// RegisterLogoutRoute wires logout behind the session guard.
func RegisterLogoutRoute(authed fiber.Router, sessions session.Store) {
	authed.Post("/logout", func(c *fiber.Ctx) error {
		sess, ok := middleware.SessionFromCtx(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "authentication required")
		}
		if err := sessions.Delete(c.UserContext(), sess.Token); err != nil {
			return fiber.NewError(http.StatusInternalServerError, "logout failed")
		}
		c.ClearCookie(middleware.SessionCookie)
		return c.JSON(fiber.Map{"message": "logged out"})
	})
}
