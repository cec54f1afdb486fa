package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/depositflow/depositflow/internal/config"
	"github.com/depositflow/depositflow/internal/logging"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	cfg := config.Config{
		AppName:        "depositflow-test",
		SessionTTL:     time.Hour,
		IdempotencyTTL: time.Minute,
		StorageBackend: config.StorageDisk,
		UploadDir:      t.TempDir(),
		PublicDir:      t.TempDir(),
		LoginRateLimit: 100,
	}

	app := fiber.New()
	if err := Setup(app, Deps{Cfg: cfg, Cache: cache, Logger: logging.Discard()}); err != nil {
		t.Fatalf("setup routes: %v", err)
	}
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &decoded)
	}
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, email, role string) {
	t.Helper()
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/register", "", map[string]string{
		"email": email, "password": "secret", "role": role,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d", email, resp.StatusCode)
	}
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/login", "", map[string]string{
		"email": email, "password": "secret",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", email, resp.StatusCode)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in response", email)
	}
	return token
}

func respond(t *testing.T, app *fiber.App, token string, depositID int64, deduction int64) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("deposit_id", fmt.Sprintf("%d", depositID)); err != nil {
		t.Fatalf("write deposit_id: %v", err)
	}
	if err := w.WriteField("deduction", fmt.Sprintf("%d", deduction)); err != nil {
		t.Fatalf("write deduction: %v", err)
	}
	fw, err := w.CreateFormFile("documentation", "evidence.txt")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("photo of damage")); err != nil {
		t.Fatalf("write file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(fiber.MethodPost, "/api/deposit/respond", &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	return resp
}

func depositStatus(t *testing.T, app *fiber.App, token string) map[string]any {
	t.Helper()
	resp, body := doJSON(t, app, fiber.MethodGet, "/api/deposit/status", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: expected 200, got %d", resp.StatusCode)
	}
	return body
}

func TestDepositLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "tenant@example.com", "tenant")
	register(t, app, "landlord@example.com", "landlord")

	tenantToken := login(t, app, "tenant@example.com")
	landlordToken := login(t, app, "landlord@example.com")

	// Tenant requests a refund.
	resp, body := doJSON(t, app, fiber.MethodPost, "/api/deposit/request", tenantToken, map[string]any{"amount": 1000})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("request: expected 201, got %d", resp.StatusCode)
	}
	depositID := int64(body["deposit_id"].(float64))

	// Landlord responds with a deduction and documentation.
	if resp := respond(t, app, landlordToken, depositID, 100); resp.StatusCode != http.StatusOK {
		t.Fatalf("respond: expected 200, got %d", resp.StatusCode)
	}

	status := depositStatus(t, app, tenantToken)
	dep, _ := status["deposit"].(map[string]any)
	if dep == nil {
		t.Fatal("expected deposit in status view")
	}
	if dep["status"] != "responded" {
		t.Fatalf("expected responded, got %v", dep["status"])
	}
	if dep["deduction"].(float64) != 100 {
		t.Fatalf("expected deduction 100, got %v", dep["deduction"])
	}
	if status["email"] != "tenant@example.com" || status["role"] != "tenant" {
		t.Fatalf("unexpected identity in status view: %v", status)
	}

	// Tenant accepts; a later dispute must not change the terminal state.
	if resp, _ := doJSON(t, app, fiber.MethodPost, "/api/deposit/accept", tenantToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("accept: expected 200, got %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, app, fiber.MethodPost, "/api/deposit/dispute", tenantToken, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("dispute: expected 200, got %d", resp.StatusCode)
	}

	status = depositStatus(t, app, tenantToken)
	dep, _ = status["deposit"].(map[string]any)
	if dep["status"] != "accepted" {
		t.Fatalf("expected accepted to stick, got %v", dep["status"])
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "dup@example.com", "tenant")
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/register", "", map[string]string{
		"email": "dup@example.com", "password": "secret", "role": "tenant",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestRespondForbiddenForTenant(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "tenant@example.com", "tenant")
	tenantToken := login(t, app, "tenant@example.com")

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/deposit/request", tenantToken, map[string]any{"amount": 1000})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("request: expected 201, got %d", resp.StatusCode)
	}
	depositID := int64(body["deposit_id"].(float64))

	if resp := respond(t, app, tenantToken, depositID, 100); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for tenant respond, got %d", resp.StatusCode)
	}

	status := depositStatus(t, app, tenantToken)
	dep, _ := status["deposit"].(map[string]any)
	if dep["status"] != "pending" {
		t.Fatalf("expected ledger unchanged, got %v", dep["status"])
	}
}

func TestStatusRequiresSession(t *testing.T) {
	app := newTestApp(t)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/api/deposit/status", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	app := newTestApp(t)

	register(t, app, "tenant@example.com", "tenant")
	token := login(t, app, "tenant@example.com")

	if resp, _ := doJSON(t, app, fiber.MethodPost, "/api/logout", token, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", resp.StatusCode)
	}
	if resp, _ := doJSON(t, app, fiber.MethodGet, "/api/deposit/status", token, nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}
