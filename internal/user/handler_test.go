package user

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

func makeAppWithUserHandler(h *Handler) *fiber.App {
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	app.Use(func(c *fiber.Ctx) error {
		if v := c.Get("X-User-ID"); v != "" {
			if id, err := strconv.Atoi(v); err == nil {
				claims := jwt.MapClaims{"user_id": id}
				c.Locals("user", &jwt.Token{Claims: claims})
			}
		}
		return c.Next()
	})
	h.RegisterProtectedRoutes(app)
	return app
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func TestSignUpAndSignIn(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	handler := NewHandler(NewService(NewInMemoryRepository(nil)))
	app := makeAppWithUserHandler(handler)

	// register
	req := httptest.NewRequest("POST", "/api/v1/sign-up",
		strings.NewReader(`{"email":"budi@example.com","password":"rahasia","name":"Budi","phone":"81234567890"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, b)
	}
	b, _ := io.ReadAll(res.Body)
	if strings.Contains(string(b), "rahasia") {
		t.Fatalf("response leaks password: %s", b)
	}

	// duplicate email
	req2 := httptest.NewRequest("POST", "/api/v1/sign-up",
		strings.NewReader(`{"email":"budi@example.com","password":"x","name":"Budi"}`))
	req2.Header.Set("Content-Type", "application/json")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", res2.StatusCode)
	}

	// missing fields
	req3 := httptest.NewRequest("POST", "/api/v1/sign-up", strings.NewReader(`{"email":"x@example.com"}`))
	req3.Header.Set("Content-Type", "application/json")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for missing fields, got %d", res3.StatusCode)
	}

	// sign in with the registered credentials
	req4 := httptest.NewRequest("POST", "/api/v1/sign-in",
		strings.NewReader(`{"email":"budi@example.com","password":"rahasia"}`))
	req4.Header.Set("Content-Type", "application/json")
	res4, _ := app.Test(req4)
	if res4.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for sign-in, got %d", res4.StatusCode)
	}
	b4, _ := io.ReadAll(res4.Body)
	if !strings.Contains(string(b4), `"token"`) {
		t.Fatalf("sign-in response missing token: %s", b4)
	}

	// wrong password
	req5 := httptest.NewRequest("POST", "/api/v1/sign-in",
		strings.NewReader(`{"email":"budi@example.com","password":"salah"}`))
	req5.Header.Set("Content-Type", "application/json")
	res5, _ := app.Test(req5)
	if res5.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", res5.StatusCode)
	}
}

func TestProfileEndpoint(t *testing.T) {
	seed := []User{{ID: 42, Email: "sari@example.com", Password: hashFor(t, "pw"), Name: "Sari", Role: RoleUser}}
	handler := NewHandler(NewService(NewInMemoryRepository(seed)))
	app := makeAppWithUserHandler(handler)

	// no token
	res, _ := app.Test(httptest.NewRequest("GET", "/api/v1/profile", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", res.StatusCode)
	}

	req2 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req2.Header.Set("X-User-ID", "42")
	res2, _ := app.Test(req2)
	if res2.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res2.StatusCode)
	}
	b2, _ := io.ReadAll(res2.Body)
	if !strings.Contains(string(b2), `"sari@example.com"`) {
		t.Fatalf("profile body missing email: %s", b2)
	}
	if strings.Contains(string(b2), `"password":"`) && !strings.Contains(string(b2), `"password":""`) {
		t.Fatalf("profile leaks password hash: %s", b2)
	}

	// unknown user id in claims
	req3 := httptest.NewRequest("GET", "/api/v1/profile", nil)
	req3.Header.Set("X-User-ID", "999")
	res3, _ := app.Test(req3)
	if res3.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", res3.StatusCode)
	}
}

func TestRegisterDefaultsRole(t *testing.T) {
	service := NewService(NewInMemoryRepository(nil))
	created, err := service.Register(User{Email: "a@example.com", Password: "pw", Name: "A"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if created.Role != RoleUser {
		t.Fatalf("expected default role %q, got %q", RoleUser, created.Role)
	}
	if created.Password == "pw" {
		t.Fatal("password stored unhashed")
	}
}
