package order

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dimasprayoga/storefront-backend/internal/invoice"
	"github.com/dimasprayoga/storefront-backend/internal/user"
)

// Handler exposes checkout, order listing and the issuer webhook.
type Handler struct {
	service *Service
	// publicBaseURL overrides request-derived redirect origins when set.
	publicBaseURL string
	webhookToken  string
}

func NewHandler(s *Service, publicBaseURL, webhookToken string) *Handler {
	return &Handler{service: s, publicBaseURL: publicBaseURL, webhookToken: webhookToken}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/orders", h.createOrder)
	app.Get("/api/v1/orders", h.getOrders)
}

// The webhook is public: the issuer authenticates with a shared-secret
// header, not a JWT.
func (h *Handler) RegisterWebhookRoutes(app *fiber.App) {
	app.Post("/api/v1/webhooks/invoice", h.invoiceWebhook)
}

type createOrderRequest struct {
	Items    []Item `json:"items"`
	Subtotal int    `json:"subtotal"`
	Tax      int    `json:"tax"`
	Total    int    `json:"total"`
}

func (h *Handler) createOrder(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	payload := new(createOrderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(payload.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cart cannot be empty"})
	}

	baseURL := h.publicBaseURL
	if baseURL == "" {
		baseURL = c.Protocol() + "://" + c.Hostname()
	}

	res, err := h.service.Checkout(c.Context(), CheckoutInput{
		UserID:   userID,
		Items:    payload.Items,
		Subtotal: payload.Subtotal,
		Tax:      payload.Tax,
		Total:    payload.Total,
		BaseURL:  baseURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, user.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		case errors.Is(err, invoice.ErrUpstream):
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "failed to create invoice"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"invoice_url": res.InvoiceURL,
		"order": fiber.Map{
			"external_id":       res.Order.ExternalID,
			"notification_sent": res.NotificationSent,
			"has_contact":       res.HasContact,
		},
	})
}

func (h *Handler) getOrders(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	orders, err := h.service.ListByUser(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(orders)
}

// webhookBody accepts the issuer's flat payload and the variant nesting the
// same fields under a data key.
type webhookBody struct {
	Status     string       `json:"status"`
	ID         string       `json:"id"`
	ExternalID string       `json:"external_id"`
	Data       *webhookBody `json:"data"`
}

func (b *webhookBody) flatten() WebhookEvent {
	ev := WebhookEvent{Status: b.Status, InvoiceID: b.ID, ExternalID: b.ExternalID}
	if b.Data != nil {
		if ev.Status == "" {
			ev.Status = b.Data.Status
		}
		if ev.InvoiceID == "" {
			ev.InvoiceID = b.Data.ID
		}
		if ev.ExternalID == "" {
			ev.ExternalID = b.Data.ExternalID
		}
	}
	return ev
}

func (h *Handler) invoiceWebhook(c *fiber.Ctx) error {
	if h.webhookToken == "" || c.Get("x-callback-token") != h.webhookToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "invalid callback token"})
	}

	payload := new(webhookBody)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid payload"})
	}

	ev := payload.flatten()
	if ev.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing status"})
	}
	if ev.InvoiceID == "" && ev.ExternalID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "missing order identifier"})
	}

	res, err := h.service.ProcessWebhook(c.Context(), ev)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "order not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal server error"})
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"status":      res.Status,
		"external_id": res.Order.ExternalID,
	})
}
