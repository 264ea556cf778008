// Package admin serves the dashboard's order list and revenue statistics.
package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/dimasprayoga/storefront-backend/internal/order"
	"github.com/dimasprayoga/storefront-backend/internal/user"
)

// OrderStore is the slice of the order service the dashboard needs.
type OrderStore interface {
	ListAll() ([]order.Order, error)
	Stats() (order.Stats, error)
}

type Handler struct {
	orders OrderStore
}

func NewHandler(orders OrderStore) *Handler {
	return &Handler{orders: orders}
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/admin/orders", h.listOrders)
	app.Get("/api/v1/admin/stats", h.getStats)
}

func (h *Handler) listOrders(c *fiber.Ctx) error {
	if err := user.RequireAdmin(c); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	orders, err := h.orders.ListAll()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch orders"})
	}
	return c.JSON(orders)
}

func (h *Handler) getStats(c *fiber.Ctx) error {
	if err := user.RequireAdmin(c); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	stats, err := h.orders.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch statistics"})
	}
	return c.JSON(stats)
}
