package order

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dimasprayoga/storefront-backend/internal/cart"
	"github.com/dimasprayoga/storefront-backend/internal/invoice"
	"github.com/dimasprayoga/storefront-backend/internal/metrics"
	"github.com/dimasprayoga/storefront-backend/internal/notify"
	"github.com/dimasprayoga/storefront-backend/internal/product"
	"github.com/dimasprayoga/storefront-backend/internal/redisx"
	"github.com/dimasprayoga/storefront-backend/internal/user"
)

var (
	ErrEmptyCart = errors.New("cart cannot be empty")
)

// Service owns the order/payment reconciliation flow: checkout against the
// Invoice Issuer and webhook-driven status transitions with their side
// effects.
type Service struct {
	repo      Repository
	users     user.ServiceInterface
	products  product.ServiceInterface
	carts     cart.ServiceInterface
	issuer    invoice.Issuer
	sender    notify.Sender
	processed *redisx.ProcessedLog
	log       *zap.Logger
}

func NewService(repo Repository, users user.ServiceInterface, products product.ServiceInterface,
	carts cart.ServiceInterface, issuer invoice.Issuer, sender notify.Sender,
	processed *redisx.ProcessedLog, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		users:     users,
		products:  products,
		carts:     carts,
		issuer:    issuer,
		sender:    sender,
		processed: processed,
		log:       log,
	}
}

type CheckoutInput struct {
	UserID   int
	Items    []Item
	Subtotal int
	Tax      int
	Total    int
	// BaseURL is the origin the payment page redirects back to.
	BaseURL string
}

type CheckoutResult struct {
	Order            Order
	InvoiceURL       string
	NotificationSent bool
	HasContact       bool
}

// Checkout persists a provisional PENDING order, requests a hosted invoice
// for it, then dispatches a best-effort confirmation message. The provisional
// order goes in before the issuer call so an issuer failure can never leave
// an external invoice without a traceable order row; that failure path marks
// the order FAILED and surfaces the upstream error.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (CheckoutResult, error) {
	if len(in.Items) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	usr, err := s.users.GetByID(in.UserID)
	if err != nil {
		return CheckoutResult{}, err
	}

	externalID := uuid.NewString()
	now := nowRFC3339()

	ord, err := s.repo.Create(Order{
		ExternalID: externalID,
		UserID:     usr.ID,
		UserEmail:  usr.Email,
		UserPhone:  usr.Phone,
		Items:      in.Items,
		Subtotal:   in.Subtotal,
		Tax:        in.Tax,
		Total:      in.Total,
		Status:     StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return CheckoutResult{}, err
	}

	inv, err := s.issuer.CreateInvoice(ctx, invoice.CreateRequest{
		ExternalID:         externalID,
		Amount:             in.Total,
		Description:        "Pembayaran order " + externalID,
		SuccessRedirectURL: in.BaseURL + "/success",
		FailureRedirectURL: in.BaseURL + "/failed",
		CustomerEmail:      usr.Email,
		CustomerPhone:      usr.Phone,
	})
	if err != nil {
		s.log.Error("invoice issuance failed, marking order failed",
			zap.String("external_id", externalID), zap.Error(err))
		if _, uerr := s.repo.UpdateStatus(Ref{ExternalID: externalID}, StatusFailed, nowRFC3339()); uerr != nil {
			s.log.Error("could not mark provisional order failed",
				zap.String("external_id", externalID), zap.Error(uerr))
		}
		return CheckoutResult{}, err
	}

	if err := s.repo.AttachInvoice(externalID, inv.ID, inv.InvoiceURL, nowRFC3339()); err != nil {
		return CheckoutResult{}, err
	}
	ord.InvoiceID = inv.ID
	ord.InvoiceURL = inv.InvoiceURL

	metrics.OrdersCreated.Inc()
	s.log.Info("order created",
		zap.String("external_id", externalID),
		zap.String("invoice_id", inv.ID),
		zap.Int("total", in.Total))

	res := CheckoutResult{
		Order:      ord,
		InvoiceURL: inv.InvoiceURL,
		HasContact: usr.Phone != "",
	}

	if usr.Phone != "" {
		res.NotificationSent = s.notifyOrderCreated(ctx, ord)
		ord.NotificationSent = res.NotificationSent
		res.Order = ord
	}

	return res, nil
}

func (s *Service) notifyOrderCreated(ctx context.Context, ord Order) bool {
	msg := notify.OrderMessage(notify.OrderMessageData{
		OrderID:    ord.ExternalID,
		Items:      lineItems(ord.Items),
		Subtotal:   ord.Subtotal,
		Tax:        ord.Tax,
		Total:      ord.Total,
		InvoiceURL: ord.InvoiceURL,
	})

	ok, err := s.sender.Send(ctx, ord.UserPhone, msg)
	metrics.NotificationsSent.WithLabelValues(metrics.NotifyResult(ok && err == nil)).Inc()
	if err != nil || !ok {
		s.log.Warn("order notification failed",
			zap.String("external_id", ord.ExternalID), zap.Error(err))
		return false
	}

	if err := s.repo.MarkNotified(ord.ExternalID, nowRFC3339()); err != nil {
		s.log.Warn("could not record notification flag",
			zap.String("external_id", ord.ExternalID), zap.Error(err))
	}
	return true
}

func (s *Service) ListByUser(userID int) ([]Order, error) {
	return s.repo.ListByUser(userID)
}

func (s *Service) ListAll() ([]Order, error) {
	return s.repo.ListAll()
}

func (s *Service) Stats() (Stats, error) {
	return s.repo.Stats()
}

func lineItems(items []Item) []notify.LineItem {
	out := make([]notify.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, notify.LineItem{Name: it.Name, Qty: it.Quantity, Price: it.UnitPrice})
	}
	return out
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
