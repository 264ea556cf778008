package order

import (
	"context"

	"go.uber.org/zap"

	"github.com/dimasprayoga/storefront-backend/internal/metrics"
	"github.com/dimasprayoga/storefront-backend/internal/notify"
	"github.com/dimasprayoga/storefront-backend/internal/product"
)

// WebhookEvent is the normalized issuer callback: a raw upstream status plus
// at least one order identifier.
type WebhookEvent struct {
	Status     string
	InvoiceID  string
	ExternalID string
}

// SideEffects records the per-step outcome of the PAID effects. Any step may
// fail without failing the delivery.
type SideEffects struct {
	StockAdjusted    bool `json:"stock_adjusted"`
	CartCleared      bool `json:"cart_cleared"`
	NotificationSent bool `json:"notification_sent"`
}

type WebhookResult struct {
	Order   Order
	Status  Status
	Applied bool
	Effects SideEffects
}

// ProcessWebhook transitions the referenced order and, on a PENDING -> PAID
// transition only, runs the paid side effects: stock decrement, clearing the
// ordering user's cart, and a payment-success message. Duplicate deliveries
// are short-circuited through the processed log when available and otherwise
// blocked by the conditional transition, so effects run at most once.
func (s *Service) ProcessWebhook(ctx context.Context, ev WebhookEvent) (WebhookResult, error) {
	mapped := FromUpstream(ev.Status)
	ref := Ref{InvoiceID: ev.InvoiceID, ExternalID: ev.ExternalID}

	dedupID := ev.InvoiceID
	if dedupID == "" {
		dedupID = ev.ExternalID
	}

	if s.processed.Seen(ctx, dedupID, string(mapped)) {
		ord, err := s.repo.FindByRef(ref)
		if err != nil {
			return WebhookResult{}, err
		}
		s.log.Info("duplicate webhook delivery ignored",
			zap.String("external_id", ord.ExternalID), zap.String("status", string(mapped)))
		return WebhookResult{Order: ord, Status: mapped, Applied: false}, nil
	}

	res := WebhookResult{Status: mapped}

	if mapped == StatusPaid {
		now := nowRFC3339()
		ord, applied, err := s.repo.MarkPaid(ref, now, now)
		if err != nil {
			return WebhookResult{}, err
		}
		res.Order = ord
		res.Applied = applied
		if applied {
			res.Effects = s.applyPaidSideEffects(ctx, ord)
			res.Order.NotificationSent = ord.NotificationSent || res.Effects.NotificationSent
		} else {
			s.log.Info("order not pending, paid side effects skipped",
				zap.String("external_id", ord.ExternalID),
				zap.String("status", string(ord.Status)),
				zap.Bool("terminal", ord.Status.Terminal()))
		}
	} else {
		ord, err := s.repo.UpdateStatus(ref, mapped, nowRFC3339())
		if err != nil {
			return WebhookResult{}, err
		}
		res.Order = ord
		res.Applied = true
	}

	s.processed.Mark(ctx, dedupID, string(mapped))
	metrics.WebhooksProcessed.WithLabelValues(string(mapped)).Inc()
	s.log.Info("webhook processed",
		zap.String("external_id", res.Order.ExternalID),
		zap.String("status", string(mapped)),
		zap.Bool("applied", res.Applied))
	return res, nil
}

func (s *Service) applyPaidSideEffects(ctx context.Context, ord Order) SideEffects {
	var fx SideEffects

	fx.StockAdjusted = true
	for _, it := range ord.Items {
		err := s.products.DecrementStock(it.ProductID, it.Quantity)
		if err == product.ErrNotFound {
			s.log.Warn("stock decrement skipped, product missing",
				zap.Int("product_id", it.ProductID),
				zap.String("external_id", ord.ExternalID))
			continue
		}
		if err != nil {
			fx.StockAdjusted = false
			s.log.Error("stock decrement failed",
				zap.Int("product_id", it.ProductID),
				zap.String("external_id", ord.ExternalID), zap.Error(err))
		}
	}

	if ord.UserID > 0 {
		if err := s.carts.ClearCart(ord.UserID); err != nil {
			s.log.Error("cart clear failed",
				zap.Int("user_id", ord.UserID),
				zap.String("external_id", ord.ExternalID), zap.Error(err))
		} else {
			fx.CartCleared = true
		}
	}

	if ord.UserPhone != "" {
		msg := notify.PaymentSuccessMessage(ord.ExternalID, lineItems(ord.Items), ord.Total)
		ok, err := s.sender.Send(ctx, ord.UserPhone, msg)
		metrics.NotificationsSent.WithLabelValues(metrics.NotifyResult(ok && err == nil)).Inc()
		if err != nil || !ok {
			s.log.Warn("payment-success notification failed",
				zap.String("external_id", ord.ExternalID), zap.Error(err))
		} else {
			fx.NotificationSent = true
			if err := s.repo.MarkNotified(ord.ExternalID, nowRFC3339()); err != nil {
				s.log.Warn("could not record notification flag",
					zap.String("external_id", ord.ExternalID), zap.Error(err))
			}
		}
	}

	return fx
}
