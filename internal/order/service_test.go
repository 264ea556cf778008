package order

import (
	"context"
	"errors"
	"testing"

	"github.com/dimasprayoga/storefront-backend/internal/cart"
	"github.com/dimasprayoga/storefront-backend/internal/invoice"
	"github.com/dimasprayoga/storefront-backend/internal/product"
	"github.com/dimasprayoga/storefront-backend/internal/user"
)

// stubIssuer records the last create request and returns a fixed invoice.
type stubIssuer struct {
	err   error
	calls int
	last  invoice.CreateRequest
}

func (s *stubIssuer) CreateInvoice(_ context.Context, req invoice.CreateRequest) (invoice.Invoice, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return invoice.Invoice{}, s.err
	}
	return invoice.Invoice{ID: "inv-1", InvoiceURL: "https://pay.example/inv-1"}, nil
}

// stubSender records deliveries; ok/err control the reported outcome.
type stubSender struct {
	ok       bool
	err      error
	calls    int
	targets  []string
	messages []string
}

func (s *stubSender) Send(_ context.Context, phone, message string) (bool, error) {
	s.calls++
	s.targets = append(s.targets, phone)
	s.messages = append(s.messages, message)
	return s.ok, s.err
}

type fixture struct {
	service  *Service
	repo     *InMemoryRepository
	products *product.Service
	carts    *cart.Service
	issuer   *stubIssuer
	sender   *stubSender
}

func newFixture() *fixture {
	repo := NewInMemoryRepository()
	users := user.NewService(user.NewInMemoryRepository([]user.User{
		{ID: 7, Email: "budi@example.com", Name: "Budi", Phone: "81234567890", Role: user.RoleUser},
		{ID: 8, Email: "sari@example.com", Name: "Sari", Role: user.RoleUser}, // no phone
	}))
	products := product.NewService(product.NewInMemoryRepository([]product.Product{
		{ID: 1, Name: "Shoe", Price: 100000, Stock: 5},
		{ID: 2, Name: "Cap", Price: 50000, Stock: 1},
	}))
	carts := cart.NewService(cart.NewInMemoryRepository())
	issuer := &stubIssuer{}
	sender := &stubSender{ok: true}

	service := NewService(repo, users, products, carts, issuer, sender, nil, nil)
	return &fixture{service: service, repo: repo, products: products, carts: carts, issuer: issuer, sender: sender}
}

func shoeItems() []Item {
	return []Item{{ProductID: 1, Name: "Shoe", Quantity: 2, UnitPrice: 100000}}
}

func TestCheckout_CreatesPendingOrderWithInvoice(t *testing.T) {
	f := newFixture()

	res, err := f.service.Checkout(context.Background(), CheckoutInput{
		UserID:   7,
		Items:    shoeItems(),
		Subtotal: 200000,
		Tax:      22000,
		Total:    222000,
		BaseURL:  "https://shop.example",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	if res.Order.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", res.Order.Status)
	}
	if res.Order.Total != 222000 || res.Order.Subtotal != 200000 || res.Order.Tax != 22000 {
		t.Fatalf("unexpected totals: %+v", res.Order)
	}
	if res.Order.ExternalID == "" {
		t.Fatal("expected a generated external id")
	}
	if res.InvoiceURL != "https://pay.example/inv-1" || res.Order.InvoiceID != "inv-1" {
		t.Fatalf("invoice not attached: url=%q id=%q", res.InvoiceURL, res.Order.InvoiceID)
	}

	if f.issuer.last.ExternalID != res.Order.ExternalID {
		t.Fatalf("issuer called with external id %q, want %q", f.issuer.last.ExternalID, res.Order.ExternalID)
	}
	if f.issuer.last.Amount != 222000 {
		t.Fatalf("issuer called with amount %d", f.issuer.last.Amount)
	}
	if f.issuer.last.SuccessRedirectURL != "https://shop.example/success" ||
		f.issuer.last.FailureRedirectURL != "https://shop.example/failed" {
		t.Fatalf("unexpected redirect urls: %+v", f.issuer.last)
	}

	// exactly one order persisted, still pending
	all, _ := f.repo.ListAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 order, got %d", len(all))
	}
	if all[0].Status != StatusPending {
		t.Fatalf("stored order status %s", all[0].Status)
	}
}

func TestCheckout_SendsConfirmationWhenPhoneKnown(t *testing.T) {
	f := newFixture()

	res, err := f.service.Checkout(context.Background(), CheckoutInput{
		UserID: 7, Items: shoeItems(), Subtotal: 200000, Tax: 22000, Total: 222000,
		BaseURL: "https://shop.example",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if !res.HasContact || !res.NotificationSent {
		t.Fatalf("expected notification sent, got %+v", res)
	}
	if f.sender.calls != 1 || f.sender.targets[0] != "81234567890" {
		t.Fatalf("unexpected sender calls: %d %v", f.sender.calls, f.sender.targets)
	}

	stored, _ := f.repo.FindByRef(Ref{ExternalID: res.Order.ExternalID})
	if !stored.NotificationSent {
		t.Fatal("notification flag not recorded")
	}
}

func TestCheckout_SkipsNotificationWithoutPhone(t *testing.T) {
	f := newFixture()

	res, err := f.service.Checkout(context.Background(), CheckoutInput{
		UserID: 8, Items: shoeItems(), Subtotal: 200000, Tax: 22000, Total: 222000,
		BaseURL: "https://shop.example",
	})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if res.HasContact || res.NotificationSent {
		t.Fatalf("expected no notification, got %+v", res)
	}
	if f.sender.calls != 0 {
		t.Fatalf("sender should not be called, got %d calls", f.sender.calls)
	}
}

func TestCheckout_SurvivesNotificationFailure(t *testing.T) {
	f := newFixture()
	f.sender.ok = false
	f.sender.err = errors.New("gateway timeout")

	res, err := f.service.Checkout(context.Background(), CheckoutInput{
		UserID: 7, Items: shoeItems(), Subtotal: 200000, Tax: 22000, Total: 222000,
		BaseURL: "https://shop.example",
	})
	if err != nil {
		t.Fatalf("checkout must not fail on a notification error: %v", err)
	}
	if res.Order.Status != StatusPending {
		t.Fatalf("expected PENDING, got %s", res.Order.Status)
	}
	if !res.HasContact || res.NotificationSent {
		t.Fatalf("expected contact with failed delivery, got %+v", res)
	}
	if f.sender.calls != 1 {
		t.Fatalf("expected one delivery attempt, got %d", f.sender.calls)
	}

	// the flag stays false in storage too
	stored, _ := f.repo.FindByRef(Ref{ExternalID: res.Order.ExternalID})
	if stored.NotificationSent {
		t.Fatal("notification flag must not be recorded for a failed send")
	}
}

func TestCheckout_IssuerFailureMarksOrderFailed(t *testing.T) {
	f := newFixture()
	f.issuer.err = invoice.ErrUpstream

	_, err := f.service.Checkout(context.Background(), CheckoutInput{
		UserID: 7, Items: shoeItems(), Subtotal: 200000, Tax: 22000, Total: 222000,
		BaseURL: "https://shop.example",
	})
	if !errors.Is(err, invoice.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}

	// the provisional order must survive as FAILED so the attempt is traceable
	all, _ := f.repo.ListAll()
	if len(all) != 1 {
		t.Fatalf("expected 1 order, got %d", len(all))
	}
	if all[0].Status != StatusFailed {
		t.Fatalf("expected FAILED, got %s", all[0].Status)
	}
	if f.sender.calls != 0 {
		t.Fatal("no notification should go out for a failed checkout")
	}
}

func TestCheckout_EmptyCartRejected(t *testing.T) {
	f := newFixture()

	_, err := f.service.Checkout(context.Background(), CheckoutInput{UserID: 7})
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
	if f.issuer.calls != 0 {
		t.Fatal("issuer should not be called for an empty cart")
	}
}

func TestCheckout_UnknownUserRejected(t *testing.T) {
	f := newFixture()

	_, err := f.service.Checkout(context.Background(), CheckoutInput{UserID: 999, Items: shoeItems()})
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("expected user.ErrNotFound, got %v", err)
	}
	all, _ := f.repo.ListAll()
	if len(all) != 0 {
		t.Fatalf("no order should be persisted, got %d", len(all))
	}
}

func TestStats_CountsPaidRevenueOnly(t *testing.T) {
	f := newFixture()
	f.repo.Create(Order{ExternalID: "a", Status: StatusPaid, Total: 222000})
	f.repo.Create(Order{ExternalID: "b", Status: StatusPending, Total: 100000})
	f.repo.Create(Order{ExternalID: "c", Status: StatusFailed, Total: 50000})

	st, err := f.service.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	want := Stats{TotalRevenue: 222000, TotalOrders: 3, PaidOrders: 1, PendingPayments: 1}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}
}
