package order

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func orderRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "external_id", "invoice_id", "invoice_url", "user_id", "user_email", "user_phone",
		"items", "subtotal", "tax", "total", "status", "created_at", "updated_at", "paid_at",
		"notification_sent",
	})
}

func TestMarkPaid_AppliesPendingTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("PAID", "t2", "t2", "inv-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("FROM orders WHERE invoice_id").
		WithArgs("inv-1").
		WillReturnRows(orderRows().AddRow(
			1, "ext-1", "inv-1", "https://pay.example/inv-1", 7, "budi@example.com", "81234567890",
			[]byte(`[{"productId":1,"name":"Shoe","quantity":2,"unitPrice":100000}]`),
			200000, 22000, 222000, "PAID", "t1", "t2", "t2", false))

	ord, applied, err := repo.MarkPaid(Ref{InvoiceID: "inv-1"}, "t2", "t2")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if !applied {
		t.Fatal("expected transition to apply")
	}
	if ord.Status != StatusPaid || ord.Total != 222000 {
		t.Fatalf("unexpected order: %+v", ord)
	}
	if len(ord.Items) != 1 || ord.Items[0].Quantity != 2 {
		t.Fatalf("items not decoded: %+v", ord.Items)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestMarkPaid_AlreadyPaidIsNotReapplied(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	// the guarded update matches zero rows; the order itself still resolves
	mock.ExpectExec("UPDATE orders SET status").
		WithArgs("PAID", "t3", "t3", "inv-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("FROM orders WHERE invoice_id").
		WithArgs("inv-1").
		WillReturnRows(orderRows().AddRow(
			1, "ext-1", "inv-1", "", 7, "", "", []byte(`[]`),
			200000, 22000, 222000, "PAID", "t1", "t2", "t2", true))

	ord, applied, err := repo.MarkPaid(Ref{InvoiceID: "inv-1"}, "t3", "t3")
	if err != nil {
		t.Fatalf("MarkPaid failed: %v", err)
	}
	if applied {
		t.Fatal("transition must not apply to a non-pending order")
	}
	if ord.Status != StatusPaid || ord.PaidAt != "t2" {
		t.Fatalf("unexpected order: %+v", ord)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindByRef_FallsBackToExternalID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders WHERE external_id").
		WithArgs("ext-1").
		WillReturnRows(orderRows().AddRow(
			1, "ext-1", nil, nil, 7, nil, nil, []byte(`[]`),
			0, 0, 0, "PENDING", "t1", "t1", nil, false))

	ord, err := repo.FindByRef(Ref{ExternalID: "ext-1"})
	if err != nil {
		t.Fatalf("FindByRef failed: %v", err)
	}
	if ord.ExternalID != "ext-1" || ord.Status != StatusPending {
		t.Fatalf("unexpected order: %+v", ord)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestFindByRef_EmptyRef(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	if _, err := repo.FindByRef(Ref{}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStatsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock error: %v", err)
	}
	defer db.Close()
	repo := NewPostgresRepository(db)

	mock.ExpectQuery("FROM orders").WillReturnRows(
		sqlmock.NewRows([]string{"revenue", "total", "paid", "pending"}).AddRow(222000, 3, 1, 1))

	st, err := repo.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	want := Stats{TotalRevenue: 222000, TotalOrders: 3, PaidOrders: 1, PendingPayments: 1}
	if st != want {
		t.Fatalf("stats = %+v, want %+v", st, want)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
