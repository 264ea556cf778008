package order

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `id, external_id, invoice_id, invoice_url, user_id, user_email, user_phone, items, subtotal, tax, total, status, created_at, updated_at, paid_at, notification_sent`

func (r *PostgresRepository) Create(ord Order) (Order, error) {
	itemsJSON, err := json.Marshal(ord.Items)
	if err != nil {
		return Order{}, err
	}

	err = r.db.QueryRow(`INSERT INTO orders (external_id, invoice_id, invoice_url, user_id, user_email, user_phone, items, subtotal, tax, total, status, created_at, updated_at, notification_sent)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id`,
		ord.ExternalID, ord.InvoiceID, ord.InvoiceURL, ord.UserID, ord.UserEmail, ord.UserPhone,
		itemsJSON, ord.Subtotal, ord.Tax, ord.Total, string(ord.Status), ord.CreatedAt, ord.UpdatedAt,
		ord.NotificationSent).Scan(&ord.ID)
	if err != nil {
		return Order{}, err
	}
	return ord, nil
}

func (r *PostgresRepository) AttachInvoice(externalID, invoiceID, invoiceURL, updatedAt string) error {
	res, err := r.db.Exec(`UPDATE orders SET invoice_id = $1, invoice_url = $2, updated_at = $3 WHERE external_id = $4`,
		invoiceID, invoiceURL, updatedAt, externalID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PostgresRepository) FindByRef(ref Ref) (Order, error) {
	clause, arg := whereRef(ref, 1)
	if clause == "" {
		return Order{}, ErrNotFound
	}
	row := r.db.QueryRow(`SELECT `+orderColumns+` FROM orders WHERE `+clause, arg)
	return scanOrder(row)
}

func (r *PostgresRepository) UpdateStatus(ref Ref, status Status, updatedAt string) (Order, error) {
	clause, arg := whereRef(ref, 3)
	if clause == "" {
		return Order{}, ErrNotFound
	}
	res, err := r.db.Exec(`UPDATE orders SET status = $1, updated_at = $2 WHERE `+clause, string(status), updatedAt, arg)
	if err != nil {
		return Order{}, err
	}
	if err := mustAffect(res); err != nil {
		return Order{}, err
	}
	return r.FindByRef(ref)
}

// MarkPaid relies on the WHERE status = 'PENDING' predicate for its
// atomicity; concurrent deliveries race on a single-row update and exactly
// one wins.
func (r *PostgresRepository) MarkPaid(ref Ref, updatedAt, paidAt string) (Order, bool, error) {
	clause, arg := whereRef(ref, 4)
	if clause == "" {
		return Order{}, false, ErrNotFound
	}
	res, err := r.db.Exec(`UPDATE orders SET status = $1, updated_at = $2, paid_at = $3 WHERE `+clause+` AND status = $5`,
		string(StatusPaid), updatedAt, paidAt, arg, string(StatusPending))
	if err != nil {
		return Order{}, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Order{}, false, err
	}

	ord, err := r.FindByRef(ref)
	if err != nil {
		return Order{}, false, err
	}
	return ord, n > 0, nil
}

func (r *PostgresRepository) MarkNotified(externalID string, updatedAt string) error {
	res, err := r.db.Exec(`UPDATE orders SET notification_sent = TRUE, updated_at = $1 WHERE external_id = $2`,
		updatedAt, externalID)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *PostgresRepository) ListByUser(userID int) ([]Order, error) {
	return r.list(`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
}

func (r *PostgresRepository) ListAll() ([]Order, error) {
	return r.list(`SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`)
}

func (r *PostgresRepository) Stats() (Stats, error) {
	var st Stats
	err := r.db.QueryRow(`SELECT
        COALESCE(SUM(total) FILTER (WHERE status = 'PAID'), 0),
        COUNT(*),
        COUNT(*) FILTER (WHERE status = 'PAID'),
        COUNT(*) FILTER (WHERE status = 'PENDING')
        FROM orders`).Scan(&st.TotalRevenue, &st.TotalOrders, &st.PaidOrders, &st.PendingPayments)
	return st, err
}

func (r *PostgresRepository) list(query string, args ...any) ([]Order, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		ord, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ord)
	}
	return out, rows.Err()
}

// whereRef builds the lookup predicate with the given placeholder index.
func whereRef(ref Ref, n int) (string, string) {
	if ref.InvoiceID != "" {
		return fmt.Sprintf("invoice_id = $%d", n), ref.InvoiceID
	}
	if ref.ExternalID != "" {
		return fmt.Sprintf("external_id = $%d", n), ref.ExternalID
	}
	return "", ""
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var ord Order
	var invoiceID, invoiceURL, userEmail, userPhone, paidAt sql.NullString
	var itemsJSON []byte
	var status string
	err := row.Scan(&ord.ID, &ord.ExternalID, &invoiceID, &invoiceURL, &ord.UserID, &userEmail, &userPhone,
		&itemsJSON, &ord.Subtotal, &ord.Tax, &ord.Total, &status, &ord.CreatedAt, &ord.UpdatedAt, &paidAt,
		&ord.NotificationSent)
	if err == sql.ErrNoRows {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, err
	}
	ord.InvoiceID = invoiceID.String
	ord.InvoiceURL = invoiceURL.String
	ord.UserEmail = userEmail.String
	ord.UserPhone = userPhone.String
	ord.PaidAt = paidAt.String
	ord.Status = Status(status)
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &ord.Items); err != nil {
			return Order{}, err
		}
	}
	return ord, nil
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
