package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/invoiceflow/invoice-server/constants"
	"github.com/invoiceflow/invoice-server/internal/common"
	"github.com/invoiceflow/invoice-server/internal/entity"
	"github.com/invoiceflow/invoice-server/internal/invoice"
	"github.com/invoiceflow/invoice-server/internal/money"
)

// InvoiceRepository persists validated drafts plus their computed totals.
// Line items and discounts are stored as ordered sequences keyed by invoice
// id and position.
type InvoiceRepository interface {
	Save(ctx context.Context, profileID uuid.UUID, draft entity.InvoiceDraft, totals entity.Totals) (*entity.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, draft entity.InvoiceDraft, totals entity.Totals) (*entity.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, profileID uuid.UUID, from, to *time.Time) ([]*entity.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status constants.InvoiceStatus) (*entity.Invoice, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context, profileID uuid.UUID) (*entity.InvoiceStats, error)
}

type invoiceRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewInvoiceRepository(pool *pgxpool.Pool, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{pool: pool, logger: logger}
}

const invoiceColumns = `
	id, profile_id, invoice_number,
	vendor_name, COALESCE(vendor_email,''), COALESCE(vendor_address,''),
	client_name, COALESCE(client_email,''), COALESCE(client_address,''),
	issue_date, due_date, currency,
	subtotal::text, tax_total::text, discount_total::text, shipping::text, grand_total::text,
	status, COALESCE(notes,''), COALESCE(terms,''), sent_at, paid_at, created_at, updated_at`

func (r *invoiceRepository) Save(ctx context.Context, profileID uuid.UUID, draft entity.InvoiceDraft, totals entity.Totals) (*entity.Invoice, error) {
	issue, ok := draft.IssueDate.Time()
	if !ok {
		return nil, common.NewAppError("INVOICE_SAVE", "issue_date is not a valid date", common.ErrInvalidInput)
	}
	var due *time.Time
	if t, ok := draft.DueDate.Time(); ok {
		due = &t
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, common.WrapError(err, "begin save")
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx, `
		INSERT INTO invoices (
			profile_id, invoice_number,
			vendor_name, vendor_email, vendor_address,
			client_name, client_email, client_address,
			issue_date, due_date, currency,
			subtotal, tax_total, discount_total, shipping, grand_total,
			status, notes, terms
		) VALUES (
			$1, $2,
			$3, NULLIF($4,''), NULLIF($5,''),
			$6, NULLIF($7,''), NULLIF($8,''),
			$9, $10, $11,
			$12::numeric, $13::numeric, $14::numeric, $15::numeric, $16::numeric,
			$17, NULLIF($18,''), NULLIF($19,'')
		)
		RETURNING id, created_at, updated_at`,
		profileID, draft.InvoiceNumber,
		draft.Vendor.Name, draft.Vendor.Email, draft.Vendor.Address,
		draft.Client.Name, draft.Client.Email, draft.Client.Address,
		issue, due, draft.Currency,
		totals.Subtotal.String(), totals.TaxTotal.String(), totals.DiscountTotal.String(),
		draft.Shipping.String(), totals.GrandTotal.String(),
		string(constants.StatusDraft), draft.Notes, draft.Terms,
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		r.logger.Error("invoice save failed", "profile_id", profileID, "error", err)
		return nil, common.WrapError(err, "insert invoice")
	}

	if err := insertLineItems(ctx, tx, id, draft.Items); err != nil {
		return nil, err
	}
	if err := insertDiscounts(ctx, tx, id, draft.Discounts); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.WrapError(err, "commit save")
	}

	r.logger.Info("invoice saved", "invoice_id", id, "profile_id", profileID, "grand_total", totals.GrandTotal.String())
	return &entity.Invoice{
		ID:        id,
		ProfileID: profileID,
		Draft:     draft,
		Totals:    totals,
		Status:    constants.StatusDraft,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (r *invoiceRepository) Update(ctx context.Context, id uuid.UUID, draft entity.InvoiceDraft, totals entity.Totals) (*entity.Invoice, error) {
	issue, ok := draft.IssueDate.Time()
	if !ok {
		return nil, common.NewAppError("INVOICE_UPDATE", "issue_date is not a valid date", common.ErrInvalidInput)
	}
	var due *time.Time
	if t, ok := draft.DueDate.Time(); ok {
		due = &t
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, common.WrapError(err, "begin update")
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE invoices SET
			invoice_number = $2,
			vendor_name = $3, vendor_email = NULLIF($4,''), vendor_address = NULLIF($5,''),
			client_name = $6, client_email = NULLIF($7,''), client_address = NULLIF($8,''),
			issue_date = $9, due_date = $10, currency = $11,
			subtotal = $12::numeric, tax_total = $13::numeric, discount_total = $14::numeric,
			shipping = $15::numeric, grand_total = $16::numeric,
			notes = NULLIF($17,''), terms = NULLIF($18,''),
			updated_at = now()
		WHERE id = $1`,
		id, draft.InvoiceNumber,
		draft.Vendor.Name, draft.Vendor.Email, draft.Vendor.Address,
		draft.Client.Name, draft.Client.Email, draft.Client.Address,
		issue, due, draft.Currency,
		totals.Subtotal.String(), totals.TaxTotal.String(), totals.DiscountTotal.String(),
		draft.Shipping.String(), totals.GrandTotal.String(),
		draft.Notes, draft.Terms,
	)
	if err != nil {
		r.logger.Error("invoice update failed", "invoice_id", id, "error", err)
		return nil, common.WrapError(err, "update invoice")
	}
	if tag.RowsAffected() == 0 {
		return nil, common.ErrNotFound
	}

	// items and discounts are replaced wholesale; the draft is the source of
	// truth and totals were recomputed from it
	if _, err := tx.Exec(ctx, `DELETE FROM line_items WHERE invoice_id = $1`, id); err != nil {
		return nil, common.WrapError(err, "clear line items")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM discounts WHERE invoice_id = $1`, id); err != nil {
		return nil, common.WrapError(err, "clear discounts")
	}
	if err := insertLineItems(ctx, tx, id, draft.Items); err != nil {
		return nil, err
	}
	if err := insertDiscounts(ctx, tx, id, draft.Discounts); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, common.WrapError(err, "commit update")
	}

	r.logger.Info("invoice updated", "invoice_id", id, "grand_total", totals.GrandTotal.String())
	return r.Get(ctx, id)
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
	inv, err := scanInvoice(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("invoice get failed", "invoice_id", id, "error", err)
		return nil, common.WrapError(err, "get invoice")
	}

	items, err := r.loadLineItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Draft.Items = items

	discounts, err := r.loadDiscounts(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Draft.Discounts = discounts
	return inv, nil
}

// List returns invoice headers (no line items) for a profile, newest issue
// date first, optionally bounded by an issue-date window.
func (r *invoiceRepository) List(ctx context.Context, profileID uuid.UUID, from, to *time.Time) ([]*entity.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE profile_id = $1`
	args := []any{profileID}
	if from != nil {
		args = append(args, *from)
		q += ` AND issue_date >= $2`
	}
	if to != nil {
		args = append(args, *to)
		if from != nil {
			q += ` AND issue_date <= $3`
		} else {
			q += ` AND issue_date <= $2`
		}
	}
	q += ` ORDER BY issue_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("invoice list failed", "profile_id", profileID, "error", err)
		return nil, common.WrapError(err, "list invoices")
	}
	defer rows.Close()

	var out []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, common.WrapError(err, "scan invoice")
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status constants.InvoiceStatus) (*entity.Invoice, error) {
	var current string
	err := r.pool.QueryRow(ctx, `SELECT status FROM invoices WHERE id = $1`, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, common.WrapError(err, "load status")
	}
	if !constants.CanTransition(constants.InvoiceStatus(current), status) {
		return nil, common.NewAppError("INVOICE_STATUS",
			"cannot transition from "+current+" to "+string(status), common.ErrConflict)
	}

	q := `UPDATE invoices SET status = $2, updated_at = now()`
	switch status {
	case constants.StatusSent:
		q += `, sent_at = now()`
	case constants.StatusPaid:
		q += `, paid_at = now()`
	}
	q += ` WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, string(status)); err != nil {
		r.logger.Error("invoice status update failed", "invoice_id", id, "status", status, "error", err)
		return nil, common.WrapError(err, "update status")
	}
	r.logger.Info("invoice status updated", "invoice_id", id, "status", status)
	return r.Get(ctx, id)
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("invoice delete failed", "invoice_id", id, "error", err)
		return common.WrapError(err, "delete invoice")
	}
	if tag.RowsAffected() == 0 {
		return common.ErrNotFound
	}
	r.logger.Info("invoice deleted", "invoice_id", id)
	return nil
}

// Stats aggregates one profile's invoices in a single pass: total count,
// paid and pending (sent) counts, and revenue collected from paid invoices.
func (r *invoiceRepository) Stats(ctx context.Context, profileID uuid.UUID) (*entity.InvoiceStats, error) {
	var stats entity.InvoiceStats
	var revenue string
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'paid'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COALESCE(SUM(grand_total) FILTER (WHERE status = 'paid'), 0)::text
		FROM invoices WHERE profile_id = $1`, profileID,
	).Scan(&stats.Total, &stats.Paid, &stats.Pending, &revenue)
	if err != nil {
		r.logger.Error("invoice stats failed", "profile_id", profileID, "error", err)
		return nil, common.WrapError(err, "invoice stats")
	}
	if stats.Revenue, err = money.Parse(revenue); err != nil {
		return nil, err
	}
	return &stats, nil
}

func insertLineItems(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, items []entity.LineItem) error {
	for i, item := range items {
		_, err := tx.Exec(ctx, `
			INSERT INTO line_items (invoice_id, position, description, quantity, unit_price, tax_rate, amount)
			VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric, $7::numeric)`,
			invoiceID, i, item.Description,
			item.Quantity.Decimal().String(), item.UnitPrice.String(), item.TaxRate.String(),
			invoice.LineAmount(item).String(),
		)
		if err != nil {
			return common.WrapError(err, "insert line item")
		}
	}
	return nil
}

func insertDiscounts(ctx context.Context, tx pgx.Tx, invoiceID uuid.UUID, discounts []entity.Discount) error {
	for i, d := range discounts {
		_, err := tx.Exec(ctx, `
			INSERT INTO discounts (invoice_id, position, description, amount, type)
			VALUES ($1, $2, $3, $4::numeric, $5)`,
			invoiceID, i, d.Description, d.Amount.String(), string(d.Type),
		)
		if err != nil {
			return common.WrapError(err, "insert discount")
		}
	}
	return nil
}

func (r *invoiceRepository) loadLineItems(ctx context.Context, invoiceID uuid.UUID) ([]entity.LineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT description, quantity::text, unit_price::text, tax_rate::text
		FROM line_items WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, common.WrapError(err, "load line items")
	}
	defer rows.Close()

	var items []entity.LineItem
	for rows.Next() {
		var desc, qty, price, rate string
		if err := rows.Scan(&desc, &qty, &price, &rate); err != nil {
			return nil, common.WrapError(err, "scan line item")
		}
		item := entity.LineItem{Description: desc}
		if item.Quantity, err = money.Parse(qty); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = money.Parse(price); err != nil {
			return nil, err
		}
		if item.TaxRate, err = money.Parse(rate); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *invoiceRepository) loadDiscounts(ctx context.Context, invoiceID uuid.UUID) ([]entity.Discount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT description, amount::text, type
		FROM discounts WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, common.WrapError(err, "load discounts")
	}
	defer rows.Close()

	var out []entity.Discount
	for rows.Next() {
		var desc, amount, typ string
		if err := rows.Scan(&desc, &amount, &typ); err != nil {
			return nil, common.WrapError(err, "scan discount")
		}
		d := entity.Discount{Description: desc, Type: entity.DiscountType(typ)}
		if d.Amount, err = money.Parse(amount); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// scanInvoice reads one invoice header row in invoiceColumns order.
func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var issue time.Time
	var due *time.Time
	var subtotal, taxTotal, discountTotal, shipping, grandTotal string
	var status string

	err := row.Scan(
		&inv.ID, &inv.ProfileID, &inv.Draft.InvoiceNumber,
		&inv.Draft.Vendor.Name, &inv.Draft.Vendor.Email, &inv.Draft.Vendor.Address,
		&inv.Draft.Client.Name, &inv.Draft.Client.Email, &inv.Draft.Client.Address,
		&issue, &due, &inv.Draft.Currency,
		&subtotal, &taxTotal, &discountTotal, &shipping, &grandTotal,
		&status, &inv.Draft.Notes, &inv.Draft.Terms,
		&inv.SentAt, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	inv.Draft.IssueDate = entity.Date{YMD: issue.Format("2006-01-02")}
	if due != nil {
		inv.Draft.DueDate = entity.Date{YMD: due.Format("2006-01-02")}
	}
	inv.Status = constants.InvoiceStatus(status)

	if inv.Totals.Subtotal, err = money.Parse(subtotal); err != nil {
		return nil, err
	}
	if inv.Totals.TaxTotal, err = money.Parse(taxTotal); err != nil {
		return nil, err
	}
	if inv.Totals.DiscountTotal, err = money.Parse(discountTotal); err != nil {
		return nil, err
	}
	if inv.Draft.Shipping, err = money.Parse(shipping); err != nil {
		return nil, err
	}
	if inv.Totals.GrandTotal, err = money.Parse(grandTotal); err != nil {
		return nil, err
	}
	return &inv, nil
}
