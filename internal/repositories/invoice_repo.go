package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gstbill/internal/common"
	"gstbill/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error)
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]*models.InvoiceDetail, int, error)

	SalesSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error)
	DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.DailySales, error)
	GSTBreakdown(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.GSTRateBreakdown, error)
}

type invoiceRepo struct {
	db DBTX
}

func NewInvoiceRepo(db DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceDetailColumns = `i.id, i.tenant_id, i.customer_id, i.invoice_number, i.invoice_date, i.overall_discount_percent,
		i.subtotal, i.total_item_discount, i.total_overall_discount, i.total_amount, i.tax_amount, i.grand_total,
		i.notes, i.created_at, i.updated_at,
		c.id, c.tenant_id, c.name, c.phone, c.email, c.address, c.gstin, c.created_at, c.updated_at`

func invoiceDetailDest(d *models.InvoiceDetail) []any {
	return []any{
		&d.ID, &d.TenantID, &d.CustomerID, &d.InvoiceNumber, &d.InvoiceDate, &d.OverallDiscountPercent,
		&d.Subtotal, &d.TotalItemDiscount, &d.TotalOverallDiscount, &d.TotalAmount, &d.TaxAmount, &d.GrandTotal,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt,
		&d.Customer.ID, &d.Customer.TenantID, &d.Customer.Name, &d.Customer.Phone, &d.Customer.Email,
		&d.Customer.Address, &d.Customer.GSTIN, &d.Customer.CreatedAt, &d.Customer.UpdatedAt,
	}
}

// NextInvoiceNumber draws the next value from the tenant's monthly counter and
// formats it as INV-YYYYMM-NNNNNN.
func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID, at time.Time) (string, error) {
	yearMonth := at.UTC().Format("200601")

	query := `
		INSERT INTO invoice_sequences (tenant_id, year_month, last_number, updated_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (tenant_id, year_month)
		DO UPDATE SET
			last_number = invoice_sequences.last_number + 1,
			updated_at = NOW()
		RETURNING last_number
	`

	var seq int
	if err := r.db.QueryRow(ctx, query, tenantID, yearMonth).Scan(&seq); err != nil {
		return "", fmt.Errorf("failed to generate invoice sequence: %w", err)
	}
	return fmt.Sprintf("INV-%s-%06d", yearMonth, seq), nil
}

// Create writes the invoice header and its item snapshot atomically.
func (r *invoiceRepo) Create(ctx context.Context, inv *models.Invoice) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO invoices (id, tenant_id, customer_id, invoice_number, invoice_date, overall_discount_percent,
				subtotal, total_item_discount, total_overall_discount, total_amount, tax_amount, grand_total, notes,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		`
		_, err := tx.Exec(ctx, query, inv.ID, inv.TenantID, inv.CustomerID, inv.InvoiceNumber, inv.InvoiceDate,
			inv.OverallDiscountPercent, inv.Subtotal, inv.TotalItemDiscount, inv.TotalOverallDiscount,
			inv.TotalAmount, inv.TaxAmount, inv.GrandTotal, inv.Notes)
		if err != nil {
			mapped := mapError(err, "invoice")
			if errors.Is(mapped, common.ErrDuplicateInvoiceNumber) {
				return common.NewDuplicateInvoiceNumberError(inv.InvoiceNumber, err)
			}
			return mapped
		}
		return insertInvoiceItems(ctx, tx, inv)
	})
}

func insertInvoiceItems(ctx context.Context, tx pgx.Tx, inv *models.Invoice) error {
	query := `
		INSERT INTO invoice_items (id, invoice_id, position, item_name, description, quantity, price, discount, gst_rate,
			gross_amount, discount_amount, overall_discount_share, taxable_value, tax_amount, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for i := range inv.Items {
		it := &inv.Items[i]
		it.InvoiceID = inv.ID
		_, err := tx.Exec(ctx, query, it.ID, it.InvoiceID, it.Position, it.ItemName, it.Description, it.Quantity,
			it.Price, it.Discount, it.GSTRate, it.GrossAmount, it.DiscountAmount, it.OverallDiscountShare,
			it.TaxableValue, it.TaxAmount, it.Amount)
		if err != nil {
			return fmt.Errorf("failed to insert invoice item %d: %w", it.Position, err)
		}
	}
	return nil
}

// GetByID returns the invoice joined with its customer and item snapshot.
func (r *invoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.InvoiceDetail, error) {
	query := `
		SELECT ` + invoiceDetailColumns + `
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id AND c.tenant_id = i.tenant_id
		WHERE i.tenant_id = $1 AND i.id = $2
	`
	d := &models.InvoiceDetail{}
	if err := r.db.QueryRow(ctx, query, tenantID, id).Scan(invoiceDetailDest(d)...); err != nil {
		return nil, mapError(err, "invoice")
	}

	items, err := r.listItems(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	d.Items = items
	return d, nil
}

func (r *invoiceRepo) listItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, position, item_name, description, quantity, price, discount, gst_rate,
			gross_amount, discount_amount, overall_discount_share, taxable_value, tax_amount, amount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.InvoiceItem{}
	for rows.Next() {
		var it models.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.ItemName, &it.Description, &it.Quantity,
			&it.Price, &it.Discount, &it.GSTRate, &it.GrossAmount, &it.DiscountAmount, &it.OverallDiscountShare,
			&it.TaxableValue, &it.TaxAmount, &it.Amount); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Update rewrites the header and replaces the whole item snapshot. The
// tenant filter makes cross-tenant overwrites report NotFound.
func (r *invoiceRepo) Update(ctx context.Context, inv *models.Invoice) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE invoices
			SET customer_id = $1, invoice_date = $2, overall_discount_percent = $3, subtotal = $4,
				total_item_discount = $5, total_overall_discount = $6, total_amount = $7, tax_amount = $8,
				grand_total = $9, notes = $10, updated_at = NOW()
			WHERE tenant_id = $11 AND id = $12
		`
		tag, err := tx.Exec(ctx, query, inv.CustomerID, inv.InvoiceDate, inv.OverallDiscountPercent, inv.Subtotal,
			inv.TotalItemDiscount, inv.TotalOverallDiscount, inv.TotalAmount, inv.TaxAmount, inv.GrandTotal,
			inv.Notes, inv.TenantID, inv.ID)
		if err != nil {
			return mapError(err, "invoice")
		}
		if err := requireRow(tag, "invoice"); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM invoice_items WHERE invoice_id = $1`, inv.ID); err != nil {
			return err
		}
		return insertInvoiceItems(ctx, tx, inv)
	})
}

func (r *invoiceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invoices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	return requireRow(tag, "invoice")
}

// List returns one page of invoices with their customers (items are not
// loaded) together with the total number of matches. A zero limit returns
// every match.
func (r *invoiceRepo) List(ctx context.Context, tenantID uuid.UUID, f models.InvoiceFilter) ([]*models.InvoiceDetail, int, error) {
	query := `
		SELECT ` + invoiceDetailColumns + `, COUNT(*) OVER()
		FROM invoices i
		JOIN customers c ON c.id = i.customer_id AND c.tenant_id = i.tenant_id
		WHERE i.tenant_id = $1
			AND ($2::timestamptz IS NULL OR i.invoice_date >= $2)
			AND ($3::timestamptz IS NULL OR i.invoice_date < $3)
			AND ($4 = '' OR i.invoice_number ILIKE '%' || $4 || '%' OR c.name ILIKE '%' || $4 || '%' OR c.phone LIKE '%' || $4 || '%')
		ORDER BY i.invoice_date DESC, i.invoice_number DESC
		LIMIT NULLIF($5, 0) OFFSET $6
	`
	rows, err := r.db.Query(ctx, query, tenantID, f.From, f.To, f.Search, f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices := []*models.InvoiceDetail{}
	total := 0
	for rows.Next() {
		d := &models.InvoiceDetail{}
		if err := rows.Scan(append(invoiceDetailDest(d), &total)...); err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, d)
	}
	return invoices, total, rows.Err()
}

// SalesSummary sums the stored totals of invoices dated in [from, to).
func (r *invoiceRepo) SalesSummary(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (*models.SalesSummary, error) {
	query := `
		SELECT COUNT(*),
			COALESCE(SUM(subtotal), 0),
			COALESCE(SUM(total_item_discount + total_overall_discount), 0),
			COALESCE(SUM(total_amount), 0),
			COALESCE(SUM(tax_amount), 0),
			COALESCE(SUM(grand_total), 0)
		FROM invoices
		WHERE tenant_id = $1 AND invoice_date >= $2 AND invoice_date < $3
	`
	var s models.SalesSummary
	err := r.db.QueryRow(ctx, query, tenantID, from, to).Scan(
		&s.InvoiceCount, &s.Subtotal, &s.TotalDiscount, &s.TaxableValue, &s.TaxCollected, &s.GrandTotal,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DailySales groups invoices dated in [from, to) by UTC calendar day.
func (r *invoiceRepo) DailySales(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.DailySales, error) {
	query := `
		SELECT date_trunc('day', invoice_date AT TIME ZONE 'UTC') AS day,
			COUNT(*), COALESCE(SUM(tax_amount), 0), COALESCE(SUM(grand_total), 0)
		FROM invoices
		WHERE tenant_id = $1 AND invoice_date >= $2 AND invoice_date < $3
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	days := []models.DailySales{}
	for rows.Next() {
		var d models.DailySales
		if err := rows.Scan(&d.Date, &d.InvoiceCount, &d.TaxCollected, &d.GrandTotal); err != nil {
			return nil, err
		}
		d.Date = d.Date.UTC()
		days = append(days, d)
	}
	return days, rows.Err()
}

// GSTBreakdown totals snapshot rows by GST rate for invoices dated in [from, to).
func (r *invoiceRepo) GSTBreakdown(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]models.GSTRateBreakdown, error) {
	query := `
		SELECT ii.gst_rate, COALESCE(SUM(ii.taxable_value), 0), COALESCE(SUM(ii.tax_amount), 0)
		FROM invoice_items ii
		JOIN invoices i ON i.id = ii.invoice_id
		WHERE i.tenant_id = $1 AND i.invoice_date >= $2 AND i.invoice_date < $3
		GROUP BY ii.gst_rate
		ORDER BY ii.gst_rate
	`
	rows, err := r.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rates := []models.GSTRateBreakdown{}
	for rows.Next() {
		var b models.GSTRateBreakdown
		if err := rows.Scan(&b.GSTRate, &b.TaxableValue, &b.TaxAmount); err != nil {
			return nil, err
		}
		rates = append(rates, b)
	}
	return rates, rows.Err()
}
