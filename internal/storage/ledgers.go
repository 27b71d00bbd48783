package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/bhada/internal/model"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// UpsertCustomer returns the named customer, creating it if needed.
func (s *SQLiteStorage) UpsertCustomer(ctx context.Context, name string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO customers (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	return s.GetCustomerByName(ctx, name)
}

// GetCustomerByName returns a customer, or ErrCustomerMissing.
func (s *SQLiteStorage) GetCustomerByName(ctx context.Context, name string) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var c model.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.name, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM ledger_rows r WHERE r.customer_id = c.id)
		FROM customers c
		WHERE c.name = ?`, name).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.RowCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrCustomerMissing, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return &c, nil
}

// GetCustomers returns every customer ordered by name.
func (s *SQLiteStorage) GetCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM ledger_rows r WHERE r.customer_id = c.id)
		FROM customers c
		ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt, &c.RowCount); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating customers: %w", err)
	}

	return customers, nil
}

// DeleteCustomer removes a customer and its ledger.
func (s *SQLiteStorage) DeleteCustomer(ctx context.Context, name string) error {
	c, err := s.GetCustomerByName(ctx, name)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE customer_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to delete ledger rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}

	return tx.Commit()
}

// SaveLedger replaces a customer's ledger with rows, creating the customer
// if needed. Rows without an ID are assigned one.
func (s *SQLiteStorage) SaveLedger(ctx context.Context, customer string, rows []model.TransactionRow) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRows(rows); err != nil {
		return err
	}

	c, err := s.UpsertCustomer(ctx, customer)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM ledger_rows WHERE customer_id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_rows (
			id, customer_id, position, serial, per_day, item, size,
			quantity_out, quantity_in, rate, date_out, date_in, days, extra
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ledger insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range rows {
		id := r.ID
		if id == "" {
			id = uuid.New().String()
		}

		extra, err := json.Marshal(r.Extra)
		if err != nil {
			return fmt.Errorf("failed to encode extra columns: %w", err)
		}
		if r.Extra == nil {
			extra = []byte("{}")
		}

		var days decimal.NullDecimal
		if r.SuppliedDays != nil {
			days = decimal.NewNullDecimal(*r.SuppliedDays)
		}

		_, err = stmt.ExecContext(ctx,
			id, c.ID, i, r.Serial, r.PerDay, r.Item, r.Size,
			r.QuantityOut, r.QuantityIn, r.RatePerUnit,
			dateToNullString(r.DateOut), dateToNullString(r.DateIn), days, string(extra),
		)
		if err != nil {
			return fmt.Errorf("failed to insert ledger row %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE customers SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, c.ID); err != nil {
		return fmt.Errorf("failed to touch customer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}

	slog.Debug("saved ledger", "customer", customer, "rows", len(rows))
	return nil
}

// GetLedger returns a customer's stored rows in order.
func (s *SQLiteStorage) GetLedger(ctx context.Context, customer string) ([]model.TransactionRow, error) {
	c, err := s.GetCustomerByName(ctx, customer)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, serial, per_day, item, size, quantity_out, quantity_in, rate,
			date_out, date_in, days, extra
		FROM ledger_rows
		WHERE customer_id = ?
		ORDER BY position`, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ledger []model.TransactionRow
	for rows.Next() {
		row, err := scanLedgerRow(rows)
		if err != nil {
			return nil, err
		}
		ledger = append(ledger, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger: %w", err)
	}

	return ledger, nil
}

// GetAllLedgers returns every customer's rows keyed by customer name.
func (s *SQLiteStorage) GetAllLedgers(ctx context.Context) (map[string][]model.TransactionRow, error) {
	customers, err := s.GetCustomers(ctx)
	if err != nil {
		return nil, err
	}

	ledgers := make(map[string][]model.TransactionRow, len(customers))
	for _, c := range customers {
		rows, err := s.GetLedger(ctx, c.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to load ledger for %q: %w", c.Name, err)
		}
		ledgers[c.Name] = rows
	}
	return ledgers, nil
}

func scanLedgerRow(rows *sql.Rows) (model.TransactionRow, error) {
	var (
		r               model.TransactionRow
		dateOut, dateIn sql.NullString
		days            decimal.NullDecimal
		extra           string
	)

	err := rows.Scan(&r.ID, &r.Serial, &r.PerDay, &r.Item, &r.Size, &r.QuantityOut, &r.QuantityIn, &r.RatePerUnit,
		&dateOut, &dateIn, &days, &extra)
	if err != nil {
		return r, fmt.Errorf("failed to scan ledger row: %w", err)
	}

	r.DateOut = nullStringToDate(dateOut)
	r.DateIn = nullStringToDate(dateIn)
	if days.Valid {
		d := days.Decimal
		r.SuppliedDays = &d
	}

	if extra != "" && extra != "{}" && extra != "null" {
		if err := json.Unmarshal([]byte(extra), &r.Extra); err != nil {
			return r, fmt.Errorf("failed to decode extra columns for row %s: %w", r.ID, err)
		}
	}

	return r, nil
}

func dateToNullString(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(dateLayout), Valid: true}
}

func nullStringToDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(dateLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
