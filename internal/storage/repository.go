package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.TransactionStore = (*SQLiteRepository)(nil)

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// brings its schema up to date.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger.WithComponent(applog.ComponentStorage),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const selectColumns = `SELECT id, date, category, description, amount FROM transactions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (core.Transaction, error) {
	var (
		tx     core.Transaction
		amount string
	)
	if err := row.Scan(&tx.ID, &tx.Date, &tx.Category, &tx.Description, &amount); err != nil {
		return core.Transaction{}, err
	}
	a, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: stored amount %q: %w", tx.ID, amount, err)
	}
	tx.Amount = a
	return tx, nil
}

// List implements store.TransactionReader. Bounds that are not valid dates
// are ignored, like in core.Filter.Matches.
func (r *SQLiteRepository) List(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	var (
		where []string
		args  []any
	)
	if c := strings.TrimSpace(f.Category); c != "" {
		where = append(where, "category = ? COLLATE NOCASE")
		args = append(args, c)
	}
	if sd, err := core.ParseDate(f.StartDate); err == nil {
		where = append(where, "date >= ?")
		args = append(args, sd.Format(core.DateLayout))
	}
	if ed, err := core.ParseDate(f.EndDate); err == nil {
		where = append(where, "date <= ?")
		args = append(args, ed.Format(core.DateLayout))
	}

	query := selectColumns
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := []core.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Transaction, error) {
	return getTransaction(ctx, r.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTransaction(ctx context.Context, q queryRower, id int64) (core.Transaction, error) {
	tx, err := scanTransaction(q.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) Create(ctx context.Context, in core.TransactionInput) (core.Transaction, error) {
	d, err := core.ParseDate(in.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	tx := core.Transaction{
		Date:        d.Format(core.DateLayout),
		Category:    in.Category,
		Description: in.Description,
		Amount:      in.Amount,
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (date, category, description, amount) VALUES (?, ?, ?, ?)`,
		tx.Date, tx.Category, tx.Description, tx.Amount.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	if tx.ID, err = res.LastInsertId(); err != nil {
		return core.Transaction{}, fmt.Errorf("read transaction id: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction saved to SQLite",
		applog.NewFields().WithTransaction(tx.ID, tx.Date, tx.Category, tx.Amount.String()).ToSlice()...)
	return tx, nil
}

// Patch implements store.TransactionWriter inside a single SQL transaction.
func (r *SQLiteRepository) Patch(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin update: %w", err)
	}
	defer sqlTx.Rollback()

	current, err := getTransaction(ctx, sqlTx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	updated, err := p.Apply(current)
	if err != nil {
		return core.Transaction{}, err
	}

	if _, err := sqlTx.ExecContext(ctx,
		`UPDATE transactions SET date = ?, category = ?, description = ?, amount = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		updated.Date, updated.Category, updated.Description, updated.Amount.String(), id); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	if err := sqlTx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit update: %w", err)
	}

	r.logger.InfoContext(ctx, "Transaction updated", applog.FieldTransactionID, id)
	return updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Transaction deleted", applog.FieldTransactionID, id)
	return nil
}
