// Package ui implements the transaction client: it reads filter and form
// input, calls the ledger backend and renders the results into a View.
//
// A TransactionClient is not safe for concurrent use. Callers deliver one
// event at a time, the way a browser event loop would.
package ui

import (
	"context"

	"ledger/internal/api"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

// Messages shown through View.Alert and View.Confirm.
const (
	MsgInvalidFields = "Please fill out all fields correctly."
	MsgAdded         = "Transaction added!"
	MsgUpdated       = "Transaction updated successfully!"
	MsgDeleted       = "Transaction deleted."
	MsgConfirmDelete = "Are you sure you want to delete this transaction?"
)

// Backend is the part of the REST contract the client consumes.
// *api.Client satisfies it.
type Backend interface {
	ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, in core.TransactionInput) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, in core.TransactionInput) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id int64) error
	Summary(ctx context.Context, p core.Period) (core.Summary, error)
}

var _ Backend = (*api.Client)(nil)

// View is the document surface the client renders into.
type View interface {
	// Alert shows a blocking message.
	Alert(message string)
	// Confirm asks the user a yes/no question.
	Confirm(message string) bool
	// ReplaceRows clears the transaction table and fills it with rows.
	ReplaceRows(rows []Row)
	// ShowSummary replaces the summary panel.
	ShowSummary(panel SummaryPanel)
	// ShowEditOverlay fills the edit form and makes the overlay visible.
	ShowEditOverlay(fields Fields)
	// HideEditOverlay hides the edit overlay.
	HideEditOverlay()
	// ResetAddForm clears the add form.
	ResetAddForm()
}

// EditSession records which transaction the edit overlay is bound to.
type EditSession struct {
	ID int64
}

// TransactionClient owns the filter/fetch/render/edit cycle for one view.
type TransactionClient struct {
	backend Backend
	view    View
	logger  *applog.Logger

	edit   *EditSession
	filter core.Filter
}

// Option configures a TransactionClient.
type Option func(*TransactionClient)

// WithLogger sets the logger used for swallowed transport failures.
func WithLogger(l *applog.Logger) Option {
	return func(c *TransactionClient) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a client rendering into view with no edit session open.
func New(backend Backend, view View, opts ...Option) *TransactionClient {
	c := &TransactionClient{
		backend: backend,
		view:    view,
		logger:  applog.FromContext(context.Background()).WithComponent(applog.ComponentClient),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EditSession returns the open edit session, if any.
func (c *TransactionClient) EditSession() (EditSession, bool) {
	if c.edit == nil {
		return EditSession{}, false
	}
	return *c.edit, true
}

// Filter returns the filter applied by the last ListTransactions call.
func (c *TransactionClient) Filter() core.Filter {
	return c.filter
}

// ListTransactions fetches the transactions matching f and replaces the
// table with them. On failure the table is left as it was.
func (c *TransactionClient) ListTransactions(ctx context.Context, f core.Filter) {
	c.filter = f
	txs, err := c.backend.ListTransactions(ctx, f)
	if err != nil {
		c.logFailure(ctx, "Error fetching transactions", err, applog.OpList,
			"start_date", f.StartDate, "end_date", f.EndDate, "category", f.Category)
		return
	}
	rows := make([]Row, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, c.RenderRow(tx))
	}
	c.view.ReplaceRows(rows)
}

// Refresh re-runs the last listing.
func (c *TransactionClient) Refresh(ctx context.Context) {
	c.ListTransactions(ctx, c.filter)
}

// AddTransaction validates fields and creates a transaction.
func (c *TransactionClient) AddTransaction(ctx context.Context, fields Fields) {
	in, err := fields.Input()
	if err != nil {
		c.view.Alert(MsgInvalidFields)
		return
	}
	if _, err := c.backend.CreateTransaction(ctx, in); err != nil {
		c.handleWriteError(ctx, "Error adding transaction", err, applog.OpCreate)
		return
	}
	c.view.Alert(MsgAdded)
	c.view.ResetAddForm()
	c.Refresh(ctx)
}

// OpenEdit starts an edit session for tx and shows the pre-filled overlay.
// An already open session is replaced.
func (c *TransactionClient) OpenEdit(tx core.Transaction) {
	c.edit = &EditSession{ID: tx.ID}
	c.view.ShowEditOverlay(FieldsOf(tx))
}

// CloseEdit ends the edit session and hides the overlay.
func (c *TransactionClient) CloseEdit() {
	c.edit = nil
	c.view.HideEditOverlay()
}

// SaveEdit sends fields as the new content of the transaction being edited.
// Without an open session it does nothing. A backend-reported error keeps the
// session open so the user can correct the input.
func (c *TransactionClient) SaveEdit(ctx context.Context, fields Fields) {
	if c.edit == nil {
		return
	}
	in, err := fields.Input()
	if err != nil {
		c.view.Alert(MsgInvalidFields)
		return
	}
	id := c.edit.ID
	if _, err := c.backend.UpdateTransaction(ctx, id, in); err != nil {
		c.handleWriteError(ctx, "Error updating transaction", err, applog.OpUpdate, applog.FieldTransactionID, id)
		return
	}
	c.view.Alert(MsgUpdated)
	c.CloseEdit()
	c.Refresh(ctx)
}

// DeleteTransaction asks for confirmation and deletes transaction id.
func (c *TransactionClient) DeleteTransaction(ctx context.Context, id int64) {
	if !c.view.Confirm(MsgConfirmDelete) {
		return
	}
	if err := c.backend.DeleteTransaction(ctx, id); err != nil {
		c.handleWriteError(ctx, "Error deleting transaction", err, applog.OpDelete, applog.FieldTransactionID, id)
		return
	}
	c.view.Alert(MsgDeleted)
	c.Refresh(ctx)
}

// FetchSummary fetches and renders the totals for p.
func (c *TransactionClient) FetchSummary(ctx context.Context, p core.Period) {
	s, err := c.backend.Summary(ctx, p)
	if err != nil {
		c.handleWriteError(ctx, "Error getting summary", err, applog.OpSummary,
			applog.FieldYear, p.Year, applog.FieldMonth, p.Month)
		return
	}
	c.view.ShowSummary(SummaryPanelOf(s))
}

// handleWriteError alerts on backend-reported errors and only logs
// transport or decoding failures.
func (c *TransactionClient) handleWriteError(ctx context.Context, msg string, err error, op string, args ...any) {
	if se, ok := api.IsServerError(err); ok {
		c.view.Alert("Error: " + se.Message)
		return
	}
	c.logFailure(ctx, msg, err, op, args...)
}

func (c *TransactionClient) logFailure(ctx context.Context, msg string, err error, op string, args ...any) {
	fields := applog.NewFields().WithError(err).WithOperation(op).ToSlice()
	c.logger.ErrorContext(ctx, msg, append(fields, args...)...)
}
