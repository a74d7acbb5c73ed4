package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledger/internal/api"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

type call struct {
	op     string
	id     int64
	filter core.Filter
	period core.Period
	input  core.TransactionInput
}

type fakeBackend struct {
	calls   []call
	txs     []core.Transaction
	summary core.Summary
	err     error
	listErr error
}

func (f *fakeBackend) ListTransactions(_ context.Context, flt core.Filter) ([]core.Transaction, error) {
	f.calls = append(f.calls, call{op: "list", filter: flt})
	return f.txs, f.listErr
}

func (f *fakeBackend) CreateTransaction(_ context.Context, in core.TransactionInput) (core.Transaction, error) {
	f.calls = append(f.calls, call{op: "create", input: in})
	return core.Transaction{}, f.err
}

func (f *fakeBackend) UpdateTransaction(_ context.Context, id int64, in core.TransactionInput) (core.Transaction, error) {
	f.calls = append(f.calls, call{op: "update", id: id, input: in})
	return core.Transaction{}, f.err
}

func (f *fakeBackend) DeleteTransaction(_ context.Context, id int64) error {
	f.calls = append(f.calls, call{op: "delete", id: id})
	return f.err
}

func (f *fakeBackend) Summary(_ context.Context, p core.Period) (core.Summary, error) {
	f.calls = append(f.calls, call{op: "summary", period: p})
	return f.summary, f.err
}

func (f *fakeBackend) ops() []string {
	ops := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		ops = append(ops, c.op)
	}
	return ops
}

type fakeView struct {
	alerts      []string
	confirms    []string
	answer      bool
	rows        []Row
	renders     int
	summary     *SummaryPanel
	overlay     *Fields
	overlayOpen bool
	formResets  int
}

func (v *fakeView) Alert(msg string) { v.alerts = append(v.alerts, msg) }
func (v *fakeView) Confirm(msg string) bool {
	v.confirms = append(v.confirms, msg)
	return v.answer
}
func (v *fakeView) ReplaceRows(rows []Row) {
	v.rows = rows
	v.renders++
}
func (v *fakeView) ShowSummary(p SummaryPanel) { v.summary = &p }
func (v *fakeView) ShowEditOverlay(f Fields) {
	v.overlay = &f
	v.overlayOpen = true
}
func (v *fakeView) HideEditOverlay() { v.overlayOpen = false }
func (v *fakeView) ResetAddForm()    { v.formResets++ }

func newTestClient(b *fakeBackend, v *fakeView) *TransactionClient {
	return New(b, v, WithLogger(applog.Discard()))
}

var (
	lunch  = core.Transaction{ID: 1, Date: "2024-01-05", Category: "Food", Description: "Lunch", Amount: core.NewAmount(12.5)}
	salary = core.Transaction{ID: 2, Date: "2024-01-01", Category: "Pay", Description: "Salary", Amount: core.NewAmount(1000.123)}
)

func TestListTransactionsRendersRowsInServerOrder(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch, salary}}
	v := &fakeView{}
	c := newTestClient(b, v)

	c.ListTransactions(context.Background(), core.Filter{Category: "Food"})

	require.Len(t, v.rows, 2)
	assert.Equal(t, int64(1), v.rows[0].ID)
	assert.Equal(t, "12.50", v.rows[0].Amount)
	assert.Equal(t, "Lunch", v.rows[0].Description)
	assert.Equal(t, "1000.12", v.rows[1].Amount)
	assert.Equal(t, core.Filter{Category: "Food"}, b.calls[0].filter)
}

func TestListTransactionsSingleRowScenario(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch}}
	v := &fakeView{}
	newTestClient(b, v).ListTransactions(context.Background(), core.Filter{})

	require.Len(t, v.rows, 1)
	assert.Equal(t, "12.50", v.rows[0].Amount)
}

func TestListTransactionsClearsPreviousRows(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch, salary}}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.ListTransactions(context.Background(), core.Filter{})

	b.txs = nil
	c.ListTransactions(context.Background(), core.Filter{})
	assert.Empty(t, v.rows)
	assert.Equal(t, 2, v.renders)
}

func TestListTransactionsFailureLeavesTableAndIsSilent(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch}}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.ListTransactions(context.Background(), core.Filter{})

	b.listErr = errors.New("connection refused")
	c.ListTransactions(context.Background(), core.Filter{})

	assert.Len(t, v.rows, 1)
	assert.Equal(t, 1, v.renders)
	assert.Empty(t, v.alerts)
}

func TestAddTransactionValidation(t *testing.T) {
	cases := []struct {
		name   string
		fields Fields
	}{
		{"empty description", Fields{Date: "2024-01-01", Category: "Pay", Description: "", Amount: "10"}},
		{"blank category", Fields{Date: "2024-01-01", Category: "   ", Description: "Salary", Amount: "10"}},
		{"missing date", Fields{Category: "Pay", Description: "Salary", Amount: "10"}},
		{"non-numeric amount", Fields{Date: "2024-01-01", Category: "Pay", Description: "Salary", Amount: "abc"}},
		{"empty amount", Fields{Date: "2024-01-01", Category: "Pay", Description: "Salary"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := &fakeBackend{}
			v := &fakeView{}
			newTestClient(b, v).AddTransaction(context.Background(), tc.fields)

			assert.Empty(t, b.calls, "no request may be sent")
			assert.Equal(t, []string{MsgInvalidFields}, v.alerts)
		})
	}
}

func TestAddTransactionSuccess(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch}}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.ListTransactions(context.Background(), core.Filter{Category: "Food"})

	c.AddTransaction(context.Background(), Fields{Date: " 2024-01-07 ", Category: "Food", Description: "Dinner", Amount: "-20.5"})

	assert.Equal(t, []string{"list", "create", "list"}, b.ops())
	in := b.calls[1].input
	assert.Equal(t, "2024-01-07", in.Date)
	assert.Equal(t, "-20.50", in.Amount.Format())
	assert.Equal(t, core.Filter{Category: "Food"}, b.calls[2].filter, "refresh keeps the filter")
	assert.Equal(t, []string{MsgAdded}, v.alerts)
	assert.Equal(t, 1, v.formResets)
}

func TestAddTransactionServerError(t *testing.T) {
	b := &fakeBackend{err: &api.ServerError{Message: "Invalid date format. Use YYYY-MM-DD."}}
	v := &fakeView{}
	newTestClient(b, v).AddTransaction(context.Background(), Fields{Date: "bad", Category: "Pay", Description: "Salary", Amount: "1"})

	assert.Equal(t, []string{"create"}, b.ops())
	assert.Equal(t, []string{"Error: Invalid date format. Use YYYY-MM-DD."}, v.alerts)
	assert.Zero(t, v.formResets)
}

func TestAddTransactionTransportErrorIsOnlyLogged(t *testing.T) {
	b := &fakeBackend{err: errors.New("dial tcp: connection refused")}
	v := &fakeView{}
	newTestClient(b, v).AddTransaction(context.Background(), Fields{Date: "2024-01-01", Category: "Pay", Description: "Salary", Amount: "1"})

	assert.Equal(t, []string{"create"}, b.ops())
	assert.Empty(t, v.alerts)
	assert.Zero(t, v.formResets)
}

func TestSaveEditWithoutSessionIsNoop(t *testing.T) {
	b := &fakeBackend{}
	v := &fakeView{}
	newTestClient(b, v).SaveEdit(context.Background(), Fields{Date: "2024-01-01", Category: "Pay", Description: "Salary", Amount: "1"})

	assert.Empty(t, b.calls)
	assert.Empty(t, v.alerts)
}

func TestEditLifecycle(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch}}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.ListTransactions(context.Background(), core.Filter{})

	v.rows[0].Edit()
	session, ok := c.EditSession()
	require.True(t, ok)
	assert.Equal(t, int64(1), session.ID)
	require.NotNil(t, v.overlay)
	assert.Equal(t, Fields{Date: "2024-01-05", Category: "Food", Description: "Lunch", Amount: "12.5"}, *v.overlay)
	assert.True(t, v.overlayOpen)

	c.SaveEdit(context.Background(), Fields{Date: "2024-01-05", Category: "Food", Description: "Brunch", Amount: "14"})

	assert.Equal(t, []string{"list", "update", "list"}, b.ops())
	assert.Equal(t, int64(1), b.calls[1].id)
	assert.Equal(t, "Brunch", b.calls[1].input.Description)
	assert.Equal(t, []string{MsgUpdated}, v.alerts)
	_, ok = c.EditSession()
	assert.False(t, ok)
	assert.False(t, v.overlayOpen)
}

func TestSaveEditServerErrorKeepsSession(t *testing.T) {
	b := &fakeBackend{}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.OpenEdit(lunch)

	b.err = &api.ServerError{Message: "Transaction not found."}
	c.SaveEdit(context.Background(), Fields{Date: "2024-01-05", Category: "Food", Description: "Lunch", Amount: "1"})

	assert.Equal(t, []string{"update"}, b.ops())
	assert.Equal(t, []string{"Error: Transaction not found."}, v.alerts)
	_, ok := c.EditSession()
	assert.True(t, ok)
	assert.True(t, v.overlayOpen)
}

func TestSaveEditInvalidFieldsKeepsSession(t *testing.T) {
	b := &fakeBackend{}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.OpenEdit(lunch)

	c.SaveEdit(context.Background(), Fields{Date: "2024-01-05", Category: "Food", Description: "Lunch", Amount: "twelve"})

	assert.Empty(t, b.calls)
	assert.Equal(t, []string{MsgInvalidFields}, v.alerts)
	_, ok := c.EditSession()
	assert.True(t, ok)
}

func TestCloseEdit(t *testing.T) {
	b := &fakeBackend{}
	v := &fakeView{}
	c := newTestClient(b, v)
	c.OpenEdit(lunch)
	c.CloseEdit()

	_, ok := c.EditSession()
	assert.False(t, ok)
	assert.False(t, v.overlayOpen)

	c.SaveEdit(context.Background(), Fields{Date: "2024-01-05", Category: "Food", Description: "Lunch", Amount: "1"})
	assert.Empty(t, b.calls)
}

func TestDeleteTransactionRequiresConfirmation(t *testing.T) {
	b := &fakeBackend{}
	v := &fakeView{answer: false}
	c := newTestClient(b, v)

	c.DeleteTransaction(context.Background(), 5)
	assert.Empty(t, b.calls)
	assert.Equal(t, []string{MsgConfirmDelete}, v.confirms)

	v.answer = true
	c.DeleteTransaction(context.Background(), 5)
	assert.Equal(t, []string{"delete", "list"}, b.ops())
	assert.Equal(t, int64(5), b.calls[0].id)
	assert.Equal(t, []string{MsgDeleted}, v.alerts)
}

func TestDeleteTransactionServerError(t *testing.T) {
	b := &fakeBackend{err: &api.ServerError{Message: "Transaction not found."}}
	v := &fakeView{answer: true}
	newTestClient(b, v).DeleteTransaction(context.Background(), 5)

	assert.Equal(t, []string{"delete"}, b.ops())
	assert.Equal(t, []string{"Error: Transaction not found."}, v.alerts)
}

func TestRowDeleteIsBoundToRowID(t *testing.T) {
	b := &fakeBackend{txs: []core.Transaction{lunch, salary}}
	v := &fakeView{answer: true}
	c := newTestClient(b, v)
	c.ListTransactions(context.Background(), core.Filter{})

	v.rows[1].Delete(context.Background())
	assert.Equal(t, int64(2), b.calls[1].id)
}

func TestFetchSummary(t *testing.T) {
	b := &fakeBackend{summary: core.Summary{
		Total:             core.NewAmount(987.5),
		Income:            core.NewAmount(1000),
		Expense:           core.NewAmount(-12.5),
		TransactionsCount: 2,
	}}
	v := &fakeView{}
	newTestClient(b, v).FetchSummary(context.Background(), core.Period{Year: "2024"})

	require.NotNil(t, v.summary)
	assert.Equal(t, SummaryPanel{Total: "987.50", Income: "1000.00", Expense: "-12.50", Count: 2}, *v.summary)
	assert.Equal(t, core.Period{Year: "2024"}, b.calls[0].period)
}

func TestFetchSummaryServerErrorAlertsInsteadOfRendering(t *testing.T) {
	b := &fakeBackend{err: &api.ServerError{Message: "boom"}}
	v := &fakeView{}
	newTestClient(b, v).FetchSummary(context.Background(), core.Period{})

	assert.Nil(t, v.summary)
	assert.Equal(t, []string{"Error: boom"}, v.alerts)
}
