package http

import "ledger/internal/ui"

// pageView is the server-side copy of one browser page. It implements
// ui.View: the client renders into it, and handlers turn the regions touched
// during an event into out-of-band fragments and page events.
type pageView struct {
	rows     []ui.Row
	byID     map[int64]ui.Row
	summary  *ui.SummaryPanel
	edit     ui.Fields
	editOpen bool

	// confirmed answers the next Confirm. The browser asks the user
	// (hx-confirm) before the request is sent, so a request only reaches
	// the server once the user has agreed.
	confirmed bool
	pending   effects
}

// effects are the changes produced by a single event.
type effects struct {
	alerts    []string
	table     bool
	summary   bool
	overlay   bool
	formReset bool
}

var _ ui.View = (*pageView)(nil)

func newPageView() *pageView {
	return &pageView{byID: make(map[int64]ui.Row)}
}

func (p *pageView) Alert(message string) {
	p.pending.alerts = append(p.pending.alerts, message)
}

func (p *pageView) Confirm(string) bool {
	answer := p.confirmed
	p.confirmed = false
	return answer
}

func (p *pageView) ReplaceRows(rows []ui.Row) {
	p.rows = rows
	p.byID = make(map[int64]ui.Row, len(rows))
	for _, row := range rows {
		p.byID[row.ID] = row
	}
	p.pending.table = true
}

func (p *pageView) ShowSummary(panel ui.SummaryPanel) {
	p.summary = &panel
	p.pending.summary = true
}

func (p *pageView) ShowEditOverlay(fields ui.Fields) {
	p.edit = fields
	p.editOpen = true
	p.pending.overlay = true
}

func (p *pageView) HideEditOverlay() {
	p.edit = ui.Fields{}
	p.editOpen = false
	p.pending.overlay = true
}

func (p *pageView) ResetAddForm() {
	p.pending.formReset = true
}

// row returns the rendered row for id, so actions go through the closures
// bound when the row was rendered.
func (p *pageView) row(id int64) (ui.Row, bool) {
	row, ok := p.byID[id]
	return row, ok
}

// flush returns and clears the effects of the current event.
func (p *pageView) flush() effects {
	e := p.pending
	p.pending = effects{}
	p.confirmed = false
	return e
}
