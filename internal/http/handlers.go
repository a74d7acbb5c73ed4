package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/ui"
)

type (
	tableData struct {
		Rows []ui.Row
		OOB  bool
	}

	summaryData struct {
		Summary *ui.SummaryPanel
		OOB     bool
	}

	overlayData struct {
		Open   bool
		Fields ui.Fields
		OOB    bool
	}

	indexData struct {
		Table   tableData
		Summary summaryData
		Overlay overlayData
		Filter  core.Filter
	}
)

var startedAt = time.Now()

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status, code := "ready", http.StatusOK
	checks := map[string]any{"sessions": s.sessionData.Size()}
	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, code = "not_ready", http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": status,
		"uptime": time.Since(startedAt).Round(time.Second).String(),
		"checks": checks,
	})
}

// handleIndex renders the full page. Like a fresh page load, it fetches the
// transaction list first.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	sess := s.sessions.acquire(w, r)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.client.Refresh(r.Context())
	sess.page.flush()

	data := indexData{
		Table:   tableData{Rows: sess.page.rows},
		Summary: summaryData{Summary: sess.page.summary},
		Overlay: overlayData{Open: sess.page.editOpen, Fields: sess.page.edit},
		Filter:  sess.client.Filter(),
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.logger.ErrorContext(r.Context(), "Index template execution failed", applog.FieldError, err, "template", "index.html")
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// event wraps a page event: it resolves the session, runs fn with the
// session locked, and answers with whatever fn changed on the page.
func (s *Server) event(fn func(ctx context.Context, r *http.Request, sess *session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			BadRequestError("Invalid request format").Write(w)
			return
		}
		if s.templates == nil {
			InternalServerError("templates not loaded").Write(w)
			return
		}

		sess := s.sessions.acquire(w, r)
		sess.mu.Lock()
		defer sess.mu.Unlock()

		fn(r.Context(), r, sess)
		s.writeEffects(w, r, sess)
	}
}

func (s *Server) handleFilter(ctx context.Context, r *http.Request, sess *session) {
	sess.client.ListTransactions(ctx, ParseFilter(r.Form))
}

func (s *Server) handleAdd(ctx context.Context, r *http.Request, sess *session) {
	sess.client.AddTransaction(ctx, ParseFields(r.PostForm, addFormPrefix))
}

func (s *Server) handleOpenEdit(ctx context.Context, r *http.Request, sess *session) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		return
	}
	if row, ok := sess.page.row(id); ok {
		row.Edit()
		return
	}
	s.logger.WarnContext(ctx, "Edit requested for a row that is not displayed", applog.FieldTransactionID, id)
}

func (s *Server) handleDelete(ctx context.Context, r *http.Request, sess *session) {
	id, ok := parseID(r.PathValue("id"))
	if !ok {
		return
	}
	sess.page.confirmed = r.PostForm.Get("confirmed") == "true"
	if row, ok := sess.page.row(id); ok {
		row.Delete(ctx)
		return
	}
	sess.client.DeleteTransaction(ctx, id)
}

func (s *Server) handleSaveEdit(ctx context.Context, r *http.Request, sess *session) {
	sess.client.SaveEdit(ctx, ParseFields(r.PostForm, editFormPrefix))
}

func (s *Server) handleCancelEdit(_ context.Context, _ *http.Request, sess *session) {
	sess.client.CloseEdit()
}

func (s *Server) handleSummary(ctx context.Context, r *http.Request, sess *session) {
	sess.client.FetchSummary(ctx, ParsePeriod(r.Form))
}

// writeEffects renders each page region touched by the event as an
// out-of-band fragment and forwards alerts and form resets as page events.
func (s *Server) writeEffects(w http.ResponseWriter, r *http.Request, sess *session) {
	e := sess.page.flush()

	var buf bytes.Buffer
	render := func(name string, data any) bool {
		if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
			s.logger.ErrorContext(r.Context(), "Fragment template execution failed",
				applog.FieldError, err, "template", name, applog.FieldOperation, applog.OpRender)
			return false
		}
		return true
	}

	ok := true
	if e.table {
		ok = render("transactions", tableData{Rows: sess.page.rows, OOB: true}) && ok
	}
	if e.summary {
		ok = render("summary", summaryData{Summary: sess.page.summary, OOB: true}) && ok
	}
	if e.overlay {
		ok = render("edit_overlay", overlayData{Open: sess.page.editOpen, Fields: sess.page.edit, OOB: true}) && ok
	}
	if !ok {
		InternalServerError("rendering failed").TriggerAlerts(e.alerts).Write(w)
		return
	}

	b := NewHTMXResponse().BodyHTML(buf.Bytes()).TriggerAlerts(e.alerts)
	if e.formReset {
		b.TriggerFormReset()
	}
	b.Write(w)
}
