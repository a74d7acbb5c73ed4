// Package rest serves the ledger REST API consumed by the web frontend.
//
// Application errors are reported in the body of a 200 response as
// {"error": "..."}; only malformed requests and internal failures use error
// status codes.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"ledger/internal/backend"
	"ledger/internal/core"
	applog "ledger/internal/log"
)

const (
	statusSuccess = "success"

	msgInvalidBody = "Invalid request body."
	msgInternal    = "Internal server error."
)

// appErrors are reported to the client with their own message.
var appErrors = []error{core.ErrInvalidDate, core.ErrNotFound, core.ErrInvalidID}

type (
	errorBody struct {
		Error string `json:"error"`
	}

	successBody struct {
		Status      string            `json:"status"`
		Transaction *core.Transaction `json:"transaction,omitempty"`
	}
)

// Server exposes a backend.Backend over HTTP.
type Server struct {
	http.Server
	backend backend.Backend
	logger  *applog.Logger
}

// NewServer builds the API router on addr.
func NewServer(addr string, b backend.Backend, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Discard()
	}
	s := &Server{backend: b, logger: logger.WithComponent(applog.ComponentAPI)}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDelete).Methods(http.MethodDelete)
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)

	r.Use(applog.Middleware(logger, func(*http.Request) string { return uuid.NewString() }))
	r.Use(applog.AccessLog)

	s.Server = http.Server{Addr: addr, Handler: r}
	return s
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	txs, err := s.backend.ListTransactions(r.Context(), core.Filter{
		StartDate: q.Get("start_date"),
		EndDate:   q.Get("end_date"),
		Category:  q.Get("category"),
	})
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if !decodeBody(w, r, &in) {
		return
	}
	tx, err := s.backend.CreateTransaction(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Status: statusSuccess, Transaction: &tx})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	var p core.TransactionPatch
	if !decodeBody(w, r, &p) {
		return
	}
	tx, err := s.backend.UpdateTransaction(r.Context(), id, p)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Status: statusSuccess, Transaction: &tx})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	if err := s.backend.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	writeJSON(w, http.StatusOK, successBody{Status: statusSuccess})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sum, err := s.backend.Summary(r.Context(), core.Period{Year: q.Get("year"), Month: q.Get("month")})
	if err != nil {
		s.writeError(w, r, err, applog.OpSummary)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// writeError answers application errors in-band and logs anything else as
// an internal failure.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	for _, appErr := range appErrors {
		if errors.Is(err, appErr) {
			writeJSON(w, http.StatusOK, errorBody{Error: appErr.Error()})
			return
		}
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentAPI).ErrorContext(r.Context(), "Request failed",
		applog.NewFields().WithError(err).WithOperation(op).ToSlice()...)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: msgInternal})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ErrInvalidID
	}
	return id, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: msgInvalidBody})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
