// Package api exposes the read-only triage endpoints over findings and the
// query bank
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"overwatch/internal/core/version"
	perr "overwatch/internal/platform/errors"
	ohttp "overwatch/internal/platform/net/http"
	"overwatch/internal/platform/net/middleware"
	fdom "overwatch/internal/services/findings/domain"
	"overwatch/internal/services/querybank"
)

const defaultPageLimit = 50

// Deps are the handler dependencies
type Deps struct {
	Findings fdom.ReaderPort
	Bank     *querybank.Bank
}

type handlers struct {
	deps      Deps
	startedAt time.Time
}

// Mount wires middleware and routes onto the mux
func Mount(m *chi.Mux, d Deps) {
	h := &handlers{deps: d, startedAt: time.Now()}

	m.Use(middleware.RealIP())
	m.Use(middleware.RequestID())
	m.Use(middleware.RecoverJSON)
	m.Use(middleware.AccessLog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
	m.Use(middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"*"}}))
	m.Use(middleware.Timeout(30 * time.Second))

	m.Get("/health", ohttp.Handle(h.health))
	m.Get("/version", ohttp.Handle(h.version))
	m.Get("/findings", ohttp.Handle(h.findings))
	m.Get("/queries", ohttp.Handle(h.queries))
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

func (h *handlers) health(_ *http.Request) ohttp.Response {
	return ohttp.OK(HealthResponse{
		OK:      true,
		Service: version.Info().Service,
		Started: h.startedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *handlers) version(_ *http.Request) ohttp.Response {
	return ohttp.OK(version.Info())
}

func (h *handlers) findings(r *http.Request) ohttp.Response {
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		return ohttp.Error(err)
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		return ohttp.Error(err)
	}

	rows, err := h.deps.Findings.List(r.Context(), limit, offset)
	if err != nil {
		return ohttp.Error(err)
	}
	if rows == nil {
		rows = []fdom.Finding{}
	}
	return ohttp.List(rows, limit, offset, len(rows))
}

func (h *handlers) queries(r *http.Request) ohttp.Response {
	qs := h.deps.Bank.List()
	if tag := r.URL.Query().Get("tag"); tag != "" {
		qs = h.deps.Bank.FilterByTag(tag)
	}
	if qs == nil {
		qs = []querybank.Query{}
	}
	return ohttp.OK(qs)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, perr.InvalidArgf("%s must be a non-negative integer", name)
	}
	return v, nil
}
