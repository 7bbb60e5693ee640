package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jonwraymond/toolwire/anchoridl"
	"github.com/jonwraymond/toolwire/catalog"
	"github.com/jonwraymond/toolwire/codec"
)

// maxSchemaBody bounds uploaded schema documents. Schemas are budget-bound
// on chain, so anything much larger is garbage.
const maxSchemaBody = 64 << 10

// Gateway serves a schema catalog over HTTP: registered program schemas,
// per-program tool listings, and full-text tool search.
type Gateway struct {
	log   *slog.Logger
	store catalog.Store
	index *catalog.Index
}

// New builds a gateway over the given store, loading the configured
// programs into it.
func New(cfg *Config, store catalog.Store, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}
	index, err := catalog.NewIndex()
	if err != nil {
		return nil, err
	}

	g := &Gateway{log: logger, store: store, index: index}
	for _, p := range cfg.Programs {
		if err := g.loadProgram(p); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func (g *Gateway) loadProgram(p ProgramConfig) error {
	var raw []byte
	switch {
	case p.Schema != "":
		data, err := os.ReadFile(p.Schema)
		if err != nil {
			return fmt.Errorf("gateway: program %q: %w", p.Address, err)
		}
		raw = data
	case p.IDL != "":
		data, err := os.ReadFile(p.IDL)
		if err != nil {
			return fmt.Errorf("gateway: program %q: %w", p.Address, err)
		}
		raw, err = anchoridl.ConvertJSON(data)
		if err != nil {
			return fmt.Errorf("gateway: program %q: %w", p.Address, err)
		}
	}

	if err := g.register(context.Background(), p.Address, raw); err != nil {
		return err
	}
	g.log.Info("program loaded", "address", p.Address)
	return nil
}

func (g *Gateway) register(ctx context.Context, address string, raw []byte) error {
	entry, err := catalog.NewEntry(address, raw)
	if err != nil {
		return err
	}
	if err := g.store.Put(ctx, entry); err != nil {
		return err
	}
	return g.index.Add(entry)
}

// Router builds the HTTP surface.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/programs", func(r chi.Router) {
		r.Get("/", g.handleListPrograms)
		r.Route("/{address}", func(r chi.Router) {
			r.Get("/", g.handleGetSchema)
			r.Get("/tools", g.handleListTools)
			r.Post("/", g.handleRegister)
			r.Delete("/", g.handleDelete)
		})
	})

	r.Get("/search", g.handleSearch)
	return r
}

type programSummary struct {
	Program   string `json:"program"`
	Name      string `json:"name"`
	Version   string `json:"version"`
	Tools     int    `json:"tools"`
	UpdatedAt string `json:"updatedAt"`
}

func (g *Gateway) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	entries, err := g.store.List(r.Context())
	if err != nil {
		g.serverError(w, "list programs", err)
		return
	}
	out := make([]programSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, programSummary{
			Program:   e.Program,
			Name:      e.Name,
			Version:   e.Version,
			Tools:     e.Tools,
			UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"programs": out})
}

func (g *Gateway) handleGetSchema(w http.ResponseWriter, r *http.Request) {
	entry, err := g.store.Get(r.Context(), chi.URLParam(r, "address"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	if err != nil {
		g.serverError(w, "get schema", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(entry.Raw)
}

type toolSummary struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Discriminator string   `json:"discriminator"`
	Params        []string `json:"params"`
}

func (g *Gateway) handleListTools(w http.ResponseWriter, r *http.Request) {
	entry, err := g.store.Get(r.Context(), chi.URLParam(r, "address"))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	if err != nil {
		g.serverError(w, "get schema", err)
		return
	}
	doc, err := entry.Document()
	if err != nil {
		g.serverError(w, "decode schema", err)
		return
	}

	tools := make([]toolSummary, 0, len(doc.Tools))
	for _, t := range doc.Tools {
		tools = append(tools, toolSummary{
			Name:          t.Name,
			Description:   t.Description,
			Discriminator: t.Discriminator.Hex(),
			Params:        t.Order,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"program": entry.Program,
		"name":    doc.Name,
		"tools":   tools,
	})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxSchemaBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	if err := g.register(r.Context(), address, raw); err != nil {
		if errors.Is(err, codec.ErrMalformed) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		g.serverError(w, "register program", err)
		return
	}
	g.log.Info("program registered", "address", address)
	writeJSON(w, http.StatusCreated, map[string]string{"program": address})
}

func (g *Gateway) handleDelete(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	entry, err := g.store.Get(r.Context(), address)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	if err != nil {
		g.serverError(w, "get schema", err)
		return
	}

	if doc, derr := entry.Document(); derr == nil {
		_ = g.index.Remove(address, doc)
	}
	if err := g.store.Delete(r.Context(), address); err != nil {
		g.serverError(w, "delete program", err)
		return
	}
	g.log.Info("program removed", "address", address)
	w.WriteHeader(http.StatusNoContent)
}

func (g *Gateway) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}
	limit := 10
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}

	hits, err := g.index.Search(query, limit)
	if err != nil {
		g.serverError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

func (g *Gateway) serverError(w http.ResponseWriter, op string, err error) {
	g.log.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
