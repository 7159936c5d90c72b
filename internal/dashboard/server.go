package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/KaramelBytes/salespulse/internal/obs"
	"github.com/KaramelBytes/salespulse/internal/sales"
)

// Server renders one dashboard variant over a table loaded at startup.
// The table is shared read-only by all requests.
type Server struct {
	table    *sales.Table
	variant  Variant
	started  time.Time
	upgrader websocket.Upgrader
}

// New returns a server for t, failing when t lacks the variant's columns.
func New(t *sales.Table, v Variant) (*Server, error) {
	if err := v.Check(t); err != nil {
		return nil, err
	}
	return &Server{
		table:   t,
		variant: v,
		started: time.Now(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}, nil
}

// Handler registers the routes and wraps them with the request middleware.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.pageHandler).Methods(http.MethodGet)
	r.HandleFunc("/charts/{name:[a-z]+}.svg", s.chartHandler).Methods(http.MethodGet)
	r.HandleFunc("/api/view", s.viewHandler).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.wsHandler)
	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet)
	return WithRequestID(WithLogging(r))
}

// rerun parses the query and computes the view from scratch.
func (s *Server) rerun(vals url.Values) (Query, *View, error) {
	q, err := ParseQuery(vals, s.variant, s.table)
	if err != nil {
		return q, nil, err
	}
	return q, Compute(s.table, s.variant, q), nil
}

func (s *Server) pageHandler(w http.ResponseWriter, r *http.Request) {
	q, view, err := s.rerun(r.URL.Query())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, newPageData(s.table, s.variant, q, view)); err != nil {
		obs.Logger.Error("page_render_failed", "error", err, "request_id", RequestIDFromContext(r.Context()))
	}
}

func (s *Server) chartHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	_, view, err := s.rerun(r.URL.Query())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	if err := renderChart(w, name, s.variant, view); err != nil {
		if errors.Is(err, errUnknownChart) {
			WriteJSONError(w, http.StatusNotFound, "not_found", "unknown chart "+name)
			return
		}
		obs.Logger.Error("chart_render_failed", "chart", name, "error", err, "request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusInternalServerError, "render_failed", err.Error())
	}
}

func (s *Server) viewHandler(w http.ResponseWriter, r *http.Request) {
	_, view, err := s.rerun(r.URL.Query())
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(view)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"variant":    s.variant.Name,
		"dataset":    s.table.Name,
		"rows":       s.table.Len(),
		"uptime_sec": time.Since(s.started).Seconds(),
	})
}

// wsRequest is a rerun request; Query is an encoded query string.
type wsRequest struct {
	Query string `json:"query"`
}

// wsResponse carries the rerun view plus the rendered HTML of the table
// sections, keyed by element id.
type wsResponse struct {
	Query    string            `json:"query,omitempty"`
	View     *View             `json:"view,omitempty"`
	Sections map[string]string `json:"sections,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsHandler reruns the page pipeline for every message received.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		obs.Logger.Warn("ws_upgrade_failed", "error", err, "request_id", reqID)
		return
	}
	defer conn.Close()
	obs.Logger.Info("ws_connected", "request_id", reqID)
	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				obs.Logger.Debug("ws_read_ended", "error", err, "request_id", reqID)
			}
			return
		}
		resp := s.wsRerun(req)
		if err := conn.WriteJSON(resp); err != nil {
			obs.Logger.Debug("ws_write_failed", "error", err, "request_id", reqID)
			return
		}
	}
}

func (s *Server) wsRerun(req wsRequest) wsResponse {
	vals, err := url.ParseQuery(req.Query)
	if err != nil {
		return wsResponse{Error: "invalid query string: " + err.Error()}
	}
	q, view, err := s.rerun(vals)
	if err != nil {
		return wsResponse{Error: err.Error()}
	}
	sections, err := renderSections(newPageData(s.table, s.variant, q, view))
	if err != nil {
		return wsResponse{Error: err.Error()}
	}
	return wsResponse{Query: q.Values().Encode(), View: view, Sections: sections}
}
