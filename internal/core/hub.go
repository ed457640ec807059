package core

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"SerialNode/internal/model"
	"SerialNode/internal/observability"
	"SerialNode/internal/parser"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	maxLineBytes = 1 << 20
	writeWait    = time.Second
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Hub broadcasts frames to websocket clients and keeps the latest frame per kind.
type Hub struct {
	Addr    string
	Session string

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	latest  map[string]model.FrameInfo
	mux     *http.ServeMux
	server  *http.Server
	stopped bool
}

// NewHub constructs a Hub listening on addr.
func NewHub(addr string) *Hub {
	h := &Hub{
		Addr:    addr,
		Session: uuid.NewString(),
		clients: map[*websocket.Conn]bool{},
		latest:  map[string]model.FrameInfo{},
		mux:     http.NewServeMux(),
	}
	h.mux.HandleFunc("/ws", h.handleWS)
	h.mux.HandleFunc("/api/latest", h.handleLatest)
	h.mux.HandleFunc("/api/decode", h.handleDecode)
	h.mux.HandleFunc("/api/kinds", h.handleKinds)
	h.mux.HandleFunc("/healthz", h.handleHealth)
	h.mux.Handle("/metrics", promhttp.Handler())
	return h
}

// Handler returns the hub's HTTP routes.
func (h *Hub) Handler() http.Handler { return h.mux }

// Start serves HTTP until Stop is called. It blocks.
func (h *Hub) Start() error {
	observability.RegisterMetrics()
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return nil
	}
	h.server = &http.Server{Addr: h.Addr, Handler: h.mux, ReadHeaderTimeout: 5 * time.Second}
	srv := h.server
	h.mu.Unlock()

	log.Info().Str("addr", h.Addr).Str("session", h.Session).Msg("[hub] listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down and disconnects websocket clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	h.stopped = true
	srv := h.server
	for c := range h.clients {
		_ = c.Close()
		delete(h.clients, c)
	}
	observability.SetWSClients(0)
	h.mu.Unlock()

	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("[hub] shutdown")
	}
}

// Publish records fi as the latest frame of its kind and broadcasts it.
// Clients whose write fails are dropped.
func (h *Hub) Publish(fi model.FrameInfo) {
	msg, err := parser.EncodeFrameInfo(fi)
	if err != nil {
		log.Error().Err(err).Msg("[hub] encode frame")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.latest[fi.Frame.Kind()] = fi
	for c := range h.clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
			log.Debug().Err(err).Str("remote", c.RemoteAddr().String()).Msg("[hub] drop client")
			_ = c.Close()
			delete(h.clients, c)
		}
	}
	observability.SetWSClients(len(h.clients))
}

// Latest returns a copy of the latest frame per kind.
func (h *Hub) Latest() map[string]model.FrameInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]model.FrameInfo, len(h.latest))
	for k, v := range h.latest {
		out[k] = v
	}
	return out
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// handleWS upgrades HTTP to websocket and registers the client for broadcasts.
func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("[hub] ws upgrade")
		return
	}
	h.mu.Lock()
	h.clients[conn] = true
	observability.SetWSClients(len(h.clients))
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			if h.clients[conn] {
				delete(h.clients, conn)
				_ = conn.Close()
			}
			observability.SetWSClients(len(h.clients))
			h.mu.Unlock()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// handleLatest returns the latest frame per kind as a JSON object.
func (h *Hub) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	latest := h.Latest()
	if len(latest) == 0 {
		http.Error(w, "no frames yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, latest)
}

// handleDecode decodes the request body as a single telemetry line.
// It answers 204 when the line yields no frame and 413 when the line is
// longer than maxLineBytes.
func (h *Hub) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxLineBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "line too long", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read line", http.StatusBadRequest)
		return
	}
	frame, ok := parser.DecodeFrame(string(body))
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, frame)
}

type kindInfo struct {
	Kind      string `json:"kind"`
	Plottable bool   `json:"plottable"`
}

// handleKinds lists the recognized kind tags and whether each is graphable.
func (h *Hub) handleKinds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	kinds := parser.Kinds()
	out := make([]kindInfo, 0, len(kinds))
	for _, k := range kinds {
		plottable, _ := parser.Plottable(k)
		out = append(out, kindInfo{Kind: k, Plottable: plottable})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	kinds := make([]string, 0)
	for k := range h.Latest() {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"session": h.Session,
		"clients": h.Clients(),
		"kinds":   kinds,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("[hub] write response")
	}
}
