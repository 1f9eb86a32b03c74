package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"multitimer/internal/domain"
	"multitimer/internal/logging"
	"multitimer/internal/usecase"
)

// Server is a primary adapter that exposes the HTTP API + a status page.
// It depends on the use case (primary port).
type Server struct {
	usecase usecase.TimerUseCase
	server  *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(uc usecase.TimerUseCase, addr string) *Server {
	mux := http.NewServeMux()
	srv := &Server{usecase: uc}
	mux.HandleFunc("GET /api/timers", srv.handleList)
	mux.HandleFunc("POST /api/timers", srv.handleCreate)
	mux.HandleFunc("DELETE /api/timers/{id}", srv.handleTimerCommand(usecase.CommandDeleteTimer))
	mux.HandleFunc("POST /api/timers/{id}/stop", srv.handleTimerCommand(usecase.CommandStopTimer))
	mux.HandleFunc("POST /api/timers/{id}/pause", srv.handleTimerCommand(usecase.CommandPauseTimer))
	mux.HandleFunc("POST /api/timers/{id}/resume", srv.handleTimerCommand(usecase.CommandResumeTimer))
	mux.HandleFunc("POST /api/timers/{id}/ack", srv.handleTimerCommand(usecase.CommandAcknowledge))
	mux.HandleFunc("POST /api/wakes", srv.handleScheduleWake)
	mux.HandleFunc("GET /api/app", srv.handleGetApp)
	mux.HandleFunc("PUT /api/app", srv.handlePutApp)
	mux.HandleFunc("GET /api/events", srv.handleEvents)
	mux.HandleFunc("GET /{$}", srv.handleRoot)

	srv.server = &http.Server{
		Addr:              addr,
		Handler:           loggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	views := s.usecase.Timers()
	out := make([]TimerJSON, 0, len(views))
	for _, v := range views {
		out = append(out, timerToJSON(v))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	spec, err := req.spec()
	if err != nil {
		respondError(w, err)
		return
	}
	id, err := s.usecase.Create(r.Context(), spec, req.ID == nil)
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondTimer(w, id, http.StatusCreated)
}

func (s *Server) handleTimerCommand(typ usecase.CommandType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.PathValue("id"))
		if err != nil {
			http.Error(w, "invalid timer id", http.StatusBadRequest)
			return
		}
		if err := s.usecase.Execute(r.Context(), usecase.ForTimer(typ, id)); err != nil {
			respondError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleScheduleWake(w http.ResponseWriter, r *http.Request) {
	var req TimerJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	snap, err := req.Snapshot()
	if err != nil {
		respondError(w, err)
		return
	}
	if err := s.usecase.Execute(r.Context(), usecase.ScheduleWake(snap)); err != nil {
		respondError(w, err)
		return
	}
	s.respondTimer(w, snap.ID, http.StatusAccepted)
}

func (s *Server) handleGetApp(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AppJSON{Foreground: s.usecase.Foreground()})
}

func (s *Server) handlePutApp(w http.ResponseWriter, r *http.Request) {
	var req AppJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := s.usecase.Execute(r.Context(), usecase.AppStateChanged(req.Foreground)); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, AppJSON{Foreground: s.usecase.Foreground()})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid after", http.StatusBadRequest)
			return
		}
		after = n
	}
	entries := s.usecase.Events(after)
	if entries == nil {
		entries = []usecase.FeedEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(statusPage))
}

func (s *Server) respondTimer(w http.ResponseWriter, id, status int) {
	for _, v := range s.usecase.Timers() {
		if v.Timer.ID == id {
			respondJSON(w, status, timerToJSON(v))
			return
		}
	}
	w.WriteHeader(status)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDuration),
		errors.Is(err, domain.ErrInvalidRepetitions),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidSnapshot):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, usecase.ErrStopped):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warnf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

const statusPage = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>multitimer</title>
    <style>
        body { font-family: sans-serif; max-width: 640px; margin: 50px auto; padding: 20px; }
        table { width: 100%; border-collapse: collapse; }
        td, th { text-align: left; padding: 6px; border-bottom: 1px solid #ddd; }
        .ringing { color: #c00; font-weight: bold; }
        .info { background: #f0f0f0; padding: 15px; border-radius: 5px; margin: 20px 0; }
    </style>
</head>
<body>
    <h1>multitimer</h1>
    <div class="info" id="app"></div>
    <table>
        <thead><tr><th>#</th><th>Label</th><th>State</th><th>Left</th><th>Rep</th><th>Owner</th></tr></thead>
        <tbody id="timers"></tbody>
    </table>
    <h2>Events</h2>
    <ul id="events"></ul>
    <script>
        let after = 0;
        async function refresh() {
            const app = await (await fetch('/api/app')).json();
            document.getElementById('app').textContent = app.foreground ? 'Host: foreground' : 'Host: background';
            const timers = await (await fetch('/api/timers')).json();
            const rows = timers.map(t => {
                const left = t.state.startsWith('Rest') ? t.remainingRestSeconds : t.remainingMainSeconds;
                const tr = document.createElement('tr');
                if (t.state === 'Ringing') tr.className = 'ringing';
                for (const v of [t.id, t.label, t.state, left + 's',
                        t.currentRepetition + '/' + t.totalRepetitions, t.owner]) {
                    const td = document.createElement('td');
                    td.textContent = v;
                    tr.appendChild(td);
                }
                return tr;
            });
            document.getElementById('timers').replaceChildren(...rows);
            const events = await (await fetch('/api/events?after=' + after)).json();
            const list = document.getElementById('events');
            for (const e of events) {
                after = e.seq;
                const li = document.createElement('li');
                li.textContent = e.at + ' #' + e.event.id + ' ' + e.event.kind +
                    ' (' + e.event.currentRepetition + '/' + e.event.totalRepetitions + ')';
                list.prepend(li);
            }
        }
        refresh();
        setInterval(refresh, 1000);
    </script>
</body>
</html>`
