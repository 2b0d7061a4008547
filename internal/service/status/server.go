package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"Nemo/internal/config"
	"Nemo/internal/service/rewind"

	"go.uber.org/zap"
)

const maxRecent = 100

// History: то, что сервер читает из истории нажатий.
type History interface {
	Len() int
	Cap() int
	Recent(n int) []rewind.Keystroke
	Clear()
}

// Probe отдаёт текущее состояние демона. Поля могут быть nil.
type Probe struct {
	History   History
	Rewinding func() bool
	Recording func() (owner string, ok bool)
}

// Server: локальный HTTP сервер состояния.
//
//	GET    /status?recent=N  размер истории, перемотка, запись (нажатия только в режиме дебага)
//	DELETE /history          очистить историю
type Server struct {
	cfg     config.StatusServerConfig
	probe   Probe
	debug   bool
	srv     *http.Server
	logger  *zap.SugaredLogger
	running atomic.Bool
}

type keystrokeView struct {
	Key     string    `json:"key"`
	At      time.Time `json:"at"`
	Inverse string    `json:"inverse"`
}

type statusView struct {
	HistorySize     int             `json:"history_size"`
	HistoryCapacity int             `json:"history_capacity"`
	Rewinding       bool            `json:"rewinding"`
	Recording       string          `json:"recording,omitempty"`
	Recent          []keystrokeView `json:"recent,omitempty"`
}

func New(cfg config.StatusServerConfig, probe Probe, debug bool, logger *zap.SugaredLogger) *Server {
	if cfg.BindAddr == "" {
		cfg.BindAddr = "127.0.0.1:3917"
	}
	s := &Server{cfg: cfg, probe: probe, debug: debug, logger: logger}
	s.srv = &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler возвращает маршруты сервера.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("DELETE /history", s.handleClear)
	return mux
}

func (s *Server) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return nil
	}
	go func() {
		s.logger.Infow("Status server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorw("Status server stopped with error", "error", err)
		} else {
			s.logger.Infow("Status server stopped")
		}
	}()

	go func() {
		<-ctx.Done()
		_ = s.Stop(context.WithoutCancel(ctx))
	}()
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeoutCause(ctx, 5*time.Second, errors.New("status server shutdown timeout"))
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Warnw("graceful shutdown error", "error", err)
		return s.srv.Close()
	}
	return nil
}

func (s *Server) Addr() string { return s.cfg.BindAddr }

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	var v statusView
	if h := s.probe.History; h != nil {
		v.HistorySize, v.HistoryCapacity = h.Len(), h.Cap()
		if s.debug {
			n, err := recentParam(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			for _, ks := range h.Recent(n) {
				v.Recent = append(v.Recent, keystrokeView{Key: string(ks.Key), At: ks.At, Inverse: ks.Inverse.String()})
			}
		}
	}
	if s.probe.Rewinding != nil {
		v.Rewinding = s.probe.Rewinding()
	}
	if s.probe.Recording != nil {
		if owner, ok := s.probe.Recording(); ok {
			v.Recording = owner
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warnw("Failed to write status", "error", err)
	}
}

func recentParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("recent")
	if raw == "" {
		return 10, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.New("recent: expected non-negative integer")
	}
	return min(n, maxRecent), nil
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if s.probe.History == nil {
		http.Error(w, "history unavailable", http.StatusServiceUnavailable)
		return
	}
	n := s.probe.History.Len()
	s.probe.History.Clear()
	s.logger.Infow("History cleared via status server", "dropped", n, "remote", r.RemoteAddr)
	w.WriteHeader(http.StatusNoContent)
}
