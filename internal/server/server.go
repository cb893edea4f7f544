package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/ttsgate/internal/ssml"
	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// Config configures the gateway.
type Config struct {
	Addr string

	// Streaming is assumed for clients that do not say whether they can
	// play partial audio.
	Streaming bool

	// Defaults are the configured voice parameters requests are merged onto.
	Defaults tts.VoiceParameters

	// MaxTextBytes bounds the body of a synthesis request and each
	// WebSocket message (defaults to 1 MiB).
	MaxTextBytes int64

	// ShutdownTimeout bounds graceful shutdown (defaults to 10s).
	ShutdownTimeout time.Duration
}

// Server is the HTTP gateway in front of an Orchestrator.
type Server struct {
	cfg      Config
	orch     *tts.Orchestrator
	catalog  tts.VoiceCatalog
	metrics  *Collectors
	logger   *log.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// New creates a Server. metrics must also be registered as an observer of
// orch for synthesis metrics to be recorded.
func New(cfg Config, orch *tts.Orchestrator, catalog tts.VoiceCatalog, metrics *Collectors, logger *log.Logger) *Server {
	if cfg.MaxTextBytes <= 0 {
		cfg.MaxTextBytes = 1 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if metrics == nil {
		metrics = NewCollectors()
	}
	if logger == nil {
		logger = log.Default().WithPrefix("server")
	}

	s := &Server{
		cfg:     cfg,
		orch:    orch,
		catalog: catalog,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 32 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}

	s.mux.HandleFunc("GET /v1/stream", s.handleStream)
	s.mux.HandleFunc("POST /v1/synthesize", s.handleSynthesize)
	s.mux.HandleFunc("GET /v1/voices", s.handleVoices)
	s.mux.Handle("GET /metrics", metrics.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	return s
}

// Handler returns the gateway's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// resolve merges requested parameters onto the configured defaults. The
// catalog is consulted only when a language is requested. A requested rate
// is normalized the same way as a configured one, so 1.2 becomes "+20%".
func (s *Server) resolve(ctx context.Context, requested tts.VoiceParameters) tts.VoiceParameters {
	if requested.Rate != "" {
		requested.Rate = ssml.NormalizeRate(requested.Rate)
	}
	if requested.Language == "" || s.catalog == nil {
		return s.cfg.Defaults.Merge(requested)
	}
	voices, err := s.catalog.Voices(ctx)
	if err != nil {
		s.logger.Warn("voice catalog unavailable", "err", err)
	}
	return tts.ResolveParameters(voices, s.cfg.Defaults, requested)
}

func (s *Server) handleSynthesize(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxTextBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	q := r.URL.Query()
	params := s.resolve(r.Context(), tts.VoiceParameters{
		Voice:        q.Get("voice"),
		Language:     q.Get("language"),
		Rate:         q.Get("rate"),
		Pitch:        q.Get("pitch"),
		Volume:       q.Get("volume"),
		Style:        q.Get("style"),
		StyleDegree:  q.Get("style_degree"),
		Role:         q.Get("role"),
		OutputFormat: q.Get("format"),
	})

	chunk, err := s.orch.Synthesize(r.Context(), params, string(body))
	if err != nil {
		s.logger.Warn("synthesis failed", "err", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", tts.ContentType(chunk.Format))
	w.Header().Set("X-Output-Format", chunk.Format)
	_, _ = w.Write(chunk.Data)
}

func (s *Server) handleVoices(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "no voice catalog", http.StatusNotFound)
		return
	}
	voices, err := s.catalog.Voices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		voices = tts.VoicesForLanguage(voices, tts.ResolveLocale(voices, lang))
	}
	if voices == nil {
		voices = []tts.Voice{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(voices)
}

// statusCode maps an orchestrator error to an HTTP status.
func statusCode(err error) int {
	switch tts.CodeOf(err) {
	case tts.ErrorCodeSanitization, tts.ErrorCodeSynthesisMarkup:
		return http.StatusBadRequest
	case tts.ErrorCodeSynthesisQuota:
		return http.StatusTooManyRequests
	case tts.ErrorCodeSynthesisAuth, tts.ErrorCodeSynthesisNetwork, tts.ErrorCodeSynthesisEmpty:
		return http.StatusBadGateway
	case tts.ErrorCodeStreamAborted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(err))
	_ = json.NewEncoder(w).Encode(errorMessage(err))
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
		errors.Is(err, net.ErrClosed) ||
		strings.Contains(err.Error(), "use of closed network connection")
}
