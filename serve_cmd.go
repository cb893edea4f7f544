package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/ttsgate/internal/server"
	"github.com/dgnsrekt/ttsgate/internal/tts"
)

var (
	serveAddr      string
	serveStreaming bool

	serveCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Run the streaming gateway",
		Long:    paragraph(fmt.Sprintf("\n%s the HTTP gateway. Clients stream text over a WebSocket on /v1/stream and receive audio for each sentence as soon as it is ready.", keyword("Run"))),
		Example: paragraph("ttsgate serve\nttsgate serve --addr :9000 --lookahead 2"),
		Args:    cobra.NoArgs,
		RunE:    runServe,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveStreaming, "streaming", true, "assume clients can play partial audio unless they say otherwise")
}

func runServe(cmd *cobra.Command, _ []string) error {
	if cmd.Flags().Changed("addr") {
		cfg.Server.Addr = serveAddr
	}
	if cmd.Flags().Changed("streaming") {
		cfg.Streaming = serveStreaming
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, cleanup, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg.Voice = resolveVoice(ctx, engine, cfg.Voice, requestedVoice(cmd))

	collectors := server.NewCollectors()
	orch := newOrchestrator(cfg, engine, collectors, tts.NewMetrics(log.Default().WithPrefix("metrics")))
	srv := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		Streaming: cfg.Streaming,
		Defaults:  cfg.Voice,
	}, orch, engine, collectors, log.Default().WithPrefix("server"))

	log.Info("Starting gateway", "addr", cfg.Server.Addr, "voice", cfg.Voice.Voice, "streaming", cfg.Streaming)
	return srv.Run(ctx)
}
