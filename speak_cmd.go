package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/ttsgate/internal/audio"
	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// playbackFormat is used with --play when the configured format is compressed.
const playbackFormat = "raw-24khz-16bit-mono-pcm"

var errNoText = errors.New("no text: pass it as arguments, pipe it on stdin, or use --clipboard")

var (
	speakOutput    string
	speakPlay      bool
	speakClipboard bool
	speakNoStream  bool

	speakCmd = &cobra.Command{
		Use:     "speak [TEXT...]",
		Short:   "Speak text from arguments, stdin or the clipboard",
		Long:    paragraph(fmt.Sprintf("\n%s text with an Azure neural voice. Text piped on stdin is spoken sentence by sentence while it is still arriving.", keyword("Speak"))),
		Example: paragraph(`ttsgate speak "Hello there." -o hello.mp3
llm chat "tell me a story" | ttsgate speak --play
ttsgate speak --clipboard --language it-IT -o storia.mp3`),
		RunE:    runSpeak,
	}
)

func init() {
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "", "write audio to a file instead of stdout")
	speakCmd.Flags().BoolVarP(&speakPlay, "play", "p", false, "play audio on the default sound device (PCM formats)")
	speakCmd.Flags().BoolVarP(&speakClipboard, "clipboard", "c", false, "speak the clipboard contents")
	speakCmd.Flags().BoolVar(&speakNoStream, "no-stream", false, "synthesize the whole text in one call")
}

func runSpeak(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	piped := !term.IsTerminal(int(os.Stdin.Fd()))
	fragments, readErrs, err := textSource(ctx, args, speakClipboard, os.Stdin, piped)
	if err != nil {
		return err
	}

	if speakPlay && !cmd.Flags().Changed("format") && !audio.Playable(cfg.Voice.OutputFormat) {
		log.Debug("Switching to a playable format", "format", playbackFormat)
		cfg.Voice.OutputFormat = playbackFormat
	}

	engine, cleanup, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sink, err := openSink(cfg.Voice.OutputFormat)
	if err != nil {
		return err
	}

	params := resolveVoice(ctx, engine, cfg.Voice, requestedVoice(cmd))
	metrics := tts.NewMetrics(log.Default().WithPrefix("metrics"))
	orch := newOrchestrator(cfg, engine, metrics)
	caps := tts.Capabilities{Streaming: cfg.Streaming && !speakNoStream}

	if err := speak(ctx, orch, caps, params, fragments, sink); err != nil {
		return err
	}
	if err := <-readErrs; err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}

	fmt.Fprintln(os.Stderr, faint(metrics.Snapshot().String()))
	return nil
}

// speak streams fragments through orch into sink and closes the sink.
func speak(ctx context.Context, orch *tts.Orchestrator, caps tts.Capabilities, params tts.VoiceParameters, fragments <-chan string, sink audio.Sink) error {
	chunks, errs := orch.Stream(ctx, caps, params, fragments)
	err := audio.Pump(ctx, chunks, errs, sink)
	if cerr := sink.Close(); err == nil {
		err = cerr
	}
	return err
}

// textSource picks where the text comes from: the clipboard, the
// arguments, or stdin when it is piped.
func textSource(ctx context.Context, args []string, fromClipboard bool, stdin io.Reader, piped bool) (<-chan string, <-chan error, error) {
	switch {
	case fromClipboard:
		text, err := clipboard.ReadAll()
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read clipboard: %w", err)
		}
		if strings.TrimSpace(text) == "" {
			return nil, nil, errors.New("clipboard is empty")
		}
		return single(text)
	case len(args) > 0:
		return single(joinArgs(args))
	case piped:
		fragments, errs := tts.ReadFragments(ctx, stdin, tts.DefaultFragmentSize)
		return fragments, errs, nil
	default:
		return nil, nil, errNoText
	}
}

func single(text string) (<-chan string, <-chan error, error) {
	fragments := make(chan string, 1)
	fragments <- text
	close(fragments)
	errs := make(chan error)
	close(errs)
	return fragments, errs, nil
}

// stdoutWriter hides os.Stdout's Close from the sink.
type stdoutWriter struct{ io.Writer }

func openSink(format string) (audio.Sink, error) {
	switch {
	case speakPlay:
		return audio.NewPlayer(format, log.Default().WithPrefix("audio"))
	case speakOutput != "" && speakOutput != "-":
		path, err := homedir.Expand(speakOutput)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(path) //nolint:gosec
		if err != nil {
			return nil, fmt.Errorf("unable to create output file: %w", err)
		}
		return audio.NewWriterSink(f), nil
	case term.IsTerminal(int(os.Stdout.Fd())):
		return nil, errors.New("refusing to write audio to a terminal: use -o FILE or --play")
	default:
		return audio.NewWriterSink(stdoutWriter{os.Stdout}), nil
	}
}
