package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dgnsrekt/ttsgate/internal/tts"
)

const writeWait = 10 * time.Second

// handleStream runs one session over a WebSocket. The client sends a start
// message, any number of text messages and an end message; the gateway
// answers with a chunk message and a binary frame per sentence, then done
// or error.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}
	defer conn.Close() //nolint:errcheck

	conn.SetReadLimit(s.cfg.MaxTextBytes)
	id := uuid.NewString()
	logger := s.logger.With("conn", id[:8])

	var start ClientMessage
	if err := conn.ReadJSON(&start); err != nil {
		logger.Debug("no start message", "err", err)
		return
	}
	if start.Type != TypeStart {
		s.send(conn, errorMessage(tts.NewTTSError(tts.ErrorCodeConfiguration,
			fmt.Sprintf("expected %q message, got %q", TypeStart, start.Type), nil)))
		return
	}

	caps := tts.Capabilities{Streaming: s.cfg.Streaming}
	if start.Streaming != nil {
		caps.Streaming = *start.Streaming
	}
	requested := start.Voice
	if start.Language != "" {
		requested.Language = start.Language
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	params := s.resolve(ctx, requested)
	if err := s.send(conn, ServerMessage{Type: TypeStarted, Session: id, Strategy: s.orch.Strategy(caps).Name()}); err != nil {
		return
	}
	logger.Debug("stream started", "voice", params.Voice, "streaming", caps.Streaming)

	fragments := make(chan string, 16)
	go s.readFragments(ctx, cancel, conn, fragments, logger)

	chunks, errs := s.orch.Stream(ctx, caps, params, fragments)

	count := 0
	var writeErr error
	for chunk := range chunks {
		if writeErr != nil {
			continue
		}
		if writeErr = s.send(conn, chunkMessage(chunk)); writeErr == nil {
			writeErr = s.write(conn, websocket.BinaryMessage, chunk.Data)
		}
		if writeErr != nil {
			logger.Debug("client went away", "err", writeErr)
			cancel()
			continue
		}
		count++
	}

	streamErr := <-errs
	if writeErr != nil {
		return
	}
	if streamErr != nil {
		logger.Warn("stream failed", "chunks", count, "err", streamErr)
		_ = s.send(conn, errorMessage(streamErr))
	} else {
		logger.Debug("stream done", "chunks", count)
		_ = s.send(conn, ServerMessage{Type: TypeDone, Chunks: count})
	}
	_ = s.write(conn, websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// readFragments forwards text messages until the end message. A read
// failure before that cancels the session.
func (s *Server) readFragments(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, fragments chan<- string, logger *log.Logger) {
	ended := false
	defer func() {
		if !ended {
			close(fragments)
		}
	}()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !ended {
				if !isClosed(err) {
					logger.Debug("read failed", "err", err)
				}
				cancel()
			}
			return
		}
		if ended {
			continue
		}

		switch msg.Type {
		case TypeText:
			select {
			case fragments <- msg.Text:
			case <-ctx.Done():
				return
			}
		case TypeEnd:
			ended = true
			close(fragments)
		default:
			logger.Debug("ignoring message", "type", msg.Type)
		}
	}
}

func (s *Server) send(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}

func (s *Server) write(conn *websocket.Conn, messageType int, data []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(messageType, data)
	if err != nil && errors.Is(err, websocket.ErrCloseSent) {
		return nil
	}
	return err
}
