package server

import (
	"github.com/dgnsrekt/ttsgate/internal/tts"
)

// Message types exchanged on the stream endpoint.
const (
	TypeStart   = "start"
	TypeText    = "text"
	TypeEnd     = "end"
	TypeStarted = "started"
	TypeChunk   = "chunk"
	TypeDone    = "done"
	TypeError   = "error"
)

// ClientMessage is a JSON frame sent by the client.
type ClientMessage struct {
	Type string `json:"type"`

	// start
	Streaming *bool               `json:"streaming,omitempty"`
	Voice     tts.VoiceParameters `json:"voice,omitempty"`
	Language  string              `json:"language,omitempty"`

	// text
	Text string `json:"text,omitempty"`
}

// ServerMessage is a JSON control frame sent by the gateway.
type ServerMessage struct {
	Type string `json:"type"`

	Session  string `json:"session,omitempty"`
	Strategy string `json:"strategy,omitempty"`
	Chunks   int    `json:"chunks,omitempty"`

	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// ChunkMessage announces an audio chunk. It is followed by one binary
// frame holding the audio.
type ChunkMessage struct {
	Type        string `json:"type"`
	Sequence    int    `json:"sequence"`
	Text        string `json:"text"`
	Format      string `json:"format"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
}

func chunkMessage(c tts.AudioChunk) ChunkMessage {
	return ChunkMessage{
		Type:        TypeChunk,
		Sequence:    c.Sequence,
		Text:        c.Text,
		Format:      c.Format,
		ContentType: tts.ContentType(c.Format),
		Bytes:       len(c.Data),
	}
}

func errorMessage(err error) ServerMessage {
	code := string(tts.CodeOf(err))
	if code == "" {
		code = "INTERNAL"
	}
	return ServerMessage{Type: TypeError, Code: code, Message: err.Error()}
}
