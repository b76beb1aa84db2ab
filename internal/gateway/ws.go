package gateway

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/mkessel/daynote/internal/chat"
)

// Frame types on the websocket connection. Clients send generate frames;
// the server answers each with one reply or error frame carrying the same
// id.
const (
	FrameGenerate = "generate"
	FrameReply    = "reply"
	FrameError    = "error"
)

// wsFrame is the single frame shape used in both directions.
type wsFrame struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

type wsError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleWebSocket upgrades the connection and serves generate requests
// until the client disconnects. Auth already happened at upgrade time;
// the request context carries the owner identity for every turn.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxUploadBytes)
	s.log.Debug().Str("remote", r.RemoteAddr).Msg("websocket connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Msg("websocket closed")
			} else {
				s.log.Warn().Err(err).Msg("websocket read error")
			}
			return
		}

		var frame wsFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			s.sendWSError(conn, "", "invalid_frame", "malformed frame")
			continue
		}

		switch frame.Type {
		case FrameGenerate:
			s.serveWSGenerate(r.Context(), conn, frame)
		default:
			s.sendWSError(conn, frame.ID, "unknown_type", "unknown frame type: "+frame.Type)
		}
	}
}

func (s *Server) serveWSGenerate(ctx context.Context, conn *websocket.Conn, frame wsFrame) {
	if s.runner == nil {
		s.sendWSError(conn, frame.ID, "unavailable", "chat is not configured")
		return
	}

	var req chat.GenerateRequest
	if len(frame.Data) > 0 {
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			s.sendWSError(conn, frame.ID, "invalid_request", "malformed generate data")
			return
		}
	}

	turnCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	result, err := s.runner.Generate(turnCtx, req)
	if err != nil {
		s.sendWSError(conn, frame.ID, "generate_failed", err.Error())
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		s.sendWSError(conn, frame.ID, "internal", "failed to encode reply")
		return
	}
	conn.WriteJSON(wsFrame{Type: FrameReply, ID: frame.ID, Data: data})
}

func (s *Server) sendWSError(conn *websocket.Conn, id, code, message string) {
	data, _ := json.Marshal(wsError{Code: code, Message: message})
	conn.WriteJSON(wsFrame{Type: FrameError, ID: id, Data: data})
}
