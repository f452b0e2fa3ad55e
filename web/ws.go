package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/hupe1980/agentswarm/core"
)

// MsgForbidden is the websocket error output for denied actions.
const MsgForbidden = "Forbidden access"

func newUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(*http.Request) bool { return true },
	}
}

// handleWebsocket executes one Action per text frame. Frames are handled in
// order and each gets exactly one Output frame.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.opts.Logger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(s.opts.MaxBodySize)
	token := r.Header.Get(TokenHeader)
	ctx := r.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.opts.Logger.Warn("Websocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var out core.Output
		var action core.Action
		switch {
		case json.Unmarshal(data, &action) != nil || action.ID() == "":
			out = core.Failure(core.MsgInvalidPayload)
		case !s.Accessible(token, action.ID()):
			out = core.Failure(MsgForbidden)
		default:
			out = s.sw.ExecuteAction(ctx, action)
		}

		if err := conn.WriteJSON(out); err != nil {
			s.opts.Logger.Warn("Websocket write failed", "error", err)
			return
		}
	}
}
