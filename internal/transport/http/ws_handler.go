package http

import (
	"encoding/json"
	"log"
	"net/http"

	"curare-challenge/internal/app"
	"curare-challenge/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	service            *app.GameService
	defaultChallengeID string
	upgrader           websocket.Upgrader
}

func NewWSHandler(service *app.GameService, defaultChallengeID string) *WSHandler {
	return &WSHandler{
		service:            service,
		defaultChallengeID: defaultChallengeID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// actionPayload carries the widget values of the current step.
type actionPayload struct {
	Timestamp  int64               `json:"timestamp"`
	Effort     *int                `json:"effort"`
	Release    string              `json:"release"`
	Attributes map[string][]string `json:"attributes"`
}

func (p actionPayload) action(advance, end bool) domain.Action {
	return domain.Action{
		Advance:    advance,
		End:        end,
		Timestamp:  p.Timestamp,
		Effort:     p.Effort,
		Release:    p.Release,
		Attributes: p.Attributes,
	}
}

type statePayload struct {
	Session domain.Session  `json:"session"`
	View    domain.StepView `json:"view"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and drives one session per connection.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("sessionId")
	challengeID := r.URL.Query().Get("challengeId")
	if challengeID == "" {
		challengeID = h.defaultChallengeID
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	var session domain.Session
	if sessionID != "" {
		// Loading through Advance with no trigger resumes a stored session
		// or synthesizes one under the requested id.
		session, err = h.service.Advance(ctx, sessionID, challengeID, domain.Action{})
	} else {
		session, err = h.service.Start(ctx, challengeID)
	}
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	if err := h.writeState(conn, r, session); err != nil {
		return
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		var advance, end bool
		switch inbound.Type {
		case "advance":
			advance = true
		case "end":
			end = true
		default:
			if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}); err != nil {
				return
			}
			continue
		}

		var payload actionPayload
		if len(inbound.Payload) > 0 {
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: "invalid action payload"}}); err != nil {
					return
				}
				continue
			}
		}

		session, err = h.service.Advance(ctx, session.ID, session.ChallengeID, payload.action(advance, end))
		if err != nil {
			if err := conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}}); err != nil {
				return
			}
			continue
		}
		if err := h.writeState(conn, r, session); err != nil {
			return
		}
	}
}

// writeState sends the session and its view, followed by the results once
// the session is on the results step.
func (h *WSHandler) writeState(conn *websocket.Conn, r *http.Request, session domain.Session) error {
	view, err := h.service.View(r.Context(), session)
	if err != nil {
		return conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}
	if err := conn.WriteJSON(outboundMessage[statePayload]{Type: "state", Payload: statePayload{Session: session, View: view}}); err != nil {
		log.Printf("ws write error: %v", err)
		return err
	}
	if view.Phase != domain.PhaseResults {
		return nil
	}
	results, err := h.service.ResultsFor(r.Context(), session)
	if err != nil {
		return conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
	}
	if err := conn.WriteJSON(outboundMessage[domain.Results]{Type: "results", Payload: results}); err != nil {
		log.Printf("ws write error: %v", err)
		return err
	}
	return nil
}
