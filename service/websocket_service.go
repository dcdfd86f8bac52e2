package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/workmate-ai/assistant-be/types"
)

const (
	wsReadLimit    = 512 * 1024
	wsReadDeadline = 60 * time.Second
)

// WebSocketService serves chat over a websocket connection. Answers are
// delivered as complete messages, one frame per query; there is no
// token-by-token streaming.
type WebSocketService struct {
	pipeline *PipelineService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWebSocketService(pipeline *PipelineService, logger *zap.Logger) *WebSocketService {
	return &WebSocketService{
		pipeline: pipeline,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins (adjust for production)
			},
		},
		logger: logger,
	}
}

func (s *WebSocketService) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read error", zap.Error(err))
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadDeadline))

		var req types.WebsocketRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			s.writeError(conn, "invalid message")
			continue
		}

		switch req.Type {
		case types.TypeWebsocketPing:
			if err := conn.WriteJSON(types.WebsocketResponse{Type: types.TypeWebsocketPong}); err != nil {
				s.logger.Warn("websocket write error", zap.Error(err))
			}
		case types.TypeWebsocketChat:
			payloadBytes, err := json.Marshal(req.Payload)
			if err != nil {
				s.writeError(conn, "invalid message")
				continue
			}
			var chat types.WebsocketChatPayload
			if err := json.Unmarshal(payloadBytes, &chat); err != nil {
				s.writeError(conn, "invalid chat payload")
				continue
			}

			answer, err := s.pipeline.AnswerQuery(r.Context(), chat.Text)
			if err != nil {
				s.writeError(conn, err.Error())
				continue
			}
			res := types.WebsocketResponse{
				Type:    types.TypeWebsocketChat,
				Payload: types.WebsocketChatResponse{Response: answer},
			}
			if err := conn.WriteJSON(res); err != nil {
				s.logger.Warn("websocket write error", zap.Error(err))
			}
		default:
			s.writeError(conn, "unknown message type")
		}
	}
}

func (s *WebSocketService) writeError(conn *websocket.Conn, message string) {
	res := types.WebsocketResponse{
		Type:    types.TypeWebsocketError,
		Payload: types.WebsocketErrorResponse{Message: message},
	}
	if err := conn.WriteJSON(res); err != nil {
		s.logger.Warn("websocket write error", zap.Error(err))
	}
}
