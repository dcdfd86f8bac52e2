package types

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketChat  = "chat"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebsocketChatPayload struct {
	Text string `json:"text"`
}

type WebsocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

type WebsocketChatResponse struct {
	Response string `json:"response"`
}

type WebsocketErrorResponse struct {
	Message string `json:"message"`
}
