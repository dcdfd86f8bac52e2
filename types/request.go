package types

type ChatRequest struct {
	Text string `json:"text"`
}
