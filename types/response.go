package types

type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type SummarizeResponse struct {
	Summary string `json:"summary"`
}
