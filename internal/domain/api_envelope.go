package domain

// Конверт ошибки: {"error":{"code":..,"text":..}}.
// Успешные ответы отдаются как есть (книга, список, сообщение).
type APIError struct {
	Code int    `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}

type APIEnvelope struct {
	Error *APIError `json:"error,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}

func Fail(code int, text string) APIEnvelope {
	return APIEnvelope{Error: &APIError{Code: code, Text: text}}
}
