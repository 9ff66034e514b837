// internal/models/qa.go
package models

// QARequest is an incoming question against the most recent analysis.
type QARequest struct {
	Question string `json:"question"`
	UseLLM   bool   `json:"use_llm,omitempty"`
}

// QAAnswer is the responder output.
type QAAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Source   string `json:"source"` // "rules" or provider name
	Pattern  string `json:"pattern,omitempty"`
}
