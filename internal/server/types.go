package server

import "github.com/verdanthealth/medguard/internal/rules"

// SafetyCheckRequest is the request body for POST /api/v1/safety/checks.
type SafetyCheckRequest struct {
	Medications []string `json:"medications"`
	Allergies   []string `json:"allergies"`
	SymptomText string   `json:"symptom_text"`
}

// SafetyCheckResponse is the response body for POST /api/v1/safety/checks.
type SafetyCheckResponse struct {
	Alerts   []rules.Alert `json:"alerts"`
	Degraded bool          `json:"degraded"`
	Missing  []string      `json:"missing,omitempty"`
}

// KnowledgeQueryRequest is the request body for POST /api/v1/knowledge/query.
type KnowledgeQueryRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k,omitempty"`
}

// KnowledgeQueryResponse is the response body for POST /api/v1/knowledge/query.
type KnowledgeQueryResponse struct {
	Context  string `json:"context"`
	Degraded bool   `json:"degraded"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}
