package api

import (
	"github.com/gin-gonic/gin"

	"github.com/suqly/category-suggester/internal/domain"
)

// Error codes surfaced to callers.
const (
	codeInvalidInput        = "invalid_input"
	codeModelNotReady       = "model_not_ready"
	codeDatabaseUnavailable = "database_unavailable"
	codeSyncFailed          = "sync_failed"
	codeNotFound            = "not_found"
	codeInternal            = "internal_error"
)

// ClassifyRequest represents a classification request.
type ClassifyRequest struct {
	Text     string `binding:"required" json:"text"`
	Language string `binding:"required" json:"language"`
}

// SuggestionResponse is a single ranked category suggestion.
type SuggestionResponse struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	URL          string  `json:"url"`
	Score        float64 `json:"score"`
	MatchType    string  `json:"match_type"`
}

// ClassifyResponse carries the ordered suggestion list.
type ClassifyResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

// SyncResponse reports a full sync run.
type SyncResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

// TrainRequest optionally narrows training to one language.
type TrainRequest struct {
	Language string `json:"language"`
}

// TrainResult reports one language's training outcome.
type TrainResult struct {
	Language string `json:"language"`
	Trained  bool   `json:"trained"`
	Error    string `json:"error,omitempty"`
}

// TrainResponse carries per-language training outcomes.
type TrainResponse struct {
	Results []TrainResult `json:"results"`
}

// DocumentsResponse lists training documents.
type DocumentsResponse struct {
	Documents []domain.TrainingDocument `json:"documents"`
	Total     int                       `json:"total"`
}

// AppendExampleRequest adds a curated training example to a document.
type AppendExampleRequest struct {
	Language string `binding:"required" json:"language"`
	Example  string `binding:"required" json:"example"`
}

func toClassifyResponse(suggestions []domain.Suggestion) ClassifyResponse {
	out := make([]SuggestionResponse, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, SuggestionResponse{
			CategoryID:   s.CategoryID,
			CategoryName: s.CategoryName,
			URL:          s.URL,
			Score:        s.Score,
			MatchType:    s.MatchType,
		})
	}
	return ClassifyResponse{Suggestions: out}
}

func writeError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
