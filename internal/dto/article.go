package dto

import "time"

// GenerateQuizRequest is the body of POST /generate-quiz.
// @Description Request body for generating a quiz from a Wikipedia URL
type GenerateQuizRequest struct {
	URL  string `json:"url"`
	Mode string `json:"mode"`
}

// Question is one multiple-choice entry in a response payload.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// GenerateQuizResponse is the result of a generate-quiz run.
// Key entities are persisted but deliberately not part of the payload.
// @Description Generated quiz with related topics
type GenerateQuizResponse struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	Quiz          []Question `json:"quiz"`
	RelatedTopics []string   `json:"related_topics"`
	Cached        bool       `json:"cached"`
}

// ArticleResponse is one stored article as listed in the history.
type ArticleResponse struct {
	ID            int64      `json:"id"`
	URL           string     `json:"url"`
	Title         string     `json:"title"`
	Summary       string     `json:"summary"`
	Quiz          []Question `json:"quiz"`
	RelatedTopics []string   `json:"related_topics"`
	CreatedAt     time.Time  `json:"created_at"`
}

// HistoryResponse is the paginated history listing.
type HistoryResponse struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Count int               `json:"count"`
	Data  []ArticleResponse `json:"data"`
}

// DeleteResponse confirms a single deletion.
type DeleteResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// DeleteAllResponse confirms a bulk deletion.
type DeleteAllResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
