package domain

import (
	"strings"
	"time"
)

// MinQuizQuestions is the smallest quiz the pipeline accepts from the model.
// Anything shorter is treated as a failed generation, not persisted.
const MinQuizQuestions = 3

// WikiPathMarker gates which URLs may enter the pipeline.
const WikiPathMarker = "wikipedia.org/wiki/"

// Question is one multiple-choice entry of a generated quiz.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty"`
	Explanation string   `json:"explanation"`
}

// KeyEntities holds the named entities extracted from an article.
// It is persisted for later use but never returned to API clients.
type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Article is the cached result of one successful pipeline run,
// uniquely identified by its source URL. Rows are created once,
// read many times, and only ever deleted, never updated.
type Article struct {
	ID            int64
	URL           string
	Title         string
	Summary       string
	Quiz          []Question
	RelatedTopics []string
	KeyEntities   *KeyEntities
	CreatedAt     time.Time
}

// Validate checks that the article is complete enough to persist.
func (a *Article) Validate() error {
	if a.URL == "" {
		return NewInvalidRequestError("url is required")
	}
	if a.Title == "" {
		return NewInvalidRequestError("title is required")
	}
	if len(a.Quiz) < MinQuizQuestions {
		return NewInvalidGenerationError("Invalid quiz returned by LLM")
	}
	return nil
}

// IsWikipediaURL reports whether url points at a Wikipedia article page.
func IsWikipediaURL(url string) bool {
	return strings.Contains(url, WikiPathMarker)
}
