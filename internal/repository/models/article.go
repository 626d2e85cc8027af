package models

import (
	"database/sql"
	"time"
)

// Article is the database representation of one cached article.
// The quiz, related_topics and key_entities columns hold JSON text,
// matching how the LLM output is validated before persistence.
type Article struct {
	ID            int64          `db:"id"`
	URL           string         `db:"url"`
	Title         string         `db:"title"`
	Summary       sql.NullString `db:"summary"`
	Quiz          string         `db:"quiz"`
	RelatedTopics sql.NullString `db:"related_topics"`
	KeyEntities   sql.NullString `db:"key_entities"`
	CreatedAt     time.Time      `db:"created_at"`
}

func (Article) TableName() string {
	return "articles"
}
