package domain

import "context"

// PageContent is the structured result of scraping one article page.
type PageContent struct {
	URL      string
	Title    string
	Summary  string
	Sections []string
	RawText  string
}

// ContentFetcher turns an article URL into structured page content.
// Implementations fail with a FETCH_FAILED error when the page is
// unreachable and PARSE_FAILED when the expected content container
// is absent from the retrieved document.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) (*PageContent, error)
}

// InferenceClient sends a prompt to the model and returns its raw text.
type InferenceClient interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ArticleRepository is the persistence port for cached articles.
// Lookup methods return (nil, nil) when no row matches.
type ArticleRepository interface {
	GetByURL(ctx context.Context, url string) (*Article, error)
	GetByID(ctx context.Context, id int64) (*Article, error)

	// Save inserts a new article and fills in ID and CreatedAt.
	// A concurrent insert for the same URL surfaces as a DUPLICATE_KEY
	// DomainError; callers resolve it by re-reading the winning row.
	Save(ctx context.Context, article *Article) error

	// List returns articles ordered by id descending.
	List(ctx context.Context, offset, limit int) ([]*Article, error)

	// DeleteByID reports whether a row was actually removed.
	DeleteByID(ctx context.Context, id int64) (bool, error)

	// DeleteAll removes every article and returns the count removed.
	DeleteAll(ctx context.Context) (int64, error)
}
