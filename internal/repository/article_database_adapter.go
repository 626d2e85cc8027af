package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const articleColumns = `id, url, title, summary, quiz, related_topics, key_entities, created_at`

// pqUniqueViolation is the Postgres error code for a unique constraint hit.
const pqUniqueViolation = "23505"

// ArticleDatabaseAdapter implements domain.ArticleRepository using sqlx.DB
type ArticleDatabaseAdapter struct {
	db *sqlx.DB
}

// NewArticleDatabaseAdapter creates a new instance of ArticleDatabaseAdapter
func NewArticleDatabaseAdapter(db *sqlx.DB) domain.ArticleRepository {
	return &ArticleDatabaseAdapter{db: db}
}

// GetByURL implements domain.ArticleRepository
func (a *ArticleDatabaseAdapter) GetByURL(ctx context.Context, url string) (*domain.Article, error) {
	var model models.Article
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE url = $1`, articleColumns)

	err := a.db.GetContext(ctx, &model, query, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article by url: %w", err)
	}
	return toDomainArticle(&model)
}

// GetByID implements domain.ArticleRepository
func (a *ArticleDatabaseAdapter) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	var model models.Article
	query := fmt.Sprintf(`SELECT %s FROM articles WHERE id = $1`, articleColumns)

	err := a.db.GetContext(ctx, &model, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get article by id %d: %w", id, err)
	}
	return toDomainArticle(&model)
}

// Save implements domain.ArticleRepository. The unique index on url is the
// safety net for concurrent cache misses: a conflicting insert comes back
// as a DUPLICATE_KEY domain error for the caller to resolve by re-reading.
func (a *ArticleDatabaseAdapter) Save(ctx context.Context, article *domain.Article) error {
	article.CreatedAt = time.Now().UTC()
	model, err := toModelArticle(article)
	if err != nil {
		return fmt.Errorf("cannot save article: %w", err)
	}

	query := `INSERT INTO articles (
		url, title, summary, quiz, related_topics, key_entities, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	) RETURNING id`

	err = a.db.QueryRowxContext(ctx, query,
		model.URL,
		model.Title,
		model.Summary,
		model.Quiz,
		model.RelatedTopics,
		model.KeyEntities,
		model.CreatedAt,
	).Scan(&article.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return domain.NewDuplicateKeyError(err)
		}
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

// List implements domain.ArticleRepository. Results are ordered by id
// descending; an offset past the end yields an empty slice, not an error.
func (a *ArticleDatabaseAdapter) List(ctx context.Context, offset, limit int) ([]*domain.Article, error) {
	var modelArticles []models.Article
	query := fmt.Sprintf(`SELECT %s FROM articles ORDER BY id DESC OFFSET $1 LIMIT $2`, articleColumns)

	if err := a.db.SelectContext(ctx, &modelArticles, query, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	articles := make([]*domain.Article, 0, len(modelArticles))
	for i := range modelArticles {
		article, err := toDomainArticle(&modelArticles[i])
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// DeleteByID implements domain.ArticleRepository
func (a *ArticleDatabaseAdapter) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete article %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteAll implements domain.ArticleRepository
func (a *ArticleDatabaseAdapter) DeleteAll(ctx context.Context) (int64, error) {
	res, err := a.db.ExecContext(ctx, `DELETE FROM articles`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete articles: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
