package repository

import (
	"encoding/json"
	"fmt"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/repository/models"
	"wikiquiz/internal/util"
)

// toModelArticle serializes the LLM-derived fields to their JSON text
// encodings. Nullable columns stay NULL when the field is absent.
func toModelArticle(article *domain.Article) (*models.Article, error) {
	if article == nil {
		return nil, nil
	}

	quizJSON, err := json.Marshal(article.Quiz)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal quiz: %w", err)
	}

	model := &models.Article{
		ID:        article.ID,
		URL:       article.URL,
		Title:     article.Title,
		Summary:   util.StringToNullString(article.Summary),
		Quiz:      string(quizJSON),
		CreatedAt: article.CreatedAt,
	}

	if article.RelatedTopics != nil {
		topicsJSON, err := json.Marshal(article.RelatedTopics)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal related topics: %w", err)
		}
		model.RelatedTopics = util.StringToNullString(string(topicsJSON))
	}

	if article.KeyEntities != nil {
		entitiesJSON, err := json.Marshal(article.KeyEntities)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal key entities: %w", err)
		}
		model.KeyEntities = util.StringToNullString(string(entitiesJSON))
	}

	return model, nil
}

// toDomainArticle decodes the JSON columns back into domain values.
// A NULL related_topics column becomes an empty slice so cached and
// fresh responses are shaped identically.
func toDomainArticle(model *models.Article) (*domain.Article, error) {
	if model == nil {
		return nil, nil
	}

	article := &domain.Article{
		ID:            model.ID,
		URL:           model.URL,
		Title:         model.Title,
		Summary:       util.NullStringToString(model.Summary),
		RelatedTopics: []string{},
		CreatedAt:     model.CreatedAt,
	}

	if err := json.Unmarshal([]byte(model.Quiz), &article.Quiz); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quiz for article %d: %w", model.ID, err)
	}

	if model.RelatedTopics.Valid && model.RelatedTopics.String != "" {
		if err := json.Unmarshal([]byte(model.RelatedTopics.String), &article.RelatedTopics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal related topics for article %d: %w", model.ID, err)
		}
	}

	if model.KeyEntities.Valid && model.KeyEntities.String != "" {
		var entities domain.KeyEntities
		if err := json.Unmarshal([]byte(model.KeyEntities.String), &entities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key entities for article %d: %w", model.ID, err)
		}
		article.KeyEntities = &entities
	}

	return article, nil
}
