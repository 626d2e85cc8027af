package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"wikiquiz/internal/cache"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"
	"wikiquiz/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// maxArticleChars is the hard trim applied to scraped text before it
	// is sent to the model. Character based, ignores sentence boundaries;
	// the point is to bound inference cost, not to be pretty.
	maxArticleChars = 2500

	// minArticleChars rejects stub articles instead of prompting on them.
	minArticleChars = 300

	defaultMode = "assisted"
)

// quizPayload and topicsPayload mirror the JSON objects the prompts
// instruct the model to return.
type quizPayload struct {
	Quiz []domain.Question `json:"quiz"`
}

type topicsPayload struct {
	RelatedTopics []string `json:"related_topics"`
}

// ArticleService defines the operations of the quiz pipeline and its
// history surface.
type ArticleService interface {
	GenerateQuiz(ctx context.Context, url, mode string) (*dto.GenerateQuizResponse, error)
	ListHistory(ctx context.Context, page, limit int) (*dto.HistoryResponse, error)
	DeleteArticle(ctx context.Context, id int64) (*dto.DeleteResponse, error)
	DeleteAllArticles(ctx context.Context) (*dto.DeleteAllResponse, error)
}

// articleService implements ArticleService
type articleService struct {
	repo     domain.ArticleRepository
	fetcher  domain.ContentFetcher
	llm      domain.InferenceClient
	cache    domain.Cache
	cacheTTL time.Duration
}

// NewArticleService creates a new instance of articleService. cache may
// be nil; the articles table alone still guarantees idempotent caching.
func NewArticleService(
	repo domain.ArticleRepository,
	fetcher domain.ContentFetcher,
	llm domain.InferenceClient,
	responseCache domain.Cache,
	cacheTTL time.Duration,
) ArticleService {
	return &articleService{
		repo:     repo,
		fetcher:  fetcher,
		llm:      llm,
		cache:    responseCache,
		cacheTTL: cacheTTL,
	}
}

// GenerateQuiz runs the pipeline: validate, cache check, scrape, trim,
// generate, validate output, persist, respond.
func (s *articleService) GenerateQuiz(ctx context.Context, url, mode string) (*dto.GenerateQuizResponse, error) {
	url = strings.TrimSpace(url)
	if mode == "" {
		mode = defaultMode
	}

	if !domain.IsWikipediaURL(url) {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, domain.NewInvalidRequestError("Only Wikipedia URLs allowed")
	}

	key := cache.ArticleKeyByURL(url)

	// Redis answers first; the articles table remains the authority.
	if resp := s.getCachedResponse(ctx, key); resp != nil {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeCached).Inc()
		metrics.CacheHits.WithLabelValues(metrics.SourceRedis).Inc()
		return resp, nil
	}

	existing, err := s.repo.GetByURL(ctx, url)
	if err != nil {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, domain.NewInternalError("Failed to look up article", err)
	}
	if existing != nil {
		// Cache hit: the stored fields are reused verbatim, no re-fetch,
		// no re-inference.
		resp := articleToResponse(existing, true)
		s.putCachedResponse(ctx, key, existing)
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeCached).Inc()
		metrics.CacheHits.WithLabelValues(metrics.SourceStore).Inc()
		return resp, nil
	}

	page, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		metrics.GenerationFailures.WithLabelValues("fetch").Inc()
		return nil, err
	}

	articleText := hardTrim(page.Summary+"\n\n"+page.RawText, maxArticleChars)
	if textLen := len([]rune(articleText)); textLen < minArticleChars {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, domain.NewInsufficientContentError(textLen)
	}

	logger.Get().Info("Generating quiz",
		zap.String("url", url),
		zap.String("mode", mode),
		zap.String("title", page.Title),
		zap.Int("sections", len(page.Sections)))

	quiz, topics, entities, err := s.generate(ctx, articleText)
	if err != nil {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		metrics.GenerationFailures.WithLabelValues("generate").Inc()
		logger.Get().Error("LLM generation failed", zap.String("url", url), zap.Error(err))
		return nil, collapseGenerationError(err)
	}

	if len(quiz) < domain.MinQuizQuestions {
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		metrics.GenerationFailures.WithLabelValues("validate").Inc()
		return nil, domain.NewInvalidGenerationError("Invalid quiz returned by LLM")
	}
	if topics == nil {
		topics = []string{}
	}

	article := &domain.Article{
		URL:           url,
		Title:         page.Title,
		Summary:       page.Summary,
		Quiz:          quiz,
		RelatedTopics: topics,
		KeyEntities:   entities,
	}

	if err := s.repo.Save(ctx, article); err != nil {
		var domainErr *domain.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == domain.CodeDuplicateKey {
			// A concurrent request won the insert race. Re-read the
			// winning row instead of surfacing an error.
			logger.Get().Warn("Concurrent insert for URL, re-reading", zap.String("url", url))
			winner, rerr := s.repo.GetByURL(ctx, url)
			if rerr != nil || winner == nil {
				metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
				return nil, domain.NewInternalError("Failed to re-read article after duplicate insert", rerr)
			}
			resp := articleToResponse(winner, true)
			s.putCachedResponse(ctx, key, winner)
			metrics.GenerateRequests.WithLabelValues(metrics.OutcomeCached).Inc()
			return resp, nil
		}
		metrics.GenerateRequests.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, domain.NewInternalError("Failed to save article", err)
	}

	resp := articleToResponse(article, false)
	s.putCachedResponse(ctx, key, article)
	metrics.GenerateRequests.WithLabelValues(metrics.OutcomeGenerated).Inc()
	logger.Get().Info("Quiz generated",
		zap.Int64("article_id", article.ID),
		zap.String("url", url),
		zap.Int("questions", len(article.Quiz)))
	return resp, nil
}

// generate issues the three prompts concurrently and parses each result.
// All three must succeed; a partial result set is never used.
func (s *articleService) generate(ctx context.Context, articleText string) ([]domain.Question, []string, *domain.KeyEntities, error) {
	var (
		quiz     quizPayload
		topics   topicsPayload
		entities domain.KeyEntities
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.llm.Complete(gctx, QuizPrompt(articleText), quizMaxTokens)
		if err != nil {
			return err
		}
		return ExtractJSON(out, &quiz)
	})
	g.Go(func() error {
		out, err := s.llm.Complete(gctx, RelatedTopicsPrompt(articleText), topicsMaxTokens)
		if err != nil {
			return err
		}
		return ExtractJSON(out, &topics)
	})
	g.Go(func() error {
		out, err := s.llm.Complete(gctx, KeyEntitiesPrompt(articleText), entitiesMaxTokens)
		if err != nil {
			return err
		}
		return ExtractJSON(out, &entities)
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return quiz.Quiz, topics.RelatedTopics, &entities, nil
}

// ListHistory returns stored articles newest-first. Pages past the end
// come back empty, never as an error.
func (s *articleService) ListHistory(ctx context.Context, page, limit int) (*dto.HistoryResponse, error) {
	offset := (page - 1) * limit
	articles, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, domain.NewInternalError("Failed to list articles", err)
	}

	data := make([]dto.ArticleResponse, 0, len(articles))
	for _, article := range articles {
		data = append(data, dto.ArticleResponse{
			ID:            article.ID,
			URL:           article.URL,
			Title:         article.Title,
			Summary:       article.Summary,
			Quiz:          toDTOQuestions(article.Quiz),
			RelatedTopics: article.RelatedTopics,
			CreatedAt:     article.CreatedAt,
		})
	}

	return &dto.HistoryResponse{
		Page:  page,
		Limit: limit,
		Count: len(data),
		Data:  data,
	}, nil
}

// DeleteArticle removes one stored article and invalidates its cache entry.
func (s *articleService) DeleteArticle(ctx context.Context, id int64) (*dto.DeleteResponse, error) {
	article, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to look up article", err)
	}
	if article == nil {
		return nil, domain.NewNotFoundError("Quiz not found")
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("Failed to delete article", err)
	}
	if !deleted {
		return nil, domain.NewNotFoundError("Quiz not found")
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.ArticleKeyByURL(article.URL)); err != nil {
			logger.Get().Warn("Failed to invalidate cached article", zap.Int64("id", id), zap.Error(err))
		}
	}

	return &dto.DeleteResponse{Message: "Quiz deleted", ID: id}, nil
}

// DeleteAllArticles wipes the store and flushes the response cache.
func (s *articleService) DeleteAllArticles(ctx context.Context) (*dto.DeleteAllResponse, error) {
	count, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to delete articles", err)
	}

	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, cache.ArticleKeyPattern()); err != nil {
			logger.Get().Warn("Failed to flush article cache", zap.Error(err))
		}
	}

	return &dto.DeleteAllResponse{Message: "All quizzes deleted", DeletedCount: count}, nil
}

// getCachedResponse reads a previously served response from Redis.
// Any cache failure degrades to a miss.
func (s *articleService) getCachedResponse(ctx context.Context, key string) *dto.GenerateQuizResponse {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if err != domain.ErrCacheMiss {
			logger.Get().Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	var resp dto.GenerateQuizResponse
	if err := json.Unmarshal([]byte(cached), &resp); err != nil {
		logger.Get().Warn("Discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil
	}
	resp.Cached = true
	return &resp
}

// putCachedResponse stores the response for later hits. Best effort.
func (s *articleService) putCachedResponse(ctx context.Context, key string, article *domain.Article) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(articleToResponse(article, false))
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
		logger.Get().Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// collapseGenerationError keeps the domain code of inference and parsing
// failures but never lets the underlying model response reach a caller.
func collapseGenerationError(err error) error {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case domain.CodeInferenceFailed, domain.CodeMalformedOutput:
			return domainErr
		}
	}
	return domain.NewInferenceError(err)
}

// hardTrim truncates s to at most limit characters, ignoring word and
// sentence boundaries.
func hardTrim(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func toDTOQuestions(questions []domain.Question) []dto.Question {
	out := make([]dto.Question, 0, len(questions))
	for _, q := range questions {
		out = append(out, dto.Question{
			Question:    q.Question,
			Options:     q.Options,
			Answer:      q.Answer,
			Difficulty:  q.Difficulty,
			Explanation: q.Explanation,
		})
	}
	return out
}

func articleToResponse(article *domain.Article, cached bool) *dto.GenerateQuizResponse {
	topics := article.RelatedTopics
	if topics == nil {
		topics = []string{}
	}
	return &dto.GenerateQuizResponse{
		ID:            article.ID,
		URL:           article.URL,
		Title:         article.Title,
		Summary:       article.Summary,
		Quiz:          toDTOQuestions(article.Quiz),
		RelatedTopics: topics,
		Cached:        cached,
	}
}
