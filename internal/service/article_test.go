package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"wikiquiz/internal/cache"
	"wikiquiz/internal/config"
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

const testURL = "https://en.wikipedia.org/wiki/Go_(programming_language)"

var validQuizJSON = `{"quiz":[
	{"question":"Q1","options":["A","B","C","D"],"answer":"A","difficulty":"easy","explanation":"E1"},
	{"question":"Q2","options":["A","B","C","D"],"answer":"B","difficulty":"medium","explanation":"E2"},
	{"question":"Q3","options":["A","B","C","D"],"answer":"C","difficulty":"hard","explanation":"E3"}
]}`

const validTopicsJSON = `{"related_topics":["Compilers","Concurrency"]}`
const validEntitiesJSON = `{"people":["Rob Pike"],"organizations":["Google"],"locations":[]}`

func testPage() *domain.PageContent {
	return &domain.PageContent{
		URL:     testURL,
		Title:   "Go (programming language)",
		Summary: "Go is a statically typed, compiled programming language designed at Google.",
		RawText: strings.Repeat("Go is expressive, concise, clean, and efficient. ", 20),
	}
}

func isQuizPrompt(p string) bool     { return strings.Contains(p, "multiple-choice questions") }
func isTopicsPrompt(p string) bool   { return strings.Contains(p, "related Wikipedia topics") }
func isEntitiesPrompt(p string) bool { return strings.Contains(p, "key entities") }

// stubLLM wires the three prompt kinds to fixed outputs.
func stubLLM(llm *MockInferenceClient, quizOut, topicsOut, entitiesOut string) {
	llm.On("Complete", mock.Anything, mock.MatchedBy(isQuizPrompt), quizMaxTokens).Return(quizOut, nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isTopicsPrompt), topicsMaxTokens).Return(topicsOut, nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isEntitiesPrompt), entitiesMaxTokens).Return(entitiesOut, nil)
}

func domainCode(t *testing.T, err error) domain.ErrorCode {
	t.Helper()
	var domainErr *domain.DomainError
	require.ErrorAs(t, err, &domainErr)
	return domainErr.Code
}

func TestGenerateQuiz_RejectsNonWikipediaURL(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)
	svc := NewArticleService(repo, fetcher, llm, nil, 0)

	_, err := svc.GenerateQuiz(context.Background(), "https://example.com/article", "")

	assert.Equal(t, domain.CodeInvalidRequest, domainCode(t, err))
	repo.AssertNotCalled(t, "GetByURL", mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuiz_StoreHitSkipsFetchAndInference(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	stored := &domain.Article{
		ID:            7,
		URL:           testURL,
		Title:         "Go (programming language)",
		Summary:       "Go is a language.",
		Quiz:          make([]domain.Question, 3),
		RelatedTopics: []string{"Compilers"},
		CreatedAt:     time.Now(),
	}
	repo.On("GetByURL", mock.Anything, testURL).Return(stored, nil)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	resp, err := svc.GenerateQuiz(context.Background(), testURL, "assisted")

	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, stored.Title, resp.Title)
	assert.Equal(t, []string{"Compilers"}, resp.RelatedTopics)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateQuiz_FreshRunPersistsAndResponds(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	stubLLM(llm, validQuizJSON, validTopicsJSON, validEntitiesJSON)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*domain.Article")).Run(func(args mock.Arguments) {
		article := args.Get(1).(*domain.Article)
		article.ID = 42
	}).Return(nil)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	resp, err := svc.GenerateQuiz(context.Background(), testURL, "")

	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, testURL, resp.URL)
	assert.Len(t, resp.Quiz, 3)
	assert.Equal(t, []string{"Compilers", "Concurrency"}, resp.RelatedTopics)

	repo.AssertCalled(t, "Save", mock.Anything, mock.MatchedBy(func(a *domain.Article) bool {
		return a.URL == testURL && len(a.Quiz) == 3 && a.KeyEntities != nil && a.KeyEntities.People[0] == "Rob Pike"
	}))
}

func TestGenerateQuiz_TruncatesArticleText(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	page := testPage()
	page.Summary = strings.Repeat("s", 100)
	page.RawText = strings.Repeat("x", 3000) + "BEYOND_THE_TRIM"
	wantText := hardTrim(page.Summary+"\n\n"+page.RawText, maxArticleChars)
	require.Equal(t, maxArticleChars, len([]rune(wantText)))

	var quizPrompt string
	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(page, nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isQuizPrompt), quizMaxTokens).
		Run(func(args mock.Arguments) { quizPrompt = args.String(1) }).
		Return(validQuizJSON, nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isTopicsPrompt), topicsMaxTokens).Return(validTopicsJSON, nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isEntitiesPrompt), entitiesMaxTokens).Return(validEntitiesJSON, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	_, err := svc.GenerateQuiz(context.Background(), testURL, "")

	require.NoError(t, err)
	assert.Contains(t, quizPrompt, wantText)
	assert.NotContains(t, quizPrompt, "BEYOND_THE_TRIM")
}

func TestGenerateQuiz_RejectsInsufficientContent(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	page := testPage()
	page.Summary = "Too short."
	page.RawText = "Stub article."

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(page, nil)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	_, err := svc.GenerateQuiz(context.Background(), testURL, "")

	assert.Equal(t, domain.CodeInsufficientContent, domainCode(t, err))
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_ShortQuizIsNotPersisted(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	shortQuiz := `{"quiz":[
		{"question":"Q1","options":["A","B","C","D"],"answer":"A","difficulty":"easy","explanation":"E"},
		{"question":"Q2","options":["A","B","C","D"],"answer":"B","difficulty":"easy","explanation":"E"}
	]}`

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	stubLLM(llm, shortQuiz, validTopicsJSON, validEntitiesJSON)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	_, err := svc.GenerateQuiz(context.Background(), testURL, "")

	assert.Equal(t, domain.CodeInvalidGeneration, domainCode(t, err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_InferenceFailureLeavesNoTrace(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isQuizPrompt), quizMaxTokens).
		Return("", domain.NewInferenceError(errors.New("upstream 503"))).Maybe()
	llm.On("Complete", mock.Anything, mock.MatchedBy(isTopicsPrompt), topicsMaxTokens).Return(validTopicsJSON, nil).Maybe()
	llm.On("Complete", mock.Anything, mock.MatchedBy(isEntitiesPrompt), entitiesMaxTokens).Return(validEntitiesJSON, nil).Maybe()

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	_, err := svc.GenerateQuiz(context.Background(), testURL, "")

	assert.Equal(t, domain.CodeInferenceFailed, domainCode(t, err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_MalformedOutputIsRejected(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	llm.On("Complete", mock.Anything, mock.MatchedBy(isQuizPrompt), quizMaxTokens).Return("no json here", nil).Maybe()
	llm.On("Complete", mock.Anything, mock.MatchedBy(isTopicsPrompt), topicsMaxTokens).Return(validTopicsJSON, nil).Maybe()
	llm.On("Complete", mock.Anything, mock.MatchedBy(isEntitiesPrompt), entitiesMaxTokens).Return(validEntitiesJSON, nil).Maybe()

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	_, err := svc.GenerateQuiz(context.Background(), testURL, "")

	assert.Equal(t, domain.CodeMalformedOutput, domainCode(t, err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_DuplicateInsertReturnsWinningRow(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	winner := &domain.Article{
		ID:            9,
		URL:           testURL,
		Title:         "Go (programming language)",
		Quiz:          make([]domain.Question, 3),
		RelatedTopics: []string{},
	}

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil).Once()
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	stubLLM(llm, validQuizJSON, validTopicsJSON, validEntitiesJSON)
	repo.On("Save", mock.Anything, mock.Anything).Return(domain.NewDuplicateKeyError(errors.New("unique_violation")))
	repo.On("GetByURL", mock.Anything, testURL).Return(winner, nil).Once()

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	resp, err := svc.GenerateQuiz(context.Background(), testURL, "")

	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, int64(9), resp.ID)
	repo.AssertExpectations(t)
}

func TestGenerateQuiz_RelatedTopicsDefaultToEmpty(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)

	repo.On("GetByURL", mock.Anything, testURL).Return(nil, nil)
	fetcher.On("Fetch", mock.Anything, testURL).Return(testPage(), nil)
	stubLLM(llm, validQuizJSON, `{}`, validEntitiesJSON)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewArticleService(repo, fetcher, llm, nil, 0)
	resp, err := svc.GenerateQuiz(context.Background(), testURL, "")

	require.NoError(t, err)
	assert.NotNil(t, resp.RelatedTopics)
	assert.Empty(t, resp.RelatedTopics)
}

func TestGenerateQuiz_RedisHitSkipsStore(t *testing.T) {
	repo := new(MockArticleRepository)
	fetcher := new(MockContentFetcher)
	llm := new(MockInferenceClient)
	responseCache := new(MockCache)

	payload, err := json.Marshal(&dto.GenerateQuizResponse{
		ID:            3,
		URL:           testURL,
		Title:         "Go (programming language)",
		Quiz:          make([]dto.Question, 3),
		RelatedTopics: []string{},
	})
	require.NoError(t, err)
	responseCache.On("Get", mock.Anything, cache.ArticleKeyByURL(testURL)).Return(string(payload), nil)

	svc := NewArticleService(repo, fetcher, llm, responseCache, time.Hour)
	resp, err := svc.GenerateQuiz(context.Background(), testURL, "")

	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Equal(t, int64(3), resp.ID)
	repo.AssertNotCalled(t, "GetByURL", mock.Anything, mock.Anything)
	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestListHistory_Pagination(t *testing.T) {
	repo := new(MockArticleRepository)

	pageTwo := make([]*domain.Article, 0, 5)
	for id := int64(7); id >= 3; id-- {
		pageTwo = append(pageTwo, &domain.Article{ID: id, URL: testURL, Title: "T", Quiz: make([]domain.Question, 3)})
	}
	repo.On("List", mock.Anything, 5, 5).Return(pageTwo, nil)

	svc := NewArticleService(repo, nil, nil, nil, 0)
	resp, err := svc.ListHistory(context.Background(), 2, 5)

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 5, resp.Limit)
	assert.Equal(t, 5, resp.Count)
	gotIDs := make([]int64, 0, len(resp.Data))
	for _, a := range resp.Data {
		gotIDs = append(gotIDs, a.ID)
	}
	assert.Equal(t, []int64{7, 6, 5, 4, 3}, gotIDs)
}

func TestListHistory_PastTheEndIsEmpty(t *testing.T) {
	repo := new(MockArticleRepository)
	repo.On("List", mock.Anything, 20, 5).Return([]*domain.Article{}, nil)

	svc := NewArticleService(repo, nil, nil, nil, 0)
	resp, err := svc.ListHistory(context.Background(), 5, 5)

	require.NoError(t, err)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Data)
}

func TestDeleteArticle_NotFound(t *testing.T) {
	repo := new(MockArticleRepository)
	repo.On("GetByID", mock.Anything, int64(99)).Return(nil, nil)

	svc := NewArticleService(repo, nil, nil, nil, 0)
	_, err := svc.DeleteArticle(context.Background(), 99)

	assert.Equal(t, domain.CodeNotFound, domainCode(t, err))
}

func TestDeleteArticle_InvalidatesCache(t *testing.T) {
	repo := new(MockArticleRepository)
	responseCache := new(MockCache)

	repo.On("GetByID", mock.Anything, int64(4)).Return(&domain.Article{ID: 4, URL: testURL}, nil)
	repo.On("DeleteByID", mock.Anything, int64(4)).Return(true, nil)
	responseCache.On("Delete", mock.Anything, cache.ArticleKeyByURL(testURL)).Return(nil)

	svc := NewArticleService(repo, nil, nil, responseCache, time.Hour)
	resp, err := svc.DeleteArticle(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "Quiz deleted", resp.Message)
	assert.Equal(t, int64(4), resp.ID)
	responseCache.AssertExpectations(t)
}

func TestDeleteAllArticles_EmptyStore(t *testing.T) {
	repo := new(MockArticleRepository)
	repo.On("DeleteAll", mock.Anything).Return(int64(0), nil)

	svc := NewArticleService(repo, nil, nil, nil, 0)
	resp, err := svc.DeleteAllArticles(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "All quizzes deleted", resp.Message)
	assert.Equal(t, int64(0), resp.DeletedCount)
}
