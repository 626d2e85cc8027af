package handler

import (
	"wikiquiz/internal/domain"
	"wikiquiz/internal/dto"
	"wikiquiz/internal/service"
	"wikiquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ArticleHandler handles quiz generation and history HTTP requests
type ArticleHandler struct {
	service   service.ArticleService
	validator *validation.Validator
}

// NewArticleHandler creates a new ArticleHandler instance
func NewArticleHandler(service service.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Scrapes the article, generates a multiple-choice quiz and related topics, and caches the result by URL
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article URL"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /generate-quiz [post]
func (h *ArticleHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidRequestError("Invalid request body")
	}

	if errs := h.validator.ValidateGenerateQuizRequest(req.URL); len(errs) > 0 {
		return errs
	}

	resp, err := h.service.GenerateQuiz(c.UserContext(), req.URL, req.Mode)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetHistory godoc
// @Summary List previously generated quizzes
// @Description Returns stored articles newest-first with offset pagination
// @Tags history
// @Produce json
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size, 1-50 (default 5)"
// @Success 200 {object} dto.HistoryResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /history [get]
func (h *ArticleHandler) GetHistory(c *fiber.Ctx) error {
	page, limit, errs := h.validator.ValidatePagination(c.Query("page"), c.Query("limit"))
	if len(errs) > 0 {
		return errs
	}

	resp, err := h.service.ListHistory(c.UserContext(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteArticle godoc
// @Summary Delete one stored quiz
// @Tags history
// @Produce json
// @Param id path int true "Article ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /history/{id} [delete]
func (h *ArticleHandler) DeleteArticle(c *fiber.Ctx) error {
	id, errs := h.validator.ValidateArticleID(c.Params("id"))
	if len(errs) > 0 {
		return errs
	}

	resp, err := h.service.DeleteArticle(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteAllArticles godoc
// @Summary Delete every stored quiz
// @Tags history
// @Produce json
// @Success 200 {object} dto.DeleteAllResponse
// @Router /history [delete]
func (h *ArticleHandler) DeleteAllArticles(c *fiber.Ctx) error {
	resp, err := h.service.DeleteAllArticles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
