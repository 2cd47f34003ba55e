package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/supportdesk/support-portal/internal/api/dto"
	"github.com/supportdesk/support-portal/internal/service"
)

// ArticlesHandler serves the knowledge base.
type ArticlesHandler struct {
	service *service.ArticleService
}

// NewArticlesHandler constructs handler.
func NewArticlesHandler(articleService *service.ArticleService) *ArticlesHandler {
	return &ArticlesHandler{service: articleService}
}

// ListArticles GET /api/articles?q=.
func (h *ArticlesHandler) ListArticles(c *fiber.Ctx) error {
	articles, err := h.service.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return err
	}
	return data(c, http.StatusOK, dto.NewArticleList(articles))
}

// CreateArticle POST /api/articles.
func (h *ArticlesHandler) CreateArticle(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req service.ArticleCreateInput
	if err := parseBody(c, &req); err != nil {
		return err
	}
	article, err := h.service.Create(c.UserContext(), user.ID, req)
	if err != nil {
		return err
	}
	return data(c, http.StatusCreated, dto.NewArticleResponse(article))
}
