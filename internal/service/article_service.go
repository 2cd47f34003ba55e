package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/events"
	"github.com/supportdesk/support-portal/internal/storage"
)

// ArticleCreateInput describes a new knowledge-base article.
type ArticleCreateInput struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// ArticleService manages the knowledge base.
type ArticleService struct {
	store      storage.Storage
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewArticleService constructs the service.
func NewArticleService(store storage.Storage, dispatcher events.Dispatcher, logger *zap.Logger) *ArticleService {
	return &ArticleService{store: store, dispatcher: dispatcher, logger: logger, now: time.Now}
}

// Search lists articles whose title or content contains query. An empty
// query lists everything.
func (s *ArticleService) Search(ctx context.Context, query string) ([]domain.Article, error) {
	return s.store.GetArticles(ctx, query)
}

// Create publishes an article authored by authorID.
func (s *ArticleService) Create(ctx context.Context, authorID int64, input ArticleCreateInput) (*domain.Article, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	article, err := s.store.CreateArticle(ctx, domain.NewArticle{
		Title:       input.Title,
		Content:     input.Content,
		CreatedByID: authorID,
		CreatedAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventArticlePublished,
		ActorID: authorID,
		Payload: events.ArticlePublishedPayload{ArticleID: article.ID, Title: article.Title},
	})
	return article, nil
}
