package memory

import (
	"context"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/storage"
)

func (s *Store) GetArticles(_ context.Context, query string) ([]domain.Article, error) {
	s.articles.mu.RLock()
	defer s.articles.mu.RUnlock()

	if query == "" {
		result := make([]domain.Article, len(s.articles.rows))
		copy(result, s.articles.rows)
		return result, nil
	}

	matcher := storage.NewMatcher(query)
	result := make([]domain.Article, 0)
	for _, a := range s.articles.rows {
		if matcher.Match(a.Title, a.Content) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *Store) CreateArticle(_ context.Context, in domain.NewArticle) (*domain.Article, error) {
	s.articles.mu.Lock()
	defer s.articles.mu.Unlock()

	article := domain.Article{
		ID:          s.articles.allocate(),
		Title:       in.Title,
		Content:     in.Content,
		CreatedByID: in.CreatedByID,
		CreatedAt:   in.CreatedAt,
	}
	s.articles.rows = append(s.articles.rows, article)

	out := article
	return &out, nil
}
