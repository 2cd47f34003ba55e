package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/supportdesk/support-portal/internal/domain"
	"github.com/supportdesk/support-portal/internal/storage"
)

const articleColumns = `id, title, content, created_by_id, created_at`

func scanArticle(row pgx.Row) (*domain.Article, error) {
	var article domain.Article
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.CreatedByID,
		&article.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &article, nil
}

// GetArticles filters in Go with storage.Matcher so both engines fold case
// the same way; SQL lower() does not apply full Unicode folding.
func (s *Store) GetArticles(ctx context.Context, query string) ([]domain.Article, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+articleColumns+` FROM articles ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matcher *storage.Matcher
	if query != "" {
		m := storage.NewMatcher(query)
		matcher = &m
	}
	result := []domain.Article{}
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		if matcher != nil && !matcher.Match(article.Title, article.Content) {
			continue
		}
		result = append(result, *article)
	}
	return result, rows.Err()
}

func (s *Store) CreateArticle(ctx context.Context, in domain.NewArticle) (*domain.Article, error) {
	const query = `
        INSERT INTO articles (title, content, created_by_id, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING ` + articleColumns
	return scanArticle(s.pool.QueryRow(ctx, query,
		in.Title,
		in.Content,
		in.CreatedByID,
		in.CreatedAt,
	))
}
