// Package seed holds the fixed onboarding articles every new knowledge base
// starts with.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/supportdesk/support-portal/internal/domain"
)

// BootstrapAuthorID is the author recorded on seeded articles.
const BootstrapAuthorID int64 = 1

//go:embed articles.yaml
var articlesYAML []byte

type articleEntry struct {
	Title   string `yaml:"title"`
	Content string `yaml:"content"`
}

// Articles returns the onboarding articles stamped with createdAt.
func Articles(createdAt time.Time) ([]domain.NewArticle, error) {
	var entries []articleEntry
	if err := yaml.Unmarshal(articlesYAML, &entries); err != nil {
		return nil, fmt.Errorf("decode seed articles: %w", err)
	}
	articles := make([]domain.NewArticle, 0, len(entries))
	for _, e := range entries {
		articles = append(articles, domain.NewArticle{
			Title:       e.Title,
			Content:     e.Content,
			CreatedByID: BootstrapAuthorID,
			CreatedAt:   createdAt,
		})
	}
	return articles, nil
}
