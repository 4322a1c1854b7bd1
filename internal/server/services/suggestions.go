package services

import (
	"context"
	"fmt"

	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/seeds"
)

const (
	suggestionLevel    = "beginner"
	suggestionCategory = "WebApp"
	fallbackLanguage   = "Python"
)

// SuggestionService proposes a first project for a language and lists
// existing products that use it.
type SuggestionService struct {
	menu     seeds.Menu
	products *ProductService
}

func NewSuggestionService(menu seeds.Menu, products *ProductService) *SuggestionService {
	return &SuggestionService{menu: menu, products: products}
}

// Suggest builds the suggestion for lang. "others", "no" and languages
// missing from the menu fall back to Python.
func (s *SuggestionService) Suggest(ctx context.Context, lang string) (*models.Suggestion, error) {
	item, ok := s.menu.Lookup(suggestionLevel, suggestionCategory, lang)
	if !ok || lang == "others" || lang == "no" {
		lang = fallbackLanguage
		item, ok = s.menu.Lookup(suggestionLevel, suggestionCategory, lang)
		if !ok {
			return nil, fmt.Errorf("suggestion menu has no entry for %s", lang)
		}
	}

	products, err := s.products.ByTagName(ctx, lang)
	if err != nil {
		return nil, err
	}

	return &models.Suggestion{
		Title:       fmt.Sprintf("%sで%sを作るのはどうですか？", lang, item.App),
		Body:        fmt.Sprintf("%sというフレームワークを使うのがおすすめです。これらのURLを参考にすれば、簡単に%sを作ることができます。", item.Framework, item.App),
		LearningURL: item.LearningURL,
		WorkingURL:  item.WorkingURL,
		Products:    products,
	}, nil
}
