package services

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/seeds"
)

func TestSuggestionService_Suggest(t *testing.T) {
	menu, err := seeds.LoadMenu()
	require.NoError(t, err)

	tests := []struct {
		lang     string
		wantLang string
	}{
		{lang: "Go", wantLang: "Go"},
		{lang: "Ruby", wantLang: "Ruby"},
		{lang: "others", wantLang: "Python"},
		{lang: "no", wantLang: "Python"},
		{lang: "COBOL", wantLang: "Python"},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			f := newProductFixture(models.Product{ID: 1, UUID: uuid.New(), UserID: 2})
			svc := NewSuggestionService(menu, f.svc)

			s, err := svc.Suggest(context.Background(), tt.lang)
			require.NoError(t, err)

			item, ok := menu.Lookup("beginner", "WebApp", tt.wantLang)
			require.True(t, ok)
			assert.True(t, strings.HasPrefix(s.Title, tt.wantLang+"で"+item.App))
			assert.True(t, strings.HasPrefix(s.Body, item.Framework))
			assert.Equal(t, item.LearningURL, s.LearningURL)
			assert.Equal(t, item.WorkingURL, s.WorkingURL)
			assert.Equal(t, tt.wantLang, f.products.tagName)
			require.Len(t, s.Products, 1)
			assert.Equal(t, "bob", s.Products[0].User.Username)
		})
	}
}

func TestSuggestionService_EmptyMenu(t *testing.T) {
	f := newProductFixture()
	svc := NewSuggestionService(seeds.Menu{}, f.svc)

	_, err := svc.Suggest(context.Background(), "Go")
	assert.Error(t, err)
}
