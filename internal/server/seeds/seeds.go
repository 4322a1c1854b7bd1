// Package seeds embeds the static data loaded at startup: the tag lists and
// the project suggestion menu.
package seeds

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tentech-me/tentech-api/internal/server/models"
)

var (
	//go:embed languages.txt
	languages []byte
	//go:embed frameworks.txt
	frameworks []byte
	//go:embed tools.txt
	tools []byte
	//go:embed suggestion.json
	suggestion []byte
)

// TagSeed is one tag of the seed lists.
type TagSeed struct {
	Name string
	Kind string
}

// Tags returns languages, then frameworks, then tools, in file order.
func Tags() []TagSeed {
	var out []TagSeed
	out = appendLines(out, languages, models.TagKindLanguage)
	out = appendLines(out, frameworks, models.TagKindFramework)
	out = appendLines(out, tools, models.TagKindTool)
	return out
}

func appendLines(dst []TagSeed, data []byte, kind string) []TagSeed {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		dst = append(dst, TagSeed{Name: name, Kind: kind})
	}
	return dst
}

// MenuItem is the suggestion for one language.
type MenuItem struct {
	App         string   `json:"app"`
	Framework   string   `json:"fw"`
	LearningURL []string `json:"learning_url"`
	WorkingURL  []string `json:"working_url"`
}

// Menu maps level -> category -> language to a suggestion.
type Menu map[string]map[string]map[string]MenuItem

func LoadMenu() (Menu, error) {
	var m Menu
	if err := json.Unmarshal(suggestion, &m); err != nil {
		return nil, fmt.Errorf("suggestion menu: %w", err)
	}
	return m, nil
}

// Lookup returns the item for level/category/lang.
func (m Menu) Lookup(level, category, lang string) (MenuItem, bool) {
	item, ok := m[level][category][lang]
	return item, ok
}
