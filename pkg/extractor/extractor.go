// Package extractor turns a recipe detail page into a domain.Recipe.
package extractor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"recipe-harvest/pkg/domain"
)

// DescriptionPlaceholder is stored when a page carries no description text
const DescriptionPlaceholder = "აღწერის გარეშე"

const (
	titleSelector       = "h1"
	categorySelector    = "body > div.container > div.pagination > div > div > a:nth-child(3)"
	imageSelector       = "div.post__img img"
	descriptionSelector = "div.post__description"
	authorSelector      = "div.post__author"
	portionsSelector    = "div.lineDesc"
	ingredientSelector  = "div.list__item"
	stepsSelector       = "div.lineList"
)

var authorLabels = []string{"ავტორი:", "Author:"}

// Extractor derives a recipe from a detail page document
type Extractor interface {
	Extract(document, sourceURL, baseURL string) (domain.Recipe, error)
}

// Default implements Extractor with the package level Extract function
type Default struct{}

// NewDefault creates a new default extractor
func NewDefault() *Default {
	return &Default{}
}

// Extract extracts a recipe using the default extraction logic
func (e *Default) Extract(document, sourceURL, baseURL string) (domain.Recipe, error) {
	return Extract(document, sourceURL, baseURL)
}

// Extract parses document and builds a recipe from it.
// Only the title is mandatory; every other field falls back to its default
// when the page lacks it. Same input always yields the same recipe.
func Extract(document, sourceURL, baseURL string) (domain.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		return domain.Recipe{}, &FieldError{Field: "title", Err: ErrMissingTitle}
	}

	categoryNode := doc.Find(categorySelector).First()

	return domain.Recipe{
		Title:            title,
		Link:             sourceURL,
		Category:         category(categoryNode, baseURL),
		Subcategory:      subcategory(categoryNode, baseURL),
		Image:            image(doc, baseURL),
		Description:      description(doc),
		Author:           author(doc),
		Portions:         portions(doc),
		Ingredients:      ingredients(doc),
		PreparationSteps: steps(doc),
	}, nil
}

// category always holds exactly one entry, empty name and link when the breadcrumb is missing
func category(node *goquery.Selection, baseURL string) map[string]string {
	if node.Length() == 0 {
		return map[string]string{"": ""}
	}
	href, _ := node.Attr("href")
	return map[string]string{strings.TrimSpace(node.Text()): Absolutize(baseURL, href)}
}

func subcategory(categoryNode *goquery.Selection, baseURL string) map[string]string {
	next := categoryNode.Next()
	if next.Length() == 0 {
		return map[string]string{}
	}
	href, _ := next.Attr("href")
	return map[string]string{strings.TrimSpace(next.Text()): Absolutize(baseURL, href)}
}

func image(doc *goquery.Document, baseURL string) string {
	src, exists := doc.Find(imageSelector).First().Attr("src")
	if !exists {
		return ""
	}
	return Absolutize(baseURL, src)
}

func description(doc *goquery.Document) string {
	text := strings.TrimSpace(doc.Find(descriptionSelector).First().Text())
	if text == "" {
		return DescriptionPlaceholder
	}
	return text
}

func author(doc *goquery.Document) string {
	node := doc.Find(authorSelector).First()
	if node.Length() == 0 {
		return ""
	}
	return stripLabels(strings.TrimSpace(node.Text()), authorLabels)
}

// portions reads the value next to the first line item, 1 when it is not a number
func portions(doc *goquery.Document) int {
	item := doc.Find(portionsSelector).First().Find("div.lineDesc__item").First()
	fields := strings.Fields(item.Next().Text())
	if len(fields) == 0 {
		return 1
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 1
	}
	return n
}

func ingredients(doc *goquery.Document) []string {
	items := make([]string, 0)
	doc.Find(ingredientSelector).Each(func(i int, s *goquery.Selection) {
		items = append(items, NormalizeIngredient(s.Text()))
	})
	return items
}

func steps(doc *goquery.Document) domain.Steps {
	result := domain.Steps{}
	doc.Find(stepsSelector).First().Find("div.lineList__item").Each(func(i int, s *goquery.Selection) {
		label := strconv.Itoa(i + 1)
		if count := s.Find("div.count").First(); count.Length() > 0 {
			label = strings.TrimSpace(count.Text())
		}
		result.Set(label, cleanStepText(s.Find("p").First().Text()))
	})
	return result
}
