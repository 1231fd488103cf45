package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/thanhnp/bicle/internal/models"
)

// Parse decodes an RSS (0.9x, 1.0 or 2.0) or Atom document and returns at
// most limit items tagged with source. limit <= 0 returns every item.
func Parse(data []byte, source string, limit int) ([]models.NewsItem, error) {
	doc, err := parseDoc(data)
	if err != nil {
		return nil, err
	}
	return docItems(doc, source, limit), nil
}

func parseDoc(data []byte) (*gofeed.Feed, error) {
	doc, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return doc, nil
}

func docItems(doc *gofeed.Feed, source string, limit int) []models.NewsItem {
	items := make([]models.NewsItem, 0, len(doc.Items))
	for _, it := range doc.Items {
		if it == nil {
			continue
		}
		items = append(items, newsItem(source, it.Title, itemLink(it),
			firstNonEmpty(it.Published, it.Updated),
			firstNonEmpty(it.Description, it.Content)))
		if limit > 0 && len(items) == limit {
			break
		}
	}
	return items
}

func itemLink(it *gofeed.Item) string {
	if strings.TrimSpace(it.Link) != "" {
		return it.Link
	}
	if len(it.Links) > 0 {
		return it.Links[0]
	}
	return ""
}

func newsItem(source, title, link, published, summary string) models.NewsItem {
	link = strings.TrimSpace(link)
	title = strings.TrimSpace(title)
	if title == "" {
		title = link
	}
	return models.NewsItem{
		Title:     title,
		Link:      link,
		Source:    source,
		Published: strings.TrimSpace(published),
		Summary:   models.TruncateRunes(strings.TrimSpace(summary), models.MaxSummaryLen),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
