package feed

import (
	"bytes"
	"cmp"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

type Parser struct {
	gofeedParser *gofeed.Parser
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
	}
}

func (p *Parser) Run(data []byte) ([]Item, error) {
	feed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		items = append(items, p.normalizeItem(item))
	}

	return items, nil
}

func (p *Parser) normalizeItem(item *gofeed.Item) Item {
	normalized := Item{
		GUID:        cmp.Or(item.GUID, item.Link),
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		RawFields:   make(map[string]string),
	}

	if item.PublishedParsed != nil {
		published := *item.PublishedParsed
		normalized.PublishedAt = &published
	}

	p.setRawField(normalized.RawFields, "title", item.Title)
	p.setRawField(normalized.RawFields, "link", item.Link)
	p.setRawField(normalized.RawFields, "description", item.Description)
	p.setRawField(normalized.RawFields, "guid", normalized.GUID)
	p.setRawField(normalized.RawFields, "pubDate", item.Published)
	p.setRawField(normalized.RawFields, "author", p.formatAuthor(item))
	p.setRawField(normalized.RawFields, "categories", strings.Join(item.Categories, ", "))

	// Non-standard elements the lot feed may add over time
	for name, value := range item.Custom {
		p.setRawField(normalized.RawFields, name, value)
	}

	return normalized
}

func (p *Parser) setRawField(fields map[string]string, name, value string) {
	if value != "" {
		fields[name] = value
	}
}

func (p *Parser) formatAuthor(item *gofeed.Item) string {
	if item.Author == nil {
		return ""
	}
	if item.Author.Email != "" && item.Author.Name != "" {
		return fmt.Sprintf("%s (%s)", item.Author.Email, item.Author.Name)
	}
	return cmp.Or(item.Author.Name, item.Author.Email)
}
