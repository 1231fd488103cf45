// Package feed fetches news candidates from RSS and Atom feeds.
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/thanhnp/bicle/internal/logger"
	"github.com/thanhnp/bicle/internal/models"
)

const (
	maxResponseBytes   = 4 << 20
	defaultConcurrency = 5
	defaultTimeout     = 15 * time.Second
	userAgent          = "bicle-feed/1.0"
)

// Source is one configured feed
type Source struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// Fetcher reads a fixed list of feeds
type Fetcher struct {
	sources     []Source
	client      *http.Client
	concurrency int
	log         *logrus.Entry
}

// New creates a Fetcher. timeout bounds each request.
func New(sources []Source, timeout time.Duration, log *logrus.Entry) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		sources:     sources,
		client:      &http.Client{Timeout: timeout},
		concurrency: defaultConcurrency,
		log:         logger.OrDefault(log, "feed"),
	}
}

// Fetch reads every feed concurrently and returns up to perFeed items from
// each, in feed order. A failing feed is logged and skipped; an error is
// returned only when every feed failed.
func (f *Fetcher) Fetch(ctx context.Context, perFeed int) ([]models.NewsItem, error) {
	if len(f.sources) == 0 {
		return nil, nil
	}

	results := make([][]models.NewsItem, len(f.sources))
	errs := make([]error, len(f.sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, src := range f.sources {
		i, src := i, src
		g.Go(func() error {
			items, err := f.FetchFeed(ctx, src, perFeed)
			if err != nil {
				f.log.WithField("feed", src.Name).Warnf("Failed to fetch feed: %v", err)
				errs[i] = err
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var (
		items  []models.NewsItem
		failed int
	)
	for i := range f.sources {
		if errs[i] != nil {
			failed++
			continue
		}
		items = append(items, results[i]...)
	}

	f.log.WithFields(logrus.Fields{
		"feeds":  len(f.sources),
		"failed": failed,
		"items":  len(items),
	}).Info("Feeds fetched")

	if failed == len(f.sources) {
		return nil, fmt.Errorf("all %d feeds failed: %w", failed, errors.Join(errs...))
	}
	return items, nil
}

// FetchFeed reads one feed and returns at most limit items
func (f *Fetcher) FetchFeed(ctx context.Context, src Source, limit int) ([]models.NewsItem, error) {
	doc, err := f.fetchDoc(ctx, src.URL)
	if err != nil {
		return nil, err
	}
	return docItems(doc, src.Name, limit), nil
}

// Lookup reads link as a feed and returns its first entry, with the feed
// title as the source
func (f *Fetcher) Lookup(ctx context.Context, link string) (models.NewsItem, error) {
	doc, err := f.fetchDoc(ctx, link)
	if err != nil {
		return models.NewsItem{}, err
	}
	items := docItems(doc, strings.TrimSpace(doc.Title), 1)
	if len(items) == 0 {
		return models.NewsItem{}, errors.New("feed has no entries")
	}
	return items[0], nil
}

func (f *Fetcher) fetchDoc(ctx context.Context, target string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return parseDoc(body)
}
