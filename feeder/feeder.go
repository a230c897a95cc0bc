package feeder

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"marlang/config"
)

type RssFeedItem struct {
	Title       string
	Link        string
	PublishedAt time.Time
}

// FetchRssFeed fetches one RSS/Atom feed.
// If limit is greater than 0, it returns only the first limit items.
func FetchRssFeed(ctx context.Context, client *http.Client, rssURL string, limit int) ([]RssFeedItem, error) {
	fp := gofeed.NewParser()
	if client != nil {
		fp.Client = client
	}

	feed, err := fp.ParseURLWithContext(rssURL, ctx)
	if err != nil {
		return nil, err
	}

	var items []RssFeedItem
	for _, item := range feed.Items {
		var published time.Time
		if item.PublishedParsed != nil {
			published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			published = *item.UpdatedParsed
		}

		items = append(items, RssFeedItem{
			Title:       strings.TrimSpace(item.Title),
			Link:        item.Link,
			PublishedAt: published,
		})
	}

	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// Headlines collects recent item titles from a set of feeds for the prompt's
// "things noticed today" section. It implements agent.HeadlineSource.
type Headlines struct {
	feeds    []string
	maxItems int
	timeout  time.Duration
	client   *http.Client
}

func NewHeadlines(cfg config.InspirationConfig) *Headlines {
	return &Headlines{
		feeds:    cfg.Feeds,
		maxItems: cfg.MaxItems,
		timeout:  cfg.Timeout,
		client:   &http.Client{Timeout: cfg.Timeout},
	}
}

// Headlines returns up to maxItems distinct titles, newest first. A failing
// feed is logged and skipped; the error is only returned when every feed failed.
func (h *Headlines) Headlines(ctx context.Context) ([]string, error) {
	if len(h.feeds) == 0 {
		return nil, nil
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var all []RssFeedItem
	var lastErr error
	failed := 0
	for _, url := range h.feeds {
		items, err := FetchRssFeed(ctx, h.client, url, h.maxItems)
		if err != nil {
			failed++
			lastErr = err
			config.Logger.Warnf("inspiration feed %s failed: %v", url, err)
			continue
		}
		all = append(all, items...)
	}
	if failed == len(h.feeds) {
		return nil, lastErr
	}
	return pickHeadlines(all, h.maxItems), nil
}

func pickHeadlines(items []RssFeedItem, max int) []string {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PublishedAt.After(items[j].PublishedAt)
	})

	seen := map[string]bool{}
	out := make([]string, 0, max)
	for _, it := range items {
		key := strings.ToLower(it.Title)
		if it.Title == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it.Title)
		if max > 0 && len(out) >= max {
			break
		}
	}
	return out
}
