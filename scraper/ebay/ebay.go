// Package ebay fetches marketplace listings from the eBay Browse API.
package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"wildguard/models"
	"wildguard/utils"
)

const (
	browseBaseURL = "https://api.ebay.com/buy/browse/v1/item_summary/search"
	pageSize      = 50
	maxPages      = 2 // max 100 results per keyword
	httpTimeout   = 15 * time.Second
	platform      = "ebay"
)

// Scraper fetches listings from the eBay Browse API. If Token is empty,
// Fetch returns (nil, nil) gracefully — the scan round simply skips eBay
// and logs a warning.
type Scraper struct {
	token  string
	logger *utils.Logger
	pool   *utils.WorkerPool
	seen   *utils.URLSet
	retry  *utils.RetryConfig
	client *http.Client
}

// New constructs an eBay Scraper with a shared HTTP client.
func New(token string, maxConcurrency, rateLimitMs, maxRetries int, logger *utils.Logger) *Scraper {
	return &Scraper{
		token:  token,
		logger: logger,
		pool:   utils.NewWorkerPool(maxConcurrency, rateLimitMs),
		seen:   utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Platform returns the marketplace identifier.
func (s *Scraper) Platform() string { return platform }

// browseResponse mirrors the top-level Browse API JSON response.
type browseResponse struct {
	ItemSummaries []itemSummary `json:"itemSummaries"`
	Total         int           `json:"total"`
}

// itemSummary mirrors a single Browse API item.
type itemSummary struct {
	ItemID           string       `json:"itemId"`
	Title            string       `json:"title"`
	ShortDescription string       `json:"shortDescription"`
	Price            itemPrice    `json:"price"`
	ItemWebURL       string       `json:"itemWebUrl"`
	Image            itemImage    `json:"image"`
	ItemLocation     itemLocation `json:"itemLocation"`
	ItemCreationDate string       `json:"itemCreationDate"`
}

type itemPrice struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type itemImage struct {
	ImageURL string `json:"imageUrl"`
}

type itemLocation struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Fetch runs one Browse API search per keyword through the worker pool and
// returns the merged, URL-deduped listings. Returns nil without error when
// the application token is missing.
func (s *Scraper) Fetch(ctx context.Context, keywords []string) ([]*models.RawListing, error) {
	if s.token == "" {
		s.logger.Warn("[ebay] EBAY_APP_TOKEN not set — skipping eBay scrape")
		return nil, nil
	}

	s.logger.Info("[ebay] Starting scrape — %d keywords", len(keywords))

	var mu sync.Mutex
	var listings []*models.RawListing

	for _, kw := range keywords {
		keyword := kw
		s.pool.Submit(func() {
			batch, err := s.fetchKeyword(ctx, keyword)
			if err != nil {
				s.logger.Error("[ebay] Keyword %q failed: %v", keyword, err)
				return
			}
			mu.Lock()
			listings = append(listings, batch...)
			mu.Unlock()
		})
	}
	s.pool.Wait()

	s.logger.Info("[ebay] Scrape complete — total raw listings: %d", len(listings))
	return listings, nil
}

func (s *Scraper) fetchKeyword(ctx context.Context, keyword string) ([]*models.RawListing, error) {
	var results []*models.RawListing

	for page := 0; page < maxPages; page++ {
		var batch []*models.RawListing

		offset := page * pageSize
		err := s.retry.Do(ctx, fmt.Sprintf("ebay-%s-p%d", keyword, page), func() error {
			var fetchErr error
			batch, fetchErr = s.fetchPage(ctx, keyword, offset)
			return fetchErr
		})
		if err != nil {
			return results, fmt.Errorf("offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}

		results = append(results, batch...)
		if len(batch) < pageSize {
			break // Last page
		}
	}

	return results, nil
}

func (s *Scraper) fetchPage(ctx context.Context, keyword string, offset int) ([]*models.RawListing, error) {
	params := url.Values{}
	params.Set("q", keyword)
	params.Set("limit", strconv.Itoa(pageSize))
	params.Set("offset", strconv.Itoa(offset))

	reqURL := browseBaseURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-EBAY-C-MARKETPLACE-ID", "EBAY_US")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ebay returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp browseResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	now := time.Now().UTC()
	listings := make([]*models.RawListing, 0, len(apiResp.ItemSummaries))
	for _, item := range apiResp.ItemSummaries {
		if item.ItemWebURL == "" || !s.seen.Add(item.ItemWebURL) {
			continue
		}

		rawPrice := ""
		if item.Price.Value != "" {
			rawPrice = item.Price.Currency + " " + item.Price.Value
		}

		location := item.ItemLocation.City
		if item.ItemLocation.Country != "" {
			if location != "" {
				location += ", "
			}
			location += item.ItemLocation.Country
		}

		listings = append(listings, &models.RawListing{
			Title:       item.Title,
			Description: item.ShortDescription,
			RawPrice:    rawPrice,
			Location:    location,
			URL:         item.ItemWebURL,
			ImageURL:    item.Image.ImageURL,
			SearchTerm:  keyword,
			Platform:    platform,
			ScrapedAt:   now,
		})
	}

	return listings, nil
}
