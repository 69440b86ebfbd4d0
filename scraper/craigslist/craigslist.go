// Package craigslist scrapes marketplace listings from Craigslist search
// results using a headless browser.
package craigslist

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"

	"wildguard/models"
	"wildguard/utils"
)

const (
	searchBaseURL   = "https://www.craigslist.org/search/sss"
	platform        = "craigslist"
	maxPerKeyword   = 40
	pageLoadTimeout = 90 * time.Second
)

// Scraper drives the Craigslist scraping process through chromedp.
type Scraper struct {
	chromeBin string
	logger    *utils.Logger
	pool      *utils.WorkerPool
	seen      *utils.URLSet
	retry     *utils.RetryConfig

	mu       sync.Mutex
	listings []*models.RawListing
}

// New creates a ready-to-use Craigslist Scraper. chromeBin may be empty,
// in which case the browser binary is auto-detected.
func New(chromeBin string, maxConcurrency, rateLimitMs, maxRetries int, logger *utils.Logger) *Scraper {
	return &Scraper{
		chromeBin: chromeBin,
		logger:    logger,
		pool:      utils.NewWorkerPool(maxConcurrency, rateLimitMs),
		seen:      utils.NewURLSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: maxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		listings: make([]*models.RawListing, 0),
	}
}

// Platform returns the marketplace identifier.
func (s *Scraper) Platform() string { return platform }

// Fetch runs one search per keyword and returns the merged, URL-deduped
// listings.
func (s *Scraper) Fetch(ctx context.Context, keywords []string) ([]*models.RawListing, error) {
	s.logger.Info("[craigslist] Starting scrape — %d keywords", len(keywords))

	chromeBin := s.chromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	if chromeBin == "" {
		s.logger.Warn("[craigslist] No Chrome/Chromium binary found — skipping craigslist scrape")
		return nil, nil
	}
	s.logger.Info("[craigslist] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.ExecPath(chromeBin),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	silentCtx, cancelSilent := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelSilent()
	allocCtx = silentCtx

	for _, kw := range keywords {
		keyword := kw
		s.pool.Submit(func() {
			batch, err := s.scrapeKeyword(allocCtx, keyword)
			if err != nil {
				s.logger.Error("[craigslist] Keyword %q failed: %v", keyword, err)
				return
			}
			s.mu.Lock()
			s.listings = append(s.listings, batch...)
			s.mu.Unlock()
		})
	}
	s.pool.Wait()

	s.logger.Info("[craigslist] Scrape complete — total raw listings: %d", len(s.listings))
	return s.listings, nil
}

// scrapeKeyword loads the search results page for one keyword and extracts
// listing cards.
func (s *Scraper) scrapeKeyword(allocCtx context.Context, keyword string) ([]*models.RawListing, error) {
	searchURL := searchBaseURL + "?query=" + url.QueryEscape(keyword)

	type cardData struct {
		Title    string `json:"title"`
		Price    string `json:"price"`
		Location string `json:"location"`
		URL      string `json:"url"`
		ImageURL string `json:"imageUrl"`
	}

	var cards []cardData

	err := s.retry.Do(allocCtx, "craigslist-"+keyword, func() error {
		ctx, cancel := chromedp.NewContext(allocCtx)
		defer cancel()

		ctx, cancelTimeout := context.WithTimeout(ctx, pageLoadTimeout)
		defer cancelTimeout()

		cards = nil

		err := chromedp.Run(ctx,
			chromedp.Navigate(searchURL),
			chromedp.Sleep(5*time.Second),

			// Scroll to trigger lazy-loaded result cards
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(2*time.Second),

			chromedp.Evaluate(`
				(function() {
					var results = [];
					var limit = `+fmt.Sprintf("%d", maxPerKeyword)+`;

					// Current markup first, legacy markup as fallback
					var cardSelectors = [
						'li.cl-search-result',
						'div.cl-search-result',
						'li.result-row'
					];

					var cards = [];
					for (var si = 0; si < cardSelectors.length; si++) {
						cards = document.querySelectorAll(cardSelectors[si]);
						if (cards.length > 0) break;
					}

					for (var i = 0; i < cards.length && results.length < limit; i++) {
						var card = cards[i];

						var linkEl = card.querySelector('a.cl-app-anchor') ||
						             card.querySelector('a.posting-title') ||
						             card.querySelector('a.result-title') ||
						             card.querySelector('a[href*=".html"]');
						if (!linkEl || !linkEl.href) continue;

						var titleEl = card.querySelector('.label') ||
						              card.querySelector('span.titlestring') ||
						              linkEl;
						var priceEl = card.querySelector('.priceinfo') ||
						              card.querySelector('span.price') ||
						              card.querySelector('.result-price');
						var locEl = card.querySelector('.location') ||
						            card.querySelector('.meta .separator + span') ||
						            card.querySelector('.result-hood');
						var imgEl = card.querySelector('img');

						results.push({
							title:    titleEl ? titleEl.innerText.trim() : '',
							price:    priceEl ? priceEl.innerText.trim() : '',
							location: locEl ? locEl.innerText.trim().replace(/[()]/g, '') : '',
							url:      linkEl.href,
							imageUrl: imgEl && imgEl.src ? imgEl.src : ''
						});
					}

					return results;
				})()
			`, &cards),
		)
		if err != nil {
			return fmt.Errorf("chromedp evaluate: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listings := make([]*models.RawListing, 0, len(cards))
	for _, card := range cards {
		if card.URL == "" || !s.seen.Add(card.URL) {
			continue
		}

		listing := &models.RawListing{
			Title:      card.Title,
			RawPrice:   card.Price,
			Location:   card.Location,
			URL:        card.URL,
			ImageURL:   card.ImageURL,
			SearchTerm: keyword,
			Platform:   platform,
			ScrapedAt:  now,
		}

		// Search cards carry no body text; fetch it from the posting page.
		if desc, err := s.fetchDescription(allocCtx, card.URL); err == nil {
			listing.Description = desc
		} else {
			s.logger.Debug("[craigslist] Detail fetch failed for %s: %v", card.URL, err)
		}

		listings = append(listings, listing)
	}

	s.logger.Info("[craigslist] Keyword %q — %d listings", keyword, len(listings))
	return listings, nil
}

// fetchDescription loads a posting page and extracts the posting body.
func (s *Scraper) fetchDescription(allocCtx context.Context, postingURL string) (string, error) {
	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	ctx, cancelTimeout := context.WithTimeout(ctx, 45*time.Second)
	defer cancelTimeout()

	var description string

	err := chromedp.Run(ctx,
		chromedp.Navigate(postingURL),
		chromedp.Sleep(3*time.Second),
		chromedp.Evaluate(`
			(function() {
				var body = document.querySelector('#postingbody');
				if (!body) return '';
				var text = body.innerText || '';
				return text.replace('QR Code Link to This Post', '').trim().substring(0, 500);
			})()
		`, &description),
	)
	if err != nil {
		return "", fmt.Errorf("chromedp detail extract: %w", err)
	}

	return strings.TrimSpace(description), nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
