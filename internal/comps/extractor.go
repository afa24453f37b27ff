package comps

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"auctionhub/pkg/utils"
)

// SearchQuery carries the form parameters the comp search backend expects.
// Zero values for the numeric fields are replaced with the backend's
// defaults by FetchHTML.
type SearchQuery struct {
	Query  string
	Type   int    // category type, backend default 2
	Subcat int    // subcategory, backend default -1
	TabID  int    // backend default 7
	TZ     string // e.g. "America/New_York"
	Sort   string // e.g. "urlEndTimeSoonest"
}

// FetchError is returned when every fetch attempt against the comp
// search backend failed. Cause holds the last underlying error.
type FetchError struct {
	Attempts int
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("comp search fetch failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *FetchError) Unwrap() error { return e.Cause }

// Extractor fetches search-result HTML from the third-party comp backend
// and parses it into CompRecords. The endpoint returns HTML fragments in
// response to a browser-shaped form POST.
type Extractor struct {
	Endpoint string
	Client   *http.Client
	Retry    utils.RetryConfig
}

func NewExtractor(endpoint string, timeout time.Duration, retries int) *Extractor {
	return &Extractor{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: timeout},
		Retry:    utils.RetryConfig{MaxAttempts: retries, BaseDelay: 1500 * time.Millisecond},
	}
}

// The backend checks Origin/Referer; these mirror what the site's own
// frontend sends.
func defaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":    "application/x-www-form-urlencoded; charset=UTF-8",
		"Origin":          "https://130point.com",
		"Referer":         "https://130point.com/",
		"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36",
		"Accept":          "*/*",
		"Accept-Language": "en-US,en;q=0.9",
	}
}

// FetchHTML posts the search form and returns the raw HTML body. Transport
// failures and non-2xx statuses are retried with exponential backoff;
// exhausting the budget yields a *FetchError carrying the last cause.
func (e *Extractor) FetchHTML(ctx context.Context, q SearchQuery) (string, error) {
	if q.Type == 0 {
		q.Type = 2
	}
	if q.Subcat == 0 {
		q.Subcat = -1
	}
	if q.TabID == 0 {
		q.TabID = 7
	}
	if q.TZ == "" {
		q.TZ = "America/New_York"
	}
	if q.Sort == "" {
		q.Sort = "urlEndTimeSoonest"
	}

	form := url.Values{
		"query":  {q.Query},
		"type":   {strconv.Itoa(q.Type)},
		"subcat": {strconv.Itoa(q.Subcat)},
		"tab_id": {strconv.Itoa(q.TabID)},
		"tz":     {q.TZ},
		"sort":   {q.Sort},
	}
	body := form.Encode()

	var html string
	err := e.Retry.Do(ctx, "comp search fetch", func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.Endpoint, strings.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		for k, v := range defaultHeaders() {
			req.Header.Set(k, v)
		}

		resp, err := e.Client.Do(req)
		if err != nil {
			return fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("status %d", resp.StatusCode)
		}

		html = string(raw)
		return nil
	})
	if err != nil {
		// a canceled context stops the retry loop early; that is the
		// caller's doing, not an exhausted attempt budget
		if ctx.Err() != nil {
			return "", err
		}
		return "", &FetchError{Attempts: e.Retry.MaxAttempts, Cause: err}
	}
	return html, nil
}
