package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.adzuna.com/v1/api"

// Listing is one job-search result, already flattened for the assistant.
type Listing struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	SalaryMin   float64 `json:"salary_min,omitempty"`
	SalaryMax   float64 `json:"salary_max,omitempty"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Posted      string  `json:"posted,omitempty"`
}

// Client queries the Adzuna job-search API.
type Client struct {
	appID   string
	appKey  string
	baseURL string
	http    *resty.Client
}

func NewClient(appID, appKey string) *Client {
	return &Client{
		appID:   appID,
		appKey:  appKey,
		baseURL: defaultBaseURL,
		http:    resty.New().SetTimeout(15 * time.Second),
	}
}

// NewClientWithBaseURL points the client at a different host, used by tests.
func NewClientWithBaseURL(appID, appKey, baseURL string) *Client {
	c := NewClient(appID, appKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) Configured() bool {
	return c.appID != "" && c.appKey != ""
}

// Search returns up to 8 listings for the query. The country segment is
// inferred from the location the same way the chat assistant phrases it.
func (c *Client) Search(ctx context.Context, query, location string) ([]Listing, error) {
	country := "gb"
	if strings.Contains(strings.ToLower(location), "india") {
		country = "in"
	}

	req := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"app_id":           c.appID,
			"app_key":          c.appKey,
			"results_per_page": "8",
			"what":             query,
		})
	if location != "" {
		req.SetQueryParam("where", location)
	}

	resp, err := req.Get(fmt.Sprintf("%s/jobs/%s/search/1", c.baseURL, country))
	if err != nil {
		return nil, fmt.Errorf("job search request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("job search returned status %d", resp.StatusCode())
	}

	results := gjson.GetBytes(resp.Body(), "results").Array()
	listings := make([]Listing, 0, len(results))
	for _, job := range results {
		listings = append(listings, Listing{
			ID:          job.Get("id").String(),
			Title:       job.Get("title").String(),
			Company:     firstOr(job.Get("company.display_name").String(), "Unknown"),
			Location:    job.Get("location.display_name").String(),
			SalaryMin:   job.Get("salary_min").Float(),
			SalaryMax:   job.Get("salary_max").Float(),
			Description: job.Get("description").String(),
			URL:         job.Get("redirect_url").String(),
			Posted:      job.Get("created").String(),
		})
	}
	return listings, nil
}

func firstOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
