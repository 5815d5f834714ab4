package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adzunaFixture = `{
	"results": [
		{
			"id": "5012",
			"title": "Barista",
			"company": {"display_name": "Beanhouse"},
			"location": {"display_name": "Manchester"},
			"salary_min": 21000,
			"salary_max": 24000,
			"description": "Pull shots, steam milk.",
			"redirect_url": "https://adzuna.example/5012",
			"created": "2026-08-20T09:00:00Z"
		},
		{
			"id": "5013",
			"title": "Head Barista",
			"location": {"display_name": "Leeds"},
			"description": "Run the bar.",
			"redirect_url": "https://adzuna.example/5013"
		}
	]
}`

func TestConfigured(t *testing.T) {
	assert.False(t, NewClient("", "").Configured())
	assert.False(t, NewClient("id", "").Configured())
	assert.True(t, NewClient("id", "key").Configured())
}

func TestSearch_ParsesResults(t *testing.T) {
	var gotPath string
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(adzunaFixture))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("my-id", "my-key", server.URL)
	listings, err := client.Search(context.Background(), "barista", "Manchester")

	require.NoError(t, err)
	assert.Equal(t, "/jobs/gb/search/1", gotPath)
	assert.Equal(t, "my-id", gotQuery["app_id"][0])
	assert.Equal(t, "barista", gotQuery["what"][0])
	assert.Equal(t, "Manchester", gotQuery["where"][0])
	assert.Equal(t, "8", gotQuery["results_per_page"][0])

	require.Len(t, listings, 2)
	assert.Equal(t, "Barista", listings[0].Title)
	assert.Equal(t, "Beanhouse", listings[0].Company)
	assert.Equal(t, 21000.0, listings[0].SalaryMin)
	assert.Equal(t, "https://adzuna.example/5012", listings[0].URL)
	assert.Equal(t, "Unknown", listings[1].Company, "missing company gets a placeholder")
}

func TestSearch_CountryInferredFromLocation(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("id", "key", server.URL)
	_, err := client.Search(context.Background(), "nurse", "Mumbai, India")

	require.NoError(t, err)
	assert.Equal(t, "/jobs/in/search/1", gotPath)
}

func TestSearch_EmptyLocationOmitsWhere(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results": []}`))
	}))
	defer server.Close()

	client := NewClientWithBaseURL("id", "key", server.URL)
	listings, err := client.Search(context.Background(), "driver", "")

	require.NoError(t, err)
	assert.Empty(t, listings)
	_, hasWhere := gotQuery["where"]
	assert.False(t, hasWhere)
}

func TestSearch_HTTPErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClientWithBaseURL("bad-id", "bad-key", server.URL)
	_, err := client.Search(context.Background(), "barista", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
