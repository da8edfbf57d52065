package main

import (
	"context"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStagedURL(t *testing.T) {
	ok := []string{
		"https://staging.example.com/landing",
		"http://example.com",
		"example.com/no-scheme",
	}
	for _, u := range ok {
		assert.NoError(t, ValidateStagedURL(u), u)
	}

	blocked := []string{
		"http://localhost:8080/",
		"https://127.0.0.1/x",
		"https://0.0.0.0/",
		"https://10.1.2.3/internal",
		"https://172.18.0.5/",
		"https://192.168.1.1/router",
		"https://169.254.169.254/latest/meta-data",
		"https://supabase.co/dashboard",
		"https://myproject.supabase.co/rest/v1",
		"https://supabase.com/",
	}
	for _, u := range blocked {
		err := ValidateStagedURL(u)
		require.Error(t, err, u)
		assert.ErrorIs(t, err, errBlockedHost, u)
	}

	assert.Error(t, ValidateStagedURL(""))
}

func TestPageFetcher(t *testing.T) {
	f := NewPageFetcher("http://fetcher.local")
	httpmock.ActivateNonDefault(f.http)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://fetcher.local/fetch",
		httpmock.NewJsonResponderOrPanic(200, fetchResult{
			Success: true, URL: "https://staging.example.com/p",
			Status: 200, Title: "Landing", Content: "<h1>hi</h1>",
		}))

	title, content, err := f.Fetch(context.Background(), "https://staging.example.com/p")
	require.NoError(t, err)
	assert.Equal(t, "Landing", title)
	assert.Equal(t, "<h1>hi</h1>", content)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestPageFetcherFailure(t *testing.T) {
	f := NewPageFetcher("http://fetcher.local")
	httpmock.ActivateNonDefault(f.http)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://fetcher.local/fetch",
		httpmock.NewJsonResponderOrPanic(200, fetchResult{Success: false, Error: "timeout rendering page"}))

	_, _, err := f.Fetch(context.Background(), "https://staging.example.com/p")
	assert.EqualError(t, err, "timeout rendering page")
}

func TestPageFetcherBlocksBeforeRequest(t *testing.T) {
	f := NewPageFetcher("http://fetcher.local")
	httpmock.ActivateNonDefault(f.http)
	defer httpmock.DeactivateAndReset()

	_, _, err := f.Fetch(context.Background(), "http://localhost:9000/admin")
	assert.ErrorIs(t, err, errBlockedHost)
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "blocked URLs never reach the sidecar")
}
