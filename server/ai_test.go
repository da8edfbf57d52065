package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractChangeRequests(t *testing.T) {
	c := NewAIClient("http://ai.local/analyze", "test-key")
	httpmock.ActivateNonDefault(c.http)
	defer httpmock.DeactivateAndReset()

	var got aiRequest
	httpmock.RegisterResponder("POST", "http://ai.local/analyze",
		func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(req.Body).Decode(&got))
			return httpmock.NewJsonResponse(200, aiResponse{Items: []string{"move CTA up", "fix kerning"}})
		})

	items, err := c.ExtractChangeRequests(context.Background(), "img-a", "img-b")
	require.NoError(t, err)
	assert.Equal(t, []string{"move CTA up", "fix kerning"}, items)
	assert.Equal(t, aiRequest{Task: "design_review", ImageKey: "img-a", CompareKey: "img-b"}, got)
}

func TestAnalyzeQA(t *testing.T) {
	c := NewAIClient("http://ai.local/analyze", "")
	httpmock.ActivateNonDefault(c.http)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://ai.local/analyze",
		httpmock.NewJsonResponderOrPanic(200, aiResponse{Verdict: "fail", Items: []string{"broken form"}}))

	verdict, findings, err := c.AnalyzeQA(context.Background(), "https://staging.example.com", "<html/>")
	require.NoError(t, err)
	assert.Equal(t, "fail", verdict)
	assert.Equal(t, []string{"broken form"}, findings)
}

func TestAnalyzeQADefaultsVerdict(t *testing.T) {
	c := NewAIClient("http://ai.local/analyze", "")
	httpmock.ActivateNonDefault(c.http)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://ai.local/analyze",
		httpmock.NewJsonResponderOrPanic(200, aiResponse{Items: []string{"one finding"}}))

	verdict, _, err := c.AnalyzeQA(context.Background(), "https://staging.example.com", "")
	require.NoError(t, err)
	assert.Equal(t, "partial", verdict)
}

func TestAIClientProviderError(t *testing.T) {
	c := NewAIClient("http://ai.local/analyze", "")
	httpmock.ActivateNonDefault(c.http)
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("POST", "http://ai.local/analyze",
		httpmock.NewJsonResponderOrPanic(429, aiResponse{Error: "rate limited"}))

	_, err := c.ExtractChangeRequests(context.Background(), "img-a", "")
	assert.EqualError(t, err, "rate limited")

	httpmock.RegisterResponder("POST", "http://ai.local/analyze",
		httpmock.NewJsonResponderOrPanic(500, aiResponse{}))
	_, err = c.ExtractChangeRequests(context.Background(), "img-a", "")
	assert.EqualError(t, err, "ai provider status 500")
}
