package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AIClient talks to the external AI provider. All analysis is a single
// outbound JSON call; the provider is never reached from browsers directly.
type AIClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewAIClient(baseURL, apiKey string) *AIClient {
	return &AIClient{baseURL: baseURL, apiKey: apiKey, http: &http.Client{Timeout: 60 * time.Second}}
}

type aiRequest struct {
	Task       string `json:"task"`
	ImageKey   string `json:"image_key,omitempty"`
	CompareKey string `json:"compare_key,omitempty"`
	PageURL    string `json:"page_url,omitempty"`
	PageHTML   string `json:"page_html,omitempty"`
}

type aiResponse struct {
	Verdict string   `json:"verdict"`
	Items   []string `json:"items"`
	Error   string   `json:"error"`
}

func (c *AIClient) call(ctx context.Context, req aiRequest) (aiResponse, error) {
	body, _ := json.Marshal(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return aiResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return aiResponse{}, err
	}
	defer resp.Body.Close()
	var out aiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return aiResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != "" {
			return aiResponse{}, errors.New(out.Error)
		}
		return aiResponse{}, fmt.Errorf("ai provider status %d", resp.StatusCode)
	}
	return out, nil
}

// ExtractChangeRequests asks the provider to diff the selected image against
// the optional comparison and produce indexed change-request items.
func (c *AIClient) ExtractChangeRequests(ctx context.Context, imageKey, compareKey string) ([]string, error) {
	out, err := c.call(ctx, aiRequest{Task: "design_review", ImageKey: imageKey, CompareKey: compareKey})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// AnalyzeQA runs QA analysis over a fetched staged page.
func (c *AIClient) AnalyzeQA(ctx context.Context, pageURL, pageHTML string) (verdict string, findings []string, err error) {
	out, err := c.call(ctx, aiRequest{Task: "qa", PageURL: pageURL, PageHTML: pageHTML})
	if err != nil {
		return "", nil, err
	}
	if out.Verdict == "" {
		out.Verdict = "partial"
	}
	return out.Verdict, out.Items, nil
}
