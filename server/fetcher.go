package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// blockedHosts and blockedPrefixes keep QA fetches off internal targets.
var blockedHosts = map[string]bool{
	"localhost": true, "127.0.0.1": true, "0.0.0.0": true, "::1": true,
	"supabase.co": true, "supabase.com": true,
}

var blockedPrefixes = []string{
	"169.254.", "10.", "172.16.", "172.17.", "172.18.", "172.19.",
	"172.20.", "172.21.", "172.22.", "172.23.", "172.24.", "172.25.",
	"172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
	"192.168.",
}

var errBlockedHost = errors.New("blocked host")

// ValidateStagedURL rejects URLs pointing at blocked or private hosts.
func ValidateStagedURL(raw string) error {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return errors.New("invalid url")
	}
	host := strings.ToLower(u.Hostname())
	if blockedHosts[host] {
		return fmt.Errorf("%w: %s", errBlockedHost, host)
	}
	for _, p := range blockedPrefixes {
		if strings.HasPrefix(host, p) {
			return fmt.Errorf("%w: %s", errBlockedHost, host)
		}
	}
	for b := range blockedHosts {
		if strings.HasSuffix(host, "."+b) {
			return fmt.Errorf("%w: %s", errBlockedHost, host)
		}
	}
	return nil
}

// PageFetcher calls the scraping sidecar that renders staged pages for QA.
type PageFetcher struct {
	baseURL string
	http    *http.Client
}

func NewPageFetcher(baseURL string) *PageFetcher {
	return &PageFetcher{baseURL: strings.TrimRight(baseURL, "/"), http: &http.Client{Timeout: 60 * time.Second}}
}

type fetchResult struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Status  int    `json:"status"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Error   string `json:"error"`
}

// Fetch renders the staged page and returns its title and text content.
// The URL is validated against the blocked-host list before any request.
func (f *PageFetcher) Fetch(ctx context.Context, pageURL string) (title, content string, err error) {
	if err := ValidateStagedURL(pageURL); err != nil {
		return "", "", err
	}
	body, _ := json.Marshal(map[string]any{"url": pageURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/fetch", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.http.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	var out fetchResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", err
	}
	if !out.Success {
		if out.Error != "" {
			return "", "", errors.New(out.Error)
		}
		return "", "", fmt.Errorf("fetch failed with status %d", out.Status)
	}
	return out.Title, out.Content, nil
}
