package main

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// smartLinkRe matches the <url|label> wrapper the import source left in
// older comment bodies; the wrapper is stripped before link detection.
var smartLinkRe = regexp.MustCompile(`<(https?://[^|>\s]+)(?:\|[^>]*)?>`)

// urlRe is the single regex used for link detection.
var urlRe = regexp.MustCompile(`https?://[^\s<>"')\]]+`)

const shortPathMax = 15

// LinkSegment is one run of rendered comment text. Href is empty for plain
// text; for links it always carries the original, untruncated URL.
type LinkSegment struct {
	Text string `json:"text"`
	Href string `json:"href,omitempty"`
}

// StripSmartLinks unwraps <url|label> wrappers down to the bare URL.
func StripSmartLinks(body string) string {
	return smartLinkRe.ReplaceAllString(body, "$1")
}

// RenderCommentBody splits a comment body into text and link segments.
// Links display as host plus a truncated path unless fullLinks is set; the
// href keeps the original URL either way.
func RenderCommentBody(body string, fullLinks bool) []LinkSegment {
	body = StripSmartLinks(body)
	var segs []LinkSegment
	last := 0
	for _, m := range urlRe.FindAllStringIndex(body, -1) {
		if m[0] > last {
			segs = append(segs, LinkSegment{Text: body[last:m[0]]})
		}
		raw := body[m[0]:m[1]]
		text := raw
		if !fullLinks {
			text = ShortenURL(raw)
		}
		segs = append(segs, LinkSegment{Text: text, Href: raw})
		last = m[1]
	}
	if last < len(body) {
		segs = append(segs, LinkSegment{Text: body[last:]})
	}
	return segs
}

// ShortenURL renders a URL as host plus a truncated path for display.
func ShortenURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	path := u.Path
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	if path == "/" {
		path = ""
	}
	if len(path) > shortPathMax {
		// truncate on a rune boundary so multi-byte paths stay valid UTF-8
		cut := shortPathMax
		for cut > 0 && !utf8.RuneStart(path[cut]) {
			cut--
		}
		path = path[:cut] + "…"
	}
	return strings.TrimPrefix(u.Host, "www.") + path
}
