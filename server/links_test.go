package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShortenURL(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://example.com/", "example.com"},
		{"https://www.example.com/", "example.com"},
		{"https://example.com/a/b", "example.com/a/b"},
		{"https://example.com/really/long/path/segment/here", "example.com/really/long/pa…"},
		{"https://example.com/p?x=1", "example.com/p?x=1"},
		{"not a url", "not a url"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ShortenURL(tc.in), "input %q", tc.in)
	}
}

func TestShortenURLMultibytePath(t *testing.T) {
	// the cut must land on a rune boundary, not mid-character
	got := ShortenURL("https://example.com/дизайн-макеты")
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "example.com/дизайн-…", got)
}

func TestStripSmartLinks(t *testing.T) {
	assert.Equal(t, "see https://example.com/x please",
		StripSmartLinks("see <https://example.com/x|example> please"))
	assert.Equal(t, "see https://example.com/x please",
		StripSmartLinks("see <https://example.com/x> please"))
	assert.Equal(t, "no links here", StripSmartLinks("no links here"))
}

func TestRenderCommentBody(t *testing.T) {
	segs := RenderCommentBody("check https://www.example.com/some/very/long/path?q=1 out", false)
	require.Len(t, segs, 3)
	assert.Equal(t, LinkSegment{Text: "check "}, segs[0])
	assert.Equal(t, "https://www.example.com/some/very/long/path?q=1", segs[1].Href)
	assert.True(t, strings.HasPrefix(segs[1].Text, "example.com/"))
	assert.True(t, strings.HasSuffix(segs[1].Text, "…"))
	assert.Equal(t, LinkSegment{Text: " out"}, segs[2])
}

func TestRenderCommentBodyFullLinks(t *testing.T) {
	raw := "https://example.com/some/very/long/path"
	segs := RenderCommentBody(raw, true)
	require.Len(t, segs, 1)
	assert.Equal(t, raw, segs[0].Text)
	assert.Equal(t, raw, segs[0].Href)
}

// The href always carries the original URL even when the display text is
// truncated, so copying a link never loses information.
func TestRenderCommentBodyHrefRoundTrip(t *testing.T) {
	bodies := []string{
		"plain text only",
		"one https://a.example.com/first and two https://b.example.com/second/deeper/path done",
		"<https://wrapped.example.com/path|label> trailing",
		"edge https://example.com/trailing",
	}
	for _, body := range bodies {
		for _, full := range []bool{false, true} {
			segs := RenderCommentBody(body, full)
			var rebuilt strings.Builder
			for _, s := range segs {
				if s.Href != "" {
					rebuilt.WriteString(s.Href)
				} else {
					rebuilt.WriteString(s.Text)
				}
			}
			assert.Equal(t, StripSmartLinks(body), rebuilt.String(), "body %q full=%v", body, full)
		}
	}
}
