package main

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSignedURL(t *testing.T, raw string) (key, exp, sig string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	key = strings.TrimPrefix(u.Path, "/api/files/")
	q := u.Query()
	return key, q.Get("exp"), q.Get("sig")
}

func TestSignerRoundTrip(t *testing.T) {
	s := NewSigner("secret")
	raw := s.SignedURL("covers/abc.png", time.Minute)

	key, exp, sig := parseSignedURL(t, raw)
	assert.Equal(t, "covers/abc.png", key)
	assert.True(t, s.Verify("covers/abc.png", exp, sig))
}

func TestSignerRejectsTampering(t *testing.T) {
	s := NewSigner("secret")
	_, exp, sig := parseSignedURL(t, s.SignedURL("a.png", time.Minute))

	assert.False(t, s.Verify("b.png", exp, sig), "different key")
	assert.False(t, s.Verify("a.png", exp, sig+"x"), "mangled signature")
	assert.False(t, s.Verify("a.png", "9999999999", sig), "forged expiry")
	assert.False(t, NewSigner("other").Verify("a.png", exp, sig), "different secret")
}

func TestSignerRejectsExpired(t *testing.T) {
	s := NewSigner("secret")
	_, exp, sig := parseSignedURL(t, s.SignedURL("a.png", -time.Minute))
	assert.False(t, s.Verify("a.png", exp, sig))
}

func TestCoverURLCacheReusesWithinTTL(t *testing.T) {
	c := NewCoverURLCache(NewSigner("secret"))

	u1 := c.Get("covers/x.png")
	u2 := c.Get("covers/x.png")
	assert.Equal(t, u1, u2, "same key within TTL returns the cached URL")
	assert.NotEmpty(t, u1)

	assert.NotEqual(t, u1, c.Get("covers/y.png"))
	assert.Empty(t, c.Get(""))
}
