package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Signer issues expiring signed download URLs for attachment storage keys,
// standing in for the managed-storage signed-URL API.
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer { return &Signer{secret: []byte(secret)} }

func (s *Signer) sign(key string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s:%d", key, exp)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// SignedURL returns a relative download URL valid for ttl.
func (s *Signer) SignedURL(storageKey string, ttl time.Duration) string {
	exp := time.Now().Add(ttl).Unix()
	return fmt.Sprintf("/api/files/%s?exp=%d&sig=%s", url.PathEscape(storageKey), exp, s.sign(storageKey, exp))
}

// Verify checks the signature and expiry carried in query params.
func (s *Signer) Verify(storageKey, expStr, sig string) bool {
	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return false
	}
	return hmac.Equal([]byte(s.sign(storageKey, exp)), []byte(sig))
}

const coverURLTTL = 15 * time.Minute

// CoverURLCache caches signed cover URLs so repeated aggregate loads within
// the TTL reuse the same URL. Cache expiry runs ahead of signature expiry.
type CoverURLCache struct {
	signer *Signer
	cache  *gocache.Cache
}

func NewCoverURLCache(signer *Signer) *CoverURLCache {
	return &CoverURLCache{
		signer: signer,
		cache:  gocache.New(coverURLTTL/2, coverURLTTL),
	}
}

func (c *CoverURLCache) Get(storageKey string) string {
	if storageKey == "" {
		return ""
	}
	if v, ok := c.cache.Get(storageKey); ok {
		return v.(string)
	}
	u := c.signer.SignedURL(storageKey, coverURLTTL)
	c.cache.Set(storageKey, u, gocache.DefaultExpiration)
	return u
}
