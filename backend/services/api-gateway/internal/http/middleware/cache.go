package middleware

import (
	"bytes"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"

	"xpointconnect/backend/libs/auth"
)

const cacheHeader = "X-Cache"

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

// ResponseCache keeps short-lived copies of anonymous GET responses.
type ResponseCache struct {
	store *cache.Cache
}

// NewResponseCache returns a cache whose entries live for ttl.
func NewResponseCache(ttl, cleanupInterval time.Duration) *ResponseCache {
	return &ResponseCache{store: cache.New(ttl, cleanupInterval)}
}

// Cached serves anonymous GETs from the cache and stores 200 responses. Authenticated
// requests bypass it because upstream answers may depend on the caller.
func (c *ResponseCache) Cached(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		if _, ok := auth.IdentityFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		key := r.URL.RequestURI()
		if hit, ok := c.store.Get(key); ok {
			resp := hit.(cachedResponse)
			w.Header().Set("Content-Type", resp.contentType)
			w.Header().Set(cacheHeader, "HIT")
			w.WriteHeader(resp.status)
			_, _ = w.Write(resp.body)
			return
		}

		rec := &capture{ResponseWriter: w}
		rec.Header().Set(cacheHeader, "MISS")
		next.ServeHTTP(rec, r)
		if rec.statusCode() == http.StatusOK {
			c.store.SetDefault(key, cachedResponse{
				status:      http.StatusOK,
				contentType: rec.Header().Get("Content-Type"),
				body:        rec.buf.Bytes(),
			})
		}
	})
}

// InvalidateOnWrite flushes the cache after a successful write passes through.
func (c *ResponseCache) InvalidateOnWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &capture{ResponseWriter: w, discard: true}
		next.ServeHTTP(rec, r)
		if r.Method != http.MethodGet && rec.statusCode() < http.StatusMultipleChoices {
			c.store.Flush()
		}
	})
}

// Len reports how many responses are cached.
func (c *ResponseCache) Len() int {
	return c.store.ItemCount()
}

// capture records the status and, unless discard is set, a copy of the body.
type capture struct {
	http.ResponseWriter
	status  int
	buf     bytes.Buffer
	discard bool
}

func (c *capture) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *capture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	if !c.discard {
		c.buf.Write(b)
	}
	return c.ResponseWriter.Write(b)
}

func (c *capture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
