package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/webeat/weve/internal/model"
)

// IdempotencyHeader names the client-chosen retry key
const IdempotencyHeader = "Idempotency-Key"

// maxIdempotentBody bounds the request bodies the middleware will buffer.
// Larger bodies (photo uploads) bypass it.
const maxIdempotentBody = 1 << 20

// IdempotencyStore remembers the responses to keyed POST requests so a
// client retrying after a dropped connection gets the original result
// instead of a second invite, expense or checkout session.
type IdempotencyStore struct {
	mu       sync.Mutex
	entries  map[string]*replay
	flights  singleflight.Group
	ttl      time.Duration
	cleanup  time.Duration
	stopOnce sync.Once
	stopChan chan struct{}
}

// replay is a captured response plus the fingerprint of the request
// that produced it
type replay struct {
	fingerprint string
	status      int
	header      http.Header
	body        []byte
	expiresAt   time.Time
}

// IdempotencyConfig holds configuration for idempotency middleware
type IdempotencyConfig struct {
	TTL     time.Duration // How long to keep responses (default 24h)
	Cleanup time.Duration // Cleanup interval (default 1h)
}

// NewIdempotencyStore creates a store and starts its cleanup loop
func NewIdempotencyStore(cfg IdempotencyConfig) *IdempotencyStore {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = time.Hour
	}

	s := &IdempotencyStore{
		entries:  make(map[string]*replay),
		ttl:      cfg.TTL,
		cleanup:  cfg.Cleanup,
		stopChan: make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Stop stops the cleanup goroutine. It is safe to call more than once.
func (s *IdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

func (s *IdempotencyStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanup)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.evictExpired(now)
		case <-s.stopChan:
			return
		}
	}
}

func (s *IdempotencyStore) evictExpired(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, r := range s.entries {
		if !now.Before(r.expiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *IdempotencyStore) lookup(key string, now time.Time) *replay {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.entries[key]
	if !ok || !now.Before(r.expiresAt) {
		return nil
	}
	return r
}

func (s *IdempotencyStore) remember(key string, r *replay) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = r
}

// Len reports how many responses are held
func (s *IdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// fingerprint identifies the request a key was first used for. The query
// and the mode header take part because they choose the couple mode a row
// is created in.
func fingerprint(r *http.Request, body []byte) string {
	h := sha256.New()
	for _, part := range []string{r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get(ModeHeader)} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// Idempotency replays stored responses for POST requests carrying an
// Idempotency-Key. Keys are per user, so it must run after Auth.
// Concurrent duplicates wait for the first request and share its result.
// Server errors and rate-limit rejections are not stored so the client
// can retry them.
func Idempotency(store *IdempotencyStore) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			idemKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if r.Method != http.MethodPost || idemKey == "" ||
				strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") ||
				r.ContentLength > maxIdempotentBody {
				next.ServeHTTP(w, r)
				return
			}

			userID := GetUserID(r.Context())
			if userID == "" {
				userID = clientIP(r)
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxIdempotentBody+1))
			if err != nil {
				model.NewBadRequestError("failed to read request body").WriteJSON(w)
				return
			}
			if len(body) > maxIdempotentBody {
				model.NewBadRequestError("request body too large for an idempotent request").WriteJSON(w)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			key := userID + "\x00" + idemKey
			fp := fingerprint(r, body)

			if prev := store.lookup(key, time.Now()); prev != nil {
				if prev.fingerprint != fp {
					model.NewConflictError("Idempotency-Key was already used for a different request").WriteJSON(w)
					return
				}
				prev.writeTo(w, true)
				return
			}

			executed := false
			v, _, _ := store.flights.Do(key+"\x00"+fp, func() (interface{}, error) {
				executed = true
				rec := newBufferedResponse()
				next.ServeHTTP(rec, r)

				out := &replay{
					fingerprint: fp,
					status:      rec.status,
					header:      rec.header.Clone(),
					body:        rec.body.Bytes(),
					expiresAt:   time.Now().Add(store.ttl),
				}
				if out.status < http.StatusInternalServerError && out.status != http.StatusTooManyRequests {
					store.remember(key, out)
				}
				return out, nil
			})
			v.(*replay).writeTo(w, !executed)
		})
	}
}

func (rp *replay) writeTo(w http.ResponseWriter, replayed bool) {
	for k, vals := range rp.header {
		for _, val := range vals {
			w.Header().Add(k, val)
		}
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}
	w.WriteHeader(rp.status)
	_, _ = w.Write(rp.body)
}

// bufferedResponse holds a handler's response until it can be shared
// with every waiting duplicate
type bufferedResponse struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newBufferedResponse() *bufferedResponse {
	return &bufferedResponse{header: make(http.Header), status: http.StatusOK}
}

func (b *bufferedResponse) Header() http.Header { return b.header }

func (b *bufferedResponse) WriteHeader(code int) {
	if b.wroteHeader {
		return
	}
	b.status = code
	b.wroteHeader = true
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	b.wroteHeader = true
	return b.body.Write(p)
}
