package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	idempotencyTTL    = 24 * time.Hour
)

// IdempotencyStore keeps responses for replay. Get returns nil on a miss.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// storedResponse is what a replay writes back.
type storedResponse struct {
	Status      int             `json:"status"`
	ContentType string          `json:"content_type,omitempty"`
	Body        json.RawMessage `json:"body"`
}

// captureWriter tees the response body into buf.
type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST repeats an
// Idempotency-Key, so a retried ride request does not create a second ride.
// Keys are scoped to the authenticated subject and route; it must run after
// Authenticate. A store outage lets the request through unprotected.
func IdempotencyMiddleware(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := idempotencyKey(Subject(c), c.FullPath(), key)

		prev, err := loadResponse(ctx, store, storeKey)
		if err != nil {
			c.Next()
			return
		}
		if prev != nil {
			c.Header(replayedHeader, "true")
			c.Data(prev.Status, prev.ContentType, prev.Body)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// 5xx is left unrecorded so the client can retry.
		if status := w.Status(); status < http.StatusInternalServerError {
			_ = saveResponse(ctx, store, storeKey, storedResponse{
				Status:      status,
				ContentType: w.Header().Get("Content-Type"),
				Body:        w.buf.Bytes(),
			})
		}
	}
}

func idempotencyKey(subject, route, key string) string {
	return "idempotency:" + subject + ":" + route + ":" + key
}

func loadResponse(ctx context.Context, store IdempotencyStore, key string) (*storedResponse, error) {
	data, err := store.Get(ctx, key)
	if err != nil || data == nil {
		return nil, err
	}

	var resp storedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func saveResponse(ctx context.Context, store IdempotencyStore, key string, resp storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return store.Set(ctx, key, data, idempotencyTTL)
}
