package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// memoryRedis is an in-memory RedisClient for tests
type memoryRedis struct {
	mu   sync.Mutex
	data map[string]string

	failing bool
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{data: make(map[string]string)}
}

func (m *memoryRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return redis.NewStringResult("", context.DeadlineExceeded)
	}
	val, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(val, nil)
}

func (m *memoryRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return redis.NewStatusResult("", context.DeadlineExceeded)
	}
	m.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryRedis) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return redis.NewBoolResult(false, context.DeadlineExceeded)
	}
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = value.(string)
	return redis.NewBoolResult(true, nil)
}

var _ RedisClient = (*memoryRedis)(nil)

func idempotencyTestRouter(store RedisClient, handled *int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/reserve", Idempotency(DefaultIdempotencyConfig(store)), func(c *gin.Context) {
		if handled != nil {
			*handled++
		}
		c.JSON(http.StatusCreated, gin.H{"booking_id": "booking-001"})
	})
	return r
}

func postReserve(router *gin.Engine, key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reserve", bytes.NewBufferString(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_MissingKeyRejected(t *testing.T) {
	router := idempotencyTestRouter(newMemoryRedis(), nil)

	w := postReserve(router, "", `{"slot_id":"slot-001"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestIdempotency_ReplaySameRequest(t *testing.T) {
	handled := 0
	router := idempotencyTestRouter(newMemoryRedis(), &handled)
	body := `{"slot_id":"slot-001"}`

	first := postReserve(router, "key-1", body)
	if first.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want %d", first.Code, http.StatusCreated)
	}

	second := postReserve(router, "key-1", body)
	if second.Code != http.StatusCreated {
		t.Errorf("replay status = %d, want %d", second.Code, http.StatusCreated)
	}
	if second.Body.String() != first.Body.String() {
		t.Errorf("replay body = %s, want cached %s", second.Body.String(), first.Body.String())
	}
	if handled != 1 {
		t.Errorf("handler ran %d times, want 1", handled)
	}
}

func TestIdempotency_SameKeyDifferentBody(t *testing.T) {
	router := idempotencyTestRouter(newMemoryRedis(), nil)

	if w := postReserve(router, "key-1", `{"slot_id":"slot-001"}`); w.Code != http.StatusCreated {
		t.Fatalf("first status = %d, want %d", w.Code, http.StatusCreated)
	}

	w := postReserve(router, "key-1", `{"slot_id":"slot-999"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := newMemoryRedis()
	router := idempotencyTestRouter(store, nil)
	body := `{"slot_id":"slot-001"}`

	// Seed a processing record as if a first request were still in flight.
	req := httptest.NewRequest(http.MethodPost, "/reserve", bytes.NewBufferString(body))
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	record := &IdempotencyRecord{
		Key:         "key-1",
		Status:      StatusProcessing,
		RequestHash: requestHash(c, []byte(body)),
		CreatedAt:   time.Now(),
	}
	saveRecord(context.Background(), store, idempotencyKeyPrefix+"key-1", record, time.Minute)

	w := postReserve(router, "key-1", body)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d", w.Code, http.StatusConflict)
	}
}

func TestIdempotency_RedisDownFailsOpen(t *testing.T) {
	store := newMemoryRedis()
	store.failing = true
	handled := 0
	router := idempotencyTestRouter(store, &handled)

	w := postReserve(router, "key-1", `{"slot_id":"slot-001"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d (fail open)", w.Code, http.StatusCreated)
	}
	if handled != 1 {
		t.Errorf("handler ran %d times, want 1", handled)
	}
}
