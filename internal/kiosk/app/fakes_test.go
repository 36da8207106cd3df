package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/cafekiosk/internal/kiosk/adapters/sqlite"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/core/ports"
	"github.com/jcmexdev/cafekiosk/internal/kiosk/domain"
)

func setupTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func saveProduct(t *testing.T, store *sqlite.Store, number string, typ domain.ProductType, status domain.ProductSellingStatus, name string, price int) domain.Product {
	t.Helper()
	p, err := domain.NewProduct(number, typ, status, name, price)
	require.NoError(t, err)
	require.NoError(t, store.Products().Save(context.Background(), p))
	return *p
}

type sentMail struct {
	From, To, Subject, Content string
}

// fakeMailClient records every call in order.
type fakeMailClient struct {
	accept bool
	sent   []sentMail
	calls  []string
}

func (f *fakeMailClient) SendMail(_ context.Context, from, to, subject, content string) bool {
	f.calls = append(f.calls, "send")
	f.sent = append(f.sent, sentMail{from, to, subject, content})
	return f.accept
}

func (f *fakeMailClient) A(context.Context) { f.calls = append(f.calls, "a") }
func (f *fakeMailClient) B(context.Context) { f.calls = append(f.calls, "b") }

type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	failGet bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}}
}

func cacheString(value any) string {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return fmt.Sprint(value)
}

func (c *fakeCache) Set(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = cacheString(value)
	return nil
}

func (c *fakeCache) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.values[key]; ok {
		return false, nil
	}
	c.values[key] = cacheString(value)
	return true, nil
}

func (c *fakeCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	if v := c.values[key]; v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, err
		}
		n = parsed
	}
	n++
	c.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return "", errors.New("cache down")
	}
	return c.values[key], nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *fakeCache) GenerateKey(operation, key string) string {
	return "test:" + operation + ":" + key
}

func (c *fakeCache) Close() error { return nil }

type fakePublisher struct {
	published []string
	err       error
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, order *domain.Order) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, order.ID)
	return nil
}

// failingTxStore reads through to the wrapped store but fails every
// transaction.
type failingTxStore struct {
	ports.Store
	err error
}

func (s failingTxStore) WithinTx(context.Context, func(ports.Repositories) error) error {
	return s.err
}
