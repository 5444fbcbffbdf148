package feed

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"stablevault/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticFeed(t *testing.T) {
	f := NewStatic()
	ctx := core.WithBlockTime(context.Background(), time.Unix(5000, 0))

	_, err := f.LatestQuote(ctx, "wstETH")
	assert.ErrorIs(t, err, core.ErrFeedUnavailable)

	f.SetPrice("wstETH", 2000_00000000)
	q, err := f.LatestQuote(ctx, "wstETH")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), q.UpdatedAt)
	assert.Equal(t, uint8(8), q.Decimals)
	assert.Equal(t, "200000000000", q.Answer.String())

	f.Set("wstETH", big.NewInt(-1), 10, 18)
	q, err = f.LatestQuote(ctx, "wstETH")
	require.NoError(t, err)
	assert.Equal(t, int64(10), q.UpdatedAt)
	assert.Equal(t, -1, q.Answer.Sign())
}

type countingFeed struct {
	calls int32
}

func (c *countingFeed) LatestQuote(_ context.Context, _ core.Asset) (*core.Quote, error) {
	atomic.AddInt32(&c.calls, 1)
	return &core.Quote{Answer: big.NewInt(1), UpdatedAt: 1, Decimals: 8}, nil
}

func TestCache(t *testing.T) {
	inner := &countingFeed{}
	f := Cache(inner, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := f.LatestQuote(context.Background(), "wstETH")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&inner.calls))
}

func TestHTTPFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wstETH":
			_, _ = w.Write([]byte(`{"answer":"2000000000000000000000","updated_at":1700000000,"decimals":18}`))
		case "/bad":
			_, _ = w.Write([]byte(`{"answer":"abc","updated_at":1700000000,"decimals":8}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewHTTP(srv.URL + "/")

	q, err := f.LatestQuote(context.Background(), "wstETH")
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000000", q.Answer.String())
	assert.Equal(t, uint8(18), q.Decimals)
	assert.Equal(t, int64(1700000000), q.UpdatedAt)

	_, err = f.LatestQuote(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrFeedUnavailable)

	_, err = f.LatestQuote(context.Background(), "bad")
	assert.ErrorIs(t, err, core.ErrInvalidPrice)
}
