package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/semsearch/model"
)

type countingProvider struct {
	key   string
	calls atomic.Int64
	delay time.Duration
	fail  int64
}

func (p *countingProvider) Key() string { return p.key }

func (p *countingProvider) computeResult(context.Context, *ExecutionContext) (*Result, error) {
	n := p.calls.Add(1)
	time.Sleep(p.delay)
	if n <= p.fail {
		return nil, errors.New("boom")
	}
	r := newResult()
	r.Entities = model.EntityList{{Id: model.Id(n), Score: 1}}
	return r, nil
}

func TestGetResultMemoizes(t *testing.T) {
	ctx := context.Background()
	ec := &ExecutionContext{Cache: NewResultCache(8)}
	p := &countingProvider{key: "a"}

	r1, err := GetResult(ctx, ec, p)
	require.NoError(t, err)
	r2, err := GetResult(ctx, ec, p)
	require.NoError(t, err)

	assert.Same(t, r1, r2)
	assert.Equal(t, Finished, r1.Status)
	assert.Equal(t, int64(1), p.calls.Load())

	// Another provider with the same key shares the result.
	q := &countingProvider{key: "a"}
	r3, err := GetResult(ctx, ec, q)
	require.NoError(t, err)
	assert.Same(t, r1, r3)
	assert.Zero(t, q.calls.Load())

	stats := ec.Cache.Stats()
	assert.Equal(t, int64(1), stats.Computations)
	assert.Equal(t, 1, stats.Entries)

	ec.Cache.Purge()
	_, err = GetResult(ctx, ec, p)
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestGetResultConcurrent(t *testing.T) {
	ctx := context.Background()
	ec := &ExecutionContext{Cache: NewResultCache(8)}
	p := &countingProvider{key: "slow", delay: 20 * time.Millisecond}

	var wg sync.WaitGroup
	results := make([]*Result, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := GetResult(ctx, ec, p)
			assert.NoError(t, err)
			results[i] = r
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), p.calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestGetResultDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	ec := &ExecutionContext{Cache: NewResultCache(8)}
	p := &countingProvider{key: "flaky", fail: 1}

	_, err := GetResult(ctx, ec, p)
	require.Error(t, err)
	assert.Zero(t, ec.Cache.Stats().Entries)

	r, err := GetResult(ctx, ec, p)
	require.NoError(t, err)
	assert.Equal(t, Finished, r.Status)
	assert.Equal(t, int64(2), p.calls.Load())
}

func TestGetResultWithoutCache(t *testing.T) {
	ctx := context.Background()
	ec := &ExecutionContext{}
	p := &countingProvider{key: "a"}

	for range 3 {
		r, err := GetResult(ctx, ec, p)
		require.NoError(t, err)
		assert.Equal(t, Finished, r.Status)
	}
	assert.Equal(t, int64(3), p.calls.Load())
}
