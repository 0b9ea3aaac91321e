package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

// Basic Add/Set/Get/Remove semantics.
// Add inserts only if key is absent; Set updates; Remove deletes.
func TestCache_BasicAddSetGetRemove(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 8})
	t.Cleanup(func() { _ = c.Close() })

	if !c.Add("a", 1) {
		t.Fatal("Add a=1 must be true")
	}
	if c.Add("a", 2) {
		t.Fatal("Add duplicate must be false")
	}

	c.Set("a", 11)
	if v, ok := c.Get("a"); !ok || v != 11 {
		t.Fatalf("Get a want 11, got %v ok=%v", v, ok)
	}

	if !c.Remove("a") {
		t.Fatal("Remove a must be true")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a must be absent after Remove")
	}
	if c.Remove("a") {
		t.Fatal("second Remove must be false")
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Evictions != 0 {
		t.Fatalf("stats %+v", st)
	}
}

// Deterministic LRU eviction: single shard, small capacity.
// Accessing "a" promotes it; inserting "c" evicts LRU ("b").
func TestCache_EvictionLRU(t *testing.T) {
	t.Parallel()

	var evicted []string
	c := New[string, int](Options[string, int]{
		Capacity: 2,
		Shards:   1, // force a single shard so LRU is global
		OnEvict:  func(k string, _ int) { evicted = append(evicted, k) },
	})
	t.Cleanup(func() { _ = c.Close() })

	c.Set("a", 1) // LRU = a
	c.Set("b", 2) // MRU = b

	if _, ok := c.Get("a"); !ok { // promote a -> MRU
		t.Fatal("expect hit for a")
	}
	c.Set("c", 3) // overflow -> evict LRU (b)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b must be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a must survive (promoted)")
	}
	if v, ok := c.Get("c"); !ok || v != 3 {
		t.Fatal("c must be present")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Fatalf("evicted %v", evicted)
	}
	if st := c.Stats(); st.Evictions != 1 {
		t.Fatalf("Evictions = %d", st.Evictions)
	}
}

// Peek neither promotes nor counts.
func TestCache_PeekDoesNotPromote(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 2, Shards: 1})
	c.Set("a", 1)
	c.Set("b", 2)
	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Fatalf("Peek a = %v,%v", v, ok)
	}
	c.Set("c", 3) // a is still LRU
	if _, ok := c.Peek("a"); ok {
		t.Fatal("Peek must not promote a")
	}
	if st := c.Stats(); st.Hits != 0 || st.Misses != 0 {
		t.Fatalf("Peek counted: %+v", st)
	}
}

// Shard count is a power of two and never exceeds Capacity, so the global
// bound holds even for tiny caches.
func TestCache_CapacityAcrossShards(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct{ capacity, shards int }{
		{1, 0}, {3, 64}, {100, 3}, {1000, 16}, {1000, 0},
	} {
		t.Run(fmt.Sprintf("cap=%d/shards=%d", tc.capacity, tc.shards), func(t *testing.T) {
			c := New[int, int](Options[int, int]{Capacity: tc.capacity, Shards: tc.shards}).(*cache[int, int])
			n := len(c.shards)
			if n&(n-1) != 0 || n > tc.capacity {
				t.Fatalf("%d shards for capacity %d", n, tc.capacity)
			}
			for k := 0; k < tc.capacity*10; k++ {
				c.Set(k, k)
			}
			perShard := (tc.capacity + n - 1) / n
			if got := c.Len(); got > perShard*n || got < tc.capacity/2 {
				t.Fatalf("Len = %d for capacity %d over %d shards", got, tc.capacity, n)
			}
			for _, s := range c.shards {
				if s.Len() > perShard {
					t.Fatalf("shard holds %d > %d", s.Len(), perShard)
				}
			}
		})
	}
}

func TestCache_NewPanicsOnZeroCapacity(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("New must panic on Capacity 0")
		}
	}()
	New[string, int](Options[string, int]{})
}

// After Close writes are dropped, reads miss and loads fail.
func TestCache_Close(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{
		Capacity: 4,
		Loader:   func(context.Context, string) (int, error) { return 1, nil },
	})
	c.Set("a", 1)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	c.Set("b", 2)
	if c.Add("c", 3) || c.Remove("a") {
		t.Fatal("writes accepted after Close")
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("Get hit after Close")
	}
	if _, ok := c.Peek("a"); ok {
		t.Fatal("Peek hit after Close")
	}
	if _, err := c.GetOrLoad(context.Background(), "a"); !errors.Is(err, ErrClosed) {
		t.Fatalf("GetOrLoad err = %v", err)
	}
}

func TestCache_GetOrLoad_Errors(t *testing.T) {
	t.Parallel()

	c := New[string, int](Options[string, int]{Capacity: 4})
	if _, err := c.GetOrLoad(context.Background(), "x"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("err = %v, want ErrNoLoader", err)
	}

	boom := errors.New("boom")
	var calls atomic.Int32
	failing := New[string, int](Options[string, int]{
		Capacity: 4,
		Loader: func(context.Context, string) (int, error) {
			calls.Add(1)
			return 0, boom
		},
	})
	for i := 0; i < 2; i++ {
		if _, err := failing.GetOrLoad(context.Background(), "x"); !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("failed loads must not be cached: %d calls", calls.Load())
	}
	if failing.Len() != 0 {
		t.Fatal("failed load stored a value")
	}
}

// Singleflight test: concurrent GetOrLoad calls for the same key
// should trigger the Loader at most once; subsequent calls are cache hits.
func TestCache_GetOrLoad_Singleflight(t *testing.T) {
	var calls int64
	release := make(chan struct{})

	c := New[string, string](Options[string, string]{
		Capacity: 64,
		Loader: func(_ context.Context, k string) (string, error) {
			atomic.AddInt64(&calls, 1)
			<-release // hold the flight open until every caller joined
			return "v:" + k, nil
		},
	})
	t.Cleanup(func() { _ = c.Close() })

	const N = 64
	var g errgroup.Group
	var started sync.WaitGroup
	started.Add(N)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < N; i++ {
		g.Go(func() error {
			started.Done()
			v, err := c.GetOrLoad(ctx, "k")
			if err != nil {
				return err
			}
			if v != "v:k" {
				return fmt.Errorf("got %q", v)
			}
			return nil
		})
	}
	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	if got := atomic.LoadInt64(&calls); got != 1 {
		t.Fatalf("loader must run exactly once, got %d", got)
	}
	if st := c.Stats(); st.Loads != 1 || st.Coalesced == 0 || st.Coalesced > N {
		t.Fatalf("stats %+v", st)
	}

	if v, err := c.GetOrLoad(context.Background(), "k"); err != nil || v != "v:k" {
		t.Fatalf("second GetOrLoad failed: v=%q err=%v", v, err)
	}
}

// Metrics see the cache-wide size, not the size of whichever shard
// reported last.
func TestCache_MetricsAggregateSize(t *testing.T) {
	t.Parallel()

	met := &recordingMetrics{}
	c := New[string, int](Options[string, int]{Capacity: 1000, Shards: 8, Metrics: met})
	for i := 0; i < 100; i++ {
		c.Set("k"+strconv.Itoa(i), i)
	}
	c.Remove("k0")
	if got := met.size.Load(); got != 99 {
		t.Fatalf("reported size %d, want 99", got)
	}
	c.Get("k1")
	c.Get("missing")
	if met.hits.Load() != 1 || met.misses.Load() != 1 {
		t.Fatalf("hits=%d misses=%d", met.hits.Load(), met.misses.Load())
	}
}

// The bucket gauge is the sum of every shard's table, not the table of
// whichever shard resized last.
func TestCache_MetricsAggregateBuckets(t *testing.T) {
	t.Parallel()

	met := &recordingMetrics{}
	c := New[int, int](Options[int, int]{Capacity: 1000, Shards: 4, Metrics: met}).(*cache[int, int])
	// 250 per shard: 256 buckets, growing to 512 past 192 entries.
	for k := 0; k < 4000; k++ {
		c.Set(k, k)
	}
	sum := 0
	for _, s := range c.shards {
		sum += s.m.Stats().Capacity
	}
	if sum != 4*512 {
		t.Fatalf("shard tables hold %d buckets, want %d", sum, 4*512)
	}
	if got := met.buckets.Load(); got != int64(sum) {
		t.Fatalf("reported %d buckets, want %d", got, sum)
	}
}

type recordingMetrics struct {
	NoopMetrics
	hits, misses atomic.Int64
	size         atomic.Int64
	buckets      atomic.Int64
}

func (m *recordingMetrics) Hit()         { m.hits.Add(1) }
func (m *recordingMetrics) Miss()        { m.misses.Add(1) }
func (m *recordingMetrics) Size(n int)   { m.size.Store(int64(n)) }
func (m *recordingMetrics) Resize(n int) { m.buckets.Store(int64(n)) }
