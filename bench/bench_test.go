// go test -v -cpu=8 -run=none -bench=. -benchtime=5s -benchmem bench_test.go
package bench

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/IvanBrykalov/treebin/cache"
	"github.com/IvanBrykalov/treebin/hashmap"
	"github.com/IvanBrykalov/treebin/policy/lru"
	cloudflare "github.com/cloudflare/golibs/lrucache"
	ristretto "github.com/dgraph-io/ristretto"
)

const (
	keysize     = 16
	cachesize   = 65536
	parallelism = 2000
)

var keymap = func() (x [cachesize]string) {
	for i := 0; i < cachesize; i++ {
		x[i] = fmt.Sprintf(fmt.Sprintf("%%0%dd", keysize), i)
	}
	return
}()

func BenchmarkCloudflareGet(b *testing.B) {
	c := cloudflare.NewMultiLRUCache(1024, cachesize/1024)
	for i := 0; i < cachesize/2; i++ {
		c.Set(keymap[i], i, time.Now().Add(time.Hour))
	}

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.Get(keymap[rand.IntN(cachesize)])
		}
	})
}

func BenchmarkRistrettoGet(b *testing.B) {
	c, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: cachesize, // number of keys to track frequency of.
		MaxCost:     1 << 30,   // maximum cost of cache (1GB).
		BufferItems: 64,        // number of keys per Get buffer.
	})
	for i := 0; i < cachesize/2; i++ {
		c.Set(keymap[i], i, 1)
	}
	c.Wait()

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.Get(keymap[rand.IntN(cachesize)])
		}
	})
}

func BenchmarkTreebinCacheGet(b *testing.B) {
	c := cache.New[string, int](cache.Options[string, int]{Capacity: cachesize})
	for i := 0; i < cachesize/2; i++ {
		c.Set(keymap[i], i)
	}

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = c.Get(keymap[rand.IntN(cachesize)])
		}
	})
}

// A single access-ordered map behind one mutex, the layout every shard of
// the cache uses.
func BenchmarkTreebinMapGet(b *testing.B) {
	m := hashmap.MustNew(hashmap.Options[string, int]{
		Order:  hashmap.AccessOrder,
		Policy: lru.New[string, int](cachesize),
	})
	for i := 0; i < cachesize/2; i++ {
		m.Put(keymap[i], i)
	}
	var mu sync.Mutex

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			mu.Lock()
			_, _ = m.Get(keymap[rand.IntN(cachesize)])
			mu.Unlock()
		}
	})
}

func BenchmarkCloudflareSet(b *testing.B) {
	c := cloudflare.NewMultiLRUCache(1024, cachesize/1024)
	expires := time.Now().Add(time.Hour)

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := rand.IntN(cachesize)
			c.Set(keymap[i], i, expires)
		}
	})
}

func BenchmarkRistrettoSet(b *testing.B) {
	c, _ := ristretto.NewCache(&ristretto.Config{
		NumCounters: cachesize,
		MaxCost:     cachesize,
		BufferItems: 64,
	})

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := rand.IntN(cachesize)
			c.Set(keymap[i], i, 1)
		}
	})
}

func BenchmarkTreebinCacheSet(b *testing.B) {
	c := cache.New[string, int](cache.Options[string, int]{Capacity: cachesize / 2})

	b.SetParallelism(parallelism)
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			i := rand.IntN(cachesize)
			c.Set(keymap[i], i)
		}
	})
}
