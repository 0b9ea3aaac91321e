// Command bench runs a synthetic workload against the cache (or a single
// hashmap) and exposes optional pprof/Prometheus endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/IvanBrykalov/treebin/cache"
	"github.com/IvanBrykalov/treebin/hashmap"
	pmet "github.com/IvanBrykalov/treebin/metrics/prom"
	"github.com/IvanBrykalov/treebin/policy/lru"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

type config struct {
	mode     string
	capacity int
	shards   int
	workers  int
	duration time.Duration
	readPct  int
	keys     int
	zipfS    float64
	zipfV    float64
	seed     int64
	preload  int
	collide  int
}

func main() {
	// ---- Flags ----
	var cfg config
	flag.StringVar(&cfg.mode, "mode", "cache", "workload target: cache | map")
	flag.IntVar(&cfg.capacity, "cap", 100_000, "capacity (entries)")
	flag.IntVar(&cfg.shards, "shards", 0, "number of cache shards (0=auto)")
	flag.IntVar(&cfg.workers, "workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines (cache mode)")
	flag.DurationVar(&cfg.duration, "duration", 10*time.Second, "benchmark duration")
	flag.IntVar(&cfg.readPct, "reads", 80, "read percentage [0..100]")
	flag.IntVar(&cfg.keys, "keys", 1_000_000, "keyspace size")
	flag.Float64Var(&cfg.zipfS, "zipf_s", 1.1, "Zipf s > 1 (skew)")
	flag.Float64Var(&cfg.zipfV, "zipf_v", 1.0, "Zipf v")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "random seed")
	flag.IntVar(&cfg.preload, "preload", 0, "preload entries (0 = cap/2)")
	flag.IntVar(&cfg.collide, "collide", 0, "map mode: hash keys into this many distinct hashes (0 = default hasher)")
	pprofAddr := flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
	metricsAddr := flag.String("http", ":8080", "serve Prometheus metrics at addr")
	flag.Parse()

	if cfg.workers <= 0 {
		cfg.workers = 1
	}
	if cfg.preload == 0 {
		cfg.preload = cfg.capacity / 2
	}

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "treebin", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	switch cfg.mode {
	case "cache":
		runCache(cfg, metrics)
	case "map":
		runMap(cfg, metrics)
	default:
		log.Fatalf("unknown mode: %q (use cache or map)", cfg.mode)
	}
}

// counters are shared by the workers of one run.
type counters struct {
	reads, writes, hits, misses, total atomic.Uint64
}

func (c *counters) report(elapsed time.Duration) {
	ops := c.total.Load()
	reads := c.reads.Load()
	hitRate := 0.0
	if reads > 0 {
		hitRate = float64(c.hits.Load()) / float64(reads) * 100
	}
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), reads, c.writes.Load())
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", c.hits.Load(), c.misses.Load(), hitRate)
}

// worker drives get/set against one target until ctx expires.
func worker(ctx context.Context, cfg config, id int, cnt *counters, get func(string) bool, set func(string, string)) {
	// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
	r := rand.New(rand.NewSource(cfg.seed + int64(id)*9973))
	zipf := rand.NewZipf(r, cfg.zipfS, cfg.zipfV, uint64(cfg.keys-1))
	key := func() string { return "k:" + strconv.FormatUint(zipf.Uint64(), 10) }

	for ctx.Err() == nil {
		cnt.total.Add(1)
		if int(r.Int31n(100)) < cfg.readPct {
			cnt.reads.Add(1)
			if get(key()) {
				cnt.hits.Add(1)
			} else {
				cnt.misses.Add(1)
			}
		} else {
			cnt.writes.Add(1)
			set(key(), "v"+strconv.Itoa(r.Int()))
		}
	}
}

func runCache(cfg config, metrics cache.Metrics) {
	c := cache.New[string, string](cache.Options[string, string]{
		Capacity: cfg.capacity,
		Shards:   cfg.shards,
		Metrics:  metrics,
	})
	defer func() { _ = c.Close() }()

	for i := 0; i < cfg.preload; i++ {
		c.Set("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.duration)
	defer cancel()

	var cnt counters
	get := func(k string) bool { _, ok := c.Get(k); return ok }
	start := time.Now()
	var g errgroup.Group
	for w := 0; w < cfg.workers; w++ {
		g.Go(func() error {
			worker(ctx, cfg, w, &cnt, get, c.Set)
			return nil
		})
	}
	_ = g.Wait()
	elapsed := time.Since(start)

	fmt.Printf("mode=cache cap=%d shards=%d workers=%d keys=%d dur=%v seed=%d\n",
		cfg.capacity, cfg.shards, cfg.workers, cfg.keys, elapsed, cfg.seed)
	cnt.report(elapsed)
	st := c.Stats()
	fmt.Printf("Len()=%d evictions=%d\n", c.Len(), st.Evictions)
}

// runMap drives a single LRU-bounded map from one goroutine. With -collide
// the keys share few hashes, which exercises the tree bins.
func runMap(cfg config, metrics hashmap.Metrics) {
	opt := hashmap.Options[string, string]{
		Order:   hashmap.AccessOrder,
		Policy:  lru.New[string, string](cfg.capacity),
		Metrics: metrics,
	}
	if n := uint32(cfg.collide); n > 0 {
		opt.Hasher = func(k string) uint32 {
			h := uint32(0)
			for i := 0; i < len(k); i++ {
				h = h*31 + uint32(k[i])
			}
			return h % n
		}
	}
	m, err := hashmap.New(opt)
	if err != nil {
		log.Fatalf("hashmap: %v", err)
	}
	for i := 0; i < cfg.preload; i++ {
		m.Put("k:"+strconv.Itoa(i), "v"+strconv.Itoa(i))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.duration)
	defer cancel()

	var cnt counters
	get := func(k string) bool { _, ok := m.Get(k); return ok }
	set := func(k, v string) { m.Put(k, v) }
	start := time.Now()
	worker(ctx, cfg, 0, &cnt, get, set)
	elapsed := time.Since(start)

	fmt.Printf("mode=map cap=%d collide=%d keys=%d dur=%v seed=%d\n",
		cfg.capacity, cfg.collide, cfg.keys, elapsed, cfg.seed)
	cnt.report(elapsed)
	fmt.Printf("layout=%+v\n", m.Stats())
}
