package cache_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"basegraph.app/scout/internal/cache"
)

// Runs against a real Redis when SCOUT_TEST_REDIS_URL is set; the database
// it points at is flushed.
var _ = Describe("Redis", func() {
	var (
		ctx    context.Context
		client *redis.Client
		store  *cache.Redis
	)

	BeforeEach(func() {
		url := os.Getenv("SCOUT_TEST_REDIS_URL")
		if url == "" {
			Skip("SCOUT_TEST_REDIS_URL not set")
		}

		opts, err := redis.ParseURL(url)
		Expect(err).NotTo(HaveOccurred())

		ctx = context.Background()
		client = redis.NewClient(opts)
		Expect(client.FlushDB(ctx).Err()).To(Succeed())
		store = cache.NewRedis(client, cache.Config{Capacity: 2, TTL: time.Minute})
	})

	AfterEach(func() {
		if client != nil {
			_ = client.Close()
		}
	})

	It("round-trips a value", func() {
		value := cache.Value{Content: "listing", RepositoryURL: "https://github.com/acme/widgets"}
		Expect(store.Put(ctx, "k", value)).To(Succeed())

		got, ok, err := store.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(value))
	})

	It("evicts the soonest-expiring entry when full", func() {
		for i := 0; i < 3; i++ {
			Expect(store.Put(ctx, fmt.Sprintf("k%d", i), cache.Value{Content: "v"})).To(Succeed())
			time.Sleep(5 * time.Millisecond)
		}

		_, ok, err := store.Get(ctx, "k0")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		_, ok, _ = store.Get(ctx, "k2")
		Expect(ok).To(BeTrue())
	})

	It("keeps concurrent writers within capacity", func() {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				Expect(store.Put(ctx, fmt.Sprintf("k%d", i), cache.Value{Content: "v"})).To(Succeed())
			}(i)
		}
		wg.Wait()

		Expect(client.ZCard(ctx, "scout:cache:expiry").Val()).To(BeNumerically("==", 2))
		keys, err := client.Keys(ctx, "scout:cache:k*").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(HaveLen(2))
	})

	It("overwrites an existing key without evicting", func() {
		Expect(store.Put(ctx, "a", cache.Value{Content: "1"})).To(Succeed())
		Expect(store.Put(ctx, "b", cache.Value{Content: "2"})).To(Succeed())
		Expect(store.Put(ctx, "a", cache.Value{Content: "3"})).To(Succeed())

		got, ok, err := store.Get(ctx, "a")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got.Content).To(Equal("3"))

		_, ok, _ = store.Get(ctx, "b")
		Expect(ok).To(BeTrue())
	})
})
