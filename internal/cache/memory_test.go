package cache_test

import (
	"context"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"basegraph.app/scout/internal/cache"
)

var _ = Describe("Memory", func() {
	var (
		ctx   context.Context
		now   time.Time
		store *cache.Memory
	)

	clock := func() time.Time { return now }

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		store = cache.NewMemory(cache.Config{Capacity: 3, TTL: 300 * time.Second}, cache.WithClock(clock))
	})

	It("returns a value right after it is stored", func() {
		value := cache.Value{Content: "tree listing", RepositoryURL: "https://github.com/acme/widgets"}
		Expect(store.Put(ctx, "k", value)).To(Succeed())

		got, ok, err := store.Get(ctx, "k")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(value))
	})

	It("misses on an unknown key", func() {
		_, ok, err := store.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("treats an entry as absent once its TTL has elapsed", func() {
		Expect(store.Put(ctx, "k", cache.Value{Content: "v"})).To(Succeed())

		now = now.Add(299 * time.Second)
		_, ok, _ := store.Get(ctx, "k")
		Expect(ok).To(BeTrue())

		now = now.Add(time.Second)
		_, ok, _ = store.Get(ctx, "k")
		Expect(ok).To(BeFalse())
		Expect(store.Len()).To(Equal(0))
	})

	It("evicts exactly one entry, the oldest, when a key beyond capacity is inserted", func() {
		for i := 0; i < 3; i++ {
			Expect(store.Put(ctx, fmt.Sprintf("k%d", i), cache.Value{Content: "v"})).To(Succeed())
			now = now.Add(time.Second)
		}
		Expect(store.Put(ctx, "k3", cache.Value{Content: "v"})).To(Succeed())

		Expect(store.Len()).To(Equal(3))
		_, ok, _ := store.Get(ctx, "k0")
		Expect(ok).To(BeFalse())
		for _, k := range []string{"k1", "k2", "k3"} {
			_, ok, _ := store.Get(ctx, k)
			Expect(ok).To(BeTrue(), k)
		}
	})

	It("prefers dropping expired entries over evicting live ones", func() {
		Expect(store.Put(ctx, "old", cache.Value{Content: "v"})).To(Succeed())
		now = now.Add(200 * time.Second)
		Expect(store.Put(ctx, "a", cache.Value{Content: "v"})).To(Succeed())
		Expect(store.Put(ctx, "b", cache.Value{Content: "v"})).To(Succeed())

		now = now.Add(150 * time.Second)
		Expect(store.Put(ctx, "c", cache.Value{Content: "v"})).To(Succeed())

		Expect(store.Len()).To(Equal(3))
		for _, k := range []string{"a", "b", "c"} {
			_, ok, _ := store.Get(ctx, k)
			Expect(ok).To(BeTrue(), k)
		}
	})

	It("overwrites an existing key wholesale without evicting", func() {
		for i := 0; i < 3; i++ {
			Expect(store.Put(ctx, fmt.Sprintf("k%d", i), cache.Value{Content: "v"})).To(Succeed())
		}
		Expect(store.Put(ctx, "k0", cache.Value{Content: "fresh"})).To(Succeed())

		Expect(store.Len()).To(Equal(3))
		got, ok, _ := store.Get(ctx, "k0")
		Expect(ok).To(BeTrue())
		Expect(got).To(Equal(cache.Value{Content: "fresh"}))
	})

	It("applies defaults for an empty configuration", func() {
		m := cache.NewMemory(cache.Config{})
		for i := 0; i < cache.DefaultCapacity+1; i++ {
			Expect(m.Put(ctx, fmt.Sprintf("k%d", i), cache.Value{})).To(Succeed())
		}
		Expect(m.Len()).To(Equal(cache.DefaultCapacity))
	})
})

var _ = Describe("Key", func() {
	It("ignores case and whitespace differences in the query", func() {
		a := cache.Key("List   its files", "https://github.com/acme/widgets")
		b := cache.Key("  list its FILES ", "https://github.com/acme/widgets")
		Expect(a).To(Equal(b))
	})

	It("separates identical queries about different repositories", func() {
		a := cache.Key("list its files", "https://github.com/acme/widgets")
		b := cache.Key("list its files", "https://github.com/acme/gadgets")
		Expect(a).NotTo(Equal(b))
	})

	It("separates differently worded queries about the same repository", func() {
		a := cache.Key("list its files", "https://github.com/acme/widgets")
		b := cache.Key("show the tree", "https://github.com/acme/widgets")
		Expect(a).NotTo(Equal(b))
	})

	It("does not let query text bleed into the repository part", func() {
		a := cache.Key("tree a", "b")
		b := cache.Key("tree", "a b")
		Expect(a).NotTo(Equal(b))
	})
})
