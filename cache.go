package mrbt

import lru "github.com/hashicorp/golang-lru/v2"

// verifiedCache is the optional verified-get cache (Option WithCache).
// It is grounded on the teacher's node_cache.go, which wraps
// hashicorp/golang-lru's NewARC to cache loaded tree nodes in front of
// a persistence backend. mrbt carries no persistence layer (spec's
// Non-goal — see DESIGN.md), so there is nothing to front; the same
// dependency is repurposed here to cache whole (value, VO) results for
// GetVerified, keyed on (root digest, key) so a cache entry is
// implicitly invalidated the moment the tree mutates and its root
// digest changes. Modernized to golang-lru/v2's generic API in place
// of the teacher's v1 NewARC.
type verifiedCache struct {
	lru *lru.Cache[string, cachedGet]
}

type cachedGet struct {
	value []byte
	vo    VO
	ok    bool
}

func newVerifiedCache(size int) *verifiedCache {
	c, err := lru.New[string, cachedGet](size)
	if err != nil {
		// size<=0 is the only failure mode and WithCache already
		// guards against it.
		panic(err)
	}
	return &verifiedCache{lru: c}
}

func (c *verifiedCache) get(root RootDigest, k Key) (cachedGet, bool) {
	return c.lru.Get(cacheKey(root, k))
}

func (c *verifiedCache) put(root RootDigest, k Key, v cachedGet) {
	c.lru.Add(cacheKey(root, k), v)
}

func cacheKey(root RootDigest, k Key) string {
	return string(root.Left) + "\x00" + string(root.Right) + "\x00" + string(k.Bytes())
}
