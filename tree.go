package mrbt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Tree is the public façade: an authenticated ordered key-value map
// over spec §3's Merkle red-black tree. The zero value is not usable;
// construct one with New or one of the bulk constructors.
//
// A *Tree is not internally synchronized (see doc.go's Concurrency
// section): callers must externally serialize mutation against a
// single instance.
type Tree struct {
	hasher Hasher
	root   *node
	head   *node // smallest leaf; equals root when the tree is empty
	size   int

	logger zerolog.Logger
	cache  *verifiedCache
}

// Option configures a Tree at construction time, following the
// teacher's own option-struct pattern (lib.go's mast config) generalized
// to the variadic functional-option idiom used across the wider example
// pack (dedis-dela, bluesky-social-indigo).
type Option func(*Tree)

// WithLogger attaches a zerolog.Logger the Tree uses for structured
// debug/trace logging of mutations (logging.go). The zero value
// (zerolog.Nop()) is used when no logger is supplied.
func WithLogger(l zerolog.Logger) Option {
	return func(t *Tree) { t.logger = l }
}

// WithCache enables the verified-get cache (cache.go) with room for
// size recently verified (key, digest) pairs. size<=0 disables caching,
// which is also the default.
func WithCache(size int) Option {
	return func(t *Tree) {
		if size > 0 {
			t.cache = newVerifiedCache(size)
		}
	}
}

// New creates an empty Tree authenticated under hasher.
func New(hasher Hasher, opts ...Option) *Tree {
	sentinel := newSentinelLeaf()
	t := &Tree{
		hasher: hasher,
		root:   sentinel,
		head:   sentinel,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromMap bulk-loads a Tree from a key-value map via repeated
// Insert, in ascending key order, so construction cost and the
// resulting shape are independent of the map's iteration order.
// Since Key implementations are compared by value with Compare but
// looked up in entries by Go's own (identity-based, for pointer-typed
// Keys such as IntKey) map equality, callers must not construct two
// distinct Key values for what is meant to be the same logical key.
func NewFromMap(hasher Hasher, entries map[Key][]byte, opts ...Option) *Tree {
	keys := make([]Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })
	t := New(hasher, opts...)
	for _, k := range keys {
		t.insert(k, entries[k])
	}
	return t
}

// KV is a single key-value pair, used by NewFromSeq for callers that
// already have an ordered or unordered sequence rather than a map.
type KV struct {
	Key   Key
	Value []byte
}

// NewFromSeq bulk-loads a Tree from a sequence of pairs via repeated
// Insert, in ascending key order (a stable sort of a copy of seq), so
// the resulting shape is independent of seq's order. On a duplicate
// key, the first occurrence in seq wins and later ones are silently
// dropped, matching Insert's own duplicate handling (spec §4.4 step 2).
func NewFromSeq(hasher Hasher, seq []KV, opts ...Option) *Tree {
	sorted := append([]KV(nil), seq...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Key.Compare(sorted[j].Key) < 0 })
	t := New(hasher, opts...)
	for _, kv := range sorted {
		t.insert(kv.Key, kv.Value)
	}
	return t
}

// Len returns the number of keys currently stored.
func (t *Tree) Len() int { return t.size }

// Hasher returns the Hasher the Tree was constructed with.
func (t *Tree) Hasher() Hasher { return t.hasher }

// Insert adds k/value if k is absent; it is a no-op if k is already
// present (spec §4.4 step 2 — use Set to overwrite).
func (t *Tree) Insert(k Key, value []byte) bool {
	return t.insert(k, value)
}

// Delete removes k if present, reporting whether it was.
func (t *Tree) Delete(k Key) bool {
	return t.delete(k)
}

// Set inserts k/value if absent, else overwrites the existing value
// in place (spec §4.9).
func (t *Tree) Set(k Key, value []byte) {
	t.set(k, value)
}

// Get returns the value stored for k, if present.
func (t *Tree) Get(k Key) (value []byte, ok bool) {
	found, _, leaf := t.search(k)
	if !found {
		return nil, false
	}
	return leaf.value, true
}

// GetVerified is Get plus a VO proving the result against the Tree's
// current root digest (spec §4.6/§4.7). It consults and populates the
// verified-get cache (cache.go) when one is configured.
func (t *Tree) GetVerified(k Key) (value []byte, vo VO, ok bool) {
	root := t.digest()
	if t.cache != nil {
		if cached, hit := t.cache.get(root, k); hit {
			t.logger.Trace().Str("key", fmt.Sprint(k)).Msg("verified-get cache hit")
			return cached.value, cached.vo, cached.ok
		}
	}
	found, _, leaf := t.search(k)
	if found {
		vo = t.buildMembershipVO(k)
		value = leaf.value
	} else {
		vo = t.buildAbsenceVO(k)
	}
	ok = found
	if t.cache != nil {
		t.cache.put(root, k, cachedGet{value: value, vo: vo, ok: ok})
	}
	return value, vo, ok
}

// Contains reports whether k is present, without fetching its value.
func (t *Tree) Contains(k Key) bool {
	found, _, _ := t.search(k)
	return found
}

// At returns the key and value at the given rank in ascending key
// order (spec §9's by_keys_order, §4.6/§6/§7's "out-of-range ->
// absent"). A negative i counts from the end, Python-slice style: -1
// is the last entry. ok is false, with a zero Key and nil value, when
// i is out of [-Len, Len) — an out-of-range rank is a benign absence
// per spec §7, never an exception.
func (t *Tree) At(i int) (k Key, value []byte, ok bool) {
	n, ok := t.leafAtRank(i)
	if !ok {
		return nil, nil, false
	}
	return n.key, n.value, true
}

// SetAt overwrites the value at the given rank, reporting whether i
// was in range; see At for index semantics.
func (t *Tree) SetAt(i int, value []byte) bool {
	n, ok := t.leafAtRank(i)
	if !ok {
		return false
	}
	n.value = value
	recomputeUpFrom(t.hasher, n)
	return true
}

func (t *Tree) leafAtRank(i int) (*node, bool) {
	if i < 0 {
		i += t.size
	}
	if i < 0 || i >= t.size {
		return nil, false
	}
	n := t.head
	for ; i > 0; i-- {
		n = n.next
	}
	return n, true
}

// Iterate calls fn for every key-value pair in ascending key order,
// stopping early if fn returns false.
func (t *Tree) Iterate(fn func(k Key, value []byte) bool) {
	for n := t.head; n != nil && !n.sentinel; n = n.next {
		if !fn(n.key, n.value) {
			return
		}
	}
}

// Digest returns the tree's current root digest pair (spec §3).
func (t *Tree) Digest() RootDigest {
	return t.digest()
}

// Equal reports whether two trees have identical root digests. The
// root digest covers both the entries and the tree's shape, and the
// shape depends on the Insert/Delete history: two trees holding the
// same keys and values compare equal when they have the same shape
// (for example, both built by NewFromMap or NewFromSeq), but trees
// that reached the same content through different histories can
// compare unequal.
func (t *Tree) Equal(other *Tree) bool {
	return t.Digest().Equal(other.Digest())
}

// GetChangeSet computes the symmetric difference between t and other
// by the digest-pruned tree walk of spec §4.8, returning Changes in
// ascending key order: one Change for a key present on only one side,
// and a Source/Destination pair for a key whose values differ.
func (t *Tree) GetChangeSet(other *Tree) []Change {
	return changeSet(t, other)
}

// SelfTest walks the whole tree checking every invariant in spec §3 —
// BST order, red-black balance, the internal-key rule, and digest
// consistency — returning the first violation found, if any. It is
// grounded on original_source/core.py's MRBT._test, extended with the
// digest checks the original left as a "TODO" (see DESIGN.md).
func (t *Tree) SelfTest() error {
	return selfTest(t)
}

// String renders the tree as an indented textual dump, grounded on
// original_source/core.py's Node.__str__/MRBT.__str__.
func (t *Tree) String() string {
	var b strings.Builder
	dumpNode(&b, t.root, "", true)
	return b.String()
}

func dumpNode(b *strings.Builder, n *node, prefix string, isTail bool) {
	branch := "├── "
	nextPrefix := prefix + "│   "
	if isTail {
		branch = "└── "
		nextPrefix = prefix + "    "
	}
	switch {
	case n.sentinel:
		fmt.Fprintf(b, "%s%s+inf\n", prefix, branch)
		return
	case n.leaf:
		fmt.Fprintf(b, "%s%sleaf(%v)\n", prefix, branch, n.key)
		return
	}
	fmt.Fprintf(b, "%s%s%v [%s]\n", prefix, branch, n.key, n.color)
	dumpNode(b, n.left, nextPrefix, false)
	dumpNode(b, n.right, nextPrefix, true)
}
