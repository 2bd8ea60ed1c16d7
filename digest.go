package mrbt

// tagLeaf and tagSentinel are the fixed domain-separation prefixes of
// spec §3 invariant 6 ("D(leaf) = H(tag_leaf || enc(key), enc(value))",
// "D(+inf leaf) = H(tag_sentinel, tag_sentinel)"), preventing a leaf
// digest from ever colliding with an internal-pair digest or the
// sentinel's fixed constant.
var (
	tagLeaf     = []byte{0x01}
	tagSentinel = []byte{0x00}
)

// RootDigest is the root digest pair exposed by Tree.Digest: spec §3
// defines it as (D(left(root)), D(right(root))) precisely so a
// verifier can replay it from a VO without needing the root's own
// internal key.
type RootDigest struct {
	Left  []byte
	Right []byte
}

// Equal reports whether two root digests are byte-identical.
func (d RootDigest) Equal(o RootDigest) bool {
	return bytesEqual(d.Left, o.Left) && bytesEqual(d.Right, o.Right)
}

// sentinelDigest is the fixed constant D(+inf leaf), invariant 6.
func sentinelDigest(h Hasher) []byte {
	return h.Combine(tagSentinel, tagSentinel)
}

// leafDigest is D(leaf) for a finite leaf, invariant 6.
func leafDigest(h Hasher, n *node) []byte {
	return leafDigestRaw(h, n.key, n.value)
}

// leafDigestRaw is leafDigest without requiring a live *node, so a VO
// verifier (vo.go) can recompute a revealed leaf's digest from its
// plain key/value.
func leafDigestRaw(h Hasher, k Key, value []byte) []byte {
	return h.Combine(append(append([]byte{}, tagLeaf...), k.Bytes()...), value)
}

// nodeDigest returns D(n) for any node: the leaf formula for leaves,
// the sentinel constant for the +inf leaf, or the already-recomputed
// child-digest pair combined together for an internal node.
func nodeDigest(h Hasher, n *node) []byte {
	if n.leaf {
		if n.sentinel {
			return sentinelDigest(h)
		}
		return leafDigest(h, n)
	}
	return h.Combine(n.digestLeft, n.digestRight)
}

// recomputeAt recomputes n's own digestLeft/digestRight from its
// current children (spec §4.3 "Given any node v, recomputes
// digest_left(v) and digest_right(v) from current children").
func recomputeAt(h Hasher, n *node) {
	n.digestLeft = nodeDigest(h, n.left)
	n.digestRight = nodeDigest(h, n.right)
}

// recomputeUpFrom walks parent links from n to the root, recomputing
// every ancestor's digest pair exactly once (spec §4.3's
// "recompute-up-from(v)"). n itself may be a leaf; the walk only ever
// touches internal ancestors.
func recomputeUpFrom(h Hasher, n *node) {
	for cur := n; cur != nil; cur = cur.parent {
		if !cur.leaf {
			recomputeAt(h, cur)
		}
	}
}

// digest returns the tree's current root digest pair, per spec §3's
// closing paragraph. An empty tree (root is the lone sentinel leaf,
// with no internal nodes yet) reports (S, S) where S is the sentinel
// leaf's own digest, matching spec §8 scenario 1.
func (t *Tree) digest() RootDigest {
	if t.root.leaf {
		s := sentinelDigest(t.hasher)
		return RootDigest{s, s}
	}
	return RootDigest{t.root.digestLeft, t.root.digestRight}
}
