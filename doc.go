/*
Package mrbt provides an authenticated ordered key-value map: a red-black
tree fused with a Merkle digest augmentation, so that its entire state is
summarized by a single fixed-size root digest pair.

Uses

- Tamper-evident key-value storage, where a small root digest stands in
for an arbitrarily large map

- Third-party verification of membership or absence of a key, given only
the root digest and the hash function in use

- Efficient computation of the symmetric difference between two
independently-built trees, in time proportional to the size of the
difference rather than the size of either tree

Background

The structure is a red-black tree (a self-balancing binary search tree)
in which every internal node additionally stores the digests of its two
children, and every internal node's key equals the maximum key in its
left subtree. A reserved "+infinity" leaf terminates every path, so the
internal-key rule holds without special-casing the rightmost branch.

Unlike a Merkle Search Tree (whose node boundaries are chosen by a
deterministic hash of the keys, so two trees with the same entries
converge to the same shape regardless of insertion order, at the cost of
rotation-free but taller trees) an MRBT keeps entries in standard
red-black balance and authenticates it. Both structures can diff two
versions by pruning subtrees whose digests match; this one additionally
produces compact witnesses for single-key presence or absence proofs.

Concurrency

A *Tree is not internally synchronized. All mutating operations on a
single instance must be externally serialized; reads against a
quiescent instance may be shared freely. Two different *Tree values
built with hash-compatible Hashers may always be read concurrently by
different goroutines, including as arguments to GetChangeSet.
*/
package mrbt
