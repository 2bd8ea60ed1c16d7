package mrbt

import (
	"bytes"
	"math/big"
)

// Key is a totally ordered scalar with a fixed byte encoding, per
// spec §3/§9 ("generalizing requires fixing a total order and byte
// encoding. Spec leaves this pluggable."). The teacher's own Key
// interface (key.go: Layer/Order) is adapted here: Order survives as
// Compare, and Layer — meaningful only for the teacher's
// deterministic-layer Merkle Search Tree — is dropped, since red-black
// balance comes from rotations, not key-hash layering.
type Key interface {
	// Compare returns -1, 0, or 1 as the receiver is less than, equal
	// to, or greater than other.
	Compare(other Key) int
	// Bytes returns the key's canonical byte encoding, the input to
	// D(leaf) in spec §3's digest formula.
	Bytes() []byte
}

// IntKey is the default Key: an arbitrary-precision integer, matching
// the original implementation's "unbounded integer" keys exactly
// (original_source/core.py uses Python's native bignum int).
type IntKey struct {
	v *big.Int
}

// Int wraps an int64 as an IntKey.
func Int(v int64) IntKey {
	return IntKey{big.NewInt(v)}
}

// BigInt wraps a *big.Int as an IntKey. The big.Int is not copied;
// callers must not mutate it afterward.
func BigInt(v *big.Int) IntKey {
	return IntKey{v}
}

func (k IntKey) Compare(other Key) int {
	o, ok := other.(IntKey)
	if !ok {
		panic("mrbt: IntKey compared against a different Key implementation")
	}
	return k.v.Cmp(o.v)
}

// Bytes returns the key's sign-and-magnitude encoding: a sign byte (0
// for non-negative, 1 for negative) followed by the big-endian absolute
// value, so that Compare and byte-lexical order never need to agree
// (Bytes is only ever hashed, never compared).
func (k IntKey) Bytes() []byte {
	sign := byte(0)
	if k.v.Sign() < 0 {
		sign = 1
	}
	return append([]byte{sign}, k.v.Bytes()...)
}

func (k IntKey) String() string { return k.v.String() }

// Int64 returns the key as an int64, per big.Int.Int64's truncation
// rules if the value doesn't fit.
func (k IntKey) Int64() int64 { return k.v.Int64() }

// BigInt returns the underlying big.Int. The caller must not mutate it.
func (k IntKey) BigInt() *big.Int { return k.v }

// infiniteKey is the sentinel "+inf" key (spec §3): strictly greater
// than every legal key. It is never exposed outside the package. Its
// own Compare reports "greater" against any key; real keys are never
// compared against it (IntKey.Compare would panic on it), because
// descent logic special-cases the sentinel leaf directly rather than
// calling Compare on it.
type infiniteKey struct{}

func (infiniteKey) Compare(Key) int { return 1 }
func (infiniteKey) Bytes() []byte   { return nil }

func keysEqual(a, b Key) bool {
	return a.Compare(b) == 0
}

func bytesEqual(a, b []byte) bool { return bytes.Equal(a, b) }
