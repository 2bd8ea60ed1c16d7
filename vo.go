package mrbt

import (
	"encoding/binary"
	"fmt"
	"math/big"
)

// VO is a verification object: a compact witness that a key is (or is
// not) present in a tree with a given root digest, per spec §4.6/§4.7.
//
// For a membership proof (Found), it reveals the matching leaf's
// value and the path of sibling digests from that leaf up to the
// root's two direct children. For an absence proof, no single leaf
// witnesses the claim; instead it reveals the two leaf-list neighbors
// that straddle Key — Left (nil if Key is less than every stored key)
// and Right (always present, possibly the +inf sentinel) — each with
// its own independent path to the root, per spec §4.7's "include both
// adjacent leaves … with their own full paths."
type VO struct {
	Version byte
	Key     Key
	Found   bool

	// set when Found
	TerminalKey   Key
	TerminalValue []byte
	Steps         []VOStep

	// set when !Found
	Left  *LeafWitness
	Right *LeafWitness
}

// LeafWitness is one neighbor leaf of an absence proof: either a real
// leaf (key/value) or the +inf sentinel, plus the path of sibling
// digests from it up to the root.
type LeafWitness struct {
	IsSentinel bool
	Key        Key
	Value      []byte
	Steps      []VOStep
}

// VOStep is one level of a Merkle path: which side of AncestorKey's
// node the path came up through, and the digest of the other child
// (the "sibling") needed to recompute that node's contribution to its
// own parent. Steps are ordered from a leaf up to the root's
// immediate children.
type VOStep struct {
	Side          byte // 0 if the path is the ancestor's left child, 1 if its right
	AncestorKey   Key
	SiblingDigest []byte
}

const voVersion byte = 1

// buildMembershipVO assumes k is present; callers (GetVerified) must
// check that first.
func (t *Tree) buildMembershipVO(k Key) VO {
	_, _, leaf := t.search(k)
	return VO{
		Version:       voVersion,
		Key:           k,
		Found:         true,
		TerminalKey:   leaf.key,
		TerminalValue: leaf.value,
		Steps:         t.pathToRoot(leaf),
	}
}

// buildAbsenceVO assumes k is absent; callers (GetVerified) must
// check that first. right is the leaf the BST descent for k
// terminates at (k's immediate successor, or the sentinel); left is
// right's leaf-list predecessor, nil only when right is the smallest
// leaf in the tree (k is less than every stored key).
func (t *Tree) buildAbsenceVO(k Key) VO {
	_, _, right := t.search(k)
	vo := VO{Version: voVersion, Key: k, Found: false, Right: t.buildLeafWitness(right)}
	if left := right.prev; left != nil {
		vo.Left = t.buildLeafWitness(left)
	}
	return vo
}

func (t *Tree) buildLeafWitness(n *node) *LeafWitness {
	w := &LeafWitness{IsSentinel: n.sentinel, Steps: t.pathToRoot(n)}
	if !n.sentinel {
		w.Key = n.key
		w.Value = n.value
	}
	return w
}

// pathToRoot walks parent links from leaf to the root, recording one
// VOStep per internal ancestor: which side leaf's branch descended
// through, and the digest of the opposite (sibling) child needed to
// recompute that ancestor's contribution to its own parent.
func (t *Tree) pathToRoot(leaf *node) []VOStep {
	var steps []VOStep
	for cur := leaf; !cur.isRoot(); {
		p := cur.parent
		step := VOStep{AncestorKey: p.key}
		if cur.isLeftChild() {
			step.Side = 0
			step.SiblingDigest = nodeDigest(t.hasher, p.right)
		} else {
			step.Side = 1
			step.SiblingDigest = nodeDigest(t.hasher, p.left)
		}
		steps = append(steps, step)
		cur = p
	}
	return steps
}

// Verify replays vo against trustedRoot under hasher, without access
// to any Tree. It reports whether the VO is internally consistent
// (every revealed leaf really does combine up to trustedRoot, and the
// descent each path claims is internally coherent) and, if so,
// whether it proves membership or absence.
func Verify(trustedRoot RootDigest, hasher Hasher, vo VO) (ok bool, found bool, err error) {
	if vo.Version != voVersion {
		return false, false, fmt.Errorf("mrbt: unsupported VO version %d", vo.Version)
	}

	if vo.Found {
		return verifyMembership(trustedRoot, hasher, vo)
	}
	return verifyAbsence(trustedRoot, hasher, vo)
}

func verifyMembership(trustedRoot RootDigest, hasher Hasher, vo VO) (bool, bool, error) {
	if vo.TerminalKey == nil || !keysEqual(vo.TerminalKey, vo.Key) {
		return false, false, fmt.Errorf("mrbt: malformed VO: membership proof's terminal key does not match the searched key")
	}
	leafDigest := leafDigestRaw(hasher, vo.TerminalKey, vo.TerminalValue)
	pair, err := verifyPath(hasher, leafDigest, vo.Steps, descentRuleFor(vo.TerminalKey))
	if err != nil {
		return false, false, err
	}
	return trustedRoot.Equal(pair), true, nil
}

func verifyAbsence(trustedRoot RootDigest, hasher Hasher, vo VO) (bool, bool, error) {
	if vo.Right == nil {
		return false, false, fmt.Errorf("mrbt: malformed VO: absence proof missing its right neighbor")
	}
	if !vo.Right.IsSentinel && vo.Key.Compare(vo.Right.Key) >= 0 {
		return false, false, fmt.Errorf("mrbt: malformed VO: right neighbor does not exceed the searched key")
	}
	rightPair, err := verifyWitness(hasher, vo.Right)
	if err != nil {
		return false, false, err
	}
	if !trustedRoot.Equal(rightPair) {
		return false, false, nil
	}

	if vo.Left == nil {
		return true, false, nil
	}
	if vo.Left.IsSentinel {
		return false, false, fmt.Errorf("mrbt: malformed VO: left neighbor cannot be the sentinel")
	}
	if vo.Left.Key.Compare(vo.Key) >= 0 {
		return false, false, fmt.Errorf("mrbt: malformed VO: left neighbor does not precede the searched key")
	}
	if !vo.Right.IsSentinel && vo.Left.Key.Compare(vo.Right.Key) >= 0 {
		return false, false, fmt.Errorf("mrbt: malformed VO: neighbor leaves are out of order")
	}
	leftPair, err := verifyWitness(hasher, vo.Left)
	if err != nil {
		return false, false, err
	}
	if !trustedRoot.Equal(leftPair) {
		return false, false, nil
	}
	return true, false, nil
}

func verifyWitness(hasher Hasher, w *LeafWitness) (RootDigest, error) {
	if w.IsSentinel {
		return verifyPath(hasher, sentinelDigest(hasher), w.Steps, descentRuleForSentinel)
	}
	return verifyPath(hasher, leafDigestRaw(hasher, w.Key, w.Value), w.Steps, descentRuleFor(w.Key))
}

// descentRuleFor builds the per-step consistency check of spec §4.7:
// "check that the step's node_key is consistent with the descent rule
// (search_key <= node_key iff side = L)", where the search key is the
// key of the leaf this particular path witnesses.
func descentRuleFor(k Key) func(ancestorKey Key, side byte) bool {
	return func(ancestorKey Key, side byte) bool {
		return (k.Compare(ancestorKey) <= 0) == (side == 0)
	}
}

// descentRuleForSentinel is descentRuleFor specialized to the +inf
// leaf, which compares greater than every real key and so only ever
// descends right.
func descentRuleForSentinel(_ Key, side byte) bool {
	return side == 1
}

// verifyPath replays one leaf's path up to the root, checking each
// step's sibling digest length and descent-rule consistency along the
// way, and returns the root digest pair it reconstructs. A path with
// no steps is only valid for the tree's own root, i.e. the sole
// sentinel leaf of an empty tree; the caller's subsequent comparison
// against trustedRoot rejects any other zero-step path.
func verifyPath(hasher Hasher, leafDigest []byte, steps []VOStep, descentOK func(ancestorKey Key, side byte) bool) (RootDigest, error) {
	if len(steps) == 0 {
		return RootDigest{leafDigest, leafDigest}, nil
	}
	cur := leafDigest
	for i, step := range steps {
		if len(step.SiblingDigest) != hasher.Size() {
			return RootDigest{}, fmt.Errorf("mrbt: malformed VO: step %d sibling digest has wrong length", i)
		}
		if !descentOK(step.AncestorKey, step.Side) {
			return RootDigest{}, fmt.Errorf("mrbt: malformed VO: step %d violates the descent rule", i)
		}
		last := i == len(steps)-1
		if step.Side == 0 {
			if last {
				return RootDigest{cur, step.SiblingDigest}, nil
			}
			cur = hasher.Combine(cur, step.SiblingDigest)
		} else {
			if last {
				return RootDigest{step.SiblingDigest, cur}, nil
			}
			cur = hasher.Combine(step.SiblingDigest, cur)
		}
	}
	panic("unreachable")
}

// --- wire encoding ---
//
// Grounded on the teacher's codec.go (marshalMastNode/unmarshalMastNode):
// the same length-prefixed-field style, generalized from mast's
// arbitrary interface{} keys to mrbt's Key.Bytes()/IntKey encoding.
// google.golang.org/protobuf, which the teacher also carries for its
// node persistence format, is not used here — the VO wire format is
// small, fixed-shape, and normatively specified by spec §6 itself
// (version byte, status byte, length-prefixed fields, fixed-length
// digests), which a schema-driven serializer adds no value to and
// would only obscure (see DESIGN.md).

const (
	voStatusFound  byte = 0
	voStatusAbsent byte = 1
)

// Marshal encodes vo per spec §6's wire format. Absence VOs carry two
// membership-style sub-proofs (spec §6: "plus a leaf-list-adjacency
// assertion"): a has-left flag, the optional left witness, then the
// right witness (always present).
func (vo VO) Marshal() []byte {
	var buf []byte
	buf = append(buf, vo.Version)
	buf = appendBytes(buf, vo.Key.Bytes())

	if vo.Found {
		buf = append(buf, voStatusFound)
		buf = appendBytes(buf, vo.TerminalKey.Bytes())
		buf = appendBytes(buf, vo.TerminalValue)
		buf = appendSteps(buf, vo.Steps)
		return buf
	}

	buf = append(buf, voStatusAbsent)
	if vo.Left != nil {
		buf = append(buf, 1)
		buf = appendWitness(buf, vo.Left)
	} else {
		buf = append(buf, 0)
	}
	buf = appendWitness(buf, vo.Right)
	return buf
}

func appendWitness(buf []byte, w *LeafWitness) []byte {
	if w.IsSentinel {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
		buf = appendBytes(buf, w.Key.Bytes())
		buf = appendBytes(buf, w.Value)
	}
	return appendSteps(buf, w.Steps)
}

func appendSteps(buf []byte, steps []VOStep) []byte {
	buf = appendUvarint(buf, uint64(len(steps)))
	for _, s := range steps {
		buf = append(buf, s.Side)
		buf = appendBytes(buf, s.AncestorKey.Bytes())
		buf = append(buf, s.SiblingDigest...)
	}
	return buf
}

// UnmarshalVO decodes the wire format Marshal produces. digestSize
// must be the Hasher's Size() the VO was built under, since sibling
// digests are fixed-length and carry no length prefix of their own.
// Keys decode as IntKey; a caller using a different Key implementation
// must re-decode the raw bytes itself.
func UnmarshalVO(data []byte, digestSize int) (VO, error) {
	var vo VO
	if len(data) < 1 {
		return vo, fmt.Errorf("mrbt: VO truncated before version byte")
	}
	vo.Version = data[0]
	data = data[1:]

	keyBytes, data, err := readBytes(data)
	if err != nil {
		return vo, fmt.Errorf("mrbt: decoding VO key: %w", err)
	}
	vo.Key = decodeIntKey(keyBytes)

	if len(data) < 1 {
		return vo, fmt.Errorf("mrbt: VO truncated before status byte")
	}
	status := data[0]
	data = data[1:]

	switch status {
	case voStatusFound:
		vo.Found = true
		var tk []byte
		tk, data, err = readBytes(data)
		if err != nil {
			return vo, fmt.Errorf("mrbt: decoding VO terminal key: %w", err)
		}
		vo.TerminalKey = decodeIntKey(tk)
		vo.TerminalValue, data, err = readBytes(data)
		if err != nil {
			return vo, fmt.Errorf("mrbt: decoding VO terminal value: %w", err)
		}
		vo.Steps, _, err = readSteps(data, digestSize)
		if err != nil {
			return vo, err
		}
	case voStatusAbsent:
		if len(data) < 1 {
			return vo, fmt.Errorf("mrbt: VO truncated before has-left flag")
		}
		hasLeft := data[0] == 1
		data = data[1:]
		if hasLeft {
			vo.Left, data, err = readWitness(data, digestSize)
			if err != nil {
				return vo, fmt.Errorf("mrbt: decoding VO left neighbor: %w", err)
			}
		}
		vo.Right, data, err = readWitness(data, digestSize)
		if err != nil {
			return vo, fmt.Errorf("mrbt: decoding VO right neighbor: %w", err)
		}
	default:
		return vo, fmt.Errorf("mrbt: unknown VO status byte %d", status)
	}
	return vo, nil
}

func readWitness(data []byte, digestSize int) (*LeafWitness, []byte, error) {
	if len(data) < 1 {
		return nil, nil, fmt.Errorf("VO truncated before witness sentinel flag")
	}
	w := &LeafWitness{IsSentinel: data[0] == 1}
	data = data[1:]
	var err error
	if !w.IsSentinel {
		var kb []byte
		kb, data, err = readBytes(data)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding witness key: %w", err)
		}
		w.Key = decodeIntKey(kb)
		w.Value, data, err = readBytes(data)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding witness value: %w", err)
		}
	}
	w.Steps, data, err = readSteps(data, digestSize)
	if err != nil {
		return nil, nil, err
	}
	return w, data, nil
}

func readSteps(data []byte, digestSize int) ([]VOStep, []byte, error) {
	n, data, err := readUvarint(data)
	if err != nil {
		return nil, nil, fmt.Errorf("decoding step count: %w", err)
	}
	steps := make([]VOStep, 0, n)
	for i := uint64(0); i < n; i++ {
		if len(data) < 1 {
			return nil, nil, fmt.Errorf("VO truncated in step %d", i)
		}
		side := data[0]
		data = data[1:]
		var ak []byte
		ak, data, err = readBytes(data)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding step %d ancestor key: %w", i, err)
		}
		if len(data) < digestSize {
			return nil, nil, fmt.Errorf("VO truncated in step %d sibling digest", i)
		}
		sib := append([]byte{}, data[:digestSize]...)
		data = data[digestSize:]
		steps = append(steps, VOStep{Side: side, AncestorKey: decodeIntKey(ak), SiblingDigest: sib})
	}
	return steps, data, nil
}

func decodeIntKey(b []byte) IntKey {
	if len(b) == 0 {
		return Int(0)
	}
	mag := new(big.Int).SetBytes(b[1:])
	if b[0] == 1 {
		mag.Neg(mag)
	}
	return BigInt(mag)
}

func appendUvarint(buf []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	return append(buf, tmp[:n]...)
}

func readUvarint(data []byte) (uint64, []byte, error) {
	v, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, fmt.Errorf("malformed uvarint")
	}
	return v, data[n:], nil
}

func appendBytes(buf, b []byte) []byte {
	buf = appendUvarint(buf, uint64(len(b)))
	return append(buf, b...)
}

func readBytes(data []byte) ([]byte, []byte, error) {
	n, data, err := readUvarint(data)
	if err != nil {
		return nil, nil, err
	}
	if uint64(len(data)) < n {
		return nil, nil, fmt.Errorf("truncated byte field")
	}
	return append([]byte{}, data[:n]...), data[n:], nil
}
