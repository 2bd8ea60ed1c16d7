package mrbt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tsekho/mrbt"
)

func mustHasher(t *testing.T, name string) mrbt.Hasher {
	h, err := mrbt.NewHasher(name)
	require.NoError(t, err)
	return h
}

func TestEmptyTreeDigest(t *testing.T) {
	h := mustHasher(t, mrbt.SHA256)
	tree := mrbt.New(h)
	s := h.Combine([]byte{0x00}, []byte{0x00})
	require.Equal(t, mrbt.RootDigest{Left: s, Right: s}, tree.Digest())
	require.NoError(t, tree.SelfTest())
	require.Equal(t, 0, tree.Len())
}

func TestInsertGetContains(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	for _, k := range []int64{5, 3, 8, 1, 9, 7} {
		ok := tree.Insert(mrbt.Int(k), []byte{byte(k)})
		require.True(t, ok)
	}
	require.Equal(t, 6, tree.Len())
	require.NoError(t, tree.SelfTest())

	for _, k := range []int64{5, 3, 8, 1, 9, 7} {
		v, ok := tree.Get(mrbt.Int(k))
		require.True(t, ok)
		require.Equal(t, []byte{byte(k)}, v)
	}
	_, ok := tree.Get(mrbt.Int(42))
	require.False(t, ok)
	require.False(t, tree.Contains(mrbt.Int(42)))
	require.True(t, tree.Contains(mrbt.Int(5)))

	// duplicate insert is a no-op
	require.False(t, tree.Insert(mrbt.Int(5), []byte("replacement")))
	v, _ := tree.Get(mrbt.Int(5))
	require.Equal(t, []byte{5}, v)
}

func TestIterateAscending(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	keys := []int64{5, 3, 8, 1, 9, 7}
	for _, k := range keys {
		tree.Insert(mrbt.Int(k), nil)
	}
	var seen []int64
	tree.Iterate(func(k mrbt.Key, _ []byte) bool {
		seen = append(seen, k.(mrbt.IntKey).Int64())
		return true
	})
	require.Equal(t, []int64{1, 3, 5, 7, 8, 9}, seen)
}

func TestByKeysOrder(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	for _, k := range []int64{5, 3, 8, 1, 9, 7} {
		tree.Insert(mrbt.Int(k), []byte{byte(k)})
	}
	k, v, ok := tree.At(0)
	require.True(t, ok)
	require.Equal(t, int64(1), k.(mrbt.IntKey).Int64())
	require.Equal(t, []byte{1}, v)

	k, v, ok = tree.At(-1)
	require.True(t, ok)
	require.Equal(t, int64(9), k.(mrbt.IntKey).Int64())
	require.Equal(t, []byte{9}, v)

	_, _, ok = tree.At(100)
	require.False(t, ok)
	_, _, ok = tree.At(-7)
	require.False(t, ok)

	require.True(t, tree.SetAt(0, []byte{42}))
	_, v, _ = tree.At(0)
	require.Equal(t, []byte{42}, v)
	require.False(t, tree.SetAt(6, []byte{0}))
}

func TestSetInPlaceVsInsert(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	tree.Set(mrbt.Int(1), []byte("a"))
	v, ok := tree.Get(mrbt.Int(1))
	require.True(t, ok)
	require.Equal(t, []byte("a"), v)

	tree.Set(mrbt.Int(1), []byte("b"))
	v, _ = tree.Get(mrbt.Int(1))
	require.Equal(t, []byte("b"), v)
	require.Equal(t, 1, tree.Len())
}

func TestDeleteRestoresDigest(t *testing.T) {
	hasher := mustHasher(t, mrbt.SHA256)
	tree := mrbt.New(hasher)
	for _, k := range []int64{5, 3, 8, 1, 9, 7} {
		tree.Insert(mrbt.Int(k), []byte{byte(k)})
	}
	before := tree.Digest()

	require.True(t, tree.Delete(mrbt.Int(5)))
	require.NoError(t, tree.SelfTest())
	require.False(t, tree.Contains(mrbt.Int(5)))
	require.NotEqual(t, before, tree.Digest())

	require.True(t, tree.Insert(mrbt.Int(5), []byte{5}))
	require.NoError(t, tree.SelfTest())
	require.Equal(t, before, tree.Digest())
}

func TestDeleteDownToEmpty(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	keys := []int64{5, 3, 8, 1, 9, 7}
	for _, k := range keys {
		tree.Insert(mrbt.Int(k), []byte{byte(k)})
	}
	for _, k := range keys {
		require.True(t, tree.Delete(mrbt.Int(k)))
		require.NoError(t, tree.SelfTest())
	}
	require.Equal(t, 0, tree.Len())

	empty := mrbt.New(mustHasher(t, mrbt.SHA256))
	require.True(t, tree.Equal(empty))
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	tree.Insert(mrbt.Int(1), []byte("a"))
	require.False(t, tree.Delete(mrbt.Int(2)))
	require.Equal(t, 1, tree.Len())
}

func TestDigestPermutationIndependentViaBulkLoad(t *testing.T) {
	hasher := mustHasher(t, mrbt.SHA256)
	entries := map[mrbt.Key][]byte{
		mrbt.Int(5): {5}, mrbt.Int(3): {3}, mrbt.Int(8): {8},
		mrbt.Int(1): {1}, mrbt.Int(9): {9}, mrbt.Int(7): {7},
	}
	a := mrbt.NewFromMap(hasher, entries)
	b := mrbt.NewFromSeq(hasher, []mrbt.KV{
		{Key: mrbt.Int(9), Value: []byte{9}}, {Key: mrbt.Int(1), Value: []byte{1}},
		{Key: mrbt.Int(7), Value: []byte{7}}, {Key: mrbt.Int(5), Value: []byte{5}},
		{Key: mrbt.Int(3), Value: []byte{3}}, {Key: mrbt.Int(8), Value: []byte{8}},
	})
	require.True(t, a.Equal(b))
}

func TestNewFromSeqFirstOccurrenceWins(t *testing.T) {
	hasher := mustHasher(t, mrbt.SHA256)
	tree := mrbt.NewFromSeq(hasher, []mrbt.KV{
		{Key: mrbt.Int(1), Value: []byte("first")},
		{Key: mrbt.Int(1), Value: []byte("second")},
	})
	v, ok := tree.Get(mrbt.Int(1))
	require.True(t, ok)
	require.Equal(t, []byte("first"), v)
}

func TestStringDump(t *testing.T) {
	tree := mrbt.New(mustHasher(t, mrbt.SHA256))
	tree.Insert(mrbt.Int(1), []byte("a"))
	require.Contains(t, tree.String(), "leaf(1)")
	require.Contains(t, tree.String(), "+inf")
}
