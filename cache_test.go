package mrbt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tsekho/mrbt"
)

func TestVerifiedGetCacheHitAndInvalidation(t *testing.T) {
	hasher := mustHasher(t, mrbt.SHA256)
	tree := mrbt.New(hasher, mrbt.WithCache(16))
	tree.Insert(mrbt.Int(1), []byte("a"))

	v1, vo1, ok1 := tree.GetVerified(mrbt.Int(1))
	v2, vo2, ok2 := tree.GetVerified(mrbt.Int(1))
	require.Equal(t, v1, v2)
	require.Equal(t, ok1, ok2)
	require.Equal(t, vo1, vo2)

	// a mutation changes the root digest, so the old cache key no
	// longer applies; the result must still be correct post-mutation.
	tree.Insert(mrbt.Int(2), []byte("b"))
	v3, vo3, ok3 := tree.GetVerified(mrbt.Int(1))
	require.True(t, ok3)
	require.Equal(t, []byte("a"), v3)
	valid, _, err := mrbt.Verify(tree.Digest(), tree.Hasher(), vo3)
	require.NoError(t, err)
	require.True(t, valid)
}
