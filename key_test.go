package mrbt_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tsekho/mrbt"
)

func TestIntKeyCompare(t *testing.T) {
	require.Equal(t, -1, mrbt.Int(1).Compare(mrbt.Int(2)))
	require.Equal(t, 0, mrbt.Int(2).Compare(mrbt.Int(2)))
	require.Equal(t, 1, mrbt.Int(3).Compare(mrbt.Int(2)))
}

func TestIntKeyNegative(t *testing.T) {
	neg := mrbt.Int(-5)
	require.Equal(t, -1, neg.Compare(mrbt.Int(0)))
	require.Equal(t, int64(-5), neg.Int64())
}

func TestBigIntKey(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 256)
	k := mrbt.BigInt(huge)
	require.Equal(t, 0, k.Compare(mrbt.BigInt(new(big.Int).Set(huge))))
	require.NotEmpty(t, k.Bytes())
}

func TestIntKeyCompareAgainstWrongType(t *testing.T) {
	type otherKey struct{ mrbt.Key }
	require.Panics(t, func() {
		mrbt.Int(1).Compare(otherKey{})
	})
}
