package zml_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/zml"
	"github.com/openabe-go/oabe/zml/bn254"
)

func TestNewFrReducesModOrder(t *testing.T) {
	order := big.NewInt(17)
	f := zml.NewFr(big.NewInt(20), order)
	require.Equal(t, int64(3), f.Big().Int64())
}

func TestFrMarshalIsLeftPadded(t *testing.T) {
	order := new(big.Int).Lsh(big.NewInt(1), 255) // forces a 32-byte encoding
	f := zml.NewFr(big.NewInt(1), order)
	raw := f.Marshal()
	require.Len(t, raw, 32)
	require.Equal(t, byte(1), raw[len(raw)-1])
	for _, b := range raw[:len(raw)-1] {
		require.Equal(t, byte(0), b)
	}
}

func TestUnmarshalFrRejectsWrongLength(t *testing.T) {
	order := big.NewInt(101)
	_, err := zml.UnmarshalFr([]byte{1, 2, 3}, order)
	require.Error(t, err)
}

func TestFrIsZero(t *testing.T) {
	order := big.NewInt(101)
	require.True(t, zml.NewFr(big.NewInt(0), order).IsZero())
	require.False(t, zml.NewFr(big.NewInt(1), order).IsZero())
}

func TestGroupOrderDelegatesToBackend(t *testing.T) {
	g := zml.NewGroup("BN_P254", bn254.New())
	require.Equal(t, bn254.New().Order(), g.Order())
	require.Equal(t, "BN_P254", g.CurveName)
}
