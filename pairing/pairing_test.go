package pairing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/curveinfo"
)

func TestNewContextBN254(t *testing.T) {
	ctx, err := NewContext(curveinfo.BNP254ID)
	require.NoError(t, err)
	require.Equal(t, "BN_P254", ctx.Group.CurveName)
	require.NotNil(t, ctx.G1Generator())
	require.NotNil(t, ctx.G2Generator())
}

func TestNewContextRejectsUnsupportedKnownCurve(t *testing.T) {
	_, err := NewContext(curveinfo.NISTP256ID)
	require.Error(t, err)
}

func TestNewContextRejectsUnknownCurve(t *testing.T) {
	_, err := NewContext(curveinfo.CurveID(0xFE))
	require.Error(t, err)
}

func TestPairIsBilinear(t *testing.T) {
	ctx, err := NewContext(curveinfo.BNP254ID)
	require.NoError(t, err)

	a, err := ctx.RandomZp()
	require.NoError(t, err)
	b, err := ctx.RandomZp()
	require.NoError(t, err)

	lhs := ctx.Pair(ctx.G1Generator().ScalarMult(a), ctx.G2Generator().ScalarMult(b))
	rhs := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(a).Exp(b)
	require.True(t, lhs.Equal(rhs))
}

func TestHashToG1IsDeterministic(t *testing.T) {
	ctx, err := NewContext(curveinfo.BNP254ID)
	require.NoError(t, err)

	h1 := ctx.HashToG1("domain", "attribute")
	h2 := ctx.HashToG1("domain", "attribute")
	require.True(t, h1.Equal(h2))

	h3 := ctx.HashToG1("domain", "other-attribute")
	require.False(t, h1.Equal(h3))
}
