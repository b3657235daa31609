package lsss

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/curveinfo"
	"github.com/openabe-go/oabe/pairing"
	"github.com/openabe-go/oabe/policy"
	"github.com/openabe-go/oabe/zml"
)

func attrSet(attrs ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		set[a] = struct{}{}
	}
	return set
}

// reconstructSecret shares secret s through m, builds GT shares
// e(g,g)^{lambda_i} for the rows labeled by an attribute in attrs, and
// returns the value lsss.Reconstruct recombines them into.
func reconstructSecret(t *testing.T, m *MSP, ctx *pairing.Context, s *big.Int, attrs map[string]struct{}) (zml.GT, error) {
	t.Helper()
	p := ctx.Order()
	lambda, err := m.Share(s, p)
	require.NoError(t, err)

	base := ctx.Pair(ctx.G1Generator(), ctx.G2Generator())
	shares := make(map[int]zml.GT)
	for _, i := range m.RowsForAttributes(attrs) {
		fr := zml.NewFr(lambda[i], p)
		shares[i] = base.Exp(fr)
	}
	return Reconstruct(m, shares, p)
}

func newTestContext(t *testing.T) *pairing.Context {
	t.Helper()
	ctx, err := pairing.NewContext(curveinfo.BNP254ID)
	require.NoError(t, err)
	return ctx
}

func TestBuildAndReconstructAnd(t *testing.T) {
	ctx := newTestContext(t)
	tree, err := policy.Parse("Doctor and Hospital")
	require.NoError(t, err)
	tree = tree.Canonicalize()

	m, err := Build(tree, ctx.Order())
	require.NoError(t, err)
	require.Len(t, m.RowToAttrib, 2)

	s := big.NewInt(42)
	expected := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(zml.NewFr(s, ctx.Order()))

	got, err := reconstructSecret(t, m, ctx, s, attrSet("Doctor", "Hospital"))
	require.NoError(t, err)
	require.True(t, expected.Equal(got))

	_, err = reconstructSecret(t, m, ctx, s, attrSet("Doctor"))
	require.Error(t, err)
}

// TestBuildAndReconstructTernaryAnd guards against a broken n-ary AND split
// that would let any 2 of 3 children reconstruct the secret, degenerating
// a flattened 3-way AND into a 2-of-3 threshold.
func TestBuildAndReconstructTernaryAnd(t *testing.T) {
	ctx := newTestContext(t)
	tree, err := policy.Parse("a and (b and c)")
	require.NoError(t, err)
	tree = tree.Canonicalize()
	require.Equal(t, policy.And, tree.Gate)
	require.Len(t, tree.Children, 3)

	m, err := Build(tree, ctx.Order())
	require.NoError(t, err)
	require.Len(t, m.RowToAttrib, 3)

	s := big.NewInt(55)
	expected := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(zml.NewFr(s, ctx.Order()))

	got, err := reconstructSecret(t, m, ctx, s, attrSet("a", "b", "c"))
	require.NoError(t, err)
	require.True(t, expected.Equal(got))

	for _, missing := range []map[string]struct{}{
		attrSet("a", "b"),
		attrSet("a", "c"),
		attrSet("b", "c"),
	} {
		_, err := reconstructSecret(t, m, ctx, s, missing)
		require.Error(t, err)
	}
}

func TestBuildAndReconstructOr(t *testing.T) {
	ctx := newTestContext(t)
	tree, err := policy.Parse("Doctor or Nurse")
	require.NoError(t, err)
	tree = tree.Canonicalize()

	m, err := Build(tree, ctx.Order())
	require.NoError(t, err)

	s := big.NewInt(7)
	expected := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(zml.NewFr(s, ctx.Order()))

	for _, attrs := range []map[string]struct{}{attrSet("Doctor"), attrSet("Nurse"), attrSet("Doctor", "Nurse")} {
		got, err := reconstructSecret(t, m, ctx, s, attrs)
		require.NoError(t, err)
		require.True(t, expected.Equal(got))
	}

	_, err = reconstructSecret(t, m, ctx, s, attrSet("Admin"))
	require.Error(t, err)
}

func TestBuildAndReconstructThreshold(t *testing.T) {
	ctx := newTestContext(t)
	tree, err := policy.Parse("2 of (A, B, C)")
	require.NoError(t, err)
	tree = tree.Canonicalize()

	m, err := Build(tree, ctx.Order())
	require.NoError(t, err)

	s := big.NewInt(123)
	expected := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(zml.NewFr(s, ctx.Order()))

	got, err := reconstructSecret(t, m, ctx, s, attrSet("A", "B"))
	require.NoError(t, err)
	require.True(t, expected.Equal(got))

	_, err = reconstructSecret(t, m, ctx, s, attrSet("A"))
	require.Error(t, err)
}

func TestBuildAndReconstructNested(t *testing.T) {
	ctx := newTestContext(t)
	tree, err := policy.Parse("Doctor and (Nurse or Admin)")
	require.NoError(t, err)
	tree = tree.Canonicalize()

	m, err := Build(tree, ctx.Order())
	require.NoError(t, err)

	s := big.NewInt(99)
	expected := ctx.Pair(ctx.G1Generator(), ctx.G2Generator()).Exp(zml.NewFr(s, ctx.Order()))

	got, err := reconstructSecret(t, m, ctx, s, attrSet("Doctor", "Admin"))
	require.NoError(t, err)
	require.True(t, expected.Equal(got))

	_, err = reconstructSecret(t, m, ctx, s, attrSet("Nurse", "Admin"))
	require.Error(t, err)
}
