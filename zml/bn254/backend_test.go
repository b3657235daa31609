package bn254

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/zml"
)

func TestFrArithmetic(t *testing.T) {
	backend := New()
	order := backend.Order()

	a, err := backend.RandomFr(rand.Reader)
	require.NoError(t, err)
	b, err := backend.RandomFr(rand.Reader)
	require.NoError(t, err)

	require.True(t, a.Add(b).Sub(b).Big().Cmp(a.Big()) == 0)

	inv, err := a.Inv()
	require.NoError(t, err)
	require.Equal(t, int64(1), a.Mul(inv).Big().Int64())

	roundTripped, err := zml.UnmarshalFr(a.Marshal(), order)
	require.NoError(t, err)
	require.Equal(t, a.Big(), roundTripped.Big())
}

func TestFrInvOfZeroFails(t *testing.T) {
	backend := New()
	zero := zml.NewFr(big.NewInt(0), backend.Order())
	_, err := zero.Inv()
	require.Error(t, err)
}

func TestG1MarshalRoundTrip(t *testing.T) {
	backend := New()
	p, err := backend.RandomG1(rand.Reader)
	require.NoError(t, err)

	got, err := backend.UnmarshalG1(p.Marshal())
	require.NoError(t, err)
	require.True(t, p.Equal(got))
}

func TestG2MarshalRoundTrip(t *testing.T) {
	backend := New()
	p, err := backend.RandomG2(rand.Reader)
	require.NoError(t, err)

	got, err := backend.UnmarshalG2(p.Marshal())
	require.NoError(t, err)
	require.True(t, p.Equal(got))
}

func TestGTMarshalRoundTrip(t *testing.T) {
	backend := New()
	p, err := backend.RandomGT(rand.Reader)
	require.NoError(t, err)

	got, err := backend.UnmarshalGT(p.Marshal())
	require.NoError(t, err)
	require.True(t, p.Equal(got))
}

func TestPairBilinearity(t *testing.T) {
	backend := New()
	a, err := backend.RandomFr(rand.Reader)
	require.NoError(t, err)
	b, err := backend.RandomFr(rand.Reader)
	require.NoError(t, err)

	g1 := backend.G1Generator()
	g2 := backend.G2Generator()

	lhs := backend.Pair(g1.ScalarMult(a), g2.ScalarMult(b))
	rhs := backend.Pair(g1, g2).Exp(a).Exp(b)
	require.True(t, lhs.Equal(rhs))
}

func TestMultiPairMatchesProductOfPairs(t *testing.T) {
	backend := New()
	a, err := backend.RandomG1(rand.Reader)
	require.NoError(t, err)
	b, err := backend.RandomG2(rand.Reader)
	require.NoError(t, err)
	c, err := backend.RandomG1(rand.Reader)
	require.NoError(t, err)
	d, err := backend.RandomG2(rand.Reader)
	require.NoError(t, err)

	got, err := backend.MultiPair([]zml.G1{a, c}, []zml.G2{b, d})
	require.NoError(t, err)

	want := backend.Pair(a, b).Mul(backend.Pair(c, d))
	require.True(t, got.Equal(want))
}

func TestMultiPairRejectsMismatchedLengths(t *testing.T) {
	backend := New()
	a, err := backend.RandomG1(rand.Reader)
	require.NoError(t, err)
	b, err := backend.RandomG2(rand.Reader)
	require.NoError(t, err)

	_, err = backend.MultiPair([]zml.G1{a}, []zml.G2{b, b})
	require.Error(t, err)
}

func TestHashToG1IsDeterministicAndDomainSeparated(t *testing.T) {
	backend := New()
	h1 := backend.HashToG1("cpabe-attr", "Doctor")
	h2 := backend.HashToG1("cpabe-attr", "Doctor")
	require.True(t, h1.Equal(h2))

	h3 := backend.HashToG1("kpabe-attr", "Doctor")
	require.False(t, h1.Equal(h3))
}
