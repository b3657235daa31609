package abe

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openabe-go/oabe/curveinfo"
	"github.com/openabe-go/oabe/pairing"
	"github.com/openabe-go/oabe/policy"
)

func newCPTestScheme(t *testing.T) *CPScheme {
	t.Helper()
	ctx, err := pairing.NewContext(curveinfo.BNP254ID)
	require.NoError(t, err)
	return NewCPScheme(ctx)
}

func TestCPABEEncryptDecryptAnd(t *testing.T) {
	s := newCPTestScheme(t)
	pp, msk, err := s.Setup()
	require.NoError(t, err)

	tree, err := policy.Parse("Doctor and Hospital")
	require.NoError(t, err)

	sk, err := s.KeyGen(pp, msk, []string{"Doctor", "Hospital"})
	require.NoError(t, err)

	ct, err := s.Encrypt(pp, tree, []byte("patient record"))
	require.NoError(t, err)

	plaintext, err := s.Decrypt(ct, sk)
	require.NoError(t, err)
	require.Equal(t, []byte("patient record"), plaintext)
}

func TestCPABEEncryptDecryptOrAndThreshold(t *testing.T) {
	s := newCPTestScheme(t)
	pp, msk, err := s.Setup()
	require.NoError(t, err)

	cases := []struct {
		policyStr string
		keyAttrs  []string
	}{
		{"Doctor or Nurse", []string{"Nurse"}},
		{"2 of (A, B, C)", []string{"A", "C"}},
		{"Doctor and (Nurse or Admin)", []string{"Doctor", "Admin"}},
	}
	for _, c := range cases {
		tree, err := policy.Parse(c.policyStr)
		require.NoError(t, err)

		sk, err := s.KeyGen(pp, msk, c.keyAttrs)
		require.NoError(t, err)

		ct, err := s.Encrypt(pp, tree, []byte("payload:"+c.policyStr))
		require.NoError(t, err)

		plaintext, err := s.Decrypt(ct, sk)
		require.NoError(t, err, "policy %q", c.policyStr)
		require.Equal(t, []byte("payload:"+c.policyStr), plaintext)
	}
}

// TestCPABETernaryAndRequiresAllThreeAttributes guards the CP-ABE path
// against a broken n-ary AND split in the LSSS layer: any 2 of 3
// attributes under a flattened 3-way AND must fail to decrypt.
func TestCPABETernaryAndRequiresAllThreeAttributes(t *testing.T) {
	s := newCPTestScheme(t)
	pp, msk, err := s.Setup()
	require.NoError(t, err)

	tree, err := policy.Parse("a and (b and c)")
	require.NoError(t, err)

	ct, err := s.Encrypt(pp, tree, []byte("ternary and payload"))
	require.NoError(t, err)

	full, err := s.KeyGen(pp, msk, []string{"a", "b", "c"})
	require.NoError(t, err)
	plaintext, err := s.Decrypt(ct, full)
	require.NoError(t, err)
	require.Equal(t, []byte("ternary and payload"), plaintext)

	for _, attrs := range [][]string{{"a", "b"}, {"a", "c"}, {"b", "c"}} {
		sk, err := s.KeyGen(pp, msk, attrs)
		require.NoError(t, err)
		_, err = s.Decrypt(ct, sk)
		require.Error(t, err, "attrs %v", attrs)
	}
}

func TestCPABEDecryptFailsWhenPolicyUnsatisfied(t *testing.T) {
	s := newCPTestScheme(t)
	pp, msk, err := s.Setup()
	require.NoError(t, err)

	tree, err := policy.Parse("Doctor and Hospital")
	require.NoError(t, err)

	sk, err := s.KeyGen(pp, msk, []string{"Doctor"})
	require.NoError(t, err)

	ct, err := s.Encrypt(pp, tree, []byte("secret"))
	require.NoError(t, err)

	_, err = s.Decrypt(ct, sk)
	require.Error(t, err)
}

func TestCPABETwoIndependentSetupsAreNotInterchangeable(t *testing.T) {
	s := newCPTestScheme(t)
	pp1, msk1, err := s.Setup()
	require.NoError(t, err)
	pp2, _, err := s.Setup()
	require.NoError(t, err)

	tree, err := policy.Parse("Doctor")
	require.NoError(t, err)

	sk, err := s.KeyGen(pp1, msk1, []string{"Doctor"})
	require.NoError(t, err)

	ct, err := s.Encrypt(pp2, tree, []byte("mismatched params"))
	require.NoError(t, err)

	_, err = s.Decrypt(ct, sk)
	require.Error(t, err)
}

func TestCPABEContainerCarriesBlob(t *testing.T) {
	s := newCPTestScheme(t)
	pp, msk, err := s.Setup()
	require.NoError(t, err)
	_ = msk

	tree, err := policy.Parse("Doctor")
	require.NoError(t, err)
	ct, err := s.Encrypt(pp, tree, []byte("body"))
	require.NoError(t, err)

	c, err := ct.Container(curveinfo.BNP254ID)
	require.NoError(t, err)
	require.Equal(t, ct.Blob, c.Body)
}
