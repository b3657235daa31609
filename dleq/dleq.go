// Package dleq implements a non-interactive Chaum-Pedersen proof that two
// pairs (u, y1) in GT and (v, y2) in G1 share the same discrete log x:
// y1 = u^x and y2 = v^x. The ABE outsourced-decryption path uses this to
// let a user prove that its decryption key's blinding scalar zi matches a
// published commitment without disclosing zi.
package dleq

import (
	cryptorand "crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/zml"
)

// Proof is a Chaum-Pedersen proof of equal discrete logs.
type Proof struct {
	C, T *big.Int
	A    zml.GT
	B    zml.G1
}

// Generate produces a proof that y1 = u^x and y2 = v^x, sampling its
// commitment randomness from r. r must never be silently substituted with
// a package-level RNG: callers that need deterministic, reproducible
// proofs (e.g. for audit replay) depend on controlling r themselves.
func Generate(r io.Reader, order *big.Int, x zml.Fr, u, y1 zml.GT, v zml.G1, y2 zml.G1) (*Proof, error) {
	k, err := uniformNonZero(r, order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	kFr := zml.NewFr(k, order)

	a := u.Exp(kFr)
	b := v.ScalarMult(kFr)

	c := challenge(order, a, b, y1, y2)

	// t = k - c*x mod order
	t := new(big.Int).Mul(c, x.Big())
	t.Sub(k, t)
	t.Mod(t, order)

	return &Proof{C: c, T: t, A: a, B: b}, nil
}

// Verify checks that pi proves y1 = u^x and y2 = v^x for some x, without
// learning x.
func Verify(pi *Proof, order *big.Int, u, y1 zml.GT, v, y2 zml.G1) bool {
	if pi.C.Cmp(challenge(order, pi.A, pi.B, y1, y2)) != 0 {
		return false
	}
	tFr := zml.NewFr(pi.T, order)
	cFr := zml.NewFr(pi.C, order)

	ut := u.Exp(tFr)
	vt := v.ScalarMult(tFr)
	cy1 := y1.Exp(cFr)
	cy2 := y2.ScalarMult(cFr)

	a := ut.Mul(cy1)
	b := vt.Add(cy2)

	return pi.A.Equal(a) && pi.B.Equal(b)
}

// challenge derives the Fiat-Shamir challenge from the proof's commitments
// and the public pairs, exactly the way the original proof hashes its
// marshaled elements with SHA-256.
func challenge(order *big.Int, a zml.GT, b zml.G1, y1 zml.GT, y2 zml.G1) *big.Int {
	h := sha256.New()
	h.Write(a.Marshal())
	h.Write(b.Marshal())
	h.Write(y1.Marshal())
	h.Write(y2.Marshal())
	c := new(big.Int).SetBytes(h.Sum(nil))
	c.Mod(c, order)
	return c
}

func uniformNonZero(r io.Reader, order *big.Int) (*big.Int, error) {
	for {
		k, err := cryptorand.Int(r, order)
		if err != nil {
			return nil, err
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}
