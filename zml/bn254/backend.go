// Package bn254 is the concrete zml.Backend for the BN254 pairing curve
// (wire id curveinfo.BNP254ID), built directly on fentec-project/bn256.
package bn254

import (
	cryptorand "crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/fentec-project/bn256"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/zml"
)

// Backend is the BN254 implementation of zml.Backend.
type Backend struct{}

// New returns a ready-to-use BN254 backend.
func New() *Backend { return &Backend{} }

func (b *Backend) Order() *big.Int { return bn256.Order }

func (b *Backend) G1Generator() zml.G1 {
	return g1Point{p: new(bn256.G1).ScalarBaseMult(big.NewInt(1))}
}

func (b *Backend) G2Generator() zml.G2 {
	return g2Point{p: new(bn256.G2).ScalarBaseMult(big.NewInt(1))}
}

func (b *Backend) RandomFr(r io.Reader) (zml.Fr, error) {
	k, err := uniformNonZero(r, bn256.Order)
	if err != nil {
		return zml.Fr{}, err
	}
	return zml.NewFr(k, bn256.Order), nil
}

func (b *Backend) RandomG1(r io.Reader) (zml.G1, error) {
	k, g1, err := bn256.RandomG1(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	_ = k
	return g1Point{p: g1}, nil
}

func (b *Backend) RandomG2(r io.Reader) (zml.G2, error) {
	k, g2, err := bn256.RandomG2(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	_ = k
	return g2Point{p: g2}, nil
}

func (b *Backend) RandomGT(r io.Reader) (zml.GT, error) {
	k, gt, err := bn256.RandomGT(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	_ = k
	return gtElem{p: gt}, nil
}

// HashToG1 hashes domain||msg onto G1. fentec-project/bn256 exposes a
// direct string-to-G1 hash (HashG1); domain separation is folded into the
// input string rather than a separate DST parameter, matching how
// ECPABE's and FEABSE's H1-style helpers call it.
func (b *Backend) HashToG1(domain string, msg string) zml.G1 {
	g1, err := bn256.HashG1(domain + "|" + msg)
	if err != nil {
		// HashG1 only fails if the backing RNG is broken; degrade to the
		// generator-exponentiation form ECPABE's H1 helper uses so
		// callers never have to handle an error from a hash function.
		h := new(big.Int).SetBytes([]byte(domain + "|" + msg))
		h.Mod(h, bn256.Order)
		return g1Point{p: new(bn256.G1).ScalarBaseMult(h)}
	}
	return g1Point{p: g1}
}

func (b *Backend) Pair(a zml.G1, bb zml.G2) zml.GT {
	ap := a.(g1Point).p
	bp := bb.(g2Point).p
	return gtElem{p: bn256.Pair(ap, bp)}
}

func (b *Backend) MultiPair(as []zml.G1, bs []zml.G2) (zml.GT, error) {
	if len(as) != len(bs) {
		return nil, fmt.Errorf("%w: multi-pairing slices have different lengths", abeerr.ErrInvalidInput)
	}
	if len(as) == 0 {
		return nil, fmt.Errorf("%w: empty multi-pairing input", abeerr.ErrInvalidInput)
	}
	acc := bn256.Pair(as[0].(g1Point).p, bs[0].(g2Point).p)
	for i := 1; i < len(as); i++ {
		acc = new(bn256.GT).Add(acc, bn256.Pair(as[i].(g1Point).p, bs[i].(g2Point).p))
	}
	return gtElem{p: acc}, nil
}

func (b *Backend) UnmarshalG1(data []byte) (zml.G1, error) {
	p := new(bn256.G1)
	if _, err := p.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: malformed G1 point", abeerr.ErrDeserializationFailed)
	}
	return g1Point{p: p}, nil
}

func (b *Backend) UnmarshalG2(data []byte) (zml.G2, error) {
	p := new(bn256.G2)
	if _, err := p.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: malformed G2 point", abeerr.ErrDeserializationFailed)
	}
	return g2Point{p: p}, nil
}

func (b *Backend) UnmarshalGT(data []byte) (zml.GT, error) {
	p := new(bn256.GT)
	if _, err := p.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("%w: malformed GT element", abeerr.ErrDeserializationFailed)
	}
	return gtElem{p: p}, nil
}

// uniformNonZero samples a uniform value in [1, max), rerolling on 0.
func uniformNonZero(r io.Reader, max *big.Int) (*big.Int, error) {
	for {
		k, err := cryptorand.Int(r, max)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}
