package bn254

import (
	"fmt"
	"math/big"

	"github.com/fentec-project/bn256"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/zml"
)

type g1Point struct{ p *bn256.G1 }

func (g g1Point) Add(other zml.G1) zml.G1 {
	o, ok := other.(g1Point)
	if !ok {
		panic("bn254: mixed G1 implementation")
	}
	return g1Point{p: new(bn256.G1).Add(g.p, o.p)}
}

func (g g1Point) Neg() zml.G1 { return g1Point{p: new(bn256.G1).Neg(g.p)} }

func (g g1Point) ScalarMult(s zml.Fr) zml.G1 {
	return g1Point{p: new(bn256.G1).ScalarMult(g.p, s.Big())}
}

func (g g1Point) Equal(other zml.G1) bool {
	o, ok := other.(g1Point)
	if !ok {
		return false
	}
	return string(g.p.Marshal()) == string(o.p.Marshal())
}

func (g g1Point) Marshal() []byte { return g.p.Marshal() }

type g2Point struct{ p *bn256.G2 }

func (g g2Point) Add(other zml.G2) zml.G2 {
	o, ok := other.(g2Point)
	if !ok {
		panic("bn254: mixed G2 implementation")
	}
	return g2Point{p: new(bn256.G2).Add(g.p, o.p)}
}

func (g g2Point) Neg() zml.G2 { return g2Point{p: new(bn256.G2).Neg(g.p)} }

func (g g2Point) ScalarMult(s zml.Fr) zml.G2 {
	return g2Point{p: new(bn256.G2).ScalarMult(g.p, s.Big())}
}

func (g g2Point) Equal(other zml.G2) bool {
	o, ok := other.(g2Point)
	if !ok {
		return false
	}
	return string(g.p.Marshal()) == string(o.p.Marshal())
}

func (g g2Point) Marshal() []byte { return g.p.Marshal() }

type gtElem struct{ p *bn256.GT }

func (g gtElem) Mul(other zml.GT) zml.GT {
	o, ok := other.(gtElem)
	if !ok {
		panic("bn254: mixed GT implementation")
	}
	return gtElem{p: new(bn256.GT).Add(g.p, o.p)}
}

func (g gtElem) Div(other zml.GT) (zml.GT, error) {
	o, ok := other.(gtElem)
	if !ok {
		return nil, fmt.Errorf("%w: mixed GT implementation", abeerr.ErrWrongGroup)
	}
	inv := new(bn256.GT).Neg(o.p)
	return gtElem{p: new(bn256.GT).Add(g.p, inv)}, nil
}

func (g gtElem) Exp(s zml.Fr) zml.GT { return gtElem{p: new(bn256.GT).ScalarMult(g.p, s.Big())} }

func (g gtElem) Inv() zml.GT { return gtElem{p: new(bn256.GT).Neg(g.p)} }

func (g gtElem) Equal(other zml.GT) bool {
	o, ok := other.(gtElem)
	if !ok {
		return false
	}
	return string(g.p.Marshal()) == string(o.p.Marshal())
}

var gtIdentityBytes = new(bn256.GT).ScalarBaseMult(big.NewInt(0)).Marshal()

func (g gtElem) IsIdentity() bool {
	return string(g.p.Marshal()) == string(gtIdentityBytes)
}

func (g gtElem) Marshal() []byte { return g.p.Marshal() }

func (g gtElem) String() string { return g.p.String() }
