// Package zml is the scalar and group arithmetic abstraction every other
// package in this module builds on. It defines backend-agnostic types
// (Fr, G1, G2, GT, Group) and a Backend interface; zml/bn254 supplies the
// one concrete backend this module ships.
package zml

import (
	"fmt"
	"io"
	"math/big"

	"github.com/openabe-go/oabe/abeerr"
)

// Fr is a scalar field element, always held reduced modulo the curve order.
type Fr struct {
	v     *big.Int
	order *big.Int
}

// NewFr reduces v modulo order and wraps the result.
func NewFr(v *big.Int, order *big.Int) Fr {
	r := new(big.Int).Mod(v, order)
	return Fr{v: r, order: order}
}

// Big returns the scalar's big.Int value. Callers must not mutate it.
func (f Fr) Big() *big.Int { return f.v }

// Order returns the field modulus this scalar was reduced against.
func (f Fr) Order() *big.Int { return f.order }

// IsZero reports whether the scalar is the additive identity.
func (f Fr) IsZero() bool { return f.v.Sign() == 0 }

// Add returns f + g mod order.
func (f Fr) Add(g Fr) Fr { return NewFr(new(big.Int).Add(f.v, g.v), f.order) }

// Sub returns f - g mod order.
func (f Fr) Sub(g Fr) Fr { return NewFr(new(big.Int).Sub(f.v, g.v), f.order) }

// Mul returns f * g mod order.
func (f Fr) Mul(g Fr) Fr { return NewFr(new(big.Int).Mul(f.v, g.v), f.order) }

// Neg returns -f mod order.
func (f Fr) Neg() Fr { return NewFr(new(big.Int).Neg(f.v), f.order) }

// Inv returns the multiplicative inverse of f mod order. Returns an error
// if f is zero.
func (f Fr) Inv() (Fr, error) {
	if f.IsZero() {
		return Fr{}, abeerr.ErrDivideByZero
	}
	return NewFr(new(big.Int).ModInverse(f.v, f.order), f.order), nil
}

// byteLen is the minimal big-endian byte length needed to hold order.
func byteLen(order *big.Int) int { return (order.BitLen() + 7) / 8 }

// Marshal encodes f as big-endian bytes, left-zero-padded to the byte
// length of its order. This padding, not the field's native form, is the
// stable wire contract (see DESIGN.md's Fr encoding note).
func (f Fr) Marshal() []byte {
	n := byteLen(f.order)
	out := make([]byte, n)
	b := f.v.Bytes()
	copy(out[n-len(b):], b)
	return out
}

// UnmarshalFr decodes bytes produced by Fr.Marshal against order.
func UnmarshalFr(b []byte, order *big.Int) (Fr, error) {
	if len(b) != byteLen(order) {
		return Fr{}, fmt.Errorf("%w: scalar has wrong byte length", abeerr.ErrInvalidLength)
	}
	return NewFr(new(big.Int).SetBytes(b), order), nil
}

// G1 is a point in the first source group.
type G1 interface {
	Add(G1) G1
	Neg() G1
	ScalarMult(Fr) G1
	Equal(G1) bool
	Marshal() []byte
}

// G2 is a point in the second source group (the twist).
type G2 interface {
	Add(G2) G2
	Neg() G2
	ScalarMult(Fr) G2
	Equal(G2) bool
	Marshal() []byte
}

// GT is an element of the pairing target group.
type GT interface {
	Mul(GT) GT
	Div(GT) (GT, error)
	Exp(Fr) GT
	Inv() GT
	Equal(GT) bool
	IsIdentity() bool
	Marshal() []byte
	String() string
}

// Backend implements the group arithmetic for one concrete curve.
type Backend interface {
	Order() *big.Int
	G1Generator() G1
	G2Generator() G2
	RandomFr(r io.Reader) (Fr, error)
	RandomG1(r io.Reader) (G1, error)
	RandomG2(r io.Reader) (G2, error)
	RandomGT(r io.Reader) (GT, error)
	HashToG1(domain string, msg string) G1
	Pair(a G1, b G2) GT
	MultiPair(as []G1, bs []G2) (GT, error)
	UnmarshalG1([]byte) (G1, error)
	UnmarshalG2([]byte) (G2, error)
	UnmarshalGT([]byte) (GT, error)
}

// Group is an immutable, shareable handle binding a curve identity to its
// Backend. It is safe for concurrent read access once constructed.
type Group struct {
	CurveName string
	Backend   Backend
}

// NewGroup binds a curve name to a backend.
func NewGroup(curveName string, backend Backend) *Group {
	return &Group{CurveName: curveName, Backend: backend}
}

// Order is a convenience accessor for Backend.Order().
func (g *Group) Order() *big.Int { return g.Backend.Order() }
