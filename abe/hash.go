package abe

import (
	"crypto/sha256"
	"math/big"

	"github.com/openabe-go/oabe/zml"
)

// scalarHash maps an attribute string onto Zp by reducing its SHA-256
// digest modulo order, the same H2-style idiom ECPABE/ecpabe.go uses to
// turn an attribute or message string into a scalar exponent.
func scalarHash(s string, order *big.Int) zml.Fr {
	digest := sha256.Sum256([]byte(s))
	v := new(big.Int).SetBytes(digest[:])
	v.Mod(v, order)
	return zml.NewFr(v, order)
}
