// Package pksig is a thin ECDSA signing wrapper over the conventional NIST
// curves, wrapping crypto/ecdsa directly rather than reimplementing
// signature math.
package pksig

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"math/big"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/curveinfo"
)

// Curve maps a curveinfo wire id to the standard library elliptic.Curve.
func Curve(id curveinfo.CurveID) (elliptic.Curve, error) {
	switch id {
	case curveinfo.NISTP256ID:
		return elliptic.P256(), nil
	case curveinfo.NISTP384ID:
		return elliptic.P384(), nil
	case curveinfo.NISTP521ID:
		return elliptic.P521(), nil
	default:
		return nil, fmt.Errorf("%w: curve id 0x%02X has no ECDSA curve", abeerr.ErrUnsupportedCurve, byte(id))
	}
}

// KeyPair is a generated ECDSA signing key.
type KeyPair struct {
	Private *ecdsa.PrivateKey
	Public  *ecdsa.PublicKey
}

// GenerateKey creates a fresh signing keypair on curveID.
func GenerateKey(curveID curveinfo.CurveID) (*KeyPair, error) {
	curve, err := Curve(curveID)
	if err != nil {
		return nil, err
	}
	priv, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

// Signature is an ECDSA (r, s) pair.
type Signature struct {
	R, S *big.Int
}

// Sign hashes msg with SHA-256 and signs the digest.
func Sign(priv *ecdsa.PrivateKey, msg []byte) (*Signature, error) {
	digest := sha256.Sum256(msg)
	r, s, err := ecdsa.Sign(rand.Reader, priv, digest[:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrSignatureFailed, err)
	}
	return &Signature{R: r, S: s}, nil
}

// Verify checks sig against msg under pub.
func Verify(pub *ecdsa.PublicKey, msg []byte, sig *Signature) bool {
	digest := sha256.Sum256(msg)
	return ecdsa.Verify(pub, digest[:], sig.R, sig.S)
}
