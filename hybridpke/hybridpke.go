// Package hybridpke is a thin ECDH + AES-GCM hybrid public-key encryption
// wrapper, used where a caller wants conventional PKE alongside ABE rather
// than attribute-gated access. It generalizes VOABE.SymEnc/SymDec's
// GT-envelope-to-AES-key pattern to an ECDH-derived key and an
// authenticated cipher mode instead of bare CBC.
package hybridpke

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdh"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/openabe-go/oabe/abeerr"
)

// curve is the ECDH curve used for key agreement.
var curve = ecdh.P256()

// KeyPair is a generated ECDH keypair.
type KeyPair struct {
	Private *ecdh.PrivateKey
	Public  *ecdh.PublicKey
}

// GenerateKey creates a fresh ECDH keypair.
func GenerateKey() (*KeyPair, error) {
	priv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	return &KeyPair{Private: priv, Public: priv.PublicKey()}, nil
}

// Ciphertext is an ephemeral public key plus an AES-GCM sealed box.
type Ciphertext struct {
	EphemeralPublic []byte
	Nonce           []byte
	Sealed          []byte
}

// Seal encrypts plaintext to recipient's public key using a fresh
// ephemeral ECDH exchange and an HKDF-SHA256-derived AES-256-GCM key.
func Seal(recipient *ecdh.PublicKey, plaintext []byte) (*Ciphertext, error) {
	eph, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	shared, err := eph.ECDH(recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidGroupParams, err)
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrSerializationFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrSerializationFailed, err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return &Ciphertext{EphemeralPublic: eph.PublicKey().Bytes(), Nonce: nonce, Sealed: sealed}, nil
}

// Open decrypts a Ciphertext produced by Seal using the recipient's
// private key.
func Open(priv *ecdh.PrivateKey, ct *Ciphertext) ([]byte, error) {
	ephPub, err := curve.NewPublicKey(ct.EphemeralPublic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDeserializationFailed, err)
	}
	shared, err := priv.ECDH(ephPub)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidGroupParams, err)
	}
	key, err := deriveKey(shared)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDeserializationFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDeserializationFailed, err)
	}
	plaintext, err := gcm.Open(nil, ct.Nonce, ct.Sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func deriveKey(shared []byte) ([]byte, error) {
	kdf := hkdf.New(sha256.New, shared, nil, []byte("oabe-hybridpke"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	return key, nil
}
