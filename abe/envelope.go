// Package abe implements the Waters-style CP-ABE scheme driver (the
// primary scheme) and a GPSW-style KP-ABE dual, both built on zml,
// pairing, policy, lsss and container. Keys and ciphertext group elements
// are returned as Go values: they are not stored in a keystore.Store and
// are not encoded through the serialization package. Message
// confidentiality under a GT envelope element is handled by hybrid
// encryption: the envelope is hashed through HKDF-SHA256 into an
// AES-256-GCM key, generalizing VOABE.SymEnc/SymDec's SHA-256(GT.String())-
// as-CBC-key idiom to an authenticated cipher.
package abe

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/zml"
)

// symEncrypt seals plaintext under a key derived from envelope's marshaled
// bytes, returning nonce||ciphertext.
func symEncrypt(envelope zml.GT, plaintext []byte) ([]byte, error) {
	key, err := deriveSymKey(envelope)
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
	sealed := gcm.Seal(nonce, nonce, plaintext, nil)
	return sealed, nil
}

// symDecrypt reverses symEncrypt.
func symDecrypt(envelope zml.GT, blob []byte) ([]byte, error) {
	key, err := deriveSymKey(envelope)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	if len(blob) < gcm.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext shorter than nonce", abeerr.ErrInvalidLength)
	}
	nonce, sealed := blob[:gcm.NonceSize()], blob[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func deriveSymKey(envelope zml.GT) ([]byte, error) {
	kdf := hkdf.New(sha256.New, envelope.Marshal(), nil, []byte("oabe-abe-envelope"))
	key := make([]byte, 32)
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	return key, nil
}
