// Package container implements the ciphertext wire container: a 19-byte
// header (library version, curve id, scheme id, 16-byte uid) plus a
// length-prefixed body, matching the original's exportToBytes/loadFromBytes
// framing.
package container

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/bytestring"
	"github.com/openabe-go/oabe/curveinfo"
)

// UIDLen is the fixed byte length of a container's random identifier.
const UIDLen = 16

// LibraryVersion is the container format version this package writes and
// the newest version it will accept on load.
const LibraryVersion = 0x02

// SchemeID identifies which ABE/signature/PKE scheme produced a body.
type SchemeID byte

const (
	SchemeNone   SchemeID = 0x00
	SchemeCPABE  SchemeID = 0x01
	SchemeKPABE  SchemeID = 0x02
	SchemePKSIG  SchemeID = 0x03
	SchemeHybrid SchemeID = 0x04
)

// Ciphertext is the header plus opaque body of a serialized scheme output.
type Ciphertext struct {
	LibVersion byte
	CurveID    curveinfo.CurveID
	Scheme     SchemeID
	UID        [UIDLen]byte
	Body       []byte
}

// NewCiphertext builds a container with a freshly-generated random UID.
func NewCiphertext(curveID curveinfo.CurveID, scheme SchemeID, body []byte) (*Ciphertext, error) {
	var uid [UIDLen]byte
	if _, err := io.ReadFull(rand.Reader, uid[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	return &Ciphertext{LibVersion: LibraryVersion, CurveID: curveID, Scheme: scheme, UID: uid, Body: body}, nil
}

// Header returns the 19-byte header: libVersion || curveID || schemeID || uid.
func (c *Ciphertext) Header() []byte {
	out := make([]byte, 0, 3+UIDLen)
	out = append(out, c.LibVersion, byte(c.CurveID), byte(c.Scheme))
	out = append(out, c.UID[:]...)
	return out
}

// ExportToBytes renders the container as smartPack(header) || smartPack(body).
func (c *Ciphertext) ExportToBytes() []byte {
	bs := bytestring.New()
	bs.SmartPack(c.Header())
	bs.SmartPack(c.Body)
	return bs.Bytes()
}

// LoadFromBytes parses a container produced by ExportToBytes.
func LoadFromBytes(input []byte) (*Ciphertext, error) {
	idx := 0
	header, err := bytestring.SmartUnpack(input, &idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidCiphertextBody, err)
	}
	if len(header) != 3+UIDLen {
		return nil, fmt.Errorf("%w: header has wrong length", abeerr.ErrInvalidCiphertextBody)
	}
	if header[0] > LibraryVersion {
		return nil, fmt.Errorf("%w: container library version %d newer than supported %d", abeerr.ErrInvalidLibVersion, header[0], LibraryVersion)
	}
	body, err := bytestring.SmartUnpack(input, &idx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidCiphertextBody, err)
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext body", abeerr.ErrInvalidCiphertextBody)
	}
	c := &Ciphertext{
		LibVersion: header[0],
		CurveID:    curveinfo.CurveID(header[1]),
		Scheme:     SchemeID(header[2]),
		Body:       body,
	}
	copy(c.UID[:], header[3:3+UIDLen])
	return c, nil
}

// ExportToBytesWithoutHeader renders only smartPack(body).
func (c *Ciphertext) ExportToBytesWithoutHeader() []byte {
	bs := bytestring.New()
	bs.SmartPack(c.Body)
	return bs.Bytes()
}

// LoadFromBytesWithoutHeader parses a body-only export produced by
// ExportToBytesWithoutHeader into an existing Ciphertext whose header
// fields are already known to the caller.
func (c *Ciphertext) LoadFromBytesWithoutHeader(input []byte) error {
	idx := 0
	body, err := bytestring.SmartUnpack(input, &idx)
	if err != nil {
		return fmt.Errorf("%w: %v", abeerr.ErrInvalidCiphertextBody, err)
	}
	if len(body) == 0 {
		return fmt.Errorf("%w: empty ciphertext body", abeerr.ErrInvalidCiphertextBody)
	}
	c.Body = body
	return nil
}
