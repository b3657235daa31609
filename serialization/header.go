// Package serialization implements the self-describing multi-format
// encoding for group elements: a 9-byte header identifying the element
// type, curve, wire format and compression flags, followed by the
// format-specific point encoding.
package serialization

import (
	"fmt"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/curveinfo"
)

// Format identifies the wire encoding used for the point bytes following
// the header.
type Format byte

const (
	Legacy   Format = 0x00
	SEC1     Format = 0x01
	ZCashBLS12 Format = 0x02
	EthereumBN254 Format = 0x03
	IETFPairing Format = 0x04
	Auto     Format = 0xFF
)

// ElementType identifies which group a header describes.
type ElementType byte

const (
	ElementFr ElementType = 0x01
	ElementG1 ElementType = 0x02
	ElementG2 ElementType = 0x03
	ElementGT ElementType = 0x04
)

// GTMode selects between the full Fp12 tower encoding and the
// cyclotomic-compressed encoding for GT elements.
type GTMode byte

const (
	GTFullTower          GTMode = 0x00
	GTCyclotomicCompressed GTMode = 0x01
)

// Flag bits packed into SerializationHeader.Flags.
const (
	FlagCompressed Flag = 0x80
	FlagInfinity   Flag = 0x40
	FlagYSign      Flag = 0x20
	FlagCyclotomic Flag = 0x10
)

// Flag is a bitmask of the constants above.
type Flag byte

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

const magic = "OABE"

// CurrentVersion is the header version this package writes.
const CurrentVersion = 0x02

// HeaderSize is the fixed on-wire size of a SerializationHeader.
const HeaderSize = 9

// Header is the 9-byte self-describing prefix for an encoded element.
type Header struct {
	Version     byte
	ElementType ElementType
	CurveID     curveinfo.CurveID
	Format      Format
	Flags       Flag
}

// Serialize writes h as its fixed 9-byte wire form: 4-byte magic, version,
// element type, curve id, format, flags.
func (h Header) Serialize() []byte {
	out := make([]byte, HeaderSize)
	copy(out[0:4], magic)
	out[4] = h.Version
	out[5] = byte(h.ElementType)
	out[6] = byte(h.CurveID)
	out[7] = byte(h.Format)
	out[8] = byte(h.Flags)
	return out
}

// DeserializeHeader parses the fixed 9-byte header from the front of b.
func DeserializeHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header shorter than %d bytes", abeerr.ErrInvalidLength, HeaderSize)
	}
	if string(b[0:4]) != magic {
		return Header{}, fmt.Errorf("%w: bad magic prefix", abeerr.ErrDeserializationFailed)
	}
	h := Header{
		Version:     b[4],
		ElementType: ElementType(b[5]),
		CurveID:     curveinfo.CurveID(b[6]),
		Format:      Format(b[7]),
		Flags:       Flag(b[8]),
	}
	if h.Version > CurrentVersion {
		return Header{}, fmt.Errorf("%w: header version %d newer than supported %d", abeerr.ErrInvalidLibVersion, h.Version, CurrentVersion)
	}
	return h, nil
}
