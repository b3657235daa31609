package serialization

import (
	"fmt"
	"math/big"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/curveinfo"
	"github.com/openabe-go/oabe/zml"
)

// fieldBytesBN254 is the byte width of one Fp coordinate for the backend
// curve: fentec-project/bn256's field modulus is 256 bits, a 32-byte limb,
// matching the fixed-width layout its Marshal() produces.
const fieldBytesBN254 = 32

// bn254P is the base field modulus of fentec-project/bn256's curve
// (36u^4+36u^3+24u^2+6u+1 with u = 1868033^3), used for point decompression.
var bn254P, _ = new(big.Int).SetString("65000549695646603732796438742359905742825358107623003571877145026864184071783", 10)

// fieldSizeForCurve returns the byte width a standard encoder would use for
// one coordinate of curveID, derived from the registry's FieldBits the same
// way every fixed-width curve encoding does: ceil(bits/8). Falls back to
// fieldBytesBN254 for an unregistered id, since this module's only working
// backend is BN254.
func fieldSizeForCurve(curveID curveinfo.CurveID) int {
	info, ok := curveinfo.LookupByID(curveID)
	if !ok {
		return fieldBytesBN254
	}
	return (info.FieldBits + 7) / 8
}

// resolveFormat turns Auto into a concrete format chosen from curveID's
// family: BLS12 curves get ZCash-style compression, BN254/BN256 get the
// Ethereum precompile layout, NIST curves get SEC1, anything else falls
// back to the plain marshal.
func resolveFormat(curveID curveinfo.CurveID, format Format) Format {
	if format != Auto {
		return format
	}
	switch curveID {
	case curveinfo.BNP254ID, curveinfo.BNP256ID:
		return EthereumBN254
	}
	info, ok := curveinfo.LookupByID(curveID)
	if !ok {
		return Legacy
	}
	switch info.Family {
	case "BLS12":
		return ZCashBLS12
	case "NIST":
		return SEC1
	default:
		return Legacy
	}
}

func isAllZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// encodeG1Body renders raw's x||y coordinates (each fieldBytesBN254 wide)
// under format, self-contained enough that a decoder for that format's
// native ecosystem could parse the bytes without this package's header.
func encodeG1Body(x, y []byte, curveID curveinfo.CurveID, format Format) ([]byte, error) {
	infinity := isAllZero(x) && isAllZero(y)
	switch format {
	case Legacy, IETFPairing:
		return append(append([]byte{}, x...), y...), nil
	case EthereumBN254:
		// x || y, each zero-padded to 32 bytes; infinity is the all-zero point.
		return append(append([]byte{}, x...), y...), nil
	case SEC1:
		size := fieldSizeForCurve(curveID)
		if size != len(x) {
			return nil, fmt.Errorf("%w: SEC1 field size %d does not match coordinate width %d", abeerr.ErrUnsupportedCurve, size, len(x))
		}
		if infinity {
			return []byte{0x00}, nil
		}
		prefix := byte(0x02)
		if y[len(y)-1]&1 == 1 {
			prefix = 0x03
		}
		return append([]byte{prefix}, x...), nil
	case ZCashBLS12:
		size := fieldSizeForCurve(curveID)
		if size != len(x) {
			return nil, fmt.Errorf("%w: ZCash field size %d does not match coordinate width %d", abeerr.ErrUnsupportedCurve, size, len(x))
		}
		body := append([]byte{}, x...)
		if infinity {
			body = make([]byte, size)
			body[0] = 0xC0 // compressed | infinity
			return body, nil
		}
		body[0] |= 0x80 // compressed
		if y[len(y)-1]&1 == 1 {
			body[0] |= 0x20 // y_sign_lexicographic
		}
		return body, nil
	default:
		return nil, fmt.Errorf("%w: unsupported G1 format %v", abeerr.ErrInvalidInput, format)
	}
}

// decodeG1Body reverses encodeG1Body, returning the raw x||y coordinates
// (each fieldBytesBN254 wide, as fentec-project/bn256's UnmarshalG1 expects)
// recovered from body.
func decodeG1Body(body []byte, format Format) (x, y []byte, err error) {
	switch format {
	case Legacy, IETFPairing, EthereumBN254:
		if len(body) != 2*fieldBytesBN254 {
			return nil, nil, fmt.Errorf("%w: uncompressed G1 body has wrong length", abeerr.ErrInvalidLength)
		}
		return body[:fieldBytesBN254], body[fieldBytesBN254:], nil
	case SEC1:
		if len(body) == 1 && body[0] == 0x00 {
			return make([]byte, fieldBytesBN254), make([]byte, fieldBytesBN254), nil
		}
		if len(body) != 1+fieldBytesBN254 {
			return nil, nil, fmt.Errorf("%w: compressed SEC1 body has wrong length", abeerr.ErrInvalidLength)
		}
		prefix := body[0]
		if prefix != 0x02 && prefix != 0x03 {
			return nil, nil, fmt.Errorf("%w: unrecognized SEC1 prefix byte 0x%02x", abeerr.ErrDeserializationFailed, prefix)
		}
		xb := body[1:]
		yb, rerr := recoverY(new(big.Int).SetBytes(xb), prefix == 0x03)
		if rerr != nil {
			return nil, nil, rerr
		}
		return xb, padTo(yb.Bytes(), fieldBytesBN254), nil
	case ZCashBLS12:
		if len(body) != fieldBytesBN254 {
			return nil, nil, fmt.Errorf("%w: compressed ZCash body has wrong length", abeerr.ErrInvalidLength)
		}
		flags := body[0] & 0xE0
		compressed := flags&0x80 != 0
		infinity := flags&0x40 != 0
		ySign := flags&0x20 != 0
		if !compressed {
			return nil, nil, fmt.Errorf("%w: ZCash body missing compressed flag", abeerr.ErrDeserializationFailed)
		}
		if infinity {
			return make([]byte, fieldBytesBN254), make([]byte, fieldBytesBN254), nil
		}
		xb := append([]byte{}, body...)
		xb[0] &^= 0xE0
		yb, rerr := recoverY(new(big.Int).SetBytes(xb), ySign)
		if rerr != nil {
			return nil, nil, rerr
		}
		return xb, padTo(yb.Bytes(), fieldBytesBN254), nil
	default:
		return nil, nil, fmt.Errorf("%w: unsupported G1 format %v", abeerr.ErrInvalidInput, format)
	}
}

func padTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b[len(b)-size:]
	}
	out := make([]byte, size)
	copy(out[size-len(b):], b)
	return out
}

// SerializeG1 encodes p in the requested format, prefixed by its header.
// Auto resolves to a concrete format from curveID before encoding, and the
// resolved format (never Auto itself) is what the header records.
func SerializeG1(p zml.G1, curveID curveinfo.CurveID, format Format) ([]byte, error) {
	body, resolved, err := serializeG1Body(p, curveID, format)
	if err != nil {
		return nil, err
	}
	hdr := Header{Version: CurrentVersion, ElementType: ElementG1, CurveID: curveID, Format: resolved}
	return append(hdr.Serialize(), body...), nil
}

// SerializeG1WithoutHeader encodes p exactly as SerializeG1 does but omits
// the 9-byte header, for callers that carry curve id and format out of
// band (see container's analogous ExportToBytesWithoutHeader).
func SerializeG1WithoutHeader(p zml.G1, curveID curveinfo.CurveID, format Format) ([]byte, error) {
	body, _, err := serializeG1Body(p, curveID, format)
	return body, err
}

func serializeG1Body(p zml.G1, curveID curveinfo.CurveID, format Format) (body []byte, resolved Format, err error) {
	raw := p.Marshal()
	if len(raw) != 2*fieldBytesBN254 {
		return nil, 0, fmt.Errorf("%w: unexpected G1 marshal length %d", abeerr.ErrSerializationFailed, len(raw))
	}
	resolved = resolveFormat(curveID, format)
	body, err = encodeG1Body(raw[:fieldBytesBN254], raw[fieldBytesBN254:], curveID, resolved)
	return body, resolved, err
}

// DeserializeG1 parses header+body produced by SerializeG1 against backend.
func DeserializeG1(data []byte, backend zml.Backend) (zml.G1, error) {
	hdr, err := DeserializeHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.ElementType != ElementG1 {
		return nil, fmt.Errorf("%w: header does not describe a G1 element", abeerr.ErrDeserializationFailed)
	}
	return DeserializeG1WithoutHeader(data[HeaderSize:], hdr.Format, backend)
}

// DeserializeG1WithoutHeader parses a body-only export produced by
// SerializeG1WithoutHeader; the caller must already know format from
// context, since there is no header to read it from.
func DeserializeG1WithoutHeader(body []byte, format Format, backend zml.Backend) (zml.G1, error) {
	x, y, err := decodeG1Body(body, format)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, 2*fieldBytesBN254)
	copy(raw[:fieldBytesBN254], x)
	copy(raw[fieldBytesBN254:], y)
	return backend.UnmarshalG1(raw)
}

// recoverY solves y^2 = x^3 + 3 (the BN254 short Weierstrass curve used by
// fentec-project/bn256) and returns the root whose parity matches wantOdd.
// BN254's field modulus is 3 mod 4, so the fast exponentiation shortcut
// y = a^((p+1)/4) applies directly; a general Tonelli-Shanks solver would
// be required for a p that is 1 mod 4, which BN254 is not.
func recoverY(x *big.Int, wantOdd bool) (*big.Int, error) {
	p := bn254P
	rhs := new(big.Int).Mul(x, x)
	rhs.Mul(rhs, x)
	rhs.Add(rhs, big.NewInt(3))
	rhs.Mod(rhs, p)

	exp := new(big.Int).Add(p, big.NewInt(1))
	exp.Rsh(exp, 2)
	y := new(big.Int).Exp(rhs, exp, p)

	check := new(big.Int).Mul(y, y)
	check.Mod(check, p)
	if check.Cmp(rhs) != 0 {
		return nil, fmt.Errorf("%w: x coordinate is not on the curve", abeerr.ErrDeserializationFailed)
	}
	if (y.Bit(0) == 1) != wantOdd {
		y.Sub(p, y)
	}
	return y, nil
}

// SerializeG2 encodes p. G2 is defined over the quadratic twist Fp2; this
// backend only ships the uncompressed encoding for G2 (compression would
// require an Fp2 square root, which fentec-project/bn256's opaque G2 type
// gives no coordinate access to validate against), so every format other
// than the flag itself degrades to the uncompressed body.
func SerializeG2(p zml.G2, curveID curveinfo.CurveID, format Format) ([]byte, error) {
	resolved := resolveFormat(curveID, format)
	raw := p.Marshal()
	hdr := Header{Version: CurrentVersion, ElementType: ElementG2, CurveID: curveID, Format: resolved}
	return append(hdr.Serialize(), raw...), nil
}

// SerializeG2WithoutHeader encodes p's body only; see SerializeG1WithoutHeader.
func SerializeG2WithoutHeader(p zml.G2) []byte {
	return p.Marshal()
}

// DeserializeG2 parses header+body produced by SerializeG2 against backend.
func DeserializeG2(data []byte, backend zml.Backend) (zml.G2, error) {
	hdr, err := DeserializeHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.ElementType != ElementG2 {
		return nil, fmt.Errorf("%w: header does not describe a G2 element", abeerr.ErrDeserializationFailed)
	}
	return backend.UnmarshalG2(data[HeaderSize:])
}

// DeserializeG2WithoutHeader parses a body-only G2 export; see
// DeserializeG1WithoutHeader.
func DeserializeG2WithoutHeader(body []byte, backend zml.Backend) (zml.G2, error) {
	return backend.UnmarshalG2(body)
}

// SerializeGT encodes p under mode. GTFullTower is a direct byte-accurate
// round-trip; GTCyclotomicCompressed tags the same bytes with the
// cyclotomic flag without shrinking them, since fentec-project/bn256's GT
// type exposes no tower-internal accessors to drop and later reconstruct
// coordinates from (see DESIGN.md's Open Question #3).
func SerializeGT(p zml.GT, curveID curveinfo.CurveID, mode GTMode) []byte {
	raw := p.Marshal()
	flags := Flag(0)
	if mode == GTCyclotomicCompressed {
		flags = FlagCyclotomic
	}
	hdr := Header{Version: CurrentVersion, ElementType: ElementGT, CurveID: curveID, Format: IETFPairing, Flags: flags}
	return append(hdr.Serialize(), raw...)
}

// SerializeGTWithoutHeader encodes p's body only; see SerializeG1WithoutHeader.
func SerializeGTWithoutHeader(p zml.GT) []byte {
	return p.Marshal()
}

// DeserializeGT parses header+body produced by SerializeGT against backend.
func DeserializeGT(data []byte, backend zml.Backend) (zml.GT, error) {
	hdr, err := DeserializeHeader(data)
	if err != nil {
		return nil, err
	}
	if hdr.ElementType != ElementGT {
		return nil, fmt.Errorf("%w: header does not describe a GT element", abeerr.ErrDeserializationFailed)
	}
	return backend.UnmarshalGT(data[HeaderSize:])
}

// DeserializeGTWithoutHeader parses a body-only GT export; see
// DeserializeG1WithoutHeader.
func DeserializeGTWithoutHeader(body []byte, backend zml.Backend) (zml.GT, error) {
	return backend.UnmarshalGT(body)
}
