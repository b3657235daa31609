// Package pairing binds a zml.Backend to a curve identity and exposes the
// per-curve operations an ABE scheme constructor needs once: random
// sampling, hashing onto G1, and pairing/multi-pairing. A scheme
// constructor builds one Context at setup time and reuses it, rather than
// hard-coding a single package-level backend.
package pairing

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/curveinfo"
	"github.com/openabe-go/oabe/zml"
	"github.com/openabe-go/oabe/zml/bn254"
)

// Context is a ready-to-use pairing group bound to one curve.
type Context struct {
	CurveID curveinfo.CurveID
	Group   *zml.Group
}

// NewContext constructs a Context for curveID. Only BN254 has a working
// Go backend in this module (see DESIGN.md's Open Question #4); any other
// curve id returns abeerr.ErrUnsupportedCurve rather than panicking, since
// curveinfo's registry still describes them for lookup purposes.
func NewContext(curveID curveinfo.CurveID) (*Context, error) {
	switch curveID {
	case curveinfo.BNP254ID:
		backend := bn254.New()
		return &Context{CurveID: curveID, Group: zml.NewGroup("BN_P254", backend)}, nil
	default:
		info, known := curveinfo.LookupByID(curveID)
		if known {
			return nil, fmt.Errorf("%w: %s has no Go backend in this module", abeerr.ErrUnsupportedCurve, info.Name)
		}
		return nil, fmt.Errorf("%w: unknown curve id 0x%02X", abeerr.ErrUnsupportedCurve, byte(curveID))
	}
}

func (c *Context) Order() *big.Int { return c.Group.Order() }

func (c *Context) G1Generator() zml.G1 { return c.Group.Backend.G1Generator() }

func (c *Context) G2Generator() zml.G2 { return c.Group.Backend.G2Generator() }

// RandomZp samples a uniform scalar using crypto/rand.
func (c *Context) RandomZp() (zml.Fr, error) { return c.Group.Backend.RandomFr(rand.Reader) }

// RandomZpFrom samples a uniform scalar from an explicit reader, never
// falling back to crypto/rand internally. This is load-bearing for the
// CCA re-encryption/DLEQ determinism the abe and dleq packages depend on.
func (c *Context) RandomZpFrom(r io.Reader) (zml.Fr, error) { return c.Group.Backend.RandomFr(r) }

func (c *Context) RandomG1() (zml.G1, error) { return c.Group.Backend.RandomG1(rand.Reader) }

func (c *Context) RandomG2() (zml.G2, error) { return c.Group.Backend.RandomG2(rand.Reader) }

func (c *Context) RandomGT() (zml.GT, error) { return c.Group.Backend.RandomGT(rand.Reader) }

// HashToG1 hashes an attribute/domain string onto G1.
func (c *Context) HashToG1(domain, msg string) zml.G1 { return c.Group.Backend.HashToG1(domain, msg) }

func (c *Context) Pair(a zml.G1, b zml.G2) zml.GT { return c.Group.Backend.Pair(a, b) }

func (c *Context) MultiPair(as []zml.G1, bs []zml.G2) (zml.GT, error) {
	return c.Group.Backend.MultiPair(as, bs)
}
