package abe

import (
	"fmt"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/container"
	"github.com/openabe-go/oabe/curveinfo"
	"github.com/openabe-go/oabe/lsss"
	"github.com/openabe-go/oabe/pairing"
	"github.com/openabe-go/oabe/policy"
	"github.com/openabe-go/oabe/zml"
)

// CPScheme is a Waters-style ciphertext-policy ABE scheme bound to one
// pairing context. The construction follows ECPABE/ecpabe.go's Setup/
// KeyGen/Encrypt/Decrypt shape with the zi/UPi outsourced-encryption
// precomputation layer removed; Decrypt here is direct, and the zi-blinded
// outsourced-decryption variant lives in outsource.go. See DESIGN.md's abe
// package entry.
type CPScheme struct {
	Ctx *pairing.Context
}

// NewCPScheme binds a CP-ABE scheme to a pairing context.
func NewCPScheme(ctx *pairing.Context) *CPScheme { return &CPScheme{Ctx: ctx} }

// PublicParams is the CP-ABE public parameter set.
type PublicParams struct {
	G1   zml.G1
	G2   zml.G2
	HG2  zml.G2 // h = g2^beta
	Base zml.GT // e(g,g)^alpha
}

// MasterSecret is the CP-ABE master secret.
type MasterSecret struct {
	GAlpha zml.G1 // g1^alpha
	Beta   zml.Fr
}

// Setup samples (alpha, beta) and derives the public/master key pair.
func (s *CPScheme) Setup() (*PublicParams, *MasterSecret, error) {
	alpha, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	beta, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	g1 := s.Ctx.G1Generator()
	g2 := s.Ctx.G2Generator()
	hg2 := g2.ScalarMult(beta)
	galpha := g1.ScalarMult(alpha)
	base := s.Ctx.Pair(g1, g2).Exp(alpha)

	pp := &PublicParams{G1: g1, G2: g2, HG2: hg2, Base: base}
	msk := &MasterSecret{GAlpha: galpha, Beta: beta}
	return pp, msk, nil
}

// SecretKey is a CP-ABE user key for a fixed attribute set.
type SecretKey struct {
	Attrs []string
	D     zml.G1            // (g^alpha * g^r)^{1/beta}
	Dj    map[string]zml.G2 // g2^r * H(attr)^{r_attr}
	Djp   map[string]zml.G2 // g2^{r_attr}
}

// KeyGen issues a decryption key for attrs.
func (s *CPScheme) KeyGen(pp *PublicParams, msk *MasterSecret, attrs []string) (*SecretKey, error) {
	r, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	invBeta, err := msk.Beta.Inv()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	num := msk.GAlpha.Add(pp.G1.ScalarMult(r))
	d := num.ScalarMult(invBeta)

	sk := &SecretKey{
		Attrs: append([]string{}, attrs...),
		D:     d,
		Dj:    make(map[string]zml.G2, len(attrs)),
		Djp:   make(map[string]zml.G2, len(attrs)),
	}
	for _, attr := range attrs {
		rAttr, err := s.Ctx.RandomZp()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
		}
		hAttrG2 := hashAttrToG2(s.Ctx, attr)
		sk.Dj[attr] = pp.G2.ScalarMult(r).Add(hAttrG2.ScalarMult(rAttr))
		sk.Djp[attr] = pp.G2.ScalarMult(rAttr)
	}
	return sk, nil
}

// Ciphertext is a CP-ABE encryption under a canonicalized policy tree.
type Ciphertext struct {
	Tree *policy.Node
	MSP  *lsss.MSP
	C    zml.GT            // envelope * base^s
	Com  zml.G2            // h^s
	C1   map[int]zml.G1    // g1^{lambda_i}
	C2   map[int]zml.G1    // H(rho(i))^{lambda_i}
	Blob []byte            // AEAD(envelope, plaintext)
}

// Encrypt encrypts plaintext under tree, canonicalizing the policy first
// so that logically equivalent trees always produce the same MSP shape.
func (s *CPScheme) Encrypt(pp *PublicParams, tree *policy.Node, plaintext []byte) (*Ciphertext, error) {
	canon := tree.Canonicalize()
	order := s.Ctx.Order()
	msp, err := lsss.Build(canon, order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidGroupParams, err)
	}

	envelope, err := s.Ctx.RandomGT()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	blob, err := symEncrypt(envelope, plaintext)
	if err != nil {
		return nil, err
	}

	sFr, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	c := envelope.Mul(pp.Base.Exp(sFr))
	com := pp.HG2.ScalarMult(sFr)

	lambda, err := msp.Share(sFr.Big(), order)
	if err != nil {
		return nil, err
	}
	c1 := make(map[int]zml.G1, len(lambda))
	c2 := make(map[int]zml.G1, len(lambda))
	for i, li := range lambda {
		liFr := zml.NewFr(li, order)
		attr := msp.RowToAttrib[i]
		c1[i] = pp.G1.ScalarMult(liFr)
		c2[i] = hashAttrToG1(s.Ctx, attr).ScalarMult(liFr)
	}

	return &Ciphertext{Tree: canon, MSP: msp, C: c, Com: com, C1: c1, C2: c2, Blob: blob}, nil
}

// Decrypt recovers the plaintext using sk, if sk's attributes satisfy the
// ciphertext's policy.
func (s *CPScheme) Decrypt(ct *Ciphertext, sk *SecretKey) ([]byte, error) {
	attrSet := make(map[string]struct{}, len(sk.Attrs))
	for _, a := range sk.Attrs {
		attrSet[a] = struct{}{}
	}
	if !policy.Satisfied(ct.Tree, attrSet) {
		return nil, abeerr.ErrPolicyNotSatisfied
	}

	shares := make(map[int]zml.GT)
	for i, attr := range ct.MSP.RowToAttrib {
		if _, ok := attrSet[attr]; !ok {
			continue
		}
		dij, ok1 := sk.Dj[attr]
		dpij, ok2 := sk.Djp[attr]
		if !ok1 || !ok2 {
			continue
		}
		c1, ok3 := ct.C1[i]
		c2, ok4 := ct.C2[i]
		if !ok3 || !ok4 {
			continue
		}
		num := s.Ctx.Pair(c1, dij)
		den := s.Ctx.Pair(c2, dpij)
		denInv, err := num.Div(den)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
		}
		shares[i] = denInv
	}

	a, err := lsss.Reconstruct(ct.MSP, shares, s.Ctx.Order())
	if err != nil {
		return nil, err
	}
	ecd := s.Ctx.Pair(sk.D, ct.Com)
	transCT, err := ecd.Div(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	envelope, err := ct.C.Div(transCT)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return symDecrypt(envelope, ct.Blob)
}

// hashAttrToG1 and hashAttrToG2 must map the same attribute string to the
// same discrete log h in their respective groups (g1^h, g2^h), exactly as
// ECPABE's H1/H1toG2 pair does: Decrypt's e(C1,Dj)/e(C2,Djp) cancellation
// depends on e(g1,g2)^h factoring identically out of both pairings, which
// only holds when both hashes share one scalar exponent. A true
// hash-to-curve map (bn256.HashG1) would break that relation, so both
// sides go through scalarHash instead.
func hashAttrToG1(ctx *pairing.Context, attr string) zml.G1 {
	h := scalarHash(attr, ctx.Order())
	return ctx.G1Generator().ScalarMult(h)
}

func hashAttrToG2(ctx *pairing.Context, attr string) zml.G2 {
	h := scalarHash(attr, ctx.Order())
	return ctx.G2Generator().ScalarMult(h)
}

// Container packages ct's AEAD body into the wire container format. The
// MSP/tree/group elements are process-local and are not part of this
// wire form; a transmitted ciphertext must carry the policy tree and
// per-row group elements separately (e.g. via serialization) alongside
// this container.
func (ct *Ciphertext) Container(curveID curveinfo.CurveID) (*container.Ciphertext, error) {
	return container.NewCiphertext(curveID, container.SchemeCPABE, ct.Blob)
}
