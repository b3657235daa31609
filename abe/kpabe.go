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

// KPScheme is a GPSW-style key-policy ABE scheme: the decryption policy
// lives in the key and the ciphertext is labeled by a plain attribute
// set, the dual of CPScheme. It is grounded directly on the gofe library's
// GPSW construction (other_examples/fentec-project-gofe__gpsw.go), adapted
// from its fixed-size integer attribute universe to string attribute
// names, and sharing the envelope helpers in envelope.go.
type KPScheme struct {
	Ctx *pairing.Context
}

// NewKPScheme binds a KP-ABE scheme to a pairing context.
func NewKPScheme(ctx *pairing.Context) *KPScheme { return &KPScheme{Ctx: ctx} }

// KPPublicParams is the KP-ABE public parameter set, fixed to a declared
// attribute universe: gofe's GPSWPubKey is a dense per-index vector for
// the same reason, since T_i must be published so an encryptor can use it
// without ever learning the master secret's t_i.
type KPPublicParams struct {
	T map[string]zml.G2 // g2^{t_attr}, one per universe attribute
	Y zml.GT            // e(g,g)^y
}

// KPMasterSecret is the KP-ABE master secret.
type KPMasterSecret struct {
	Y zml.Fr
	T map[string]zml.Fr
}

// GenerateMasterKeys samples a master secret and derives public params for
// a fixed attribute universe.
func (s *KPScheme) GenerateMasterKeys(universe []string) (*KPPublicParams, *KPMasterSecret, error) {
	y, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	pp := &KPPublicParams{T: make(map[string]zml.G2, len(universe))}
	msk := &KPMasterSecret{Y: y, T: make(map[string]zml.Fr, len(universe))}
	g2 := s.Ctx.G2Generator()
	for _, attr := range universe {
		t, err := s.Ctx.RandomZp()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
		}
		msk.T[attr] = t
		pp.T[attr] = g2.ScalarMult(t)
	}
	pp.Y = s.Ctx.Pair(s.Ctx.G1Generator(), g2).Exp(y)
	return pp, msk, nil
}

// KPCiphertext is a KP-ABE encryption labeled by a plain attribute set.
type KPCiphertext struct {
	Attrs []string
	E0    zml.GT         // envelope * Y^s
	E     map[string]zml.G2 // T_attr^s, one per labeling attribute
	Blob  []byte
}

// Encrypt labels plaintext with gamma, the set of attributes that must be
// covered by a key's policy for decryption to succeed.
func (s *KPScheme) Encrypt(pp *KPPublicParams, gamma []string, plaintext []byte) (*KPCiphertext, error) {
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
	e0 := envelope.Mul(pp.Y.Exp(sFr))
	e := make(map[string]zml.G2, len(gamma))
	for _, attr := range gamma {
		tAttr, ok := pp.T[attr]
		if !ok {
			return nil, fmt.Errorf("%w: %q not in declared universe", abeerr.ErrUnknownAttribute, attr)
		}
		e[attr] = tAttr.ScalarMult(sFr)
	}
	return &KPCiphertext{Attrs: append([]string{}, gamma...), E0: e0, E: e, Blob: blob}, nil
}

// PolicyKey is a key-policy decryption key: a share of the master secret y
// per row of an MSP built from the key's access policy tree.
type PolicyKey struct {
	Tree *policy.Node
	MSP  *lsss.MSP
	D    map[int]zml.G1 // g1^{lambda_i / t_{rho(i)}}
}

// GeneratePolicyKeys issues a decryption key whose policy tree is tree:
// only ciphertexts whose attribute set satisfies tree can be decrypted.
func (s *KPScheme) GeneratePolicyKeys(msk *KPMasterSecret, tree *policy.Node) (*PolicyKey, error) {
	canon := tree.Canonicalize()
	order := s.Ctx.Order()
	msp, err := lsss.Build(canon, order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidGroupParams, err)
	}
	lambda, err := msp.Share(msk.Y.Big(), order)
	if err != nil {
		return nil, err
	}
	g1 := s.Ctx.G1Generator()
	d := make(map[int]zml.G1, len(lambda))
	for i, li := range lambda {
		attr := msp.RowToAttrib[i]
		tAttr, ok := msk.T[attr]
		if !ok {
			return nil, fmt.Errorf("%w: %q not in declared universe", abeerr.ErrUnknownAttribute, attr)
		}
		invT, err := tAttr.Inv()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
		}
		liFr := zml.NewFr(li, order)
		d[i] = g1.ScalarMult(liFr.Mul(invT))
	}
	return &PolicyKey{Tree: canon, MSP: msp, D: d}, nil
}

// Decrypt recovers the plaintext of ct using key, if ct's attribute set
// satisfies key's policy tree.
func (s *KPScheme) Decrypt(ct *KPCiphertext, key *PolicyKey) ([]byte, error) {
	attrSet := make(map[string]struct{}, len(ct.Attrs))
	for _, a := range ct.Attrs {
		attrSet[a] = struct{}{}
	}
	if !policy.Satisfied(key.Tree, attrSet) {
		return nil, abeerr.ErrPolicyNotSatisfied
	}

	shares := make(map[int]zml.GT)
	for i, attr := range key.MSP.RowToAttrib {
		eAttr, ok := ct.E[attr]
		if !ok {
			continue
		}
		dRow, ok := key.D[i]
		if !ok {
			continue
		}
		shares[i] = s.Ctx.Pair(dRow, eAttr)
	}

	ys, err := lsss.Reconstruct(key.MSP, shares, s.Ctx.Order())
	if err != nil {
		return nil, err
	}
	envelope, err := ct.E0.Div(ys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return symDecrypt(envelope, ct.Blob)
}

// Container packages ct's AEAD body into the wire container format.
func (ct *KPCiphertext) Container(curveID curveinfo.CurveID) (*container.Ciphertext, error) {
	return container.NewCiphertext(curveID, container.SchemeKPABE, ct.Blob)
}
