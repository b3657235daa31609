package abe

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/dleq"
	"github.com/openabe-go/oabe/lsss"
	"github.com/openabe-go/oabe/policy"
	"github.com/openabe-go/oabe/zml"
)

// TransformKey lets a semi-trusted proxy perform the pairing-heavy half of
// CP-ABE decryption without learning the plaintext, following ECPABE's
// KeyGen/OutDecrypt split (ECPABE/ecpabe.go): the user's ri is blinded by
// a random zi it keeps for itself as DecryptionKey, and D, Dj, Djp are all
// scaled by 1/zi so the proxy's row combination yields base^{s/zi} instead
// of base^s.
type TransformKey struct {
	Attrs []string
	D     zml.G1
	Dj    map[string]zml.G2
	Djp   map[string]zml.G2
}

// DecryptionKey is the scalar zi a user keeps to finish a transformed
// ciphertext returned by a proxy holding the matching TransformKey.
type DecryptionKey struct {
	Zi zml.Fr
}

// KeyGenOutsourced issues a TransformKey/DecryptionKey pair for attrs. The
// TransformKey is safe to hand to an untrusted proxy: on its own it never
// yields base^s, only base^{s/zi}.
func (s *CPScheme) KeyGenOutsourced(pp *PublicParams, msk *MasterSecret, attrs []string) (*TransformKey, *DecryptionKey, error) {
	r, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	zi, err := s.Ctx.RandomZp()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	invZi, err := zi.Inv()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}
	invBetaZi, err := msk.Beta.Mul(zi).Inv()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
	}

	num := msk.GAlpha.Add(pp.G1.ScalarMult(r))
	tk := &TransformKey{
		Attrs: append([]string{}, attrs...),
		D:     num.ScalarMult(invBetaZi),
		Dj:    make(map[string]zml.G2, len(attrs)),
		Djp:   make(map[string]zml.G2, len(attrs)),
	}
	rOverZi := r.Mul(invZi)
	for _, attr := range attrs {
		rAttr, err := s.Ctx.RandomZp()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", abeerr.ErrKeyGenFailed, err)
		}
		rAttrOverZi := rAttr.Mul(invZi)
		hAttrG2 := hashAttrToG2(s.Ctx, attr)
		tk.Dj[attr] = pp.G2.ScalarMult(rOverZi).Add(hAttrG2.ScalarMult(rAttrOverZi))
		tk.Djp[attr] = pp.G2.ScalarMult(rAttrOverZi)
	}
	return tk, &DecryptionKey{Zi: zi}, nil
}

// Transform runs the row-combination half of decryption on the proxy's
// behalf, returning base^{s/zi} without ever recovering the plaintext
// envelope. It fails the same way Decrypt does when tk's attributes don't
// satisfy ct's policy.
func (s *CPScheme) Transform(ct *Ciphertext, tk *TransformKey) (zml.GT, error) {
	attrSet := make(map[string]struct{}, len(tk.Attrs))
	for _, a := range tk.Attrs {
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
		dij, ok1 := tk.Dj[attr]
		dpij, ok2 := tk.Djp[attr]
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
		share, err := num.Div(den)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
		}
		shares[i] = share
	}

	a, err := lsss.Reconstruct(ct.MSP, shares, s.Ctx.Order())
	if err != nil {
		return nil, err
	}
	ecd := s.Ctx.Pair(tk.D, ct.Com)
	transCT, err := ecd.Div(a)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return transCT, nil
}

// FinishOutsourced completes decryption of a proxy-transformed ciphertext:
// it raises transCT to zi to recover base^s, then peels off the envelope
// exactly like Decrypt.
func (s *CPScheme) FinishOutsourced(ct *Ciphertext, transCT zml.GT, dk *DecryptionKey) ([]byte, error) {
	base := transCT.Exp(dk.Zi)
	envelope, err := ct.C.Div(base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrDecryptionFailed, err)
	}
	return symDecrypt(envelope, ct.Blob)
}

// ZiCommitment publicly binds a decryption key's blinding scalar zi to two
// independent representations, e(g,g)^{zi} in GT and g1^{zi} in G1, so an
// auditor can later confirm a DLEQ proof was built from the same zi that
// was registered for a session without the user ever disclosing zi itself.
type ZiCommitment struct {
	VGT zml.GT
	VG1 zml.G1
}

// CommitDecryptionKey derives a ZiCommitment for dk.
func (s *CPScheme) CommitDecryptionKey(dk *DecryptionKey) ZiCommitment {
	base := s.Ctx.Pair(s.Ctx.G1Generator(), s.Ctx.G2Generator())
	return ZiCommitment{
		VGT: base.Exp(dk.Zi),
		VG1: s.Ctx.G1Generator().ScalarMult(dk.Zi),
	}
}

// ProveDecryptionKey produces a Chaum-Pedersen proof that dk.Zi is the
// shared discrete log behind commitment, sampling its own randomness from
// crypto/rand.
func (s *CPScheme) ProveDecryptionKey(dk *DecryptionKey, commitment ZiCommitment) (*dleq.Proof, error) {
	return s.ProveDecryptionKeyFrom(rand.Reader, dk, commitment)
}

// ProveDecryptionKeyFrom is ProveDecryptionKey with an explicit randomness
// source, for callers that need reproducible proofs.
func (s *CPScheme) ProveDecryptionKeyFrom(r io.Reader, dk *DecryptionKey, commitment ZiCommitment) (*dleq.Proof, error) {
	base := s.Ctx.Pair(s.Ctx.G1Generator(), s.Ctx.G2Generator())
	return dleq.Generate(r, s.Ctx.Order(), dk.Zi, base, commitment.VGT, s.Ctx.G1Generator(), commitment.VG1)
}

// VerifyDecryptionKey checks a proof produced by ProveDecryptionKey against
// a previously published commitment.
func (s *CPScheme) VerifyDecryptionKey(commitment ZiCommitment, pi *dleq.Proof) bool {
	base := s.Ctx.Pair(s.Ctx.G1Generator(), s.Ctx.G2Generator())
	return dleq.Verify(pi, s.Ctx.Order(), base, commitment.VGT, s.Ctx.G1Generator(), commitment.VG1)
}
