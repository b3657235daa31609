// Package lsss builds a linear secret-sharing scheme (a monotone span
// program) from a canonical policy tree, and implements the share and
// reconstruct operations Waters-style CP-ABE needs. The construction
// follows the standard recursive Lewko-Waters encoding of a boolean
// formula into a matrix M with an attribute label per row.
package lsss

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/fentec-project/gofe/data"
	"github.com/fentec-project/gofe/sample"

	"github.com/openabe-go/oabe/abeerr"
	"github.com/openabe-go/oabe/policy"
	"github.com/openabe-go/oabe/zml"
)

// MSP is a monotone span program: a matrix and a row-to-attribute map.
type MSP struct {
	Mat         data.Matrix
	RowToAttrib []string
}

// row is a single row under construction: its coefficients (padded lazily
// to the final column count) and the attribute it labels.
type row struct {
	vec   []*big.Int
	attr  string
}

// Build converts a canonicalized policy tree into an MSP over the field of
// order p, using the standard vector-padding construction: the root gets
// vector [1], AND gives every child the parent's vector extended by fresh
// columns that cancel only when all children are combined (assignAnd), OR
// copies the parent's vector unchanged to every child, and
// THRESHOLD(k, children) extends it with Shamir-style polynomial columns
// that cancel only for k or more children (assignThreshold).
func Build(tree *policy.Node, p *big.Int) (*MSP, error) {
	var rows []row
	if err := assign(tree, []*big.Int{big.NewInt(1)}, p, &rows); err != nil {
		return nil, err
	}
	width := 0
	for _, r := range rows {
		if len(r.vec) > width {
			width = len(r.vec)
		}
	}
	mat := make(data.Matrix, len(rows))
	labels := make([]string, len(rows))
	for i, r := range rows {
		padded := make(data.Vector, width)
		for j := range padded {
			if j < len(r.vec) {
				padded[j] = new(big.Int).Mod(r.vec[j], p)
			} else {
				padded[j] = big.NewInt(0)
			}
		}
		mat[i] = padded
		labels[i] = r.attr
	}
	return &MSP{Mat: mat, RowToAttrib: labels}, nil
}

func assign(n *policy.Node, vec []*big.Int, p *big.Int, rows *[]row) error {
	switch n.Gate {
	case policy.Leaf:
		*rows = append(*rows, row{vec: vec, attr: n.CanonicalLeafName()})
		return nil
	case policy.Or:
		for _, c := range n.Children {
			if err := assign(c, vec, p, rows); err != nil {
				return err
			}
		}
		return nil
	case policy.And:
		return assignAnd(n.Children, vec, p, rows)
	case policy.Threshold:
		return assignThreshold(n.K, n.Children, vec, p, rows)
	default:
		return fmt.Errorf("%w: unknown policy gate", abeerr.ErrInvalidInput)
	}
}

// assignAnd implements the n-ary generalization of the classic two-column
// split: each non-last child gets its own fresh new column (a distinct
// r_i at its own index, zero in every other new column), and the last
// child gets all of those columns set to -r_i. The columns only sum to
// zero when every child contributes its own share, so any n-1 of n
// children reveal nothing about the secret; collapsing every non-last
// child onto a single shared column would let any two children's shares
// solve for the secret regardless of n.
func assignAnd(children []*policy.Node, vec []*big.Int, p *big.Int, rows *[]row) error {
	if len(children) == 1 {
		return assign(children[0], vec, p, rows)
	}
	sampler := sample.NewUniform(p)
	numNew := len(children) - 1
	rs := make([]*big.Int, numNew)
	for i := range rs {
		r, err := sampler.Sample()
		if err != nil {
			return fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
		}
		rs[i] = r
	}
	for i, c := range children {
		childVec := append(append([]*big.Int{}, vec...), make([]*big.Int, numNew)...)
		base := len(vec)
		if i == len(children)-1 {
			for j, r := range rs {
				childVec[base+j] = new(big.Int).Mod(new(big.Int).Neg(r), p)
			}
		} else {
			for j := range rs {
				if j == i {
					childVec[base+j] = new(big.Int).Set(rs[j])
				} else {
					childVec[base+j] = big.NewInt(0)
				}
			}
		}
		if err := assign(c, childVec, p, rows); err != nil {
			return err
		}
	}
	return nil
}

// assignThreshold implements a k-of-n gate by evaluating a random
// degree-(k-1) polynomial per vector coordinate at points 1..n, and
// appending k-1 fresh columns holding x, x^2, ..., x^{k-1} for child x.
// Those columns cancel only for a combination of at least k children
// (a Vandermonde system), mirroring Shamir sharing; this generalizes AND
// (k=n) and OR (k=1, no new columns).
func assignThreshold(k int, children []*policy.Node, vec []*big.Int, p *big.Int, rows *[]row) error {
	if k <= 0 || k > len(children) {
		return fmt.Errorf("%w: threshold %d out of range for %d children", abeerr.ErrInvalidInput, k, len(children))
	}
	sampler := sample.NewUniform(p)
	coeffs := make([][]*big.Int, len(vec))
	for col := range vec {
		coeffs[col] = make([]*big.Int, k)
		coeffs[col][0] = vec[col]
		for j := 1; j < k; j++ {
			r, err := sampler.Sample()
			if err != nil {
				return fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
			}
			coeffs[col][j] = r
		}
	}
	for i, c := range children {
		x := big.NewInt(int64(i + 1))
		childVec := make([]*big.Int, len(vec))
		for col := range vec {
			childVec[col] = evalPoly(coeffs[col], x, p)
		}
		xp := big.NewInt(1)
		for j := 1; j < k; j++ {
			xp = new(big.Int).Mod(new(big.Int).Mul(xp, x), p)
			childVec = append(childVec, xp)
		}
		if err := assign(c, childVec, p, rows); err != nil {
			return err
		}
	}
	return nil
}

func evalPoly(coeffs []*big.Int, x, p *big.Int) *big.Int {
	acc := big.NewInt(0)
	xp := big.NewInt(1)
	for _, c := range coeffs {
		term := new(big.Int).Mul(c, xp)
		acc.Add(acc, term)
		acc.Mod(acc, p)
		xp.Mul(xp, x)
		xp.Mod(xp, p)
	}
	return acc
}

// Share computes the row shares lambda = M * v for a random vector v whose
// first coordinate is the secret s.
func (m *MSP) Share(s *big.Int, p *big.Int) (map[int]*big.Int, error) {
	sampler := sample.NewUniform(p)
	v, err := data.NewRandomVector(m.Mat.Cols(), sampler)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrRandInsufficient, err)
	}
	v[0] = new(big.Int).Set(s)
	lambda, err := m.Mat.MulVec(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", abeerr.ErrInvalidGroupParams, err)
	}
	out := make(map[int]*big.Int, len(lambda))
	for i, val := range lambda {
		out[i] = new(big.Int).Mod(val, p)
	}
	return out, nil
}

// RowsForAttributes returns, in a deterministic order, the row indices
// whose attribute label is present in attrs.
func (m *MSP) RowsForAttributes(attrs map[string]struct{}) []int {
	var idx []int
	for i, a := range m.RowToAttrib {
		if _, ok := attrs[a]; ok {
			idx = append(idx, i)
		}
	}
	sort.Ints(idx)
	return idx
}

// Reconstruct combines per-row GT shares into prod_i share_i^{w_i}, with
// the reconstruction coefficients w solved via Gaussian elimination over
// the rows present in shares: when share_i = X^{lambda_i} for the lambda
// produced by Share(s), the result is X^s.
func Reconstruct(m *MSP, shares map[int]zml.GT, p *big.Int) (zml.GT, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: no rows available for reconstruction", abeerr.ErrPolicyNotSatisfied)
	}
	indices := make([]int, 0, len(shares))
	for i := range shares {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	sub := make(data.Matrix, 0, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(m.Mat) {
			return nil, fmt.Errorf("%w: row index %d out of range", abeerr.ErrInvalidInput, i)
		}
		sub = append(sub, m.Mat[i])
	}
	numCols := m.Mat.Cols()
	target := make(data.Vector, numCols)
	target[0] = big.NewInt(1)
	for i := 1; i < numCols; i++ {
		target[i] = big.NewInt(0)
	}
	coeffs, err := data.GaussianEliminationSolver(sub.Transpose(), target, p)
	if err != nil {
		return nil, fmt.Errorf("%w: attribute set does not satisfy the policy: %v", abeerr.ErrPolicyNotSatisfied, err)
	}

	var acc zml.GT
	for k, w := range coeffs {
		row := indices[k]
		share, ok := shares[row]
		if !ok {
			continue
		}
		exp := new(big.Int).Mod(w, p)
		fr := zml.NewFr(exp, p)
		term := share.Exp(fr)
		if acc == nil {
			acc = term
		} else {
			acc = acc.Mul(term)
		}
	}
	if acc == nil {
		return nil, fmt.Errorf("%w: no overlapping rows between shares and solution", abeerr.ErrPolicyNotSatisfied)
	}
	return acc, nil
}
