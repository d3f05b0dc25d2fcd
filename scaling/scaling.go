// Package scaling converts token balances between the decimal precisions
// used at snapshot time, account time, and inside the proof circuit,
// grounded on the teacher's common/decimals.go ConvertDecimals but adding
// the round-up-on-truncation semantics the protocol requires.
package scaling

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrNegativeAmount marks a negative balance, a fatal input error per the
// protocol's error-handling policy (never a silent clamp).
var ErrNegativeAmount = errors.New("scaling: negative amount")

// precision holds the snapshot/account/proof decimal-digit counts for one
// token, mirroring the protocol's precision table.
type precision struct {
	snapshot int
	account  int
	proof    int
}

// table is the immutable lookup keyed by upper-cased token symbol; for an
// unknown token, lookup below returns the same precision for snapshot,
// account and proof, so the value passes through unchanged.
var table = map[string]precision{
	"BTC": {snapshot: 8, account: 8, proof: 8},
	"ETH": {snapshot: 18, account: 18, proof: 7},
}

const defaultOtherPrecision = 1

func lookup(token string) precision {
	if p, ok := table[token]; ok {
		return p
	}
	return precision{snapshot: defaultOtherPrecision, account: defaultOtherPrecision, proof: defaultOtherPrecision}
}

// ScaleUnits converts v from inDec fractional digits to outDec fractional
// digits. When shrinking precision and roundUp is true, any non-zero
// remainder rounds the result up by one unit rather than truncating.
func ScaleUnits(v *big.Int, inDec, outDec int, roundUp bool) (*big.Int, error) {
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, v.String())
	}
	if outDec >= inDec {
		factor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(outDec-inDec)), nil)
		return new(big.Int).Mul(v, factor), nil
	}

	d := inDec - outDec
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(d)), nil)
	q, rem := new(big.Int).QuoRem(v, divisor, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q, nil
}

// SnapshotToProof scales a balance recorded at snapshot precision for
// token into proof precision, rounding up on truncation.
func SnapshotToProof(token string, v *big.Int) (*big.Int, error) {
	p := lookup(token)
	return ScaleUnits(v, p.snapshot, p.proof, true)
}

// AccountToProof scales a balance recorded at account precision for token
// into proof precision, rounding up on truncation.
func AccountToProof(token string, v *big.Int) (*big.Int, error) {
	p := lookup(token)
	return ScaleUnits(v, p.account, p.proof, true)
}
