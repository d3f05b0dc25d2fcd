// Package anonset computes the single field-element commitment to an
// anonymity-set snapshot: a flattened, precision-scaled balance list and a
// flattened address-register list, each absorbed by the linear sponge and
// combined with one more Poseidon call.
package anonset

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/btcq-org/solvency/address"
	"github.com/btcq-org/solvency/poseidon"
	"github.com/btcq-org/solvency/scaling"
)

// BalanceDimension is the fixed per-address balance vector width: index 0
// is BTC, index 1 is ETH, indices 2..17 are reserved (zero today).
const BalanceDimension = 18

// tokenForSlot names the token backing each balance index, used to look up
// the right scaling precision. Reserved slots have no token and scale as
// an identity (1:1) conversion.
var tokenForSlot = [BalanceDimension]string{0: "BTC", 1: "ETH"}

// Entry is one anonset member: an address string and its per-token balance
// vector at snapshot precision.
type Entry struct {
	Address  string
	Balances [BalanceDimension]*big.Int
}

// Set is a homogeneously-typed anonymity set: every entry is decoded with
// the same address kind, which also fixes the per-entry register count.
type Set struct {
	Kind    address.Kind
	Entries []Entry
}

const linearHashArity = 16

// Hash computes the anonset commitment: flatten and scale balances, linear
// hash them; flatten address registers, linear hash them; combine the two
// digests with one more Poseidon call.
func Hash(s Set) (fr.Element, error) {
	flatBalances := make([]fr.Element, 0, len(s.Entries)*BalanceDimension)
	for i, e := range s.Entries {
		for j := 0; j < BalanceDimension; j++ {
			v := e.Balances[j]
			if v == nil {
				v = big.NewInt(0)
			}
			scaled, err := scaling.SnapshotToProof(tokenForSlot[j], v)
			if err != nil {
				return fr.Element{}, fmt.Errorf("anonset: entry %d slot %d: %w", i, j, err)
			}
			var f fr.Element
			f.SetBigInt(scaled)
			flatBalances = append(flatBalances, f)
		}
	}
	balancesHash, err := poseidon.LinearHashMany(flatBalances, linearHashArity)
	if err != nil {
		return fr.Element{}, fmt.Errorf("anonset: balances hash: %w", err)
	}

	// The register count per entry is fixed by the set's declared kind,
	// never derived from a per-entry decode result.
	k := s.Kind.RegisterCount()
	flatAddrs := make([]fr.Element, 0, len(s.Entries)*k)
	for i, e := range s.Entries {
		regs, err := address.Registers(s.Kind, e.Address)
		if err != nil {
			return fr.Element{}, fmt.Errorf("anonset: entry %d address: %w", i, err)
		}
		if len(regs) != k {
			return fr.Element{}, fmt.Errorf("anonset: entry %d: expected %d registers for %s, got %d", i, k, s.Kind, len(regs))
		}
		flatAddrs = append(flatAddrs, regs...)
	}
	addrsHash, err := poseidon.LinearHashMany(flatAddrs, linearHashArity)
	if err != nil {
		return fr.Element{}, fmt.Errorf("anonset: addresses hash: %w", err)
	}

	return poseidon.Hash([]fr.Element{balancesHash, addrsHash})
}
