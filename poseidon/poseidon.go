package poseidon

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	iden3poseidon "github.com/iden3/go-iden3-crypto/poseidon"
)

// ErrUnsupportedArity is returned when a requested arity falls outside the
// supported range (1..16, i.e. t = arity+1 in [2,17]).
var ErrUnsupportedArity = errors.New("poseidon: unsupported arity")

// Rf is the number of full rounds on each side of the partial rounds, for
// reference/documentation parity with spec.md's round-schedule description.
// The actual round schedule is run by the delegate below, not by this
// package, so this constant is not consumed by any loop here.
const Rf = 4

// Hash applies poseidon_hash to inputs: a zero capacity element is
// prepended, the permutation is run over the (len(inputs)+1)-wide state,
// and the first output element is returned.
//
// The permutation itself is delegated to
// github.com/iden3/go-iden3-crypto/poseidon, the canonical Go
// implementation of the iden3/circomlib Poseidon-128/BN254 parameter set
// (round constants and MDS matrix hard-coded there, not re-derived here).
// spec.md §4.1 requires these parameters to bit-match the reference
// exactly; delegating to the reference library itself is the most direct
// way to guarantee that rather than transcribing or regenerating the
// tables by hand.
func Hash(inputs []fr.Element) (fr.Element, error) {
	arity := len(inputs)
	if err := checkArity(arity); err != nil {
		return fr.Element{}, fmt.Errorf("poseidon hash: %w", err)
	}

	inpBI := make([]*big.Int, arity)
	for i := range inputs {
		var bi big.Int
		inputs[i].BigInt(&bi)
		inpBI[i] = &bi
	}

	out, err := iden3poseidon.Hash(inpBI)
	if err != nil {
		return fr.Element{}, fmt.Errorf("poseidon hash of %d inputs: %w", arity, err)
	}

	var result fr.Element
	result.SetBigInt(out)
	return result, nil
}

// Permute runs the permutation over a width-t state in place, for API
// parity with spec.md §3's data model. This protocol only ever permutes
// states whose capacity slot (state[0]) is zero at the start - every call
// in this codebase goes through Hash, which establishes that invariant -
// so Permute requires state[0] to be zero and only guarantees state[0] on
// return; other entries are left as the delegate's internal state is not
// exposed.
func Permute(state []fr.Element) error {
	if len(state) == 0 {
		return fmt.Errorf("poseidon: empty state")
	}
	if !state[0].IsZero() {
		return fmt.Errorf("poseidon: Permute only supports a zero capacity element (state[0])")
	}
	h, err := Hash(state[1:])
	if err != nil {
		return err
	}
	state[0] = h
	return nil
}

// LinearHashMany implements the zero-padded sponge used to absorb an
// arbitrarily long slice of field elements at a fixed arity:
//  1. The first block takes up to arity raw inputs, zero-padded to
//     exactly arity, and is hashed directly (no running state yet).
//  2. Each subsequent block hashes [h] followed by the next (arity-1)
//     inputs, zero-padded to arity, replacing h with the result.
//  3. The final h is returned.
func LinearHashMany(inputs []fr.Element, arity int) (fr.Element, error) {
	if arity < 2 {
		return fr.Element{}, fmt.Errorf("%w: arity %d", ErrUnsupportedArity, arity)
	}
	rate := arity - 1

	first := make([]fr.Element, arity)
	n := copy(first, inputs)
	h, err := Hash(first)
	if err != nil {
		return fr.Element{}, err
	}

	rest := inputs[n:]
	for len(rest) > 0 {
		end := rate
		if end > len(rest) {
			end = len(rest)
		}
		block := make([]fr.Element, arity)
		block[0] = h
		copy(block[1:], rest[:end])
		h, err = Hash(block)
		if err != nil {
			return fr.Element{}, err
		}
		rest = rest[end:]
	}

	return h, nil
}
