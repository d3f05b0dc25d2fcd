package poseidon

import "fmt"

// minArity and maxArity bound the supported arity (= t-1, t = state width)
// range the reference parameter set covers: t in [2,17].
const (
	minArity = 1
	maxArity = 16
)

// rpTable holds the partial-round count per state width t, t in [2,17],
// the published Poseidon-128/BN254 parameter convention (N_ROUNDS_P in the
// iden3/circomlib poseidon.circom reference). It is not used to derive
// round constants (see poseidon.go) and nothing in this module checks a
// round-constant count against it; it is exposed only through RP.
var rpTable = map[int]int{
	2: 56, 3: 57, 4: 56, 5: 60, 6: 60, 7: 63, 8: 64, 9: 63,
	10: 60, 11: 66, 12: 60, 13: 65, 14: 70, 15: 60, 16: 64, 17: 68,
}

// RP returns the partial-round count for state width t.
func RP(t int) (int, error) {
	rp, ok := rpTable[t]
	if !ok {
		return 0, fmt.Errorf("poseidon: unsupported state width t=%d (supported: %d..%d)", t, minArity+1, maxArity+1)
	}
	return rp, nil
}

// checkArity validates that arity (the number of absorbed field elements
// per poseidon_hash call, i.e. t-1) falls within the supported range.
func checkArity(arity int) error {
	if arity < minArity || arity > maxArity {
		return fmt.Errorf("%w: arity %d (supported: %d..%d)", ErrUnsupportedArity, arity, minArity, maxArity)
	}
	return nil
}
