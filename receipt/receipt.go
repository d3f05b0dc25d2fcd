// Package receipt verifies that a customer's claimed liability balances
// were included as a leaf in a prover's committed Merkle tree, recomputing
// the account id and the leaf preimage and walking the declared branch.
package receipt

import (
	"crypto/sha512"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/btcq-org/solvency/poseidon"
	"github.com/btcq-org/solvency/scaling"
)

// BalanceDimension mirrors anonset's canonical [BTC, ETH, 16 reserved]
// balance ordering used when packing a receipt's leaf preimage.
const BalanceDimension = 18

// TokenOrder is the canonical token order a receipt's balances are packed
// in: index 0 is BTC, 1 is ETH, the remaining 16 slots are reserved.
var TokenOrder = [BalanceDimension]string{0: "BTC", 1: "ETH"}

// BalanceEntry is one (token, decimal-string balance) pair as published in
// a receipt.
type BalanceEntry struct {
	Token   string
	Balance string
}

// Receipt mirrors the protocol's receipt JSON shape.
type Receipt struct {
	Username            string
	Nonce               string
	AccountID           string
	Balances            []BalanceEntry
	MerkleRoot          string
	MerkleBranch        string
	MerkleArity         int
	MerkleLeafHashArity int
}

var (
	// ErrMalformedReceipt marks a decimal string or branch encoding that
	// cannot be parsed.
	ErrMalformedReceipt = errors.New("receipt: malformed input")
)

// parseDecimalString converts a fixed-point decimal string with exactly
// `decimals` fractional digits into an integer count of the smallest unit,
// without floating point.
func parseDecimalString(s string, decimals int) (*big.Int, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: %q has no fractional part", ErrMalformedReceipt, s)
	}
	whole, frac := parts[0], parts[1]
	if len(frac) != decimals {
		return nil, fmt.Errorf("%w: %q has %d fractional digits, want %d", ErrMalformedReceipt, s, len(frac), decimals)
	}
	combined := whole + frac
	v, ok := new(big.Int).SetString(combined, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrMalformedReceipt, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative balance %q", ErrMalformedReceipt, s)
	}
	return v, nil
}

func decimalsFor(token string) int {
	switch token {
	case "BTC":
		return 8
	case "ETH":
		return 18
	default:
		return 0
	}
}

// accountID computes the top 252 bits of SHA-512(username || nonce), as a
// big-endian integer.
func accountID(username, nonce string) *big.Int {
	sum := sha512.Sum512([]byte(username + nonce))
	v := new(big.Int).SetBytes(sum[:])
	// Keep only the top 252 of 512 bits: shift right by 260.
	v.Rsh(v, 260)
	return v
}

// pack6 groups balances into chunks of 6, each chunk encoded as
// sum(b_i * 2^(42*i)), little-endian lane order.
func pack6(balances []*big.Int) []*big.Int {
	var out []*big.Int
	for offset := 0; offset < len(balances); offset += 6 {
		end := offset + 6
		if end > len(balances) {
			end = len(balances)
		}
		acc := new(big.Int)
		for i, b := range balances[offset:end] {
			shifted := new(big.Int).Lsh(b, uint(42*i))
			acc.Add(acc, shifted)
		}
		out = append(out, acc)
	}
	return out
}

// parseBranch splits the `;`-separated, comma-separated-int branch
// encoding into one []*big.Int per Merkle level.
func parseBranch(branch string) ([][]*big.Int, error) {
	levels := strings.Split(branch, ";")
	out := make([][]*big.Int, len(levels))
	for i, lvl := range levels {
		fields := strings.Split(lvl, ",")
		vals := make([]*big.Int, len(fields))
		for j, f := range fields {
			v, ok := new(big.Int).SetString(strings.TrimSpace(f), 10)
			if !ok {
				return nil, fmt.Errorf("%w: branch level %d entry %d: %q", ErrMalformedReceipt, i, j, f)
			}
			vals[j] = v
		}
		out[i] = vals
	}
	return out, nil
}

func feSliceFromBigInts(vs []*big.Int) []fr.Element {
	out := make([]fr.Element, len(vs))
	for i, v := range vs {
		out[i].SetBigInt(v)
	}
	return out
}

// Verify reports (account_id_ok, merkle_ok): whether the receipt's
// declared account_id matches the recomputed one, and whether the Merkle
// branch membership chain holds up to the declared root. Both must be true
// for the receipt to be accepted.
func Verify(r Receipt) (bool, bool, error) {
	expectedAccountID := accountID(r.Username, r.Nonce)
	gotAccountID, ok := new(big.Int).SetString(strings.TrimPrefix(r.AccountID, "0x"), 16)
	if !ok {
		return false, false, fmt.Errorf("%w: account_id %q is not hex", ErrMalformedReceipt, r.AccountID)
	}
	accountIDOK := expectedAccountID.Cmp(gotAccountID) == 0

	balancesByToken := map[string]string{}
	for _, b := range r.Balances {
		balancesByToken[b.Token] = b.Balance
	}

	proofBalances := make([]*big.Int, BalanceDimension)
	for i := 0; i < BalanceDimension; i++ {
		token := TokenOrder[i]
		if token == "" {
			proofBalances[i] = big.NewInt(0)
			continue
		}
		raw, ok := balancesByToken[token]
		if !ok {
			return false, false, fmt.Errorf("%w: missing balance for %s", ErrMalformedReceipt, token)
		}
		v, err := parseDecimalString(raw, decimalsFor(token))
		if err != nil {
			return false, false, err
		}
		scaled, err := scaling.AccountToProof(token, v)
		if err != nil {
			return false, false, err
		}
		proofBalances[i] = scaled
	}

	leaf := append([]*big.Int{expectedAccountID}, pack6(proofBalances)...)

	branch, err := parseBranch(r.MerkleBranch)
	if err != nil {
		return accountIDOK, false, err
	}
	if len(branch) == 0 {
		return accountIDOK, false, fmt.Errorf("%w: empty merkle branch", ErrMalformedReceipt)
	}
	if !bigIntSliceEqual(branch[0], leaf) {
		return accountIDOK, false, nil
	}

	root, ok := new(big.Int).SetString(strings.TrimPrefix(r.MerkleRoot, "0x"), 10)
	if !ok {
		root, ok = new(big.Int).SetString(strings.TrimPrefix(r.MerkleRoot, "0x"), 16)
		if !ok {
			return accountIDOK, false, fmt.Errorf("%w: merkle_root %q is not an integer", ErrMalformedReceipt, r.MerkleRoot)
		}
	}

	top := branch[len(branch)-1]
	if len(top) != r.MerkleArity {
		return accountIDOK, false, fmt.Errorf("%w: top preimage has %d entries, merkle_arity is %d", ErrMalformedReceipt, len(top), r.MerkleArity)
	}
	topHash, err := poseidon.Hash(feSliceFromBigInts(top))
	if err != nil {
		return accountIDOK, false, err
	}
	var topHashBI big.Int
	topHash.BigInt(&topHashBI)
	if topHashBI.Cmp(root) != 0 {
		return accountIDOK, false, nil
	}

	for i := 0; i+1 < len(branch); i++ {
		arity := r.MerkleArity
		if i == 0 {
			arity = r.MerkleLeafHashArity
		}
		if len(branch[i]) != arity {
			return accountIDOK, false, fmt.Errorf("%w: branch level %d has %d entries, want arity %d", ErrMalformedReceipt, i, len(branch[i]), arity)
		}
		h, err := poseidon.Hash(feSliceFromBigInts(branch[i]))
		if err != nil {
			return accountIDOK, false, err
		}
		var hBI big.Int
		h.BigInt(&hBI)
		if !containsBigInt(branch[i+1], &hBI) {
			return accountIDOK, false, nil
		}
	}

	return accountIDOK, true, nil
}

func bigIntSliceEqual(a, b []*big.Int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Cmp(b[i]) != 0 {
			return false
		}
	}
	return true
}

func containsBigInt(haystack []*big.Int, needle *big.Int) bool {
	for _, v := range haystack {
		if v.Cmp(needle) == 0 {
			return true
		}
	}
	return false
}
