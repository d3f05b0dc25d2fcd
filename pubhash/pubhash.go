// Package pubhash reconstructs the single non-trivial Groth16 public input
// from a prover's revealed liability and asset public-output bundles, per
// the recursive Poseidon aggregation the protocol defines.
package pubhash

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/btcq-org/solvency/poseidon"
)

// Liabilities mirrors the liability public-output subtree.
type Liabilities struct {
	HashedVkeyLiabBase *big.Int
	HashedVkeyLiabRec  *big.Int
	MerkleRoot         *big.Int
}

// AssetBase is one address-class contribution to the assets proof (eth,
// btc, or btc_multi3).
type AssetBase struct {
	MsgHash              *big.Int
	HashedPubAddrs       *big.Int
	MinOwnedAddrSelector *big.Int
	MaxOwnedAddrSelector *big.Int
	HashedVkeyBase       *big.Int
	HashedVkeyAnonsetagg *big.Int
}

// Assets mirrors the asset public-output subtree. AnonsetaggVkeyHash here
// is the set-level value hash_assets itself triples into rec_h; it is a
// distinct field from each AssetBase's own HashedVkeyAnonsetagg, which
// hash_abase absorbs per base.
type Assets struct {
	ETH                *AssetBase
	BTC                *AssetBase
	BTCMulti3          *AssetBase
	AnonsetaggVkeyHash *big.Int
	DummyVkeyHash      *big.Int
	AssetsrecVkeyHash  *big.Int
}

// PublicOutputs is the full structured bundle a prover publishes alongside
// a proof; TargetPubhash is the claimed reconstruction this package
// recomputes and checks against.
type PublicOutputs struct {
	Liabilities   Liabilities
	Assets        Assets
	TargetPubhash *big.Int
}

func feFromBigInt(v *big.Int) fr.Element {
	var e fr.Element
	e.SetBigInt(v)
	return e
}

// intToRegs decomposes x into 4 little-endian 64-bit limbs, x < 2^256.
func intToRegs(x *big.Int) ([4]fr.Element, error) {
	max := new(big.Int).Lsh(big.NewInt(1), 256)
	if x.Sign() < 0 || x.Cmp(max) >= 0 {
		return [4]fr.Element{}, fmt.Errorf("pubhash: int_to_regs input out of range: %s", x.String())
	}
	mask64 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(1))
	var regs [4]fr.Element
	rem := new(big.Int).Set(x)
	for i := 0; i < 4; i++ {
		limb := new(big.Int).And(rem, mask64)
		regs[i] = feFromBigInt(limb)
		rem.Rsh(rem, 64)
	}
	return regs, nil
}

func hashLiab(l Liabilities) (fr.Element, error) {
	return poseidon.Hash([]fr.Element{
		feFromBigInt(l.HashedVkeyLiabBase),
		feFromBigInt(l.HashedVkeyLiabRec),
		feFromBigInt(l.MerkleRoot),
	})
}

// hashAbase hashes one asset-base record. HashedVkeyBase holds that base's
// own hashed_vkey_<name>_base value ("eth"/"btc"/"btc_multi3" bind to
// distinct verifying keys), so no lookup by name happens here; the trailing
// slot is this base's own anonsetagg vkey hash, not the set-level value
// hash_assets uses separately.
func hashAbase(a *AssetBase) (fr.Element, error) {
	regs, err := intToRegs(a.MsgHash)
	if err != nil {
		return fr.Element{}, err
	}
	inputs := []fr.Element{
		regs[0], regs[1], regs[2], regs[3],
		feFromBigInt(a.HashedPubAddrs),
		feFromBigInt(a.MinOwnedAddrSelector),
		feFromBigInt(a.MaxOwnedAddrSelector),
		feFromBigInt(a.HashedVkeyBase),
		feFromBigInt(a.HashedVkeyAnonsetagg),
	}
	return poseidon.Hash(inputs)
}

// hashAssets combines the three asset-base digests with the aggregate and
// dummy verifying-key hashes into the assets-side commitment. Slot 3 of the
// inner 8-ary hash is a literal zero and anonsetaggVkeyHash is repeated
// three times (slots 4-6); both are preserved bit-exactly as the protocol
// requires, not simplified.
func hashAssets(a Assets) (fr.Element, error) {
	ethH, err := hashAbase(a.ETH)
	if err != nil {
		return fr.Element{}, fmt.Errorf("eth base: %w", err)
	}
	btcH, err := hashAbase(a.BTC)
	if err != nil {
		return fr.Element{}, fmt.Errorf("btc base: %w", err)
	}
	btcMulti3H, err := hashAbase(a.BTCMulti3)
	if err != nil {
		return fr.Element{}, fmt.Errorf("btc_multi3 base: %w", err)
	}

	anonsetagg := feFromBigInt(a.AnonsetaggVkeyHash)
	var zero fr.Element
	recH, err := poseidon.Hash([]fr.Element{
		ethH, btcH, btcMulti3H, zero,
		anonsetagg, anonsetagg, anonsetagg,
		feFromBigInt(a.DummyVkeyHash),
	})
	if err != nil {
		return fr.Element{}, fmt.Errorf("assets record hash: %w", err)
	}

	return poseidon.Hash([]fr.Element{recH, feFromBigInt(a.AssetsrecVkeyHash)})
}

// Compute reconstructs pubhash = poseidon_hash([hash_assets, hash_liab], 2),
// assets first.
func Compute(o PublicOutputs) (fr.Element, error) {
	hAssets, err := hashAssets(o.Assets)
	if err != nil {
		return fr.Element{}, fmt.Errorf("pubhash: %w", err)
	}
	hLiab, err := hashLiab(o.Liabilities)
	if err != nil {
		return fr.Element{}, fmt.Errorf("pubhash: %w", err)
	}
	return poseidon.Hash([]fr.Element{hAssets, hLiab})
}

// Matches recomputes pubhash and reports whether it equals the bundle's
// declared TargetPubhash.
func Matches(o PublicOutputs) (bool, error) {
	got, err := Compute(o)
	if err != nil {
		return false, err
	}
	want := feFromBigInt(o.TargetPubhash)
	return got.Equal(&want), nil
}
