package solvency_test

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/stretchr/testify/require"

	"github.com/btcq-org/solvency/groth16"
	"github.com/btcq-org/solvency/pubhash"
	"github.com/btcq-org/solvency/solvency"
)

func sampleBase(seed int64) *pubhash.AssetBase {
	return &pubhash.AssetBase{
		MsgHash:              big.NewInt(seed + 1),
		HashedPubAddrs:       big.NewInt(seed + 2),
		MinOwnedAddrSelector: big.NewInt(seed + 3),
		MaxOwnedAddrSelector: big.NewInt(seed + 4),
		HashedVkeyBase:       big.NewInt(seed + 5),
		HashedVkeyAnonsetagg: big.NewInt(seed + 6),
	}
}

func sampleOutputs() pubhash.PublicOutputs {
	return pubhash.PublicOutputs{
		Liabilities: pubhash.Liabilities{
			HashedVkeyLiabBase: big.NewInt(101),
			HashedVkeyLiabRec:  big.NewInt(102),
			MerkleRoot:         big.NewInt(103),
		},
		Assets: pubhash.Assets{
			ETH:                sampleBase(10),
			BTC:                sampleBase(20),
			BTCMulti3:          sampleBase(30),
			AnonsetaggVkeyHash: big.NewInt(200),
			DummyVkeyHash:      big.NewInt(201),
			AssetsrecVkeyHash:  big.NewInt(202),
		},
	}
}

// buildMatchingProof builds a toy Groth16 instance (see groth16_test.go's
// buildToyVK for the construction) bound to the reconstructed pubhash as
// its sole public input, so VerifyProof's two stages can both accept.
func buildMatchingProof(t *testing.T, x *big.Int) (groth16.Proof, groth16.VerifyingKey) {
	t.Helper()
	_, _, g1Gen, g2Gen := bn254.Generators()

	alphaScalar := big.NewInt(5)
	gammaScalar := big.NewInt(13)

	var alpha1 bn254.G1Affine
	alpha1.ScalarMultiplication(&g1Gen, alphaScalar)
	var beta2, gamma2 bn254.G2Affine
	beta2.ScalarMultiplication(&g2Gen, big.NewInt(11))
	gamma2.ScalarMultiplication(&g2Gen, gammaScalar)
	delta2 := gamma2 // forcing delta==gamma lets C cancel vk_x directly

	var ic0 bn254.G1Affine
	var ic1 bn254.G1Affine
	ic1.ScalarMultiplication(&g1Gen, gammaScalar)

	vk := groth16.VerifyingKey{Alpha1: alpha1, Beta2: beta2, Gamma2: gamma2, Delta2: delta2, IC0: ic0, IC1: ic1}

	var vkx bn254.G1Affine
	vkx.ScalarMultiplication(&ic1, x)
	var c bn254.G1Affine
	c.Neg(&vkx)

	proof := groth16.Proof{A: alpha1, B: beta2, C: c}
	return proof, vk
}

func TestVerifyProofAcceptsMatchingBundle(t *testing.T) {
	outputs := sampleOutputs()
	h, err := pubhash.Compute(outputs)
	require.NoError(t, err)
	var target big.Int
	h.BigInt(&target)
	outputs.TargetPubhash = &target

	proof, vk := buildMatchingProof(t, &target)

	ok, err := solvency.VerifyProof(outputs, proof, vk)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyProofRejectsMismatchedPubhash(t *testing.T) {
	outputs := sampleOutputs()
	h, err := pubhash.Compute(outputs)
	require.NoError(t, err)
	var target big.Int
	h.BigInt(&target)

	proof, vk := buildMatchingProof(t, &target)

	// Claim a target pubhash that does not match the reconstructed value.
	wrongTarget := new(big.Int).Add(&target, big.NewInt(1))
	outputs.TargetPubhash = wrongTarget

	ok, err := solvency.VerifyProof(outputs, proof, vk)
	require.NoError(t, err)
	require.False(t, ok)
}
