// Package groth16 verifies a Groth16 SNARK over BN254 restricted to one
// public input, grounded on the teacher's x/qbtc/zk verifier wiring but
// replacing PLONK/gnark's frontend-compiled verifier with a direct
// gnark-crypto pairing check matching the on-chain EIP-197 precompile.
package groth16

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// ErrOutOfRange marks a public input at or above the scalar field modulus.
var ErrOutOfRange = errors.New("groth16: public input out of range")

// Proof is a Groth16 proof (A, B, C) over BN254.
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// VerifyingKey binds a specific circuit with exactly one non-constant
// public input: IC0 is the constant-term commitment, IC1 the coefficient
// for that one input.
type VerifyingKey struct {
	Alpha1 bn254.G1Affine
	Beta2  bn254.G2Affine
	Gamma2 bn254.G2Affine
	Delta2 bn254.G2Affine
	IC0    bn254.G1Affine
	IC1    bn254.G1Affine
}

// Verify checks e(-A,B)*e(alpha1,beta2)*e(vk_x,gamma2)*e(C,delta2) == 1,
// where vk_x = IC0 + x*IC1. Any pairing-equality failure, not-on-curve
// point, or out-of-range input returns (false, nil) rather than an error:
// per the protocol's error policy, a rejected proof is a normal outcome,
// never an exception.
func Verify(x *big.Int, proof Proof, vk VerifyingKey) (bool, error) {
	r := fr.Modulus()
	if x.Sign() < 0 || x.Cmp(r) >= 0 {
		return false, nil
	}

	for _, p := range []*bn254.G1Affine{&proof.A, &proof.C, &vk.Alpha1, &vk.IC0, &vk.IC1} {
		if !p.IsInSubGroup() {
			return false, nil
		}
	}
	for _, p := range []*bn254.G2Affine{&proof.B, &vk.Beta2, &vk.Gamma2, &vk.Delta2} {
		if !p.IsInSubGroup() {
			return false, nil
		}
	}

	var vkx bn254.G1Affine
	var xIC1 bn254.G1Affine
	xIC1.ScalarMultiplication(&vk.IC1, x)
	vkx.Add(&vk.IC0, &xIC1)

	var negA bn254.G1Affine
	negA.Neg(&proof.A)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, vk.Alpha1, vkx, proof.C},
		[]bn254.G2Affine{proof.B, vk.Beta2, vk.Gamma2, vk.Delta2},
	)
	if err != nil {
		return false, fmt.Errorf("groth16: pairing computation: %w", err)
	}
	return ok, nil
}
