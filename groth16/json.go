package groth16

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
)

// These types decode the sample proof/verifying-key JSON shape: G1 points
// as [x, y] decimal-string pairs, G2 points as [[x0, x1], [y0, y1]] with
// Fp2 coefficients stored in reversed [c1, c0] order (the snarkjs
// convention); decoding swaps them into gnark-crypto's native (c0, c1).

func feFromDecimalString(s string) (fp.Element, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return fp.Element{}, fmt.Errorf("groth16: not a decimal integer: %q", s)
	}
	mod := fp.Modulus()
	if v.Sign() < 0 || v.Cmp(mod) >= 0 {
		return fp.Element{}, fmt.Errorf("%w: %s", ErrOutOfRange, s)
	}
	var e fp.Element
	e.SetBigInt(v)
	return e, nil
}

func decodeG1(raw []string) (bn254.G1Affine, error) {
	if len(raw) < 2 {
		return bn254.G1Affine{}, fmt.Errorf("groth16: G1 point needs 2 coordinates, got %d", len(raw))
	}
	x, err := feFromDecimalString(raw[0])
	if err != nil {
		return bn254.G1Affine{}, err
	}
	y, err := feFromDecimalString(raw[1])
	if err != nil {
		return bn254.G1Affine{}, err
	}
	p := bn254.G1Affine{X: x, Y: y}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil // point at infinity, represented as (0,0) in the wire format
	}
	if !p.IsOnCurve() {
		return bn254.G1Affine{}, fmt.Errorf("groth16: G1 point not on curve")
	}
	return p, nil
}

func decodeG2(raw [][]string) (bn254.G2Affine, error) {
	if len(raw) < 2 {
		return bn254.G2Affine{}, fmt.Errorf("groth16: G2 point needs 2 Fp2 coordinates, got %d", len(raw))
	}
	coord := func(pair []string) (bn254.E2, error) {
		if len(pair) < 2 {
			return bn254.E2{}, fmt.Errorf("groth16: Fp2 coordinate needs 2 limbs, got %d", len(pair))
		}
		// Wire order is [c1, c0]; swap to gnark-crypto's native (A0=c0, A1=c1).
		c1, err := feFromDecimalString(pair[0])
		if err != nil {
			return bn254.E2{}, err
		}
		c0, err := feFromDecimalString(pair[1])
		if err != nil {
			return bn254.E2{}, err
		}
		return bn254.E2{A0: c0, A1: c1}, nil
	}

	x, err := coord(raw[0])
	if err != nil {
		return bn254.G2Affine{}, err
	}
	y, err := coord(raw[1])
	if err != nil {
		return bn254.G2Affine{}, err
	}
	p := bn254.G2Affine{X: x, Y: y}
	if p.X.IsZero() && p.Y.IsZero() {
		return p, nil
	}
	if !p.IsOnCurve() {
		return bn254.G2Affine{}, fmt.Errorf("groth16: G2 point not on curve")
	}
	return p, nil
}

// proofJSON mirrors sample_proof.json's field names.
type proofJSON struct {
	PiA []string   `json:"pi_a"`
	PiB [][]string `json:"pi_b"`
	PiC []string   `json:"pi_c"`
}

// UnmarshalJSON decodes a proof from the sample_proof.json shape.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw proofJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("groth16: decode proof: %w", err)
	}
	a, err := decodeG1(raw.PiA)
	if err != nil {
		return fmt.Errorf("groth16: proof.pi_a: %w", err)
	}
	b, err := decodeG2(raw.PiB)
	if err != nil {
		return fmt.Errorf("groth16: proof.pi_b: %w", err)
	}
	c, err := decodeG1(raw.PiC)
	if err != nil {
		return fmt.Errorf("groth16: proof.pi_c: %w", err)
	}
	p.A, p.B, p.C = a, b, c
	return nil
}

// verifyingKeyJSON mirrors the sample_verifying_key.json shape.
type verifyingKeyJSON struct {
	VkAlpha1 []string   `json:"vk_alpha_1"`
	VkBeta2  [][]string `json:"vk_beta_2"`
	VkGamma2 [][]string `json:"vk_gamma_2"`
	VkDelta2 [][]string `json:"vk_delta_2"`
	IC       [][]string `json:"IC"`
}

// UnmarshalJSON decodes a verifying key restricted to exactly one
// non-constant public input (IC must carry at least 2 entries; only the
// first two, IC0 and IC1, are used).
func (vk *VerifyingKey) UnmarshalJSON(data []byte) error {
	var raw verifyingKeyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("groth16: decode verifying key: %w", err)
	}
	if len(raw.IC) < 2 {
		return fmt.Errorf("groth16: verifying key IC needs at least 2 entries, got %d", len(raw.IC))
	}

	alpha1, err := decodeG1(raw.VkAlpha1)
	if err != nil {
		return fmt.Errorf("groth16: vk_alpha_1: %w", err)
	}
	beta2, err := decodeG2(raw.VkBeta2)
	if err != nil {
		return fmt.Errorf("groth16: vk_beta_2: %w", err)
	}
	gamma2, err := decodeG2(raw.VkGamma2)
	if err != nil {
		return fmt.Errorf("groth16: vk_gamma_2: %w", err)
	}
	delta2, err := decodeG2(raw.VkDelta2)
	if err != nil {
		return fmt.Errorf("groth16: vk_delta_2: %w", err)
	}
	ic0, err := decodeG1(raw.IC[0])
	if err != nil {
		return fmt.Errorf("groth16: IC[0]: %w", err)
	}
	ic1, err := decodeG1(raw.IC[1])
	if err != nil {
		return fmt.Errorf("groth16: IC[1]: %w", err)
	}

	vk.Alpha1, vk.Beta2, vk.Gamma2, vk.Delta2, vk.IC0, vk.IC1 = alpha1, beta2, gamma2, delta2, ic0, ic1
	return nil
}
