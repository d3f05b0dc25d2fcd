// Package solvency wires the pubhash reconstruction and Groth16 pairing
// check into the single end-to-end call an independent verifier makes
// against one published proof, grounded on the source's combined
// verify_public_proof.py + verify_proof.py flow.
package solvency

import (
	"fmt"

	"github.com/btcq-org/solvency/groth16"
	"github.com/btcq-org/solvency/pubhash"
)

// VerifyProof reconstructs pubhash from outputs, checks it matches the
// bundle's declared target, then runs the Groth16 pairing check with that
// value as the sole public input. Both steps must succeed for the overall
// result to be true.
func VerifyProof(outputs pubhash.PublicOutputs, proof groth16.Proof, vk groth16.VerifyingKey) (bool, error) {
	matches, err := pubhash.Matches(outputs)
	if err != nil {
		return false, fmt.Errorf("solvency: pubhash reconstruction: %w", err)
	}
	if !matches {
		return false, nil
	}

	ok, err := groth16.Verify(outputs.TargetPubhash, proof, vk)
	if err != nil {
		return false, fmt.Errorf("solvency: groth16 verify: %w", err)
	}
	return ok, nil
}
