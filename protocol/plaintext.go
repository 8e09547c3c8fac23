// Copyright © 2020 AMIS Technologies
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package protocol

import (
	"context"
	"crypto/rand"
	"io"
	"math/big"

	"github.com/getamis/sirius/log"

	"github.com/sec-compare/dgkcompare/crypto/ecelgamal"
	"github.com/sec-compare/dgkcompare/crypto/utils"
	"github.com/sec-compare/dgkcompare/transport"
)

// PlaintextCompareBob is the Bob-side role of the DGK bitwise comparator
// (spec §4.2). x is Bob's plaintext, strictly less than 2^L. It
// publishes T, consumes Alice's shuffled, blinded vector, and searches
// it for a ciphertext that decrypts to the curve identity. The result
// is always echoed back to Alice (spec §4.2's "optionally... sends a
// boolean back", resolved here as "always", see SPEC_FULL.md §5) so a
// single standalone run can be checked from both sides.
//
// This is the entry point for running the plaintext comparator on its
// own. The encrypted comparator (EncryptedCompare*) drives the same
// bitwise scan without the echo, via plaintextCompareBobCore, to keep
// its own message choreography at the count spec §5 fixes.
func PlaintextCompareBob(ctx context.Context, ch transport.Channel, x *big.Int, pk *ecelgamal.PublicKey, sk *ecelgamal.PrivateKey, L int) (bool, error) {
	found, err := plaintextCompareBobCore(ctx, ch, x, pk, sk, L)
	if err != nil {
		return false, err
	}
	if err := sendBool(ctx, ch, found); err != nil {
		log.New("role", "bob", "op", "plaintext-compare").Warn("failed to echo result", "err", err)
		return false, err
	}
	return found, nil
}

// PlaintextCompareAlice is the Alice-side role. y is Alice's plaintext,
// strictly less than 2^L. s selects which ordering the returned bit
// reports: with s = +1 the bit means "y > x" as Bob observes it; with
// s = -1 the direction is reversed and the bit means "x > y". The
// protocol does not undo the reversal; interpreting an s = -1 bit is
// the CALLER's responsibility (spec §9 — the asymmetric handling of s
// is a documented wart inherited from the original, not hidden here).
// The two settings are not exact complements: for x == y both report
// false.
func PlaintextCompareAlice(ctx context.Context, ch transport.Channel, y *big.Int, pk *ecelgamal.PublicKey, s int, L int) (bool, error) {
	if err := plaintextCompareAliceCore(ctx, ch, y, pk, s, L); err != nil {
		return false, err
	}
	result, err := recvBool(ctx, ch)
	if err != nil {
		log.New("role", "alice", "op", "plaintext-compare").Warn("failed to receive result echo", "err", err)
		return false, err
	}
	return result, nil
}

// plaintextCompareBobCore runs Bob's side of the bitwise scan and
// returns the match bit without echoing it back to Alice.
func plaintextCompareBobCore(ctx context.Context, ch transport.Channel, x *big.Int, pk *ecelgamal.PublicKey, sk *ecelgamal.PrivateKey, L int) (bool, error) {
	logger := log.New("role", "bob", "op", "plaintext-compare")

	t, err := Encode(x, OpAdd, 0, pk, rand.Reader, L)
	if err != nil {
		return false, err
	}
	if err := sendCiphertextVector(ctx, ch, t); err != nil {
		logger.Warn("failed to send T", "err", err)
		return false, err
	}

	e, err := recvCiphertextVector(ctx, ch, pk.Curve(), L)
	if err != nil {
		logger.Warn("failed to receive E", "err", err)
		return false, err
	}

	found := false
	for _, ct := range e {
		point, err := ecelgamal.Decrypt(sk, ct)
		if err != nil {
			return false, invariantErr("PlaintextCompareBob", err)
		}
		if ecelgamal.IsIdentity(point) {
			found = true
		}
	}
	logger.Debug("plaintext compare scan done", "result", found)
	return found, nil
}

// plaintextCompareAliceCore runs Alice's side of the bitwise scan
// (blind, shuffle, send) without waiting for Bob's result echo.
func plaintextCompareAliceCore(ctx context.Context, ch transport.Channel, y *big.Int, pk *ecelgamal.PublicKey, s int, L int) error {
	logger := log.New("role", "alice", "op", "plaintext-compare")

	t, err := recvCiphertextVector(ctx, ch, pk.Curve(), L)
	if err != nil {
		logger.Warn("failed to receive T", "err", err)
		return err
	}

	v, err := Encode(y, OpSub, s, pk, rand.Reader, L)
	if err != nil {
		return err
	}

	e := make([]*ecelgamal.Ciphertext, L)
	for i := range t {
		sum, err := ecelgamal.Add(t[i], v[i])
		if err != nil {
			return invariantErr("PlaintextCompareAlice", err)
		}
		// Blind by a fresh non-zero random scalar rather than
		// Rerandomize: a non-matching sum must have its plaintext point
		// scaled away, not merely re-encrypted under the same value,
		// or Bob would see value_i·P directly on decryption.
		r, err := utils.RandomPositiveInt(pk.Curve().Params().N)
		if err != nil {
			return transportErr("PlaintextCompareAlice", err)
		}
		e[i] = ecelgamal.ScalarMult(sum, r)
	}

	if err := shuffle(e, rand.Reader); err != nil {
		return err
	}

	if err := sendCiphertextVector(ctx, ch, e); err != nil {
		logger.Warn("failed to send E", "err", err)
		return err
	}
	return nil
}

// shuffle performs an unbiased Fisher-Yates permutation of e using rng,
// so the vector Bob observes is uniform over permutations of its
// element set (spec §8) — it restricts what Bob learns to "some index
// matched" rather than which one.
func shuffle(e []*ecelgamal.Ciphertext, rng io.Reader) error {
	for i := len(e) - 1; i > 0; i-- {
		jBig, err := rand.Int(rng, big.NewInt(int64(i+1)))
		if err != nil {
			return transportErr("shuffle", err)
		}
		j := int(jBig.Int64())
		e[i], e[j] = e[j], e[i]
	}
	return nil
}
