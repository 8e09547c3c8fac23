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
	"io"
	"math/big"

	"github.com/sec-compare/dgkcompare/crypto/ecelgamal"
)

// Op is a binary integer operation over signed integers, used by Encode
// to combine the sign selector, a bit, and the suffix sum (spec §4.1).
type Op func(a, b *big.Int) *big.Int

// OpAdd and OpSub are the only two operations the comparator needs:
// Bob's side of the bit encoder adds, Alice's side subtracts.
var (
	OpAdd Op = func(a, b *big.Int) *big.Int { return new(big.Int).Add(a, b) }
	OpSub Op = func(a, b *big.Int) *big.Int { return new(big.Int).Sub(a, b) }
)

// Encode is the bit-vector encoder (cumulative_power_two in spec §4.1).
// It returns the length-L sequence of curve-ElGamal ciphertexts
// [C_{L-1}, ..., C_0], each a fresh encryption of
//
//	value_i = op(op(s, b_i), suffix_i)
//
// where b_{L-1}...b_0 is the binary expansion of plain and
// suffix_i = Σ_{j>i} b_j·2^j. plain must be a non-negative integer
// strictly less than 2^L; oversized inputs are rejected rather than
// silently truncated (spec §4.1 edge cases — the source's ad-hoc ×3
// multiplication to dodge a wrap-around bug is intentionally not
// reproduced here).
func Encode(plain *big.Int, op Op, s int, pk *ecelgamal.PublicKey, rng io.Reader, L int) ([]*ecelgamal.Ciphertext, error) {
	if plain.Sign() < 0 {
		return nil, inputErr("Encode", errNegativePlain)
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(L))
	if plain.Cmp(limit) >= 0 {
		return nil, inputErr("Encode", errPlainTooWide)
	}

	sBig := big.NewInt(int64(s))
	out := make([]*ecelgamal.Ciphertext, L)

	suffix := new(big.Int)
	// Walk bit indices from L-1 down to 0, accumulating the suffix sum
	// of higher bits as we go, so each index is computed exactly once.
	for i := L - 1; i >= 0; i-- {
		bBig := big.NewInt(int64(plain.Bit(i)))
		value := op(op(sBig, bBig), suffix)

		point := ecelgamal.EncodePlain(pk.Curve(), value)
		ct, err := ecelgamal.Encrypt(pk, point, rng)
		if err != nil {
			return nil, transportErr("Encode", err)
		}
		out[L-1-i] = ct

		// suffix_{i-1} adds bit i at weight 2^i for the next (lower) index.
		if i > 0 {
			weight := new(big.Int).Lsh(bBig, uint(i))
			suffix = new(big.Int).Add(suffix, weight)
		}
	}
	return out, nil
}
