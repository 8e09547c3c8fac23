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
	"crypto/rand"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sec-compare/dgkcompare/crypto/ecelgamal"
	"github.com/sec-compare/dgkcompare/crypto/elliptic"
)

func TestEncodeLength(t *testing.T) {
	curve := elliptic.NewSecp256k1()
	_, pk, err := ecelgamal.GenerateKey(curve)
	require.NoError(t, err)

	const L = 8
	out, err := Encode(big.NewInt(5), OpAdd, 0, pk, rand.Reader, L)
	require.NoError(t, err)
	require.Len(t, out, L)
}

func TestEncodeRejectsNegative(t *testing.T) {
	curve := elliptic.NewSecp256k1()
	_, pk, err := ecelgamal.GenerateKey(curve)
	require.NoError(t, err)

	_, err = Encode(big.NewInt(-1), OpAdd, 0, pk, rand.Reader, 8)
	require.Error(t, err)
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, KindInput, perr.Kind)
}

func TestEncodeRejectsOversized(t *testing.T) {
	curve := elliptic.NewSecp256k1()
	_, pk, err := ecelgamal.GenerateKey(curve)
	require.NoError(t, err)

	const L = 8
	tooWide := new(big.Int).Lsh(big.NewInt(1), L)
	_, err = Encode(tooWide, OpAdd, 0, pk, rand.Reader, L)
	require.Error(t, err)
	var perr *ProtocolError
	require.True(t, errors.As(err, &perr))
	require.Equal(t, KindInput, perr.Kind)
}

// TestEncodeZeroPlaintextIsAllIdentity confirms that when s = 0 and Bob's
// plaintext is 0, every value_i is 0, so every produced ciphertext
// decrypts to the curve identity.
func TestEncodeZeroPlaintextIsAllIdentity(t *testing.T) {
	curve := elliptic.NewSecp256k1()
	sk, pk, err := ecelgamal.GenerateKey(curve)
	require.NoError(t, err)

	const L = 8
	out, err := Encode(big.NewInt(0), OpAdd, 0, pk, rand.Reader, L)
	require.NoError(t, err)

	for _, ct := range out {
		pt, err := ecelgamal.Decrypt(sk, ct)
		require.NoError(t, err)
		require.True(t, ecelgamal.IsIdentity(pt))
	}
}
