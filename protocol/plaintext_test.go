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
	"math/big"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sec-compare/dgkcompare/crypto/ecelgamal"
	"github.com/sec-compare/dgkcompare/crypto/elliptic"
	"github.com/sec-compare/dgkcompare/transport"
)

type plaintextResult struct {
	result bool
	err    error
}

func runPlaintextCompare(t *testing.T, L int, x, y *big.Int, s int) (bob, alice plaintextResult) {
	t.Helper()
	curve := elliptic.NewSecp256k1()
	sk, pk, err := ecelgamal.GenerateKey(curve)
	require.NoError(t, err)

	bobCh, aliceCh := transport.Pipe()
	ctx := context.Background()

	bobDone := make(chan plaintextResult, 1)
	aliceDone := make(chan plaintextResult, 1)

	go func() {
		r, err := PlaintextCompareBob(ctx, bobCh, x, pk, sk, L)
		bobDone <- plaintextResult{r, err}
	}()
	go func() {
		r, err := PlaintextCompareAlice(ctx, aliceCh, y, pk, s, L)
		aliceDone <- plaintextResult{r, err}
	}()

	bob = <-bobDone
	alice = <-aliceDone
	return
}

// Concrete scenario 1: L = 16, Alice y = 25, Bob x = 5, s = +1: the
// protocol reports y > x, i.e. true.
func TestPlaintextCompareScenarioGreater(t *testing.T) {
	bob, alice := runPlaintextCompare(t, 16, big.NewInt(5), big.NewInt(25), 1)
	require.NoError(t, bob.err)
	require.NoError(t, alice.err)
	require.True(t, bob.result)
	require.True(t, alice.result)
}

// Concrete scenario 2: L = 16, Alice y = 25, Bob x = 25, s = +1: equal
// inputs report false.
func TestPlaintextCompareScenarioEqual(t *testing.T) {
	bob, alice := runPlaintextCompare(t, 16, big.NewInt(25), big.NewInt(25), 1)
	require.NoError(t, bob.err)
	require.NoError(t, alice.err)
	require.False(t, bob.result)
	require.False(t, alice.result)
}

// With s = -1 the reported comparison is reversed to x > y (spec §9):
// here y < x, so s = -1 must report true where s = +1 reports false.
func TestPlaintextCompareNegativeSInverts(t *testing.T) {
	bob, alice := runPlaintextCompare(t, 16, big.NewInt(25), big.NewInt(5), -1)
	require.NoError(t, bob.err)
	require.NoError(t, alice.err)
	require.True(t, bob.result)
	require.True(t, alice.result)
}

func TestPlaintextCompareFuzz(t *testing.T) {
	const L = 16
	limit := int64(1) << L
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 64; i++ {
		x := big.NewInt(rng.Int63n(limit))
		y := big.NewInt(rng.Int63n(limit))
		bob, alice := runPlaintextCompare(t, L, x, y, 1)
		require.NoError(t, bob.err)
		require.NoError(t, alice.err)
		want := y.Cmp(x) > 0
		require.Equal(t, want, bob.result, "x=%s y=%s", x, y)
		require.Equal(t, want, alice.result, "x=%s y=%s", x, y)
	}
}
