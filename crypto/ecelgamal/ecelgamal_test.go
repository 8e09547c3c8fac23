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

package ecelgamal

import (
	"crypto/rand"
	"math/big"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/sec-compare/dgkcompare/crypto/elliptic"
)

func TestCrypto(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Curve ElGamal Test")
}

var _ = Describe("Curve ElGamal", func() {
	var curve elliptic.Curve
	var sk *PrivateKey
	var pk *PublicKey

	BeforeEach(func() {
		curve = elliptic.NewSecp256k1()
		var err error
		sk, pk, err = GenerateKey(curve)
		Expect(err).Should(BeNil())
	})

	It("encrypts and decrypts the identity", func() {
		m := EncodePlain(curve, big.NewInt(0))
		c, err := Encrypt(pk, m, rand.Reader)
		Expect(err).Should(BeNil())
		got, err := Decrypt(sk, c)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(got)).Should(BeTrue())
	})

	It("encrypts and decrypts a non-zero value", func() {
		m := EncodePlain(curve, big.NewInt(7))
		c, err := Encrypt(pk, m, rand.Reader)
		Expect(err).Should(BeNil())
		got, err := Decrypt(sk, c)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(got)).Should(BeFalse())
	})

	It("adds ciphertexts to produce the sum of their plaintexts", func() {
		a := EncodePlain(curve, big.NewInt(3))
		b := EncodePlain(curve, big.NewInt(-3))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		cb, err := Encrypt(pk, b, rand.Reader)
		Expect(err).Should(BeNil())
		sum, err := Add(ca, cb)
		Expect(err).Should(BeNil())
		got, err := Decrypt(sk, sum)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(got)).Should(BeTrue())
	})

	It("negates a ciphertext", func() {
		a := EncodePlain(curve, big.NewInt(5))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		neg := Negate(ca)
		sum, err := Add(ca, neg)
		Expect(err).Should(BeNil())
		got, err := Decrypt(sk, sum)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(got)).Should(BeTrue())
	})

	It("rerandomizes without changing the plaintext", func() {
		a := EncodePlain(curve, big.NewInt(11))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		reran, err := Rerandomize(pk, ca, rand.Reader)
		Expect(err).Should(BeNil())

		diff, err := Add(reran, Negate(ca))
		Expect(err).Should(BeNil())
		gotDiff, err := Decrypt(sk, diff)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(gotDiff)).Should(BeTrue())
	})

	It("scales a ciphertext's plaintext by a scalar", func() {
		a := EncodePlain(curve, big.NewInt(5))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		scaled := ScalarMult(ca, big.NewInt(3))
		got, err := Decrypt(sk, scaled)
		Expect(err).Should(BeNil())
		want := EncodePlain(curve, big.NewInt(15))
		Expect(got.Equal(want)).Should(BeTrue())
	})

	It("scales a non-identity ciphertext to the identity with a zero scalar", func() {
		a := EncodePlain(curve, big.NewInt(9))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		scaled := ScalarMult(ca, big.NewInt(0))
		got, err := Decrypt(sk, scaled)
		Expect(err).Should(BeNil())
		Expect(IsIdentity(got)).Should(BeTrue())
	})

	It("round-trips through Bytes/CiphertextFromBytes", func() {
		a := EncodePlain(curve, big.NewInt(42))
		ca, err := Encrypt(pk, a, rand.Reader)
		Expect(err).Should(BeNil())
		data := ca.Bytes()
		got, err := CiphertextFromBytes(curve, data)
		Expect(err).Should(BeNil())
		plain, err := Decrypt(sk, got)
		Expect(err).Should(BeNil())
		want, err := Decrypt(sk, ca)
		Expect(err).Should(BeNil())
		Expect(plain.Equal(want)).Should(BeTrue())
	})
})
