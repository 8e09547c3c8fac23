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

package paillier

import (
	"math/big"
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func TestCrypto(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Paillier Test")
}

var _ = Describe("Paillier", func() {
	var priv *PrivateKey
	var pub *PublicKey

	BeforeEach(func() {
		var err error
		priv, err = GenerateUnsafeKey(256)
		Expect(err).Should(BeNil())
		pub = priv.PublicKey()
	})

	It("encrypts and decrypts", func() {
		m := big.NewInt(12345)
		c, err := pub.Encrypt(m)
		Expect(err).Should(BeNil())
		got, err := priv.Decrypt(c)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(m))
	})

	It("rejects a message out of range", func() {
		_, err := pub.Encrypt(new(big.Int).Set(pub.n))
		Expect(err).Should(Equal(ErrInvalidMessage))
	})

	It("adds homomorphically", func() {
		a := big.NewInt(40)
		b := big.NewInt(2)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		cb, err := pub.Encrypt(b)
		Expect(err).Should(BeNil())
		sum, err := pub.Add(ca, cb)
		Expect(err).Should(BeNil())
		got, err := priv.Decrypt(sum)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(big.NewInt(42)))
	})

	It("negates homomorphically", func() {
		a := big.NewInt(40)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		neg, err := pub.Negate(ca)
		Expect(err).Should(BeNil())
		got, err := priv.Decrypt(neg)
		Expect(err).Should(BeNil())
		want := new(big.Int).Mod(new(big.Int).Neg(a), pub.n)
		Expect(got).Should(Equal(want))
	})

	It("subtracts homomorphically", func() {
		a := big.NewInt(5)
		b := big.NewInt(8)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		cb, err := pub.Encrypt(b)
		Expect(err).Should(BeNil())
		diff, err := pub.Sub(ca, cb)
		Expect(err).Should(BeNil())
		got, err := priv.Decrypt(diff)
		Expect(err).Should(BeNil())
		want := new(big.Int).Mod(big.NewInt(-3), pub.n)
		Expect(got).Should(Equal(want))
	})

	It("multiplies by a constant homomorphically", func() {
		a := big.NewInt(7)
		ca, err := pub.Encrypt(a)
		Expect(err).Should(BeNil())
		scaled, err := pub.MulConst(ca, big.NewInt(6))
		Expect(err).Should(BeNil())
		got, err := priv.Decrypt(scaled)
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(big.NewInt(42)))
	})

	It("round-trips through Bytes/CiphertextFromBytes", func() {
		c, err := pub.Encrypt(big.NewInt(99))
		Expect(err).Should(BeNil())
		data := c.Bytes(pub)
		got := CiphertextFromBytes(data)
		plain, err := priv.Decrypt(got)
		Expect(err).Should(BeNil())
		Expect(plain).Should(Equal(big.NewInt(99)))
	})

	It("rejects a key below the requested safe size", func() {
		_, err := GenerateKey(256, 2048)
		Expect(err).Should(Equal(ErrSmallPublicKeySize))
	})
})
