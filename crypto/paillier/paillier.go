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

// Package paillier implements the Paillier additively-homomorphic
// cryptosystem over Z_n. Adapted from alice/crypto/homo/paillier,
// trimmed of the MtA zero-knowledge-proof machinery that served that
// repository's threshold-signing protocols — this module has no
// signing component — and given an explicit Negate/Sub pair that the
// encrypted comparator (protocol.EncryptedCompare*) needs directly
// rather than deriving from MulConst at every call site.
package paillier

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/sec-compare/dgkcompare/crypto/utils"
)

const (
	// maxGenN is the max number of retries to generate N.
	maxGenN = 100
	// maxGenG is the max number of retries to generate G.
	maxGenG = 100
)

var (
	// ErrExceedMaxRetry is returned if we retried over the allotted times.
	ErrExceedMaxRetry = errors.New("exceed max retries")
	// ErrInvalidMessage is returned if the message is out of range.
	ErrInvalidMessage = errors.New("invalid message")
	// ErrSmallPublicKeySize is returned if the requested key size is too small.
	ErrSmallPublicKeySize = errors.New("small public key")
	// ErrInvalidCiphertext is returned if a ciphertext fails validation.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	big0 = big.NewInt(0)
	big1 = big.NewInt(1)
)

// PublicKey is (n, g).
type PublicKey struct {
	n       *big.Int
	g       *big.Int
	nSquare *big.Int
}

// PrivateKey is (λ, μ). Refer: https://en.wikipedia.org/wiki/Paillier_cryptosystem
type PrivateKey struct {
	pub    *PublicKey
	lambda *big.Int // λ = lcm(p-1, q-1)
	mu     *big.Int // μ = (L(g^λ mod n^2))^-1 mod n
}

// Ciphertext is a Paillier ciphertext c in Z_n^2*.
type Ciphertext struct {
	c *big.Int
}

// N returns a copy of the modulus n.
func (pub *PublicKey) N() *big.Int { return new(big.Int).Set(pub.n) }

// NSquare returns a copy of n^2.
func (pub *PublicKey) NSquare() *big.Int { return new(big.Int).Set(pub.nSquare) }

// GenerateKey creates a fresh Paillier key pair with the given key size
// in bits. keySize must be at least safeKeySize unless generated via
// GenerateUnsafeKey (tests only).
func GenerateKey(keySize int, safeKeySize int) (*PrivateKey, error) {
	if keySize < safeKeySize {
		return nil, ErrSmallPublicKeySize
	}
	return GenerateUnsafeKey(keySize)
}

// GenerateUnsafeKey generates a Paillier key pair without enforcing a
// minimum key size. Only safe for tests with small, fast keys.
func GenerateUnsafeKey(keySize int) (*PrivateKey, error) {
	n, lambda, err := getNAndLambda(keySize)
	if err != nil {
		return nil, err
	}
	g, mu, err := getGAndMu(lambda, n)
	if err != nil {
		return nil, err
	}
	pub := &PublicKey{n: n, g: g, nSquare: new(big.Int).Mul(n, n)}
	return &PrivateKey{pub: pub, lambda: lambda, mu: mu}, nil
}

// PublicKey returns the public half of the key pair.
func (p *PrivateKey) PublicKey() *PublicKey { return p.pub }

// Encrypt encodes m as a ciphertext: c = (g^m * r^n) mod n^2, 0 <= m < n.
func (pub *PublicKey) Encrypt(m *big.Int) (*Ciphertext, error) {
	if m.Sign() < 0 || m.Cmp(pub.n) >= 0 {
		return nil, ErrInvalidMessage
	}
	r, err := utils.RandomCoprimeInt(pub.n)
	if err != nil {
		return nil, err
	}
	gm := new(big.Int).Exp(pub.g, m, pub.nSquare)
	rn := new(big.Int).Exp(r, pub.n, pub.nSquare)
	c := new(big.Int).Mul(gm, rn)
	c.Mod(c, pub.nSquare)
	return &Ciphertext{c: c}, nil
}

// Decrypt recovers the plaintext m in [0, n) from c.
func (priv *PrivateKey) Decrypt(c *Ciphertext) (*big.Int, error) {
	pub := priv.pub
	if err := isCorrectCiphertext(c.c, pub); err != nil {
		return nil, err
	}
	x := new(big.Int).Exp(c.c, priv.lambda, pub.nSquare)
	l, err := lFunction(x, pub.n)
	if err != nil {
		return nil, err
	}
	l.Mul(l, priv.mu)
	l.Mod(l, pub.n)
	return l, nil
}

// Add homomorphically sums two ciphertexts: the result encrypts
// (m1 + m2) mod n, with fresh randomness folded in.
func (pub *PublicKey) Add(c1, c2 *Ciphertext) (*Ciphertext, error) {
	if err := isCorrectCiphertext(c1.c, pub); err != nil {
		return nil, err
	}
	if err := isCorrectCiphertext(c2.c, pub); err != nil {
		return nil, err
	}
	result := new(big.Int).Mul(c1.c, c2.c)
	result.Mod(result, pub.nSquare)
	return pub.rerandomize(result)
}

// Negate returns a ciphertext encrypting -m mod n, the modular inverse
// of c mod n^2.
func (pub *PublicKey) Negate(c *Ciphertext) (*Ciphertext, error) {
	if err := isCorrectCiphertext(c.c, pub); err != nil {
		return nil, err
	}
	inv := new(big.Int).ModInverse(c.c, pub.nSquare)
	if inv == nil {
		return nil, ErrInvalidCiphertext
	}
	return pub.rerandomize(inv)
}

// Sub homomorphically computes c1 - c2.
func (pub *PublicKey) Sub(c1, c2 *Ciphertext) (*Ciphertext, error) {
	negC2, err := pub.Negate(c2)
	if err != nil {
		return nil, err
	}
	return pub.Add(c1, negC2)
}

// MulConst homomorphically multiplies the plaintext of c by scalar.
func (pub *PublicKey) MulConst(c *Ciphertext, scalar *big.Int) (*Ciphertext, error) {
	if err := isCorrectCiphertext(c.c, pub); err != nil {
		return nil, err
	}
	scalarModN := new(big.Int).Mod(scalar, pub.n)
	result := new(big.Int).Exp(c.c, scalarModN, pub.nSquare)
	return pub.rerandomize(result)
}

// rerandomize multiplies in a fresh r^n mod n^2 factor.
func (pub *PublicKey) rerandomize(c *big.Int) (*Ciphertext, error) {
	r, err := utils.RandomCoprimeInt(pub.n)
	if err != nil {
		return nil, err
	}
	rn := new(big.Int).Exp(r, pub.n, pub.nSquare)
	result := new(big.Int).Mul(c, rn)
	result.Mod(result, pub.nSquare)
	return &Ciphertext{c: result}, nil
}

// Bytes returns the fixed-size big-endian encoding of the ciphertext,
// sized to n^2's byte length so every ciphertext under the same key
// serializes to the same number of bytes.
func (c *Ciphertext) Bytes(pub *PublicKey) []byte {
	size := (pub.nSquare.BitLen() + 7) / 8
	out := make([]byte, size)
	c.c.FillBytes(out)
	return out
}

// CiphertextFromBytes decodes the encoding produced by Bytes.
func CiphertextFromBytes(data []byte) *Ciphertext {
	return &Ciphertext{c: new(big.Int).SetBytes(data)}
}

// getNAndLambda returns N and lambda. n = pq, lambda = lcm(p-1, q-1).
func getNAndLambda(keySize int) (*big.Int, *big.Int, error) {
	pqSize := keySize / 2
	for i := 0; i < maxGenN; i++ {
		p, err := rand.Prime(rand.Reader, pqSize)
		if err != nil {
			return nil, nil, err
		}
		q, err := rand.Prime(rand.Reader, pqSize)
		if err != nil {
			return nil, nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		pMinus1 := new(big.Int).Sub(p, big1)
		qMinus1 := new(big.Int).Sub(q, big1)
		n := new(big.Int).Mul(p, q)
		m := new(big.Int).Mul(pMinus1, qMinus1)
		if utils.IsRelativePrime(n, m) {
			lambda, err := utils.Lcm(pMinus1, qMinus1)
			if err == nil {
				return n, lambda, nil
			}
		}
	}
	return nil, nil, ErrExceedMaxRetry
}

func isCorrectCiphertext(c *big.Int, pub *PublicKey) error {
	if err := utils.InRange(c, big1, pub.nSquare); err != nil {
		return err
	}
	if !utils.IsRelativePrime(c, pub.n) {
		return ErrInvalidMessage
	}
	return nil
}

// getGAndMu returns G and mu.
func getGAndMu(lambda, n *big.Int) (*big.Int, *big.Int, error) {
	nSquare := new(big.Int).Mul(n, n)
	for i := 0; i < maxGenG; i++ {
		g, err := utils.RandomCoprimeInt(nSquare)
		if err != nil {
			return nil, nil, err
		}
		x := new(big.Int).Exp(g, lambda, nSquare)
		u, err := lFunction(x, n)
		if err != nil {
			return nil, nil, err
		}
		mu := new(big.Int).ModInverse(u, n)
		if mu == nil {
			continue
		}
		return g, mu, nil
	}
	return nil, nil, ErrExceedMaxRetry
}

// lFunction computes L(x) = (x-1)/n.
func lFunction(x, n *big.Int) (*big.Int, error) {
	if n.Sign() <= 0 || x.Sign() <= 0 {
		return nil, ErrInvalidMessage
	}
	t := new(big.Int).Sub(x, big1)
	t.Div(t, n)
	return t, nil
}
