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

// Package utils collects the small number-theoretic helpers shared by
// the cryptosystems in this module.
package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

var (
	// ErrLessOrEqualBig2 is returned if the field order is less than or equal to 2.
	ErrLessOrEqualBig2 = errors.New("less than or equal to 2")
	// ErrExceedMaxRetry is returned if we retried over the allotted times.
	ErrExceedMaxRetry = errors.New("exceed max retries")
	// ErrNotInRange is returned if the value is not in the given range.
	ErrNotInRange = errors.New("not in range")

	maxGenPrimeInt = 100

	big1 = big.NewInt(1)
	big2 = big.NewInt(2)
)

// RandomInt generates a random number in [0, n).
func RandomInt(n *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, n)
}

// RandomPositiveInt generates a random number in [1, n).
func RandomPositiveInt(n *big.Int) (*big.Int, error) {
	x, err := RandomInt(new(big.Int).Sub(n, big1))
	if err != nil {
		return nil, err
	}
	return new(big.Int).Add(x, big1), nil
}

// RandomCoprimeInt generates a random number in [2, n) relatively prime to n.
func RandomCoprimeInt(n *big.Int) (*big.Int, error) {
	if n.Cmp(big2) <= 0 {
		return nil, ErrLessOrEqualBig2
	}
	for i := 0; i < maxGenPrimeInt; i++ {
		r, err := RandomInt(n)
		if err != nil {
			return nil, err
		}
		if r.Cmp(big1) <= 0 {
			continue
		}
		if IsRelativePrime(r, n) {
			return r, nil
		}
	}
	return nil, ErrExceedMaxRetry
}

// IsRelativePrime returns whether a and b are relatively prime.
func IsRelativePrime(a, b *big.Int) bool {
	return Gcd(a, b).Cmp(big1) == 0
}

// Gcd calculates the greatest common divisor via the Euclidean algorithm.
func Gcd(a, b *big.Int) *big.Int {
	return new(big.Int).GCD(nil, nil, a, b)
}

// Lcm calculates the least common multiple of a and b.
func Lcm(a, b *big.Int) (*big.Int, error) {
	if a.Sign() <= 0 || b.Sign() <= 0 {
		return nil, ErrNotInRange
	}
	gcd := Gcd(a, b)
	l := new(big.Int).Mul(a, b)
	return l.Div(l, gcd), nil
}

// InRange returns an error unless low <= x < high.
func InRange(x, low, high *big.Int) error {
	if x.Cmp(low) < 0 || x.Cmp(high) >= 0 {
		return ErrNotInRange
	}
	return nil
}
