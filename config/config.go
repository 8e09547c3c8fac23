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

// Package config loads the construction-time parameters a comparator
// session needs: the working bit-width L, the statistical security
// parameter kappa, and the Paillier key size to generate for a session,
// from a YAML file.
package config

import (
	"errors"
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// ErrInvalidL is returned when L is non-positive.
var ErrInvalidL = errors.New("config: l must be positive")

// ErrInvalidKappa is returned when Kappa is non-positive.
var ErrInvalidKappa = errors.New("config: kappa must be positive")

// ErrSmallPaillierBits is returned when PaillierBits is too small to be
// a production key size (spec §9: "production pk_N must be >= 2048 bits").
var ErrSmallPaillierBits = errors.New("config: paillier_bits below production minimum")

// minProductionPaillierBits is the floor enforced by Validate; callers
// running small unsafe keys for tests bypass Validate and call
// crypto/paillier.GenerateUnsafeKey directly.
const minProductionPaillierBits = 2048

// Config is the construction-time parameter set for a comparator
// session. L and Kappa bound the bit-vector encoder and the encrypted
// comparator's additive mask; PaillierBits sizes the key a session
// generates for itself.
type Config struct {
	L            int `yaml:"l"`
	Kappa        int `yaml:"kappa"`
	PaillierBits int `yaml:"paillier_bits"`
}

// Validate checks that the loaded parameters are internally consistent
// and large enough for production use.
func (c *Config) Validate() error {
	if c.L <= 0 {
		return ErrInvalidL
	}
	if c.Kappa <= 0 {
		return ErrInvalidKappa
	}
	if c.PaillierBits < minProductionPaillierBits {
		return ErrSmallPaillierBits
	}
	return nil
}

// ReadConfigFile loads and validates a Config from a YAML file.
func ReadConfigFile(filePath string) (*Config, error) {
	c := &Config{}
	yamlFile, err := ioutil.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(yamlFile, c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
