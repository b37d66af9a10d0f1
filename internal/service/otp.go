package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const maxOTPLength = 18

// OTPGenerator issues numeric one-time passcodes of a fixed length.
type OTPGenerator struct {
	length int
	min    *big.Int
	span   *big.Int
}

// NewOTPGenerator creates a generator for codes of the given length.
func NewOTPGenerator(length int) (*OTPGenerator, error) {
	if length < 1 || length > maxOTPLength {
		return nil, fmt.Errorf("otp length must be between 1 and %d, got %d", maxOTPLength, length)
	}

	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	hi := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	if length == 1 {
		lo = big.NewInt(0)
	}

	return &OTPGenerator{
		length: length,
		min:    lo,
		span:   new(big.Int).Sub(hi, lo),
	}, nil
}

// Generate returns a uniformly random code in [10^(n-1), 10^n), so it never
// starts with zero and always has exactly n digits.
func (g *OTPGenerator) Generate() (string, error) {
	n, err := rand.Int(rand.Reader, g.span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return n.Add(n, g.min).String(), nil
}
