package security

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPGenerator draws 6-digit codes uniformly from [100000, 999999].
type OTPGenerator struct {
	rnd io.Reader
}

func NewOTPGenerator() *OTPGenerator {
	return &OTPGenerator{rnd: rand.Reader}
}

func (g *OTPGenerator) NewCode() (string, error) {
	n, err := rand.Int(g.rnd, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+otpMin), nil
}
