package labctl

import (
	"crypto/rand"
	"math/big"
)

const (
	passwordLength  = 20
	passwordLower   = "abcdefghijkmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSymbols = "!@#$%^&*-_=+"
)

// GeneratePassword produces the default admin password candidate: at least
// one character from each class, ambiguous glyphs (l/1, O/0) excluded.
func GeneratePassword() (string, error) {
	classes := []string{passwordLower, passwordUpper, passwordDigits, passwordSymbols}
	all := passwordLower + passwordUpper + passwordDigits + passwordSymbols

	chars := make([]byte, 0, passwordLength)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < passwordLength {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates so the class-guaranteed characters are not positional.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomInt(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}
	return string(chars), nil
}

func randomChar(set string) (byte, error) {
	i, err := randomInt(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomInt(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
