// file: internals/helpers/generate_code.go
package helper

import (
	"crypto/rand"
	"math/big"
)

// Alfabet tanpa karakter ambigu (0/O, 1/I/L) supaya enak diketik manual
// selain discan sebagai QR.
const sessionCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// GenerateSessionCode membuat kode sesi acak sepanjang n karakter.
func GenerateSessionCode(n int) (string, error) {
	if n <= 0 {
		n = 8
	}
	max := big.NewInt(int64(len(sessionCodeAlphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = sessionCodeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
