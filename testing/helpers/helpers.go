package helpers

import (
	crand "crypto/rand"
	"encoding/hex"
)

// Must takes return values from a function and returns the non-error one. If
// the error value is non-nil then it panics.
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}

func RandomBytes(size int) []byte {
	bytes := make([]byte, size)
	_, _ = crand.Read(bytes)
	return bytes
}

// RandomHex returns size random bytes hex encoded, e.g. as a bogus
// signature.
func RandomHex(size int) string {
	return hex.EncodeToString(RandomBytes(size))
}
