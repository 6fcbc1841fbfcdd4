package signature

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/multiformats/go-varint"
)

// Signature algorithm codes. EdDSA, ES256K and RS256 follow the varsig
// registry, EIP191 and TezosEdDSA are private use codes for plaintext message
// signing on chains.
const (
	EdDSA      = 0xd0ed
	ES256K     = 0xd0e7
	RS256      = 0xd01205
	EIP191     = 0xd191
	TezosEdDSA = 0xd1e2
)

var codeNames = map[uint64]string{
	EdDSA:      "EdDSA",
	ES256K:     "ES256K",
	RS256:      "RS256",
	EIP191:     "EIP191",
	TezosEdDSA: "TezosEdDSA",
}

// CodeName returns the algorithm name of a signature code.
func CodeName(code uint64) (string, error) {
	name, ok := codeNames[code]
	if !ok {
		return "", fmt.Errorf("unknown signature code: 0x%x", code)
	}
	return name, nil
}

// NameCode returns the signature code of an algorithm name.
func NameCode(name string) (uint64, error) {
	for code, n := range codeNames {
		if n == name {
			return code, nil
		}
	}
	return 0, fmt.Errorf("unknown signature algorithm: %s", name)
}

type Signature interface {
	Code() uint64
	Size() uint64
	Bytes() []byte
	// Raw signature (without signature algorithm info).
	Raw() []byte
}

func NewSignature(code uint64, raw []byte) Signature {
	cl := varint.UvarintSize(code)
	rl := varint.UvarintSize(uint64(len(raw)))
	sig := make(signature, cl+rl+len(raw))
	varint.PutUvarint(sig, code)
	varint.PutUvarint(sig[cl:], uint64(len(raw)))
	copy(sig[cl+rl:], raw)
	return sig
}

func Encode(s Signature) []byte {
	return s.Bytes()
}

func Decode(b []byte) Signature {
	return signature(b)
}

type signature []byte

func (s signature) Code() uint64 {
	c, _ := varint.ReadUvarint(bytes.NewReader(s))
	return c
}

func (s signature) Size() uint64 {
	n, _ := varint.ReadUvarint(bytes.NewReader(s[varint.UvarintSize(s.Code()):]))
	return n
}

func (s signature) Raw() []byte {
	cl := varint.UvarintSize(s.Code())
	rl := varint.UvarintSize(s.Size())
	return s[cl+rl:]
}

func (s signature) Bytes() []byte {
	return s
}

// FormatHex renders a raw signature as lowercase hex, the form signatures are
// exchanged in as strings.
func FormatHex(raw []byte) string {
	return hex.EncodeToString(raw)
}

// ParseHex decodes a hex signature string, a leading "0x" is accepted.
func ParseHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(str, "0x")
	if str == "" {
		return nil, fmt.Errorf("empty signature")
	}
	raw, err := hex.DecodeString(str)
	if err != nil {
		return nil, fmt.Errorf("decoding hex signature: %w", err)
	}
	return raw, nil
}
