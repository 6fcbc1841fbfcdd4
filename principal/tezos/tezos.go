// Package tezos implements tz1 (Ed25519) addresses and plaintext message
// signing the way Tezos wallets do it: the message is packed as a Micheline
// string, hashed with blake2b-256 and the digest is signed.
package tezos

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/signature"
	"golang.org/x/crypto/blake2b"
)

const SignatureCode = signature.TezosEdDSA
const SignatureAlgorithm = "TezosEdDSA"

var (
	prefixTz1   = []byte{6, 161, 159}
	prefixTz2   = []byte{6, 161, 161}
	prefixTz3   = []byte{6, 161, 164}
	prefixEdpk  = []byte{13, 15, 37, 217}
	prefixEdsk  = []byte{43, 246, 78, 7}
	prefixEdsig = []byte{9, 245, 205, 134, 18}
)

const addressSize = 20

// AddressKind is the curve an implicit account address is derived from.
type AddressKind int

const (
	Tz1 AddressKind = iota + 1
	Tz2
	Tz3
)

// ParseAddress validates an implicit account address and returns its kind.
func ParseAddress(addr string) (AddressKind, error) {
	for kind, prefix := range map[AddressKind][]byte{Tz1: prefixTz1, Tz2: prefixTz2, Tz3: prefixTz3} {
		if _, err := decodeCheck(addr, prefix, addressSize); err == nil {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("invalid Tezos address: %q", addr)
}

// DID returns the did:pkh identifier of an address.
func DID(addr string) (did.DID, error) {
	if _, err := ParseAddress(addr); err != nil {
		return did.Undef, err
	}
	return did.Parse("did:pkh:tz:" + addr)
}

// Address derives the tz1 address of an Ed25519 public key.
func Address(pub ed25519.PublicKey) (string, error) {
	h, err := blake2b.New(addressSize, nil)
	if err != nil {
		return "", err
	}
	h.Write(pub)
	return encodeCheck(prefixTz1, h.Sum(nil)), nil
}

// ParsePublicKey decodes an edpk... public key.
func ParsePublicKey(str string) (ed25519.PublicKey, error) {
	b, err := decodeCheck(str, prefixEdpk, ed25519.PublicKeySize)
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}
	return ed25519.PublicKey(b), nil
}

func FormatPublicKey(pub ed25519.PublicKey) string {
	return encodeCheck(prefixEdpk, pub)
}

// ParseSignature decodes an edsig... signature.
func ParseSignature(str string) ([]byte, error) {
	b, err := decodeCheck(str, prefixEdsig, ed25519.SignatureSize)
	if err != nil {
		return nil, fmt.Errorf("decoding signature: %w", err)
	}
	return b, nil
}

func FormatSignature(raw []byte) string {
	return encodeCheck(prefixEdsig, raw)
}

// Pack encodes msg as a packed Micheline string: 0x05 (packed), 0x01
// (string), a big endian uint32 length and the UTF-8 bytes.
func Pack(msg []byte) []byte {
	b := make([]byte, 6+len(msg))
	b[0] = 0x05
	b[1] = 0x01
	binary.BigEndian.PutUint32(b[2:6], uint32(len(msg)))
	copy(b[6:], msg)
	return b
}

func digest(msg []byte) []byte {
	d := blake2b.Sum256(Pack(msg))
	return d[:]
}

// Verify checks an edsig signature of msg against an edpk public key.
func Verify(pub ed25519.PublicKey, msg []byte, sig []byte) bool {
	return ed25519.Verify(pub, digest(msg), sig)
}

// Signer is a tz1 account key.
type Signer struct {
	key ed25519.PrivateKey
}

func Generate() (*Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating Ed25519 key: %w", err)
	}
	return &Signer{priv}, nil
}

// FromRaw wraps a 64 byte ed25519 private key.
func FromRaw(priv ed25519.PrivateKey) (*Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d wanted: %d", len(priv), ed25519.PrivateKeySize)
	}
	return &Signer{priv}, nil
}

// Parse an edsk... secret key (64 byte form).
func Parse(str string) (*Signer, error) {
	b, err := decodeCheck(str, prefixEdsk, ed25519.PrivateKeySize)
	if err != nil {
		return nil, fmt.Errorf("decoding secret key: %w", err)
	}
	return &Signer{ed25519.PrivateKey(b)}, nil
}

func (s *Signer) Format() string {
	return encodeCheck(prefixEdsk, s.key)
}

func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

func (s *Signer) Address() string {
	addr, _ := Address(s.PublicKey())
	return addr
}

// Sign returns the raw 64 byte signature of the packed message digest.
func (s *Signer) Sign(msg []byte) []byte {
	return ed25519.Sign(s.key, digest(msg))
}

func encodeCheck(prefix, payload []byte) string {
	b := make([]byte, 0, len(prefix)+len(payload)+4)
	b = append(b, prefix...)
	b = append(b, payload...)
	return base58.Encode(append(b, checksum(b)...))
}

func decodeCheck(str string, prefix []byte, size int) ([]byte, error) {
	b, err := base58.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding base58: %w", err)
	}
	if len(b) != len(prefix)+size+4 {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), len(prefix)+size+4)
	}
	body, sum := b[:len(b)-4], b[len(b)-4:]
	if !bytes.Equal(checksum(body), sum) {
		return nil, fmt.Errorf("invalid checksum")
	}
	if !bytes.HasPrefix(body, prefix) {
		return nil, fmt.Errorf("unexpected prefix")
	}
	return body[len(prefix):], nil
}

func checksum(b []byte) []byte {
	first := sha256.Sum256(b)
	second := sha256.Sum256(first[:])
	return second[:4]
}
