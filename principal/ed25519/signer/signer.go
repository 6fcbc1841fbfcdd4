package signer

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/principal"
	"github.com/spruceid/rebase-sub001/principal/ed25519/verifier"
	"github.com/spruceid/rebase-sub001/signature"
)

const Code = 0x1300
const Name = verifier.Name

const SignatureCode = verifier.SignatureCode
const SignatureAlgorithm = verifier.SignatureAlgorithm

var privateTagSize = varint.UvarintSize(Code)
var publicTagSize = varint.UvarintSize(verifier.Code)

const keySize = 32

var size = privateTagSize + keySize + publicTagSize + keySize
var pubKeyOffset = privateTagSize + keySize

// Generate a new random Ed25519 signer.
func Generate() (principal.Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating Ed25519 key: %w", err)
	}
	return FromRaw(priv)
}

// FromRaw builds a signer from a 64 byte ed25519 private key.
func FromRaw(priv ed25519.PrivateKey) (principal.Signer, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d wanted: %d", len(priv), ed25519.PrivateKeySize)
	}
	s := make(Ed25519Signer, size)
	varint.PutUvarint(s, Code)
	copy(s[privateTagSize:], priv.Seed())
	varint.PutUvarint(s[pubKeyOffset:], verifier.Code)
	copy(s[pubKeyOffset+publicTagSize:], priv.Public().(ed25519.PublicKey))
	return s, nil
}

// Parse a multibase encoded signer.
func Parse(str string) (principal.Signer, error) {
	_, bytes, err := multibase.Decode(str)
	if err != nil {
		return nil, fmt.Errorf("decoding multibase string: %w", err)
	}
	return Decode(bytes)
}

// Format a signer as a base64 padded multibase string, the inverse of [Parse].
func Format(s principal.Signer) (string, error) {
	return multibase.Encode(multibase.Base64pad, s.Encode())
}

func Decode(b []byte) (principal.Signer, error) {
	if len(b) != size {
		return nil, fmt.Errorf("invalid length: %d wanted: %d", len(b), size)
	}

	prc, err := varint.ReadUvarint(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("reading private key codec: %w", err)
	}
	if prc != Code {
		return nil, fmt.Errorf("invalid private key codec: %d", prc)
	}

	puc, err := varint.ReadUvarint(bytes.NewReader(b[pubKeyOffset:]))
	if err != nil {
		return nil, fmt.Errorf("reading public key codec: %w", err)
	}
	if puc != verifier.Code {
		return nil, fmt.Errorf("invalid public key codec: %d", puc)
	}

	_, err = verifier.Decode(b[pubKeyOffset:])
	if err != nil {
		return nil, fmt.Errorf("decoding public key: %w", err)
	}

	s := make(Ed25519Signer, size)
	copy(s, b)
	return s, nil
}

type Ed25519Signer []byte

func (s Ed25519Signer) Code() uint64 {
	return Code
}

func (s Ed25519Signer) SignatureCode() uint64 {
	return SignatureCode
}

func (s Ed25519Signer) SignatureAlgorithm() string {
	return SignatureAlgorithm
}

func (s Ed25519Signer) Verifier() principal.Verifier {
	return verifier.Ed25519Verifier(s[pubKeyOffset:])
}

func (s Ed25519Signer) DID() did.DID {
	id, _ := did.Decode(s[pubKeyOffset:])
	return id
}

func (s Ed25519Signer) Encode() []byte {
	return s
}

// Raw returns the 64 byte ed25519 private key (seed followed by public key).
func (s Ed25519Signer) Raw() []byte {
	pk := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	copy(pk[0:ed25519.SeedSize], s[privateTagSize:pubKeyOffset])
	copy(pk[ed25519.SeedSize:], s[pubKeyOffset+publicTagSize:pubKeyOffset+publicTagSize+keySize])
	return pk
}

func (s Ed25519Signer) Sign(msg []byte) signature.Signature {
	return signature.NewSignature(SignatureCode, ed25519.Sign(s.Raw(), msg))
}
