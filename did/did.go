package did

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-varint"
)

const Prefix = "did:"
const KeyPrefix = Prefix + "key:"

// DIDCore is the multicodec tag used when a non did:key DID is encoded to
// bytes.
const DIDCore = 0x0d1d

// Undef can be used to represent a nil or undefined DID, using DID{}
// directly is also acceptable.
var Undef = DID{}

// DID is a decentralized identifier of the form did:<method>:<identifier>.
type DID struct {
	str string
}

// Defined returns true if the DID is not the undefined value.
func (d DID) Defined() bool {
	return d.str != ""
}

// Method returns the DID method, "key" for "did:key:z6Mk...".
func (d DID) Method() string {
	rest := strings.TrimPrefix(d.str, Prefix)
	method, _, _ := strings.Cut(rest, ":")
	return method
}

// Identifier returns the method specific identifier.
func (d DID) Identifier() string {
	rest := strings.TrimPrefix(d.str, Prefix)
	_, id, _ := strings.Cut(rest, ":")
	return id
}

// Bytes returns the binary form of the DID. For did:key it is the multicodec
// tagged public key, for every other method the UTF-8 string tagged with
// [DIDCore].
func (d DID) Bytes() []byte {
	if !d.Defined() {
		return nil
	}
	if strings.HasPrefix(d.str, KeyPrefix) {
		_, b, err := multibase.Decode(d.str[len(KeyPrefix):])
		if err == nil {
			return b
		}
	}
	offset := varint.UvarintSize(DIDCore)
	b := make([]byte, offset+len(d.str))
	varint.PutUvarint(b, DIDCore)
	copy(b[offset:], d.str)
	return b
}

func (d DID) DID() DID {
	return d
}

func (d DID) String() string {
	return d.str
}

func (d DID) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.str)
}

func (d *DID) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("parsing string: %w", err)
	}
	if str == "" {
		*d = Undef
		return nil
	}
	parsed, err := Parse(str)
	if err != nil {
		return fmt.Errorf("parsing DID: %w", err)
	}
	*d = parsed
	return nil
}

// Decode reverses [DID.Bytes].
func Decode(b []byte) (DID, error) {
	code, err := varint.ReadUvarint(bytes.NewReader(b))
	if err != nil {
		return Undef, fmt.Errorf("reading DID codec: %w", err)
	}
	if code == DIDCore {
		return Parse(string(b[varint.UvarintSize(code):]))
	}
	str, err := multibase.Encode(multibase.Base58BTC, b)
	if err != nil {
		return Undef, fmt.Errorf("encoding key: %w", err)
	}
	return DID{KeyPrefix + str}, nil
}

// Parse a DID string. The method and the method specific identifier must both
// be present.
func Parse(str string) (DID, error) {
	if !strings.HasPrefix(str, Prefix) {
		return Undef, fmt.Errorf("must start with 'did:'")
	}
	method, id, ok := strings.Cut(str[len(Prefix):], ":")
	if !ok || method == "" || id == "" {
		return Undef, fmt.Errorf("invalid DID %q: expected did:<method>:<identifier>", str)
	}
	for _, r := range method {
		if !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9') {
			return Undef, fmt.Errorf("invalid DID method %q", method)
		}
	}
	if strings.ContainsAny(id, " \t\r\n") {
		return Undef, fmt.Errorf("invalid DID %q: whitespace in identifier", str)
	}
	return DID{str}, nil
}

// FromKey builds a did:key from a public key and its multicodec code.
func FromKey(code uint64, pub []byte) (DID, error) {
	offset := varint.UvarintSize(code)
	b := make([]byte, offset+len(pub))
	varint.PutUvarint(b, code)
	copy(b[offset:], pub)
	str, err := multibase.Encode(multibase.Base58BTC, b)
	if err != nil {
		return Undef, fmt.Errorf("encoding key: %w", err)
	}
	return DID{KeyPrefix + str}, nil
}
