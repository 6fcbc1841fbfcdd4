package multiformat

import (
	"bytes"
	"fmt"

	"github.com/multiformats/go-varint"
)

// TagWith prefixes bytes with the varint encoded multicodec code.
func TagWith(code uint64, bytes []byte) []byte {
	offset := varint.UvarintSize(code)
	tagged := make([]byte, len(bytes)+offset)
	varint.PutUvarint(tagged, code)
	copy(tagged[offset:], bytes)
	return tagged
}

// UntagWith strips the expected multicodec tag found at offset.
func UntagWith(code uint64, source []byte, offset int) ([]byte, error) {
	tag, b, err := Untag(source[offset:])
	if err != nil {
		return nil, err
	}
	if tag != code {
		return nil, fmt.Errorf("expected multiformat with 0x%x tag instead got 0x%x", code, tag)
	}
	return b, nil
}

// Untag reads whatever multicodec tag prefixes source and returns it along
// with the remaining bytes.
func Untag(source []byte) (uint64, []byte, error) {
	tag, err := varint.ReadUvarint(bytes.NewReader(source))
	if err != nil {
		return 0, nil, fmt.Errorf("reading multiformat tag: %w", err)
	}
	return tag, source[varint.UvarintSize(tag):], nil
}
