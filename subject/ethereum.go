package subject

import (
	"context"
	"fmt"
	"strings"

	"github.com/spruceid/rebase-sub001/principal/ethereum"
	"github.com/spruceid/rebase-sub001/signature"
)

// Ethereum is an account address checked with EIP-191 personal messages.
type Ethereum struct {
	Address string `json:"address"`
}

func NewEthereum(address string) Ethereum {
	return Ethereum{Address: address}
}

func (e Ethereum) isSubject() {}

func (e Ethereum) Type() Type {
	return TypeEthereum
}

func (e Ethereum) Title() string {
	return "Ethereum Address"
}

func (e Ethereum) DID() (string, error) {
	addr, err := ethereum.ParseAddress(e.Address)
	if err != nil {
		return "", NewError(MalformedIdentifier, "invalid Ethereum address", err)
	}
	id, err := ethereum.DID(addr)
	if err != nil {
		return "", NewError(MalformedIdentifier, "invalid Ethereum address", err)
	}
	return id.String(), nil
}

func (e Ethereum) DisplayID() (string, error) {
	if _, err := ethereum.ParseAddress(e.Address); err != nil {
		return "", NewError(MalformedIdentifier, "invalid Ethereum address", err)
	}
	return e.Address, nil
}

func (e Ethereum) ValidSignature(ctx context.Context, statement, sig string) error {
	addr, err := ethereum.ParseAddress(e.Address)
	if err != nil {
		return NewError(MalformedIdentifier, "invalid Ethereum address", err)
	}
	raw, err := signature.ParseHex(sig)
	if err != nil {
		return NewError(InvalidSignature, "malformed signature", err)
	}
	recovered, err := ethereum.Recover([]byte(statement), raw)
	if err != nil {
		return NewError(InvalidSignature, "recovering signer", err)
	}
	if !strings.EqualFold(recovered.Hex(), addr.Hex()) {
		return NewError(InvalidSignature, fmt.Sprintf("signed by %s, expected %s", recovered.Hex(), addr.Hex()), nil)
	}
	return nil
}
