// Package ethereum implements EIP-191 personal message signing and recovery
// for Ethereum accounts.
package ethereum

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/signature"
)

const SignatureCode = signature.EIP191
const SignatureAlgorithm = "EIP191"

// ChainID used for did:pkh identifiers, Ethereum mainnet.
const ChainID = 1

const signatureSize = 65

// ParseAddress validates a hex account address.
func ParseAddress(str string) (common.Address, error) {
	if !common.IsHexAddress(str) || !strings.HasPrefix(str, "0x") {
		return common.Address{}, fmt.Errorf("invalid Ethereum address: %q", str)
	}
	return common.HexToAddress(str), nil
}

// DID returns the did:pkh identifier of an address.
func DID(addr common.Address) (did.DID, error) {
	return did.Parse(fmt.Sprintf("did:pkh:eip155:%d:%s", ChainID, addr.Hex()))
}

// Recover the address that produced an EIP-191 signature over msg. The
// recovery id may be 0/1 or 27/28.
func Recover(msg []byte, sig []byte) (common.Address, error) {
	if len(sig) != signatureSize {
		return common.Address{}, fmt.Errorf("invalid signature length: %d wanted: %d", len(sig), signatureSize)
	}
	s := make([]byte, signatureSize)
	copy(s, sig)
	if s[64] >= 27 {
		s[64] -= 27
	}
	if s[64] > 1 {
		return common.Address{}, fmt.Errorf("invalid recovery id: %d", sig[64])
	}
	pub, err := ethcrypto.SigToPub(accounts.TextHash(msg), s)
	if err != nil {
		return common.Address{}, fmt.Errorf("recovering public key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(*pub), nil
}

// Signer signs personal messages with a secp256k1 key.
type Signer struct {
	key *ecdsa.PrivateKey
}

func Generate() (*Signer, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generating secp256k1 key: %w", err)
	}
	return &Signer{key}, nil
}

// Parse a hex encoded private key.
func Parse(str string) (*Signer, error) {
	key, err := ethcrypto.HexToECDSA(strings.TrimPrefix(str, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parsing secp256k1 key: %w", err)
	}
	return &Signer{key}, nil
}

func (s *Signer) Address() common.Address {
	return ethcrypto.PubkeyToAddress(s.key.PublicKey)
}

// Sign produces a 65 byte signature with a 27/28 recovery id, the form wallets
// return from personal_sign.
func (s *Signer) Sign(msg []byte) ([]byte, error) {
	sig, err := ethcrypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, fmt.Errorf("signing message: %w", err)
	}
	sig[64] += 27
	return sig, nil
}
