package signer

import (
	"github.com/spruceid/rebase-sub001/principal/ethereum"
	"github.com/spruceid/rebase-sub001/principal/tezos"
	"github.com/spruceid/rebase-sub001/signature"
	"github.com/spruceid/rebase-sub001/subject"
)

// Ethereum signs EIP-191 personal messages.
type Ethereum struct {
	subject.Subject
	key *ethereum.Signer
}

func NewEthereum(key *ethereum.Signer) Ethereum {
	return Ethereum{subject.NewEthereum(key.Address().Hex()), key}
}

func (s Ethereum) AsSubject() subject.Subject {
	return s.Subject
}

func (s Ethereum) Name() string {
	return s.Title()
}

func (s Ethereum) ID() string {
	return s.key.Address().Hex()
}

func (s Ethereum) Sign(message string) (string, error) {
	sig, err := s.key.Sign([]byte(message))
	if err != nil {
		return "", NewError(SigningFailed, "signing personal message", err)
	}
	return "0x" + signature.FormatHex(sig), nil
}

func (s Ethereum) ProofOptions() *ProofMetadata {
	id, _ := s.DID()
	return &ProofMetadata{
		VerificationMethod: id + "#blockchainAccountId",
		Type:               "EthereumPersonalSignature2021",
		ProofPurpose:       "assertionMethod",
		Algorithm:          "ES256K-R",
	}
}

// Tezos signs Micheline packed plaintext with a tz1 key.
type Tezos struct {
	subject.Subject
	key *tezos.Signer
}

func NewTezos(key *tezos.Signer) Tezos {
	return Tezos{subject.NewTezos(key.Address(), tezos.FormatPublicKey(key.PublicKey())), key}
}

func (s Tezos) AsSubject() subject.Subject {
	return s.Subject
}

func (s Tezos) Name() string {
	return s.Title()
}

func (s Tezos) ID() string {
	return s.key.Address()
}

func (s Tezos) Sign(message string) (string, error) {
	return tezos.FormatSignature(s.key.Sign([]byte(message))), nil
}

func (s Tezos) ProofOptions() *ProofMetadata {
	id, _ := s.DID()
	return &ProofMetadata{
		VerificationMethod: id + "#TezosMethod2021",
		Type:               "TezosSignature2021",
		ProofPurpose:       "assertionMethod",
		Algorithm:          "EdBlake2b",
	}
}
