package subject

import (
	"context"
	"errors"
	"testing"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/failure"
	"github.com/spruceid/rebase-sub001/principal"
	"github.com/spruceid/rebase-sub001/principal/tezos"
	"github.com/spruceid/rebase-sub001/resolver"
	"github.com/spruceid/rebase-sub001/signature"
	"github.com/spruceid/rebase-sub001/testing/fixtures"
	"github.com/spruceid/rebase-sub001/testing/helpers"
	"github.com/stretchr/testify/require"
)

const statement = "example.com is linked to did:key:z6Mkk89bC3JrVqKie71YEcc5M1SMVxuCgNx6zLZ8SYJsxALi"

func flip(sig string) string {
	b := []byte(sig)
	if b[len(b)-1] == '0' {
		b[len(b)-1] = '1'
	} else {
		b[len(b)-1] = '0'
	}
	return string(b)
}

func TestDIDSubject(t *testing.T) {
	s := NewDID(fixtures.Alice.DID().String())
	sig := signature.FormatHex(fixtures.Alice.Sign([]byte(statement)).Raw())

	id, err := s.DID()
	require.NoError(t, err)
	require.Equal(t, fixtures.Alice.DID().String(), id)
	require.Equal(t, "DID", s.Title())

	require.NoError(t, s.ValidSignature(context.Background(), statement, sig))
	require.NoError(t, s.ValidSignature(context.Background(), statement, "0x"+sig))

	err = s.ValidSignature(context.Background(), statement, flip(sig))
	require.Error(t, err)
	require.Equal(t, InvalidSignature, failure.NameOf(err))

	err = s.ValidSignature(context.Background(), statement+".", sig)
	require.Equal(t, InvalidSignature, failure.NameOf(err))

	err = s.ValidSignature(context.Background(), statement, "not hex")
	require.Equal(t, InvalidSignature, failure.NameOf(err))

	t.Run("malformed", func(t *testing.T) {
		_, err := NewDID("nope").DID()
		require.Equal(t, MalformedIdentifier, failure.NameOf(err))
	})

	t.Run("resolution failure", func(t *testing.T) {
		cause := errors.New("offline")
		r := resolver.ResolverFunc(func(ctx context.Context, id did.DID) (principal.Verifier, error) {
			return nil, cause
		})
		bound := WithResolver(s, r)
		err := bound.ValidSignature(context.Background(), statement, sig)
		require.Equal(t, ResolutionFailed, failure.NameOf(err))
		require.ErrorIs(t, err, cause)

		// the original is untouched
		require.NoError(t, s.ValidSignature(context.Background(), statement, sig))
	})

	t.Run("did:web without resolver", func(t *testing.T) {
		err := NewDID("did:web:example.com").ValidSignature(context.Background(), statement, sig)
		require.Equal(t, ResolutionFailed, failure.NameOf(err))
	})
}

func TestEthereumSubject(t *testing.T) {
	addr := fixtures.Carol.Address().Hex()
	require.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", addr)

	s := NewEthereum(addr)
	id, err := s.DID()
	require.NoError(t, err)
	require.Equal(t, "did:pkh:eip155:1:0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", id)

	raw, err := fixtures.Carol.Sign([]byte(statement))
	require.NoError(t, err)
	sig := "0x" + signature.FormatHex(raw)

	require.NoError(t, s.ValidSignature(context.Background(), statement, sig))

	t.Run("checksum agnostic", func(t *testing.T) {
		lower := NewEthereum("0x2c7536e3605d9c16a7a3d7b1898e529396a65c23")
		require.NoError(t, lower.ValidSignature(context.Background(), statement, sig))
	})

	t.Run("other signer", func(t *testing.T) {
		other := NewEthereum("0x0000000000000000000000000000000000000001")
		err := other.ValidSignature(context.Background(), statement, sig)
		require.Equal(t, InvalidSignature, failure.NameOf(err))
	})

	t.Run("malformed address", func(t *testing.T) {
		_, err := NewEthereum("2c7536E3605D9C16a7a3D7b1898e529396a65c23").DisplayID()
		require.Equal(t, MalformedIdentifier, failure.NameOf(err))
	})
}

func TestTezosSubject(t *testing.T) {
	addr := fixtures.Dave.Address()
	pub := tezos.FormatPublicKey(fixtures.Dave.PublicKey())
	s := NewTezos(addr, pub)

	id, err := s.DID()
	require.NoError(t, err)
	require.Equal(t, "did:pkh:tz:"+addr, id)

	sig := tezos.FormatSignature(fixtures.Dave.Sign([]byte(statement)))
	require.NoError(t, s.ValidSignature(context.Background(), statement, sig))
	require.NoError(t, s.ValidSignature(context.Background(), statement, signature.FormatHex(fixtures.Dave.Sign([]byte(statement)))))

	wallet := NewTezos("tz1Qr9uevaimfiPS6X1otehsKrwvZjX7bsyL", "edpkvRQaXJ26ZAFi2ZNq5Hb5wXcc3S1Q8kVaXNjxXDfmtWEp9DkpFZ")
	require.NoError(t, wallet.ValidSignature(context.Background(),
		"Tezos Signed Message: example.com is linked to tz1",
		"edsigu3kETCyx1CgufJVqhD8TN9dW7mHw15BXPuU9WUPanejTub9AjPnwE8LWiVRHjVPyzTKUBnNksSediZSR6UKzbUchqWeN1g"))

	err = s.ValidSignature(context.Background(), "tampered", sig)
	require.Equal(t, InvalidSignature, failure.NameOf(err))

	t.Run("no public key", func(t *testing.T) {
		err := NewTezos(addr, "").ValidSignature(context.Background(), statement, sig)
		require.True(t, IsUnimplemented(err))
	})

	t.Run("tz2", func(t *testing.T) {
		err := NewTezos("tz28KFsN3RPHiWGF2rd3ScbnDdFhZc4eQm3K", pub).ValidSignature(context.Background(), statement, sig)
		require.True(t, IsUnimplemented(err))
		require.NotEqual(t, InvalidSignature, failure.NameOf(err))
	})

	t.Run("public key of another account", func(t *testing.T) {
		other := helpers.Must(tezos.Generate())
		err := NewTezos(other.Address(), pub).ValidSignature(context.Background(), statement, sig)
		require.Equal(t, InvalidSignature, failure.NameOf(err))
	})
}

func TestHandleSubject(t *testing.T) {
	tests := []struct {
		handle  Handle
		did     string
		display string
	}{
		{Twitter("alice"), "https://twitter.com/alice", "@alice"},
		{GitHub("alice"), "https://github.com/alice", "alice"},
		{Reddit("alice"), "https://www.reddit.com/user/alice", "u/alice"},
		{SoundCloud("alice"), "https://soundcloud.com/alice", "alice"},
		{DNS("example.com"), "dns:example.com", "example.com"},
		{Email("alice@example.com"), "mailto:alice@example.com", "alice@example.com"},
	}
	for _, tt := range tests {
		t.Run(string(tt.handle.Type()), func(t *testing.T) {
			id, err := tt.handle.DID()
			require.NoError(t, err)
			require.Equal(t, tt.did, id)

			display, err := tt.handle.DisplayID()
			require.NoError(t, err)
			require.Equal(t, tt.display, display)

			err = tt.handle.ValidSignature(context.Background(), statement, helpers.RandomHex(64))
			require.Equal(t, NotVerifiable, failure.NameOf(err))
		})
	}

	_, err := Email("not-an-email").DID()
	require.Equal(t, MalformedIdentifier, failure.NameOf(err))
	_, err = Twitter("").DisplayID()
	require.Equal(t, MalformedIdentifier, failure.NameOf(err))
}

func TestWire(t *testing.T) {
	subjects := []Subject{
		NewDID(fixtures.Alice.DID().String()),
		NewEthereum("0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"),
		NewTezos(fixtures.Dave.Address(), tezos.FormatPublicKey(fixtures.Dave.PublicKey())),
		Twitter("alice"),
		DNS("example.com"),
		Email("alice@example.com"),
	}
	for _, s := range subjects {
		t.Run(string(s.Type()), func(t *testing.T) {
			b, err := Marshal(s)
			require.NoError(t, err)
			out, err := Unmarshal(b)
			require.NoError(t, err)
			require.Equal(t, s, out)
		})
	}

	b, err := Marshal(DNS("example.com"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"dns","domain":"example.com"}`, string(b))

	b, err = Marshal(NewDID("did:web:example.com"))
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"did","did":"did:web:example.com"}`, string(b))

	_, err = Unmarshal([]byte(`{"type":"myspace","handle":"tom"}`))
	require.Error(t, err)
}
