package resolver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spruceid/rebase-sub001/did"
	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
	"github.com/spruceid/rebase-sub001/principal"
	secpverifier "github.com/spruceid/rebase-sub001/principal/secp256k1/verifier"
	"github.com/spruceid/rebase-sub001/testing/fixtures"
	"github.com/spruceid/rebase-sub001/testing/helpers"
	"github.com/stretchr/testify/require"
)

func TestKeyResolver(t *testing.T) {
	t.Run("ed25519", func(t *testing.T) {
		v, err := NewKey().Resolve(context.Background(), fixtures.Alice.DID())
		require.NoError(t, err)
		require.Equal(t, fixtures.Alice.DID(), v.DID())

		msg := []byte("hello")
		require.True(t, v.Verify(msg, fixtures.Alice.Sign(msg)))
		require.False(t, v.Verify(msg, fixtures.Bob.Sign(msg)))
	})

	t.Run("secp256k1", func(t *testing.T) {
		key, err := ethcrypto.GenerateKey()
		require.NoError(t, err)
		sv, err := secpverifier.FromRaw(ethcrypto.CompressPubkey(&key.PublicKey))
		require.NoError(t, err)

		v, err := NewKey().Resolve(context.Background(), sv.DID())
		require.NoError(t, err)
		require.Equal(t, uint64(secpverifier.SignatureCode), v.SignatureCode())
	})

	t.Run("not a did:key", func(t *testing.T) {
		_, err := NewKey().Resolve(context.Background(), helpers.Must(did.Parse("did:web:example.com")))
		require.ErrorIs(t, err, ErrUnsupportedMethod)
		var re ResolutionError
		require.ErrorAs(t, err, &re)
		require.Equal(t, "ResolutionError", re.Name())
	})

	t.Run("unknown key type", func(t *testing.T) {
		// 0x1200 is p256-pub
		id, err := did.FromKey(0x1200, helpers.RandomBytes(33))
		require.NoError(t, err)
		_, err = NewKey().Resolve(context.Background(), id)
		require.Error(t, err)
	})
}

func TestComposed(t *testing.T) {
	r := Compose(map[string]Resolver{"key": NewKey()})

	v, err := r.Resolve(context.Background(), fixtures.Bob.DID())
	require.NoError(t, err)
	require.Equal(t, fixtures.Bob.DID(), v.DID())

	_, err = r.Resolve(context.Background(), helpers.Must(did.Parse("did:pkh:eip155:1:0x2c7536E3605D9C16a7a3D7b1898e529396a65c23")))
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestDocumentURL(t *testing.T) {
	tests := []struct {
		did string
		url string
	}{
		{"did:web:example.com", "https://example.com/.well-known/did.json"},
		{"did:web:example.com:user:alice", "https://example.com/user/alice/did.json"},
		{"did:web:localhost%3A8443", "https://localhost:8443/.well-known/did.json"},
	}
	for _, tt := range tests {
		t.Run(tt.did, func(t *testing.T) {
			u, err := DocumentURL(helpers.Must(did.Parse(tt.did)))
			require.NoError(t, err)
			require.Equal(t, tt.url, u)
		})
	}
}

func newDocumentServer(t *testing.T, doc func(id did.DID) any) (*httptest.Server, did.DID, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	var id did.DID
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/.well-known/did.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(doc(id))
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	id = helpers.Must(did.Parse("did:web:" + strings.ReplaceAll(u.Host, ":", "%3A")))
	return server, id, &calls
}

func TestWebResolver(t *testing.T) {
	t.Run("JWK document", func(t *testing.T) {
		server, id, _ := newDocumentServer(t, func(id did.DID) any {
			return helpers.Must(NewDocument(id, "controller", fixtures.Alice.Verifier()))
		})
		web := NewWeb(WithChannel(fhttp.NewChannel(fhttp.WithClient(server.Client()))))

		v, err := web.Resolve(context.Background(), id)
		require.NoError(t, err)
		require.Equal(t, id, v.DID())

		msg := []byte("hello")
		require.True(t, v.Verify(msg, fixtures.Alice.Sign(msg)))

		withFragment := helpers.Must(did.Parse(id.String() + "#controller"))
		v, err = web.Resolve(context.Background(), withFragment)
		require.NoError(t, err)
		require.True(t, v.Verify(msg, fixtures.Alice.Sign(msg)))

		_, err = web.Resolve(context.Background(), helpers.Must(did.Parse(id.String()+"#missing")))
		require.ErrorIs(t, err, ErrNoVerificationMethod)
	})

	t.Run("multibase document", func(t *testing.T) {
		server, id, _ := newDocumentServer(t, func(id did.DID) any {
			return Document{
				ID: id.String(),
				VerificationMethod: []VerificationMethod{{
					ID:                 id.String() + "#key-1",
					Type:               "Ed25519VerificationKey2020",
					Controller:         id.String(),
					PublicKeyMultibase: strings.TrimPrefix(fixtures.Bob.DID().String(), did.KeyPrefix),
				}},
			}
		})
		web := NewWeb(WithChannel(fhttp.NewChannel(fhttp.WithClient(server.Client()))))

		v, err := web.Resolve(context.Background(), id)
		require.NoError(t, err)
		msg := []byte("hello")
		require.True(t, v.Verify(msg, fixtures.Bob.Sign(msg)))
	})

	t.Run("document id mismatch", func(t *testing.T) {
		server, id, _ := newDocumentServer(t, func(id did.DID) any {
			return helpers.Must(NewDocument(helpers.Must(did.Parse("did:web:elsewhere.example")), "controller", fixtures.Alice.Verifier()))
		})
		web := NewWeb(WithChannel(fhttp.NewChannel(fhttp.WithClient(server.Client()))))

		_, err := web.Resolve(context.Background(), id)
		require.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		server, _, _ := newDocumentServer(t, func(id did.DID) any { return nil })
		u, _ := url.Parse(server.URL)
		id := helpers.Must(did.Parse("did:web:" + strings.ReplaceAll(u.Host, ":", "%3A") + ":missing"))
		web := NewWeb(WithChannel(fhttp.NewChannel(fhttp.WithClient(server.Client()))))

		_, err := web.Resolve(context.Background(), id)
		require.Error(t, err)
		require.Equal(t, http.StatusNotFound, fhttp.StatusOf(err))
	})
}

func TestCache(t *testing.T) {
	var calls atomic.Int32
	inner := ResolverFunc(func(ctx context.Context, id did.DID) (principal.Verifier, error) {
		calls.Add(1)
		return NewKey().Resolve(ctx, id)
	})
	cache, err := NewCache(inner, 0)
	require.NoError(t, err)

	for range 3 {
		v, err := cache.Resolve(context.Background(), fixtures.Alice.DID())
		require.NoError(t, err)
		require.Equal(t, fixtures.Alice.DID(), v.DID())
	}
	require.Equal(t, int32(1), calls.Load())

	web := helpers.Must(did.Parse("did:web:example.com"))
	_, err = cache.Resolve(context.Background(), web)
	require.Error(t, err)
	_, err = cache.Resolve(context.Background(), web)
	require.Error(t, err)
	require.Equal(t, int32(3), calls.Load())
}
