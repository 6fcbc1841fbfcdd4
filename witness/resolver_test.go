package witness

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spruceid/rebase-sub001/did"
	"github.com/spruceid/rebase-sub001/fetch"
	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
	"github.com/spruceid/rebase-sub001/principal"
	"github.com/spruceid/rebase-sub001/proof"
	"github.com/spruceid/rebase-sub001/resolver"
	"github.com/spruceid/rebase-sub001/signer"
	"github.com/spruceid/rebase-sub001/statement"
	"github.com/spruceid/rebase-sub001/testing/fixtures"
	"github.com/spruceid/rebase-sub001/testing/helpers"
	"github.com/stretchr/testify/require"
)

// didWebServer serves the DID document of a did:web identity publishing key.
func didWebServer(t *testing.T, key principal.Signer) (*httptest.Server, did.DID, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	var id did.DID
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/.well-known/did.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		doc, err := resolver.NewDocument(id, signer.ControllerFragment, key.Verifier())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(doc)
	}))
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	id = helpers.Must(did.Parse("did:web:" + strings.ReplaceAll(u.Host, ":", "%3A")))
	return server, id, &calls
}

func webResolver(server *httptest.Server) resolver.Resolver {
	return resolver.Default(resolver.WithChannel(fhttp.NewChannel(fhttp.WithClient(server.Client()))))
}

func TestDIDWebSubject(t *testing.T) {
	server, id, calls := didWebServer(t, fixtures.Bob)
	web := helpers.Must(signer.NewDIDWeb(fixtures.Bob, id))
	st := statement.DNS{Subject: web.AsSubject(), Domain: "example.com"}
	text, sig := sign(t, web, st)
	require.Equal(t, "example.com is linked to "+id.String(), text)
	p := helpers.Must(proof.NewDNS(st, sig))

	t.Run("resolved", func(t *testing.T) {
		calls.Store(0)
		cfg := DefaultConfig()
		cfg.Resolver = webResolver(server)
		c, err := NewDNS(cfg, records(text)).Verify(context.Background(), p, text)
		require.NoError(t, err)
		require.Equal(t, id.String(), c.Subject()["id"])
		require.Equal(t, int32(1), calls.Load())
	})

	t.Run("through the verifier", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Resolver = webResolver(server)
		v, err := NewVerifier(cfg, fetch.Set{DNS: records(text)})
		require.NoError(t, err)
		_, err = v.Verify(context.Background(), p, text)
		require.NoError(t, err)
	})

	t.Run("without a resolver", func(t *testing.T) {
		dns := records(text)
		_, err := NewDNS(DefaultConfig(), dns).Verify(context.Background(), p, text)
		requireRejected(t, err, StatementSigned, ResolutionFailed)
		require.Zero(t, dns.calls)
	})

	t.Run("signer key is not trusted", func(t *testing.T) {
		// the statement subject is the signer itself, which can verify its own
		// signatures offline
		st := statement.DNS{Subject: web, Domain: "example.com"}
		p := helpers.Must(proof.NewDNS(st, sig))
		_, err := NewDNS(DefaultConfig(), records(text)).Verify(context.Background(), p, text)
		requireRejected(t, err, StatementSigned, ResolutionFailed)
	})

	t.Run("document publishes another key", func(t *testing.T) {
		other, otherID, _ := didWebServer(t, fixtures.Alice)
		mallory := helpers.Must(signer.NewDIDWeb(fixtures.Bob, otherID))
		st := statement.DNS{Subject: mallory.AsSubject(), Domain: "example.com"}
		text, sig := sign(t, mallory, st)
		p := helpers.Must(proof.NewDNS(st, sig))

		cfg := DefaultConfig()
		cfg.Resolver = webResolver(other)
		_, err := NewDNS(cfg, records(text)).Verify(context.Background(), p, text)
		requireRejected(t, err, StatementSigned, InvalidSignature)
	})
}
