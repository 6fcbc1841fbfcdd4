package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
)

// DefaultDoHEndpoint serves DNS over HTTPS in the JSON format.
const DefaultDoHEndpoint = "https://cloudflare-dns.com/dns-query"

const txtType = 16

type dohResponse struct {
	Status int `json:"Status"`
	Answer []struct {
		Type int    `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// DoH resolves TXT records with a DNS over HTTPS JSON API.
type DoH struct {
	channel  *fhttp.Channel
	endpoint string
}

func NewDoH(channel *fhttp.Channel, endpoint string) *DoH {
	if endpoint == "" {
		endpoint = DefaultDoHEndpoint
	}
	return &DoH{channel, endpoint}
}

// TXT returns records of the form "<prefix>=<value>" as value. An empty
// prefix returns every record.
func (d *DoH) TXT(ctx context.Context, domain, prefix string) ([]string, error) {
	q := url.Values{}
	q.Set("name", domain)
	q.Set("type", "TXT")
	u := d.endpoint + "?" + q.Encode()

	log.Debugw("querying TXT records", "domain", domain)
	var res dohResponse
	if err := d.channel.GetJSON(ctx, u, &res); err != nil {
		return nil, fmt.Errorf("resolving TXT records of %s: %w", domain, err)
	}
	// NXDOMAIN is a valid answer with no records
	if res.Status != 0 && res.Status != 3 {
		return nil, fmt.Errorf("resolving TXT records of %s: rcode %d", domain, res.Status)
	}

	var values []string
	for _, a := range res.Answer {
		if a.Type != txtType {
			continue
		}
		value := unquoteTXT(a.Data)
		if prefix == "" {
			values = append(values, value)
			continue
		}
		if v, ok := strings.CutPrefix(value, prefix+"="); ok {
			values = append(values, v)
		}
	}
	return values, nil
}

// unquoteTXT joins the character strings of a presentation format TXT value,
// e.g. `"abc" "def"` becomes `abcdef`.
func unquoteTXT(data string) string {
	if !strings.HasPrefix(data, `"`) {
		return data
	}
	var b strings.Builder
	quoted, escaped := false, false
	for _, r := range data {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\' && quoted:
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
			b.WriteRune(r)
		}
	}
	return b.String()
}
