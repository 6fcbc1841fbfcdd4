package fetch

import (
	"context"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	fhttp "github.com/spruceid/rebase-sub001/fetch/http"
)

const (
	// DefaultAlchemyEndpoint is expanded per network, e.g. eth-mainnet.
	DefaultAlchemyEndpoint = "https://{network}.g.alchemy.com"
	DefaultPOAPEndpoint    = "https://api.poap.tech"
)

// Alchemy checks NFT ownership with the Alchemy NFT API.
type Alchemy struct {
	channel  *fhttp.Channel
	endpoint string
	apiKey   string
}

// NewAlchemy creates an Alchemy client. Any "{network}" in endpoint is
// replaced by the network of each query.
func NewAlchemy(channel *fhttp.Channel, endpoint, apiKey string) *Alchemy {
	if endpoint == "" {
		endpoint = DefaultAlchemyEndpoint
	}
	return &Alchemy{channel, strings.TrimSuffix(endpoint, "/"), apiKey}
}

func (a *Alchemy) Owns(ctx context.Context, contract, network, address string) (bool, error) {
	if !common.IsHexAddress(contract) {
		return false, fmt.Errorf("invalid contract address %q", contract)
	}
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("invalid owner address %q", address)
	}
	if network == "" || strings.ContainsAny(network, "/.?#") {
		return false, fmt.Errorf("invalid network %q", network)
	}
	base := strings.ReplaceAll(a.endpoint, "{network}", network)
	q := neturl.Values{}
	q.Set("wallet", common.HexToAddress(address).Hex())
	q.Set("contractAddress", common.HexToAddress(contract).Hex())

	var res struct {
		IsHolderOfContract bool `json:"isHolderOfContract"`
	}
	log.Debugw("checking NFT ownership", "contract", contract, "network", network, "address", address)
	if err := a.channel.GetJSON(ctx, base+"/nft/v3/"+a.apiKey+"/isHolderOfContract?"+q.Encode(), &res); err != nil {
		return false, fmt.Errorf("checking ownership of %s on %s: %w", contract, network, err)
	}
	return res.IsHolderOfContract, nil
}

// POAPAPI checks POAP ownership with the POAP API. The channel must carry the
// API key header.
type POAPAPI struct {
	channel  *fhttp.Channel
	endpoint string
}

func NewPOAP(channel *fhttp.Channel, endpoint string) *POAPAPI {
	if endpoint == "" {
		endpoint = DefaultPOAPEndpoint
	}
	return &POAPAPI{channel, strings.TrimSuffix(endpoint, "/")}
}

// Owns reports whether address holds a POAP of the event. The API answers
// 404 for addresses that do not.
func (p *POAPAPI) Owns(ctx context.Context, eventID, address string) (bool, error) {
	for _, r := range eventID {
		if r < '0' || r > '9' {
			return false, fmt.Errorf("invalid event id %q", eventID)
		}
	}
	if eventID == "" {
		return false, fmt.Errorf("invalid event id %q", eventID)
	}
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("invalid owner address %q", address)
	}

	var res struct {
		Owner string `json:"owner"`
		Event struct {
			ID int64 `json:"id"`
		} `json:"event"`
	}
	log.Debugw("checking POAP ownership", "event", eventID, "address", address)
	err := p.channel.GetJSON(ctx, p.endpoint+"/actions/scan/"+address+"/"+eventID, &res)
	if fhttp.StatusOf(err) == http.StatusNotFound {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking POAP %s of %s: %w", eventID, address, err)
	}
	return strings.EqualFold(res.Owner, address) && fmt.Sprint(res.Event.ID) == eventID, nil
}
