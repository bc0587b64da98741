package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/assets"
	"github.com/Cogwheel-Validator/spectra-xcm-hub/simulator/engine"
	"github.com/rs/zerolog"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Str("component", "gateway").Logger()
}

// Endpoints is one chain's gateway endpoint set: a primary URL and any
// number of backups tried in order when the primary misbehaves.
type Endpoints struct {
	Primary string
	Backups []string
}

// FailoverConfig controls retry and failover behavior
type FailoverConfig struct {
	// MaxRetries is the number of times to retry a failed request on the current endpoint
	MaxRetries int
	// RetryDelay is the initial delay between retries (doubles with each retry)
	RetryDelay time.Duration
	// Timeout is the HTTP request timeout
	Timeout time.Duration
}

// DefaultFailoverConfig returns sensible defaults for failover behavior
func DefaultFailoverConfig() FailoverConfig {
	return FailoverConfig{
		MaxRetries: 2,
		RetryDelay: 500 * time.Millisecond,
		Timeout:    30 * time.Second,
	}
}

// sharedState is the part of the gateway client that clones share: the
// endpoint table and the HTTP client with its connection pool.
type sharedState struct {
	httpClient *http.Client
	endpoints  map[string]Endpoints
	config     FailoverConfig
}

// GatewayClient talks to the chain gateway, the service holding the actual
// node connections. One GatewayClient is bound to one chain after Init;
// Clone before connecting somewhere else.
type GatewayClient struct {
	st *sharedState

	mu         sync.RWMutex
	chain      string
	currentURL string
}

// NewGatewayClient builds an unbound client over a per-chain endpoint table.
func NewGatewayClient(endpoints map[string]Endpoints, config FailoverConfig) (*GatewayClient, error) {
	for chain, eps := range endpoints {
		if _, err := url.Parse(eps.Primary); err != nil {
			return nil, fmt.Errorf("primary endpoint for %s: %w", chain, err)
		}
		for _, b := range eps.Backups {
			if _, err := url.Parse(b); err != nil {
				return nil, fmt.Errorf("backup endpoint for %s: %w", chain, err)
			}
		}
	}
	return &GatewayClient{st: &sharedState{
		httpClient: &http.Client{Timeout: config.Timeout},
		endpoints:  endpoints,
		config:     config,
	}}, nil
}

// Init binds the client to one chain and checks the gateway is reachable.
func (c *GatewayClient) Init(ctx context.Context, chain string) error {
	eps, ok := c.st.endpoints[chain]
	if !ok {
		return fmt.Errorf("no gateway endpoint configured for %s", chain)
	}

	c.mu.Lock()
	c.chain = chain
	c.currentURL = eps.Primary
	c.mu.Unlock()

	if err := c.ping(ctx, eps.Primary); err != nil {
		if !c.failover(ctx) {
			return fmt.Errorf("gateway for %s unreachable: %w", chain, err)
		}
	}
	return nil
}

// Clone returns an unbound client sharing the endpoint table and the
// underlying connection pool.
func (c *GatewayClient) Clone() engine.Client {
	return &GatewayClient{st: c.st}
}

// Disconnect releases the chain binding. The gateway owns the node
// connections, so there is nothing to tear down on this side.
func (c *GatewayClient) Disconnect(context.Context) error {
	c.mu.Lock()
	c.chain = ""
	c.currentURL = ""
	c.mu.Unlock()
	return nil
}

func (c *GatewayClient) DryRunCall(ctx context.Context, tx engine.Tx, useRootOrigin bool) (*engine.DryRunResult, error) {
	var resp dryRunResponse
	err := c.post(ctx, "/dry-run-call", dryRunCallRequest{
		Call:          tx.Call,
		UseRootOrigin: useRootOrigin,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return decodeDryRun(resp)
}

func (c *GatewayClient) DryRunXcm(ctx context.Context, origin engine.OriginLocation, message engine.RawXcm) (*engine.DryRunResult, error) {
	var resp dryRunResponse
	err := c.post(ctx, "/dry-run-xcm", dryRunXcmRequest{
		Origin:  originBody{Parents: origin.Parents, ParaID: origin.ParaID},
		Message: message,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return decodeDryRun(resp)
}

func (c *GatewayClient) PaymentInfo(ctx context.Context, tx engine.Tx, sender string) (*big.Int, error) {
	var resp paymentInfoResponse
	err := c.post(ctx, "/payment-info", paymentInfoRequest{Call: tx.Call, Sender: sender}, &resp)
	if err != nil {
		return nil, err
	}
	return parseAmount(resp.PartialFee, "partialFee")
}

func (c *GatewayClient) Balance(ctx context.Context, address string, asset assets.Asset) (*big.Int, error) {
	var resp balanceResponse
	path := fmt.Sprintf("/balance?address=%s&symbol=%s",
		url.QueryEscape(address), url.QueryEscape(asset.Symbol))
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return parseAmount(resp.Free, "free")
}

func (c *GatewayClient) BridgeExportFees(ctx context.Context) ([]*big.Int, error) {
	var resp bridgeExportFeesResponse
	if err := c.get(ctx, "/bridge-export-fees", &resp); err != nil {
		return nil, err
	}
	fees := make([]*big.Int, len(resp.Fees))
	for i, f := range resp.Fees {
		fee, err := parseAmount(f, "fees")
		if err != nil {
			return nil, err
		}
		fees[i] = fee
	}
	return fees, nil
}

func (c *GatewayClient) QuotePoolPrice(ctx context.Context, from, to string, amount *big.Int) (*big.Int, error) {
	var resp poolQuoteResponse
	path := fmt.Sprintf("/pool-quote?from=%s&to=%s&amount=%s",
		url.QueryEscape(from), url.QueryEscape(to), amount.String())
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, err
	}
	return parseAmount(resp.AmountOut, "amountOut")
}

func decodeDryRun(resp dryRunResponse) (*engine.DryRunResult, error) {
	r := &engine.DryRunResult{
		Success:      resp.Success,
		Reason:       resp.Reason,
		SubReason:    resp.SubReason,
		ForwardedXcm: resp.ForwardedXcm,
		DestParaID:   resp.DestParaID,
	}
	if resp.Fee != "" {
		fee, err := parseAmount(resp.Fee, "fee")
		if err != nil {
			return nil, err
		}
		r.Fee = fee
	}
	if resp.Weight != nil {
		r.Weight = &engine.Weight{RefTime: resp.Weight.RefTime, ProofSize: resp.Weight.ProofSize}
	}
	return r, nil
}

func parseAmount(s, field string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("gateway returned bad %s %q", field, s)
	}
	return v, nil
}

// chainPath prefixes a path with the bound chain's API root.
func (c *GatewayClient) chainPath(path string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.chain == "" {
		return "", fmt.Errorf("client is not bound to a chain")
	}
	return "/v1/chains/" + url.PathEscape(c.chain) + path, nil
}

func (c *GatewayClient) get(ctx context.Context, path string, out any) error {
	full, err := c.chainPath(path)
	if err != nil {
		return err
	}
	body, err := c.doRequestWithFailover(ctx, http.MethodGet, full, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *GatewayClient) post(ctx context.Context, path string, in, out any) error {
	full, err := c.chainPath(path)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	body, err := c.doRequestWithFailover(ctx, http.MethodPost, full, payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

func (c *GatewayClient) currentEndpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.currentURL
}

// failover switches to the next endpoint of the bound chain that answers a
// ping. Returns false when every endpoint is down.
func (c *GatewayClient) failover(ctx context.Context) bool {
	c.mu.Lock()
	eps, ok := c.st.endpoints[c.chain]
	current := c.currentURL
	c.mu.Unlock()
	if !ok {
		return false
	}

	all := append([]string{eps.Primary}, eps.Backups...)
	currentIdx := 0
	for i, u := range all {
		if u == current {
			currentIdx = i
			break
		}
	}

	for i := 1; i <= len(all); i++ {
		next := all[(currentIdx+i)%len(all)]
		if next == current {
			continue
		}
		if err := c.ping(ctx, next); err == nil {
			c.mu.Lock()
			c.currentURL = next
			c.mu.Unlock()
			log.Info().Str("url", next).Msg("Failover to endpoint")
			return true
		}
	}

	log.Warn().Str("url", current).Msg("All endpoints unhealthy, staying on current")
	return false
}

func (c *GatewayClient) ping(ctx context.Context, endpoint string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.st.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// doRequestWithFailover performs a request with retry and failover logic.
// Gateway error envelopes are surfaced as errors, amount-too-low as the
// engine's sentinel so callers can branch on it.
func (c *GatewayClient) doRequestWithFailover(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var lastErr error
	retryDelay := c.st.config.RetryDelay

	for attempt := 0; attempt <= c.st.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(retryDelay):
			}
			retryDelay *= 2
		}

		body, err := c.doOnce(ctx, method, c.currentEndpoint()+path, payload)
		if err == nil {
			return body, nil
		}
		// client faults do not get better on retry
		if errors.Is(err, engine.ErrAmountTooLow) {
			return nil, err
		}
		if gwErr, ok := err.(*gatewayError); ok && gwErr.status < http.StatusInternalServerError {
			return nil, err
		}
		lastErr = err
	}

	if c.failover(ctx) {
		body, err := c.doOnce(ctx, method, c.currentEndpoint()+path, payload)
		if err != nil {
			return nil, fmt.Errorf("failover request failed: %w (original: %w)", err, lastErr)
		}
		return body, nil
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", c.st.config.MaxRetries+1, lastErr)
}

// gatewayError is an HTTP-level failure with the gateway's error envelope
// attached when one was present.
type gatewayError struct {
	status  int
	code    string
	message string
}

func (e *gatewayError) Error() string {
	if e.code != "" {
		return fmt.Sprintf("gateway HTTP %d: %s: %s", e.status, e.code, e.message)
	}
	return fmt.Sprintf("gateway HTTP %d: %s", e.status, e.message)
}

func (c *GatewayClient) doOnce(ctx context.Context, method, fullURL string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.st.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		var envelope errorResponse
		if json.Unmarshal(body, &envelope) == nil && envelope.Code == codeAmountTooLow {
			return nil, engine.ErrAmountTooLow
		}
		return nil, &gatewayError{status: resp.StatusCode, code: envelope.Code, message: envelope.Message}
	}
	return body, nil
}
