package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var walletProbeHTTPClient = &http.Client{
	Timeout:   5 * time.Second,
	Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
}

type walletProbeResponse struct {
	HasUsername bool `json:"hasUsername"`
}

// ProbeWalletHasUsername calls the external "wallet-has-username"
// endpoint the unlock path gates on. A transport error after retries is
// distinct from a well-formed "no" answer; the caller maps the two to
// different response codes.
func ProbeWalletHasUsername(ctx context.Context, baseURL, walletAddress string) (bool, error) {
	url := fmt.Sprintf("%s/wallet/%s/has-username", baseURL, walletAddress)

	var hasUsername bool
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := walletProbeHTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("wallet probe returned %d", resp.StatusCode)
		}
		var body walletProbeResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return backoff.Permanent(err)
		}
		hasUsername = body.HasUsername
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(500*time.Millisecond), 3), ctx))
	return hasUsername, err
}
