// Package clients holds the small external HTTP collaborators this
// system talks to: failure alerting, the wallet-has-username probe, and
// chain receipt polling.
package clients

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

var alertsHTTPClient = &http.Client{
	Timeout:   10 * time.Second,
	Transport: &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}},
}

type failureNotification struct {
	Component string `json:"component"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Severity  string `json:"severity"`
}

// SendFailureNotification posts to the configured alerts webhook. A
// missing webhook URL degrades to a log line rather than an error,
// since alerting is best-effort and must never block the request path.
func SendFailureNotification(webhookURL, component, message, severity string) {
	if webhookURL == "" {
		log.Warnf("alert [%s/%s]: %s", component, severity, message)
		return
	}

	payload := failureNotification{
		Component: component,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal failure notification: %v", err)
		return
	}

	req, err := http.NewRequest(http.MethodPost, webhookURL, bytes.NewBuffer(body))
	if err != nil {
		log.Errorf("failed to build failure notification request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	operation := func() error {
		resp, err := alertsHTTPClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("alerts webhook returned %d", resp.StatusCode)
		}
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)); err != nil {
		log.Errorf("failed to deliver failure notification after retries: %v", err)
	}
}

// Alerter binds a webhook URL so callers don't thread it through every
// call site.
type Alerter struct {
	WebhookURL string
}

// Notify delivers in the background so the caller never waits on the
// webhook or its retries.
func (a Alerter) Notify(component, message, severity string) {
	go SendFailureNotification(a.WebhookURL, component, message, severity)
}
