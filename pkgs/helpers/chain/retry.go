package chain

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// MustQuery runs a handful of constant-backoff attempts at a read-only
// chain call, logging and giving up rather than blocking forever. Used
// for the boot checks (chain id, role) where an RPC hiccup shouldn't be
// fatal.
func MustQuery[K any](ctx context.Context, attempts uint64, call func() (K, error)) (K, error) {
	expBackoff := backoff.NewConstantBackOff(1 * time.Second)

	var val K
	operation := func() error {
		v, err := call()
		if err != nil {
			return err
		}
		val = v
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(expBackoff, attempts), ctx))
	if err != nil {
		log.Warnf("chain query failed after retries: %v", err)
		return val, err
	}
	return val, nil
}
