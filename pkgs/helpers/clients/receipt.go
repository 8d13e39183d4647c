package clients

import (
	"context"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/arcadeforge/scoreforge/pkgs/helpers/chain"
)

// ReceiptClient is the subset of *chain.Client the receipt/confirmation
// helpers need, kept as an interface so tests can fake it without a
// live RPC endpoint.
type ReceiptClient interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

var _ ReceiptClient = (*chain.Client)(nil)

// PollReceipt polls for a transaction's receipt until ctx is done. A
// not-yet-found receipt keeps polling; any other RPC error aborts.
func PollReceipt(ctx context.Context, c ReceiptClient, txHashHex string) (*types.Receipt, error) {
	hash := common.HexToHash(txHashHex)

	var receipt *types.Receipt
	operation := func() error {
		r, err := c.TransactionReceipt(ctx, hash)
		if err != nil {
			if err == ethereum.NotFound {
				return err
			}
			return backoff.Permanent(err)
		}
		receipt = r
		return nil
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.NewConstantBackOff(2*time.Second), ctx))
	return receipt, err
}

// AwaitConfirmations blocks until the chain head has advanced at least
// confirmations-1 blocks past minedBlock, or ctx expires. Best-effort:
// an expired context simply returns early, since the receipt itself has
// already been observed by the time this is called.
func AwaitConfirmations(ctx context.Context, c ReceiptClient, minedBlock *big.Int, confirmations int) {
	if confirmations <= 1 {
		return
	}
	target := new(big.Int).Add(minedBlock, big.NewInt(int64(confirmations-1)))

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			head, err := c.BlockNumber(ctx)
			if err != nil {
				continue
			}
			if new(big.Int).SetUint64(head).Cmp(target) >= 0 {
				return
			}
		}
	}
}
