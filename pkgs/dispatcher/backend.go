package dispatcher

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/arcadeforge/scoreforge/pkgs/helpers/chain"
	"github.com/arcadeforge/scoreforge/pkgs/helpers/clients"
)

// Backend is the slice of chain machinery a batch tick needs. The
// production implementation wraps the signer, contract binding, and RPC
// client; tests substitute an in-memory fake.
type Backend interface {
	SignerAddress() common.Address
	BaseNonce(ctx context.Context) (uint64, error)
	SuggestFees(ctx context.Context) (chain.FeeData, error)
	EstimateGas(ctx context.Context, player common.Address, score *big.Int) (uint64, error)
	Send(ctx context.Context, nonce uint64, fees chain.FeeData, gasLimit uint64, player common.Address, score *big.Int) (string, error)
	WaitReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
}

// ChainBackend sends through the one signer account this process
// controls. Confirmations beyond the first are awaited inside
// WaitReceipt so callers only ever see the final, settled receipt.
type ChainBackend struct {
	Signer        *chain.Signer
	Contract      *chain.Contract
	Client        *chain.Client
	Confirmations int
}

func (b *ChainBackend) SignerAddress() common.Address {
	return b.Signer.Address()
}

func (b *ChainBackend) BaseNonce(ctx context.Context) (uint64, error) {
	return chain.PendingNonce(ctx, b.Client, b.Signer.Address())
}

func (b *ChainBackend) SuggestFees(ctx context.Context) (chain.FeeData, error) {
	return chain.SuggestFees(ctx, b.Client, 1)
}

func (b *ChainBackend) EstimateGas(ctx context.Context, player common.Address, score *big.Int) (uint64, error) {
	return b.Contract.EstimateUpdatePlayerData(ctx, b.Signer.Address(), player, score)
}

func (b *ChainBackend) Send(ctx context.Context, nonce uint64, fees chain.FeeData, gasLimit uint64, player common.Address, score *big.Int) (string, error) {
	b.Signer.Lock()
	defer b.Signer.Unlock()

	opts, err := b.Signer.TransactOpts(nonce, fees, gasLimit)
	if err != nil {
		return "", err
	}
	opts.Context = ctx
	tx, err := b.Contract.UpdatePlayerData(opts, player, score)
	if err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (b *ChainBackend) WaitReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	receipt, err := clients.PollReceipt(ctx, b.Client, txHash)
	if err != nil {
		return nil, err
	}
	if b.Confirmations > 1 {
		clients.AwaitConfirmations(ctx, b.Client, receipt.BlockNumber, b.Confirmations)
	}
	return receipt, nil
}
