package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const defaultGasLimit = 300_000

// Signer is the one EVM account this process sends transactions from.
// The nonce stream assumes a single signer process, so there is exactly
// one account and its mutex is held for the lifetime of a send.
type Signer struct {
	mu         sync.Mutex
	address    common.Address
	privateKey *ecdsa.PrivateKey
	chainID    *big.Int
}

func NewSigner(privateKeyHex string, chainID *big.Int) (*Signer, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &Signer{
		address:    crypto.PubkeyToAddress(pk.PublicKey),
		privateKey: pk,
		chainID:    chainID,
	}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// TransactOpts builds a fresh bind.TransactOpts for the given nonce and
// fee data. The dispatcher owns nonce assignment, so this never queries
// PendingNonceAt itself.
func (s *Signer) TransactOpts(nonce uint64, fees FeeData, gasLimit uint64) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.privateKey, s.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.Value = big.NewInt(0)
	auth.From = s.address
	if gasLimit == 0 {
		gasLimit = defaultGasLimit
	}
	auth.GasLimit = gasLimit

	if fees.GasFeeCap != nil && fees.GasTipCap != nil {
		auth.GasFeeCap = fees.GasFeeCap
		auth.GasTipCap = fees.GasTipCap
	} else {
		auth.GasPrice = fees.GasPrice
	}
	return auth, nil
}

// Lock and Unlock serialize sends across the one account this process
// controls.
func (s *Signer) Lock()   { s.mu.Lock() }
func (s *Signer) Unlock() { s.mu.Unlock() }

// FeeData is the fee quote the Dispatcher attaches to a send. Exactly
// one of (GasFeeCap, GasTipCap) or GasPrice is populated.
type FeeData struct {
	GasFeeCap *big.Int
	GasTipCap *big.Int
	GasPrice  *big.Int
}

// SuggestFees prefers EIP-1559 fields and falls back to a legacy gas
// price when the chain's latest block carries no base fee.
func SuggestFees(ctx context.Context, c *Client, multiplier int64) (FeeData, error) {
	block, err := c.RefreshBlock(ctx)
	if err != nil {
		block = c.LatestBlock()
	}
	if block == nil || block.Header().BaseFee == nil {
		gasPrice, err := c.SuggestGasPrice(ctx)
		if err != nil {
			return FeeData{}, err
		}
		return FeeData{GasPrice: gasPrice}, nil
	}

	tip, err := c.SuggestGasTipCap(ctx)
	if err != nil {
		return FeeData{}, err
	}

	baseFee := block.Header().BaseFee
	if multiplier <= 0 {
		multiplier = 1
	}
	maxFeePerGas := new(big.Int).Mul(baseFee, big.NewInt(2*multiplier))
	maxFeePerGas.Add(maxFeePerGas, new(big.Int).Mul(tip, big.NewInt(multiplier)))

	return FeeData{GasFeeCap: maxFeePerGas, GasTipCap: tip}, nil
}
