package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/sirupsen/logrus"
)

// contractABI covers only the surface this system calls:
// updatePlayerData and the role check done once at boot.
const contractABI = `[
	{"inputs":[{"internalType":"address","name":"player","type":"address"},{"internalType":"uint256","name":"scoreAmount","type":"uint256"},{"internalType":"uint256","name":"transactionAmount","type":"uint256"}],"name":"updatePlayerData","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"GAME_ROLE","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes32","name":"role","type":"bytes32"},{"internalType":"address","name":"account","type":"address"}],"name":"hasRole","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"}
]`

// TransactionAmount is the fixed third argument to updatePlayerData:
// every submission counts as exactly one transaction upstream.
var TransactionAmount = big.NewInt(1)

type Contract struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
	client  *Client
}

func NewContract(address common.Address, client *Client) (*Contract, error) {
	parsed, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}
	return &Contract{
		address: address,
		abi:     parsed,
		bound:   bind.NewBoundContract(address, parsed, client, client, client),
		client:  client,
	}, nil
}

// EstimateUpdatePlayerData packs the call and asks the node for a gas
// estimate. Callers apply their own headroom on top of the returned
// value.
func (c *Contract) EstimateUpdatePlayerData(ctx context.Context, from common.Address, player common.Address, scoreAmount *big.Int) (uint64, error) {
	data, err := c.abi.Pack("updatePlayerData", player, scoreAmount, TransactionAmount)
	if err != nil {
		return 0, fmt.Errorf("failed to pack updatePlayerData: %w", err)
	}
	return c.client.EstimateGas(ctx, ethereum.CallMsg{
		From: from,
		To:   &c.address,
		Data: data,
	})
}

// UpdatePlayerData submits the transaction with the caller-assigned
// nonce and gas limit already baked into opts; the dispatcher is the
// one place that builds opts (see Signer.TransactOpts).
func (c *Contract) UpdatePlayerData(opts *bind.TransactOpts, player common.Address, scoreAmount *big.Int) (*types.Transaction, error) {
	return c.bound.Transact(opts, "updatePlayerData", player, scoreAmount, TransactionAmount)
}

// GameRole and HasRole back the boot-time check that the signer holds
// GAME_ROLE; lacking the role is a warning, not a hard error.
func (c *Contract) GameRole(ctx context.Context) ([32]byte, error) {
	var role [32]byte
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "GAME_ROLE"); err != nil {
		return role, err
	}
	if len(out) == 0 {
		return role, fmt.Errorf("GAME_ROLE returned no values")
	}
	role = *abi.ConvertType(out[0], new([32]byte)).(*[32]byte)
	return role, nil
}

func (c *Contract) HasRole(ctx context.Context, role [32]byte, account common.Address) (bool, error) {
	var out []interface{}
	if err := c.bound.Call(&bind.CallOpts{Context: ctx}, &out, "hasRole", role, account); err != nil {
		return false, err
	}
	if len(out) == 0 {
		return false, fmt.Errorf("hasRole returned no values")
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// CheckGameRole reads GAME_ROLE and hasRole for the signer once at boot
// and logs the result. Either read failing, or the role being absent,
// is a warning only: the first real send will surface a revert if the
// grant is genuinely missing.
func CheckGameRole(ctx context.Context, c *Contract, signer common.Address) {
	role, err := MustQuery(ctx, 3, func() ([32]byte, error) { return c.GameRole(ctx) })
	if err != nil {
		log.Warnf("could not read GAME_ROLE at boot: %v", err)
		return
	}
	has, err := MustQuery(ctx, 3, func() (bool, error) { return c.HasRole(ctx, role, signer) })
	if err != nil {
		log.Warnf("could not check hasRole(GAME_ROLE, %s) at boot: %v", signer.Hex(), err)
		return
	}
	if has {
		log.Infof("signer %s holds GAME_ROLE", signer.Hex())
	} else {
		log.Warnf("signer %s does NOT hold GAME_ROLE; sends will likely revert", signer.Hex())
	}
}
