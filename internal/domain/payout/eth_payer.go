package payout

import (
	"context"
	"errors"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/questx-lab/raffle/pkg/blockchain/eth"
	"github.com/questx-lab/raffle/pkg/errorx"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

var ErrTransactionReverted = errors.New("transaction reverted")

type EthPayerOption func(*EthPayer)

func WithReceiptPolling(interval, timeout time.Duration) EthPayerOption {
	return func(p *EthPayer) {
		p.pollInterval = interval
		p.timeout = timeout
	}
}

// ConfirmHandler receives the outcome of a broadcast transfer. err is nil when
// the transfer is mined successfully.
type ConfirmHandler func(ctx context.Context, hash common.Hash, err error)

func WithConfirmHandler(handler ConfirmHandler) EthPayerOption {
	return func(p *EthPayer) {
		p.onConfirmed = handler
	}
}

// EthPayer pays winners with native transfers signed by the service key.
//
// A transfer the node accepted may still be mined, so it counts as sent: Send
// returns nil right after the broadcast and the receipt is awaited in the
// background. A mined but reverted transfer is reported to the confirm
// handler and logged, it is never signed again.
type EthPayer struct {
	client       eth.EthClient
	signer       *eth.Signer
	pollInterval time.Duration
	timeout      time.Duration
	onConfirmed  ConfirmHandler
}

func NewEthPayer(client eth.EthClient, signer *eth.Signer, opts ...EthPayerOption) *EthPayer {
	p := &EthPayer{
		client:       client,
		signer:       signer,
		pollInterval: 2 * time.Second,
		timeout:      2 * time.Minute,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *EthPayer) Send(ctx context.Context, to common.Address, amount *big.Int) error {
	tx, err := p.signer.CreateTransferTransaction(ctx, to, amount)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create transfer transaction: %v", err)
		return errorx.New(errorx.Unavailable, "Cannot create transfer transaction")
	}

	if err := p.client.SendTransaction(ctx, tx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send transaction %s: %v", tx.Hash(), err)
		return errorx.New(errorx.Unavailable, "Cannot send transaction")
	}

	xcontext.Logger(ctx).Infof("Sent %s wei from %s to %s in tx %s",
		amount, p.signer.From(), to, tx.Hash())

	go p.confirm(detach(ctx), tx.Hash(), to, amount)
	return nil
}

func (p *EthPayer) confirm(ctx context.Context, hash common.Hash, to common.Address, amount *big.Int) {
	receipt, err := p.waitMined(ctx, hash)
	if err == nil && receipt.Status != ethtypes.ReceiptStatusSuccessful {
		err = ErrTransactionReverted
	}

	if err != nil {
		xcontext.Logger(ctx).Errorf("Payout of %s wei to %s in tx %s is not confirmed: %v",
			amount, to.Hex(), hash, err)
	} else {
		xcontext.Logger(ctx).Infof("Payout of %s wei to %s in tx %s is mined", amount, to.Hex(), hash)
	}

	if p.onConfirmed != nil {
		p.onConfirmed(ctx, hash, err)
	}
}

func (p *EthPayer) waitMined(ctx context.Context, hash common.Hash) (*ethtypes.Receipt, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := p.client.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}

		if !errors.Is(err, ethereum.NotFound) {
			xcontext.Logger(ctx).Debugf("Cannot get receipt of tx %s: %v", hash, err)
		}

		select {
		case <-ctx.Done():
			return nil, errorx.New(errorx.Unavailable, "Transaction %s is not mined in time", hash)
		case <-ticker.C:
		}
	}
}

// detach keeps the service values of ctx but not its deadline, the receipt
// outlives the call that broadcast the transfer.
func detach(ctx context.Context) context.Context {
	detached := xcontext.WithConfigs(context.Background(), xcontext.Configs(ctx))
	return xcontext.WithLogger(detached, xcontext.Logger(ctx))
}
