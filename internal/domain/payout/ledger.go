package payout

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/questx-lab/raffle/pkg/errorx"
)

// ReceiveHook runs when an address receives value from the ledger. Returning
// an error rejects the transfer.
type ReceiveHook func(ctx context.Context, amount *big.Int) error

// Ledger is an in-memory value store. It pays winners when the service is not
// connected to a chain, and lets tests model recipients that reject or
// re-enter on receive.
type Ledger struct {
	mutex    sync.Mutex
	balances map[common.Address]*big.Int
	hooks    map[common.Address]ReceiveHook
}

func NewLedger() *Ledger {
	return &Ledger{
		balances: make(map[common.Address]*big.Int),
		hooks:    make(map[common.Address]ReceiveHook),
	}
}

func (l *Ledger) OnReceive(addr common.Address, hook ReceiveHook) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if hook == nil {
		delete(l.hooks, addr)
	} else {
		l.hooks[addr] = hook
	}
}

// Send credits amount to the recipient, then runs its receive hook. The hook
// is called without holding the ledger lock so it may call back into the
// payer's owner. If the hook fails the credit is undone.
func (l *Ledger) Send(ctx context.Context, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errorx.New(errorx.BadRequest, "Invalid amount %v", amount)
	}

	l.mutex.Lock()
	l.credit(to, amount)
	hook := l.hooks[to]
	l.mutex.Unlock()

	if hook == nil {
		return nil
	}

	if err := hook(ctx, new(big.Int).Set(amount)); err != nil {
		l.mutex.Lock()
		l.credit(to, new(big.Int).Neg(amount))
		l.mutex.Unlock()
		return err
	}

	return nil
}

func (l *Ledger) BalanceOf(addr common.Address) *big.Int {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if b, ok := l.balances[addr]; ok {
		return new(big.Int).Set(b)
	}

	return new(big.Int)
}

func (l *Ledger) credit(addr common.Address, amount *big.Int) {
	b, ok := l.balances[addr]
	if !ok {
		b = new(big.Int)
		l.balances[addr] = b
	}

	b.Add(b, amount)
}
