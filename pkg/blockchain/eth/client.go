package eth

import (
	"context"
	"fmt"
	"math/big"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/questx-lab/raffle/config"
	"github.com/questx-lab/raffle/pkg/xcontext"
)

var (
	RpcTimeOut = time.Second * 5
)

// A wrapper around eth.client so that we can mock in payer tests.
type EthClient interface {
	Start(ctx context.Context)

	BlockNumber(ctx context.Context) (uint64, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error)
}

// Default implementation of ETH client. Since eth RPC often unstable, this client maintains a list
// of different RPC to connect to and uses the ones that is stable to dispatch a transaction.
type defaultEthClient struct {
	chain       string
	initialRpcs []string

	clients []*ethclient.Client
	rpcs    []string

	lock *sync.RWMutex
}

func NewEthClients(cfg config.ChainConfig) EthClient {
	return &defaultEthClient{
		chain:       cfg.Chain,
		initialRpcs: cfg.Rpcs,
		lock:        &sync.RWMutex{},
	}
}

func (c *defaultEthClient) Start(ctx context.Context) {
	go c.loopCheck(ctx)
}

func (c *defaultEthClient) loopCheck(ctx context.Context) {
	for {
		// Sleep a random time between 5 & 10 minutes
		mins := rand.Intn(5) + 5
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Minute * time.Duration(mins)):
		}

		c.updateRpcs(ctx)
	}
}

func (c *defaultEthClient) updateRpcs(ctx context.Context) {
	rpcs, clients := c.getRpcsHealthiness(ctx, c.initialRpcs)

	c.lock.Lock()
	oldClients := c.clients
	c.rpcs, c.clients = rpcs, clients
	c.lock.Unlock()

	for _, client := range oldClients {
		client.Close()
	}
}

func (c *defaultEthClient) getRpcsHealthiness(ctx context.Context, allRpcs []string) ([]string, []*ethclient.Client) {
	type healthyNode struct {
		client *ethclient.Client
		rpc    string
		height int64
	}

	nodes := []*healthyNode{}
	for _, rpc := range allRpcs {
		client, err := ethclient.DialContext(ctx, rpc)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot dial rpc %s: %v", rpc, err)
			continue
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, RpcTimeOut)
		number, err := client.BlockNumber(timeoutCtx)
		cancel()
		if err != nil {
			xcontext.Logger(ctx).Warnf("Rpc %s is unhealthy: %v", rpc, err)
			client.Close()
			continue
		}

		nodes = append(nodes, &healthyNode{client: client, rpc: rpc, height: int64(number)})
	}

	rpcs := []string{}
	clients := []*ethclient.Client{}
	if len(nodes) == 0 {
		return rpcs, clients
	}

	// Sorts all nodes by height
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].height > nodes[j].height
	})

	// Only select some nodes within a certain height from the median
	height := nodes[len(nodes)/2].height
	for _, node := range nodes {
		diff := node.height - height
		if diff < 0 {
			diff = -diff
		}

		if diff < 5 {
			rpcs = append(rpcs, node.rpc)
			clients = append(clients, node.client)
		} else {
			node.client.Close()
		}
	}

	xcontext.Logger(ctx).Infof("Healthy rpcs for chain %s: %v", c.chain, rpcs)
	return rpcs, clients
}

func (c *defaultEthClient) getHealthyClient(ctx context.Context) (*ethclient.Client, string) {
	c.lock.RLock()
	empty := len(c.clients) == 0
	c.lock.RUnlock()

	if empty {
		c.updateRpcs(ctx)
	}

	c.lock.RLock()
	defer c.lock.RUnlock()
	if len(c.clients) == 0 {
		return nil, ""
	}

	// Pick a random healthy rpc so the load is spread.
	i := rand.Intn(len(c.clients))
	return c.clients[i], c.rpcs[i]
}

func execute[T any](ctx context.Context, c *defaultEthClient, f func(client *ethclient.Client) (T, error)) (T, error) {
	client, rpc := c.getHealthyClient(ctx)
	if client == nil {
		var zero T
		return zero, fmt.Errorf("no healthy rpc for chain %s", c.chain)
	}

	ret, err := f(client)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Rpc %s returned an error: %v", rpc, err)
	}

	return ret, err
}

func (c *defaultEthClient) BlockNumber(ctx context.Context) (uint64, error) {
	return execute(ctx, c, func(client *ethclient.Client) (uint64, error) {
		return client.BlockNumber(ctx)
	})
}

func (c *defaultEthClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error) {
	return execute(ctx, c, func(client *ethclient.Client) (*ethtypes.Receipt, error) {
		return client.TransactionReceipt(ctx, txHash)
	})
}

func (c *defaultEthClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return execute(ctx, c, func(client *ethclient.Client) (*big.Int, error) {
		return client.SuggestGasPrice(ctx)
	})
}

func (c *defaultEthClient) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return execute(ctx, c, func(client *ethclient.Client) (uint64, error) {
		return client.PendingNonceAt(ctx, account)
	})
}

func (c *defaultEthClient) SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error {
	_, err := execute(ctx, c, func(client *ethclient.Client) (struct{}, error) {
		return struct{}{}, client.SendTransaction(ctx, tx)
	})

	return err
}

func (c *defaultEthClient) BalanceAt(ctx context.Context, account common.Address, block *big.Int) (*big.Int, error) {
	return execute(ctx, c, func(client *ethclient.Client) (*big.Int, error) {
		return client.BalanceAt(ctx, account, block)
	})
}
