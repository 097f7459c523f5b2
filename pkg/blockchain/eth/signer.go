package eth

import (
	"context"
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// TransferGasLimit is the gas used by a plain value transfer.
const TransferGasLimit = uint64(21000)

type Signer struct {
	client  EthClient
	chainID *big.Int
	key     *ecdsa.PrivateKey
	from    common.Address
}

func NewSigner(client EthClient, chainID *big.Int, key *ecdsa.PrivateKey) *Signer {
	return &Signer{
		client:  client,
		chainID: chainID,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (s *Signer) From() common.Address {
	return s.from
}

// CreateTransferTransaction builds and signs a native value transfer from the
// signer's account.
func (s *Signer) CreateTransferTransaction(ctx context.Context, to common.Address, amount *big.Int) (*types.Transaction, error) {
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    amount,
		Gas:      TransferGasLimit,
		GasPrice: gasPrice,
	})

	return types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
}
