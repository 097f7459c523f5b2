package vrf

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// FulfillmentDigest is keccak256(requestID || words...), every number encoded
// as a 32-byte big-endian word.
func FulfillmentDigest(requestID *big.Int, words []*big.Int) common.Hash {
	data := make([]byte, 0, 32*(len(words)+1))
	data = append(data, math.U256Bytes(new(big.Int).Set(requestID))...)
	for _, w := range words {
		data = append(data, math.U256Bytes(new(big.Int).Set(w))...)
	}

	return crypto.Keccak256Hash(data)
}

func SignFulfillment(key *ecdsa.PrivateKey, requestID *big.Int, words []*big.Int) ([]byte, error) {
	digest := FulfillmentDigest(requestID, words)
	return crypto.Sign(digest.Bytes(), key)
}

// RecoverFulfiller returns the address that signed the fulfillment.
func RecoverFulfiller(requestID *big.Int, words []*big.Int, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("invalid signature length %d", len(signature))
	}

	digest := FulfillmentDigest(requestID, words)
	pub, err := crypto.SigToPub(digest.Bytes(), signature)
	if err != nil {
		return common.Address{}, err
	}

	return crypto.PubkeyToAddress(*pub), nil
}

// ExpandRandomness derives n words from a request and a seed.
func ExpandRandomness(seed []byte, requestID *big.Int, n uint32) []*big.Int {
	words := make([]*big.Int, 0, n)
	for i := uint32(0); i < n; i++ {
		h := crypto.Keccak256(
			seed,
			math.U256Bytes(new(big.Int).Set(requestID)),
			math.U256Bytes(new(big.Int).SetUint64(uint64(i))),
		)
		words = append(words, new(big.Int).SetBytes(h))
	}

	return words
}
