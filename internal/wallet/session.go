// Package wallet models the connected signing identity. Core write
// operations take a Session, so "not connected" is unrepresentable at
// their call sites instead of being a nil check scattered everywhere.
package wallet

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"gardendex/internal/chain"
)

// Session is a chain client paired with a signing identity.
type Session struct {
	Chain   *chain.Client
	Address common.Address

	opts *bind.TransactOpts
}

// Connect derives a Session from a hex-encoded private key. The chain
// ID is read once so the transactor signs for the right network.
func Connect(ctx context.Context, client *chain.Client, privateKeyHex string) (*Session, error) {
	keyHex := strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x")
	if keyHex == "" {
		return nil, fmt.Errorf("private key is required")
	}

	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}

	return &Session{
		Chain:   client,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		opts:    opts,
	}, nil
}

// TransactOpts returns signing options bound to the given context.
func (s *Session) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := *s.opts
	opts.Context = ctx
	return &opts
}
