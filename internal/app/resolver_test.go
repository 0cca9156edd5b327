package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whalewatch/clients/nansen"
	"whalewatch/config"
)

type fakeLabelSource struct {
	wallets []nansen.Wallet
	err     error
}

func (f *fakeLabelSource) FetchSmartWallets(ctx context.Context) ([]nansen.Wallet, error) {
	return f.wallets, f.err
}

func TestResolve_MergeRemoteAndAllowlist(t *testing.T) {
	source := &fakeLabelSource{wallets: []nansen.Wallet{
		{Address: "0xAAA", Label: "Smart Money"},
		{Address: "0xbbb", Label: "Whale"},
		{Address: "0xAAA", Label: "Duplicate"},
	}}
	allowlist := config.Allowlist{
		{Address: "0xbbb", Label: "Local Override Attempt"},
		{Address: "0xccc", Label: "Local Only"},
	}

	resolver := NewWalletLabelResolver(nil, source, allowlist, 0)
	wallets, derived := resolver.Resolve(context.Background(), nil)

	require.False(t, derived)
	require.Len(t, wallets, 3)

	byAddress := make(map[string]string)
	for _, w := range wallets {
		byAddress[w.Address] = w.Label
	}
	// Each address exactly once; remote label wins ties.
	assert.Equal(t, "Smart Money", byAddress["0xaaa"])
	assert.Equal(t, "Whale", byAddress["0xbbb"])
	assert.Equal(t, "Local Only", byAddress["0xccc"])
}

func TestResolve_RemoteFailureFallsBackToAllowlist(t *testing.T) {
	source := &fakeLabelSource{err: errors.New("upstream down")}
	allowlist := config.Allowlist{{Address: "0xDDD", Label: "Backup"}}

	resolver := NewWalletLabelResolver(nil, source, allowlist, 0)
	wallets, derived := resolver.Resolve(context.Background(), nil)

	assert.False(t, derived)
	require.Len(t, wallets, 1)
	assert.Equal(t, SmartWallet{Address: "0xddd", Label: "Backup"}, wallets[0])
}

func TestResolve_DerivedMode(t *testing.T) {
	trades := []Trade{
		{Wallet: "0x1", SizeUSD: 100},
		{Wallet: "0x2", SizeUSD: 200},
		{Wallet: "0x1", SizeUSD: 300}, // duplicate wallet
		{Wallet: "0x3", SizeUSD: 400},
	}

	resolver := NewWalletLabelResolver(nil, &fakeLabelSource{}, nil, 0)
	wallets, derived := resolver.Resolve(context.Background(), trades)

	assert.True(t, derived)
	require.Len(t, wallets, 3)
	for _, w := range wallets {
		assert.Equal(t, DerivedLabel, w.Label)
	}
	// First-observed order preserved.
	assert.Equal(t, "0x1", wallets[0].Address)
	assert.Equal(t, "0x2", wallets[1].Address)
	assert.Equal(t, "0x3", wallets[2].Address)
}

func TestResolve_DerivedModeCapped(t *testing.T) {
	trades := make([]Trade, 10)
	for i := range trades {
		trades[i] = Trade{Wallet: string(rune('a' + i))}
	}

	resolver := NewWalletLabelResolver(nil, nil, nil, 4)
	wallets, derived := resolver.Resolve(context.Background(), trades)

	assert.True(t, derived)
	assert.Len(t, wallets, 4)
}

func TestResolve_NothingAvailable(t *testing.T) {
	resolver := NewWalletLabelResolver(nil, nil, nil, 0)
	wallets, derived := resolver.Resolve(context.Background(), nil)

	assert.False(t, derived)
	assert.Empty(t, wallets)
}
