package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"whalewatch/clients/nansen"
	"whalewatch/config"
)

// DerivedLabel marks wallets synthesized from the trade stream when no
// curated smart-wallet source is available.
const DerivedLabel = "Derived"

// SmartWallet is a curated (or derived) wallet with its classification label.
type SmartWallet struct {
	Address string `json:"address"`
	Label   string `json:"label"`
}

// LabelSource provides remotely curated smart-wallet labels. May fail or
// return nothing; neither is fatal to a request cycle.
type LabelSource interface {
	FetchSmartWallets(ctx context.Context) ([]nansen.Wallet, error)
}

// WalletLabelResolver produces the authoritative smart-wallet set for one
// request cycle by merging the remote label source with the local allowlist,
// falling back to wallets derived from the recent trade set when both are
// empty.
type WalletLabelResolver struct {
	logger     *zap.Logger
	source     LabelSource
	allowlist  config.Allowlist
	derivedCap int
}

// NewWalletLabelResolver creates a resolver. source may be nil when no label
// source is configured.
func NewWalletLabelResolver(
	logger *zap.Logger,
	source LabelSource,
	allowlist config.Allowlist,
	derivedCap int,
) *WalletLabelResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if derivedCap <= 0 {
		derivedCap = 200
	}
	return &WalletLabelResolver{
		logger:     logger,
		source:     source,
		allowlist:  allowlist,
		derivedCap: derivedCap,
	}
}

// Resolve merges remote labels with the allowlist, deduplicating by
// lowercased address; the remote source wins ties because it is merged first
// and the first-seen label sticks. When the merged set is empty the resolver
// degrades to derived mode: the first unique wallets observed in trades,
// capped, labeled DerivedLabel. The derived flag tells downstream filtering
// to relax the must-appear-in-smart-list requirement.
func (r *WalletLabelResolver) Resolve(ctx context.Context, trades []Trade) (wallets []SmartWallet, derived bool) {
	seen := make(map[string]struct{})

	if r.source != nil {
		remote, err := r.source.FetchSmartWallets(ctx)
		if err != nil {
			r.logger.Warn("smart wallet source unavailable, falling back", zap.Error(err))
		}
		for _, w := range remote {
			address := strings.ToLower(strings.TrimSpace(w.Address))
			if address == "" {
				continue
			}
			if _, dup := seen[address]; dup {
				continue
			}
			seen[address] = struct{}{}
			wallets = append(wallets, SmartWallet{Address: address, Label: w.Label})
		}
	}

	for _, entry := range r.allowlist {
		address := strings.ToLower(strings.TrimSpace(entry.Address))
		if address == "" {
			continue
		}
		if _, dup := seen[address]; dup {
			continue
		}
		seen[address] = struct{}{}
		wallets = append(wallets, SmartWallet{Address: address, Label: entry.Label})
	}

	if len(wallets) > 0 {
		return wallets, false
	}

	// Derived mode: no curated wallets at all. Synthesize candidates from the
	// trade stream so the dashboard degrades instead of going empty.
	for _, trade := range trades {
		if _, dup := seen[trade.Wallet]; dup {
			continue
		}
		seen[trade.Wallet] = struct{}{}
		wallets = append(wallets, SmartWallet{Address: trade.Wallet, Label: DerivedLabel})
		if len(wallets) >= r.derivedCap {
			break
		}
	}

	if len(wallets) > 0 {
		r.logger.Warn("no curated smart wallets, derived candidates from trades",
			zap.Int("count", len(wallets)),
		)
	}

	return wallets, len(wallets) > 0
}
