package config

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"cryptopage/native/fees"
)

// Params is the parsed form of the bootstrap settings.
type Params struct {
	Owner                common.Address
	Treasury             common.Address
	InitialSupply        *big.Int
	RewardPerHourDivisor int64
	BaseURI              string
	MintFeeBps           uint32
	BurnFeeBps           uint32
	CommentFeeBps        uint32
	MintValue            *big.Int
	FlatMintReward       *big.Int
	FlatCommentReward    *big.Int
	CommentsDisabled     bool
	WETHUSDTPool         common.Address
	USDTPAGEPool         common.Address
	StaticWETHUSDT       *big.Int
	StaticUSDTPAGE       *big.Int
	WETHUSDTSqrtPrice    *big.Int
	USDTPAGESqrtPrice    *big.Int
}

// Validate checks fee bounds, amounts and addresses.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return fmt.Errorf("configuration is missing")
	}
	_, err := cfg.Params()
	return err
}

// Params parses the configuration into bootstrap parameters. Empty amounts
// and addresses stay nil or zero so the engines keep their defaults.
func (cfg *Config) Params() (Params, error) {
	var (
		p   Params
		err error
	)
	if p.Owner, err = parseAddress(cfg.Owner); err != nil {
		return p, fmt.Errorf("invalid Owner: %w", err)
	}
	if p.Treasury, err = parseAddress(cfg.Treasury); err != nil {
		return p, fmt.Errorf("invalid Treasury: %w", err)
	}
	if p.InitialSupply, err = parseUintAmount(cfg.Token.InitialSupply); err != nil {
		return p, fmt.Errorf("invalid token.InitialSupply: %w", err)
	}
	if cfg.Token.RewardPerHourDivisor < 0 {
		return p, fmt.Errorf("token: RewardPerHourDivisor must not be negative")
	}
	p.RewardPerHourDivisor = cfg.Token.RewardPerHourDivisor

	for name, bps := range map[string]uint32{
		"MintFeeBps":    cfg.Content.MintFeeBps,
		"CommentFeeBps": cfg.Content.CommentFeeBps,
	} {
		if err := fees.ValidateBps(bps); err != nil {
			return p, fmt.Errorf("content.%s: %w", name, err)
		}
	}
	// Burns may be free.
	if cfg.Content.BurnFeeBps != 0 {
		if err := fees.ValidateBps(cfg.Content.BurnFeeBps); err != nil {
			return p, fmt.Errorf("content.BurnFeeBps: %w", err)
		}
	}
	p.BaseURI = cfg.Content.BaseURI
	p.MintFeeBps = cfg.Content.MintFeeBps
	p.BurnFeeBps = cfg.Content.BurnFeeBps
	p.CommentFeeBps = cfg.Content.CommentFeeBps
	if p.MintValue, err = parseUintAmount(cfg.Content.MintValue); err != nil {
		return p, fmt.Errorf("invalid content.MintValue: %w", err)
	}
	if p.FlatMintReward, err = parseUintAmount(cfg.Content.FlatMintReward); err != nil {
		return p, fmt.Errorf("invalid content.FlatMintReward: %w", err)
	}
	if p.FlatCommentReward, err = parseUintAmount(cfg.Comments.FlatReward); err != nil {
		return p, fmt.Errorf("invalid comments.FlatReward: %w", err)
	}
	p.CommentsDisabled = cfg.Comments.Disabled

	if p.WETHUSDTPool, err = parseAddress(cfg.Oracle.WETHUSDTPool); err != nil {
		return p, fmt.Errorf("invalid oracle.WETHUSDTPool: %w", err)
	}
	if p.USDTPAGEPool, err = parseAddress(cfg.Oracle.USDTPAGEPool); err != nil {
		return p, fmt.Errorf("invalid oracle.USDTPAGEPool: %w", err)
	}
	if p.StaticWETHUSDT, err = parseUintAmount(cfg.Oracle.StaticWETHUSDT); err != nil {
		return p, fmt.Errorf("invalid oracle.StaticWETHUSDT: %w", err)
	}
	if p.StaticUSDTPAGE, err = parseUintAmount(cfg.Oracle.StaticUSDTPAGE); err != nil {
		return p, fmt.Errorf("invalid oracle.StaticUSDTPAGE: %w", err)
	}
	if p.WETHUSDTSqrtPrice, err = parseUintAmount(cfg.Oracle.WETHUSDTSqrtPriceX96); err != nil {
		return p, fmt.Errorf("invalid oracle.WETHUSDTSqrtPriceX96: %w", err)
	}
	if p.USDTPAGESqrtPrice, err = parseUintAmount(cfg.Oracle.USDTPAGESqrtPriceX96); err != nil {
		return p, fmt.Errorf("invalid oracle.USDTPAGESqrtPriceX96: %w", err)
	}
	for _, sqrt := range []*big.Int{p.WETHUSDTSqrtPrice, p.USDTPAGESqrtPrice} {
		if sqrt != nil && sqrt.BitLen() > 160 {
			return p, fmt.Errorf("oracle: square-root price wider than 160 bits")
		}
	}
	if cfg.Storage.CacheMB < 0 || cfg.Storage.Handles < 0 {
		return p, fmt.Errorf("storage: cache and handles must not be negative")
	}
	return p, nil
}

func parseAddress(value string) (common.Address, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(trimmed) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", value)
	}
	return common.HexToAddress(trimmed), nil
}

func parseUintAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("%q is not a base-10 integer", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("%q must not be negative", value)
	}
	return amount, nil
}
