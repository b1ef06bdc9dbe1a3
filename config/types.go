package config

// Token captures the reward token parameters applied at bootstrap.
type Token struct {
	InitialSupply        string `toml:"InitialSupply" yaml:"initial_supply"`
	RewardPerHourDivisor int64  `toml:"RewardPerHourDivisor" yaml:"reward_per_hour_divisor"`
}

// Content captures the fee policy and mint valuation of the content registry.
type Content struct {
	BaseURI        string `toml:"BaseURI" yaml:"base_uri"`
	MintFeeBps     uint32 `toml:"MintFeeBps" yaml:"mint_fee_bps"`
	BurnFeeBps     uint32 `toml:"BurnFeeBps" yaml:"burn_fee_bps"`
	CommentFeeBps  uint32 `toml:"CommentFeeBps" yaml:"comment_fee_bps"`
	MintValue      string `toml:"MintValue" yaml:"mint_value"`
	FlatMintReward string `toml:"FlatMintReward" yaml:"flat_mint_reward"`
}

// Comments captures the comment registry parameters.
type Comments struct {
	FlatReward string `toml:"FlatReward" yaml:"flat_reward"`
	Disabled   bool   `toml:"Disabled" yaml:"disabled"`
}

// Oracle lists the price pools and static fallback rates.
type Oracle struct {
	WETHUSDTPool   string `toml:"WETHUSDTPool" yaml:"weth_usdt_pool"`
	USDTPAGEPool   string `toml:"USDTPAGEPool" yaml:"usdt_page_pool"`
	StaticWETHUSDT string `toml:"StaticWETHUSDT" yaml:"static_weth_usdt"`
	StaticUSDTPAGE string `toml:"StaticUSDTPAGE" yaml:"static_usdt_page"`
	// Observed Q64.96 square-root prices served for the pools above.
	WETHUSDTSqrtPriceX96 string `toml:"WETHUSDTSqrtPriceX96" yaml:"weth_usdt_sqrt_price_x96"`
	USDTPAGESqrtPriceX96 string `toml:"USDTPAGESqrtPriceX96" yaml:"usdt_page_sqrt_price_x96"`
}

// Storage tunes the persistent database.
type Storage struct {
	InMemory bool `toml:"InMemory" yaml:"in_memory"`
	CacheMB  int  `toml:"CacheMB" yaml:"cache_mb"`
	Handles  int  `toml:"Handles" yaml:"handles"`
}

// Log configures structured logging.
type Log struct {
	Env        string `toml:"Env" yaml:"env"`
	File       string `toml:"File" yaml:"file"`
	MaxSizeMB  int    `toml:"MaxSizeMB" yaml:"max_size_mb"`
	MaxBackups int    `toml:"MaxBackups" yaml:"max_backups"`
}

// Telemetry configures the OTLP exporters.
type Telemetry struct {
	Endpoint string `toml:"Endpoint" yaml:"endpoint"`
	Insecure bool   `toml:"Insecure" yaml:"insecure"`
	Metrics  bool   `toml:"Metrics" yaml:"metrics"`
	Traces   bool   `toml:"Traces" yaml:"traces"`
}
