package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"cryptopage/config"
	"cryptopage/core"
	"cryptopage/core/events"
	"cryptopage/native/oracle"
	"cryptopage/observability/logging"
	"cryptopage/observability/otel"
	"cryptopage/storage"
)

const (
	envVar     = "PAGE_ENV"
	headersEnv = "OTEL_EXPORTER_OTLP_HEADERS"
)

var errUsage = errors.New("usage: pagectl [flags] init|status|mint|comment|stake|unstake|price")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("pagectl", flag.ContinueOnError)
	configFile := fs.String("config", "./config.toml", "Path to the configuration file (.toml or .yaml)")
	fromFlag := fs.String("from", "", "Account acting in the command (defaults to the configured owner)")
	allowMigrate := fs.Bool("allow-migrate", false, "Allow opening state written under another layout version")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	params, err := cfg.Params()
	if err != nil {
		return err
	}

	env := cfg.Log.Env
	if fromEnv := strings.TrimSpace(os.Getenv(envVar)); fromEnv != "" {
		env = fromEnv
	}
	logger := logging.SetupWithOptions("pagectl", env, logging.Options{
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	}).With(slog.String("network", cfg.NetworkName))

	ctx := context.Background()
	rawHeaders := os.Getenv(headersEnv)
	shutdown, err := otel.Init(ctx, otel.Config{
		ServiceName: "pagectl",
		Environment: env,
		Network:     cfg.NetworkName,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     otel.ParseHeaders(rawHeaders),
		Metrics:     cfg.Telemetry.Metrics,
		Traces:      cfg.Telemetry.Traces,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()
	if rawHeaders != "" {
		logger.Debug("telemetry headers configured", logging.MaskField("headers", rawHeaders))
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	opts := core.OptionsFromParams(core.Options{
		Logger:       logger,
		Emitter:      logEmitter{logger: logger},
		AllowMigrate: *allowMigrate,
		PoolSource:   poolSource(params),
	}, params)
	ledger, err := core.Open(db, opts)
	if err != nil {
		return err
	}

	from := params.Owner
	if strings.TrimSpace(*fromFlag) != "" {
		if !common.IsHexAddress(*fromFlag) {
			return fmt.Errorf("invalid -from address %q", *fromFlag)
		}
		from = common.HexToAddress(*fromFlag)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd != "init" {
		initialized, err := ledger.Initialized()
		if err != nil {
			return err
		}
		if !initialized {
			return fmt.Errorf("ledger not initialised; run pagectl init")
		}
	}

	mutated := true
	switch cmd {
	case "init":
		err = core.Bootstrap(ctx, ledger, params)
	case "mint":
		err = mint(ctx, ledger, from, rest, out)
	case "comment":
		err = comment(ctx, ledger, from, rest, out)
	case "stake":
		err = stake(ctx, ledger, from, rest, out)
	case "unstake":
		err = unstake(ctx, ledger, from, rest, out)
	case "status":
		mutated = false
		err = status(ctx, ledger, out)
	case "price":
		mutated = false
		err = price(ctx, ledger, out)
	default:
		return errUsage
	}
	if err != nil || !mutated {
		return err
	}
	root, err := ledger.Commit()
	if err != nil {
		return err
	}
	logger.Info("state committed", slog.String("root", root.Hex()), slog.Uint64("version", ledger.Version()))
	return nil
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	if cfg.Storage.InMemory {
		return storage.NewMemDB(), nil
	}
	db, err := storage.NewLevelDBWithOptions(cfg.DataDir, storage.LevelDBOptions{
		CacheMB: cfg.Storage.CacheMB,
		Handles: cfg.Storage.Handles,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// poolSource serves the configured square-root prices for the configured
// pools.
func poolSource(params config.Params) *oracle.MemoryPools {
	pools := oracle.NewMemoryPools()
	if params.WETHUSDTSqrtPrice != nil && params.WETHUSDTPool != (common.Address{}) {
		pools.Set(params.WETHUSDTPool, uint256.MustFromBig(params.WETHUSDTSqrtPrice))
	}
	if params.USDTPAGESqrtPrice != nil && params.USDTPAGEPool != (common.Address{}) {
		pools.Set(params.USDTPAGEPool, uint256.MustFromBig(params.USDTPAGESqrtPrice))
	}
	return pools
}

// logEmitter writes every delivered event as one structured log line.
type logEmitter struct {
	logger *slog.Logger
}

func (e logEmitter) Emit(evt events.Event) {
	rendered := events.Render(evt)
	if rendered == nil {
		return
	}
	keys := make([]string, 0, len(rendered.Attributes))
	for key := range rendered.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	attrs := make([]any, 0, len(keys)+1)
	attrs = append(attrs, slog.String("type", rendered.Type))
	for _, key := range keys {
		attrs = append(attrs, slog.String(key, rendered.Attributes[key]))
	}
	e.logger.Info("event", attrs...)
}

func mint(ctx context.Context, ledger *core.Ledger, from common.Address, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("mint", flag.ContinueOnError)
	collection := fs.String("collection", "", "Collection name")
	comments := fs.Bool("comments", true, "Open the item for comments")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 || !common.IsHexAddress(fs.Arg(0)) {
		return fmt.Errorf("usage: pagectl mint [-collection name] [-comments=false] <to> <uri>")
	}
	to := common.HexToAddress(fs.Arg(0))
	return ledger.Update(ctx, "mint", func(tx *core.Tx) error {
		id, err := tx.Content.SafeMint(from, to, fs.Arg(1), *collection, *comments)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "minted item %d to %s\n", id, to.Hex())
		return nil
	})
}

func comment(ctx context.Context, ledger *core.Ledger, from common.Address, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("comment", flag.ContinueOnError)
	dislike := fs.Bool("dislike", false, "Record a dislike instead of a like")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: pagectl comment [-dislike] <item> <text>")
	}
	itemID, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", fs.Arg(0), err)
	}
	return ledger.Update(ctx, "comment", func(tx *core.Tx) error {
		created, err := tx.Comments.CreateComment(from, tx.Content.Address(), itemID, from, []byte(fs.Arg(1)), !*dislike)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "comment %d on item %d\n", created.ID, itemID)
		return nil
	})
}

func stake(ctx context.Context, ledger *core.Ledger, from common.Address, args []string, out io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: pagectl stake <amount>")
	}
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	return ledger.Update(ctx, "stake", func(tx *core.Tx) error {
		index, err := tx.Token.Stake(from, amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "stake %d opened for %s\n", index, amount)
		return nil
	})
}

func unstake(ctx context.Context, ledger *core.Ledger, from common.Address, args []string, out io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: pagectl unstake <index> <amount>")
	}
	index, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid stake index %q: %w", args[0], err)
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	return ledger.Update(ctx, "unstake", func(tx *core.Tx) error {
		reward, err := tx.Token.WithdrawStake(from, amount, index)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "withdrew %s with reward %s\n", amount, reward)
		return nil
	})
}

func status(ctx context.Context, ledger *core.Ledger, out io.Writer) error {
	return ledger.View(ctx, func(tx *core.Tx) error {
		supply, err := tx.Token.TotalSupply()
		if err != nil {
			return err
		}
		bank, err := tx.Bank.Balance()
		if err != nil {
			return err
		}
		minted, err := tx.Content.TotalMinted()
		if err != nil {
			return err
		}
		stats, err := tx.Comments.TotalStats()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "version:   %d\n", ledger.Version())
		fmt.Fprintf(out, "supply:    %s\n", supply)
		fmt.Fprintf(out, "bank:      %s\n", bank)
		fmt.Fprintf(out, "items:     %d\n", minted)
		fmt.Fprintf(out, "comments:  %d (%d likes, %d dislikes)\n", stats.Total, stats.Likes, stats.Dislikes)
		return nil
	})
}

func price(ctx context.Context, ledger *core.Ledger, out io.Writer) error {
	return ledger.View(ctx, func(tx *core.Tx) error {
		fmt.Fprintf(out, "WETH/USDT: %s\n", tx.Token.GetWETHUSDTPrice())
		fmt.Fprintf(out, "USDT/PAGE: %s\n", tx.Token.GetUSDTPAGEPrice())
		fmt.Fprintf(out, "PAGE/WETH: %s\n", tx.Token.GetPrice())
		return nil
	})
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("invalid amount %q", raw)
	}
	return amount, nil
}
