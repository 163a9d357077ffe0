package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	admindomain "github.com/fernetbarato/fernet-barato/api/internal/admin/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/config"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/cavos"
	"github.com/fernetbarato/fernet-barato/api/internal/infrastructure/starknet"
	"github.com/fernetbarato/fernet-barato/api/internal/logging"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type seedOptions struct {
	file     string
	envFile  string
	network  string
	email    string
	password string
	dryRun   bool
	timeout  time.Duration
}

type seedFile struct {
	Stores []seedStore `yaml:"stores"`
	Prices []seedPrice `yaml:"prices"`
}

type seedStore struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address"`
	Hours   string `yaml:"hours"`
	URI     string `yaml:"uri"`
}

type seedPrice struct {
	StoreID string `yaml:"store_id"`
	Price   string `yaml:"price"`
}

type seedPlan struct {
	stores []admindomain.StoreDraft
	prices []pricedStore
}

type pricedStore struct {
	storeID string
	cents   admindomain.PriceCents
}

func main() {
	opts := parseFlags()

	if opts.envFile != "" {
		if err := godotenv.Load(opts.envFile); err != nil {
			log.Fatalf("load %s: %v", opts.envFile, err)
		}
	}
	cfg, err := config.LoadForTool()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, "console")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	raw, err := os.ReadFile(opts.file)
	if err != nil {
		logger.Fatal("read seed file", zap.String("file", opts.file), zap.Error(err))
	}
	plan, err := parseSeedFile(raw)
	if err != nil {
		logger.Fatal("invalid seed file", zap.String("file", opts.file), zap.Error(err))
	}

	network := opts.network
	if network == "" {
		network = cfg.Starknet.DefaultNetwork
	}
	if !session.ValidNetwork(network) {
		logger.Fatal("unsupported network", zap.String("network", network))
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.timeout)
	defer cancel()

	var (
		executor starknet.Executor
		user     session.User
	)
	if opts.dryRun {
		executor = &printingExecutor{out: os.Stdout}
		user = session.User{AccessToken: "dry-run", WalletAddress: "0x0", Network: network}
	} else {
		client := cavos.NewClient(cavos.Config{
			BaseURL:   cfg.Cavos.BaseURL,
			AppID:     cfg.Cavos.AppID,
			OrgSecret: cfg.Cavos.OrgSecret,
			Timeout:   cfg.Cavos.Timeout,
		})
		if opts.email == "" || opts.password == "" {
			logger.Fatal("email and password are required unless -dry-run is set")
		}
		user, err = client.SignIn(ctx, network, opts.email, opts.password)
		if err != nil {
			logger.Fatal("sign in", zap.Error(err))
		}
		logger.Info("signed in", zap.String("wallet", user.WalletAddress), zap.String("network", network))
		executor = client
	}

	writer := starknet.NewWriter(starknet.WriterConfig{
		ContractAddress: cfg.Starknet.ContractAddress,
		Executor:        executor,
		Logger:          logger.Named("writer"),
	})
	if err := apply(ctx, writer, user, plan, logger); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}

func parseFlags() seedOptions {
	var opts seedOptions
	flag.StringVar(&opts.file, "file", "configs/stores.example.yaml", "YAML file with stores and prices")
	flag.StringVar(&opts.envFile, "env", "", "extra env file to load before configuration")
	flag.StringVar(&opts.network, "network", "", "sepolia or mainnet (defaults to STARKNET_NETWORK)")
	flag.StringVar(&opts.email, "email", os.Getenv("SEED_EMAIL"), "admin account email")
	flag.StringVar(&opts.password, "password", os.Getenv("SEED_PASSWORD"), "admin account password")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "print compiled calldata instead of submitting")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "overall deadline")
	flag.Parse()
	return opts
}

// parseSeedFile validates every entry before anything is submitted.
func parseSeedFile(raw []byte) (seedPlan, error) {
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return seedPlan{}, fmt.Errorf("parse seed file: %w", err)
	}
	if len(doc.Stores) == 0 && len(doc.Prices) == 0 {
		return seedPlan{}, errors.New("seed file has no stores or prices")
	}

	var plan seedPlan
	for i, s := range doc.Stores {
		draft, err := admindomain.NewStoreDraft(s.Name, s.Address, s.Hours, s.URI)
		if err != nil {
			return seedPlan{}, fmt.Errorf("stores[%d]: %w", i, err)
		}
		plan.stores = append(plan.stores, draft)
	}
	for i, p := range doc.Prices {
		id, err := domain.ParseStoreID(p.StoreID)
		if err != nil {
			return seedPlan{}, fmt.Errorf("prices[%d]: %w", i, err)
		}
		cents, err := admindomain.NewPriceCents(p.Price)
		if err != nil {
			return seedPlan{}, fmt.Errorf("prices[%d]: %w", i, err)
		}
		plan.prices = append(plan.prices, pricedStore{storeID: id, cents: cents})
	}
	return plan, nil
}

type storeAdder interface {
	AddStore(ctx context.Context, user session.User, name, address, hours, uri string) (session.Receipt, error)
	UpdatePrice(ctx context.Context, user session.User, storeID string, cents int64) (session.Receipt, error)
}

// apply submits stores first, then prices. A refreshed access token carries
// over to the next write.
func apply(ctx context.Context, writer storeAdder, user session.User, plan seedPlan, logger *zap.Logger) error {
	for _, s := range plan.stores {
		receipt, err := writer.AddStore(ctx, user, s.Name.String(), s.Address.String(), s.Hours.String(), s.URI.String())
		if err != nil {
			return fmt.Errorf("add store %q: %w", s.Name.String(), err)
		}
		logger.Info("store added", zap.String("name", s.Name.String()), zap.String("tx", receipt.TxHash))
		user = user.WithAccessToken(receipt.AccessToken)
	}
	for _, p := range plan.prices {
		receipt, err := writer.UpdatePrice(ctx, user, p.storeID, p.cents.Int64())
		if err != nil {
			return fmt.Errorf("update price of store %s: %w", p.storeID, err)
		}
		logger.Info("price updated", zap.String("store", p.storeID), zap.Int64("cents", p.cents.Int64()), zap.String("tx", receipt.TxHash))
		user = user.WithAccessToken(receipt.AccessToken)
	}
	return nil
}

// printingExecutor writes each call instead of submitting it.
type printingExecutor struct {
	out io.Writer
	n   int
}

func (p *printingExecutor) ExecuteCalls(_ context.Context, _ session.User, calls []domain.ContractCall) (session.Receipt, error) {
	for _, call := range calls {
		p.n++
		fmt.Fprintf(p.out, "%s %s [%s]\n", call.ContractAddress, call.Entrypoint, strings.Join(call.Calldata, ", "))
	}
	return session.Receipt{TxHash: fmt.Sprintf("dry-run-%d", p.n)}, nil
}
