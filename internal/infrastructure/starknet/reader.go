package starknet

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/metrics"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
)

// Read-only entrypoints of the price contract.
const (
	EntryGetAllStores        = "get_all_stores"
	EntryGetAllCurrentPrices = "get_all_current_prices"
	EntryGetStore            = "get_store"
	EntryGetPriceHistory     = "get_price_history"
	EntryGetThanksCount      = "get_thanks_count"
	EntryHasUserThanked      = "has_user_thanked"
	EntryGetReports          = "get_reports"
	EntryIsAdmin             = "is_admin"
)

// ErrUnknownNetwork is returned for a network without a configured node.
var ErrUnknownNetwork = errors.New("starknet: no node configured for network")

// Caller runs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, contract, entrypoint string, calldata []string) ([]string, error)
}

// ReaderConfig wires a Reader.
type ReaderConfig struct {
	ContractAddress string
	// Callers maps a network name to the node serving it.
	Callers     map[string]Caller
	FanOutLimit int
	Logger      *zap.Logger
}

// Reader decodes price contract views into domain values.
type Reader struct {
	contract string
	callers  map[string]Caller
	fanOut   int
	logger   *zap.Logger
}

// NewReader creates a Reader.
func NewReader(cfg ReaderConfig) *Reader {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fanOut := cfg.FanOutLimit
	if fanOut <= 0 {
		fanOut = 8
	}
	return &Reader{
		contract: cfg.ContractAddress,
		callers:  cfg.Callers,
		fanOut:   fanOut,
		logger:   logger,
	}
}

func (r *Reader) call(ctx context.Context, network, entrypoint string, calldata ...string) (*cursor, error) {
	caller, ok := r.callers[network]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, network)
	}

	start := time.Now()
	felts, err := caller.CallContract(ctx, r.contract, entrypoint, calldata)
	metrics.ContractCallDuration.WithLabelValues(network, entrypoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ContractCalls.WithLabelValues(network, entrypoint, metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("%s: %w", entrypoint, err)
	}
	metrics.ContractCalls.WithLabelValues(network, entrypoint, metrics.OutcomeOK).Inc()
	return newCursor(felts), nil
}

// ListStores returns every registered store.
func (r *Reader) ListStores(ctx context.Context, network string) ([]domain.Store, error) {
	c, err := r.call(ctx, network, EntryGetAllStores)
	if err != nil {
		return nil, err
	}

	count, err := c.length(1)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryGetAllStores, err)
	}
	stores := make([]domain.Store, 0, count)
	for i := 0; i < count; i++ {
		raw, err := readStore(c)
		if err != nil {
			return nil, fmt.Errorf("%s: store %d: %w", EntryGetAllStores, i, err)
		}
		stores = append(stores, r.toStore(EntryGetAllStores, raw))
	}
	return stores, nil
}

// ListCurrentPrices returns the latest price per store. Entries that do not
// decode are logged and dropped without affecting the others.
func (r *Reader) ListCurrentPrices(ctx context.Context, network string) ([]domain.StorePrice, error) {
	c, err := r.call(ctx, network, EntryGetAllCurrentPrices)
	if err != nil {
		return nil, err
	}

	count, err := c.length(priceEntryFelts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryGetAllCurrentPrices, err)
	}
	prices := make([]domain.StorePrice, 0, count)
	for i := 0; i < count; i++ {
		id, err := c.felt()
		if err != nil {
			return nil, err
		}
		raw, err := readPrice(c)
		if err != nil {
			return nil, err
		}

		entry, err := strictPriceEntry(id, raw)
		if err != nil {
			r.logger.Warn("skipping malformed price entry",
				zap.String("network", network),
				zap.Int("index", i),
				zap.Error(err),
			)
			metrics.SkippedEntries.WithLabelValues(EntryGetAllCurrentPrices).Inc()
			continue
		}
		prices = append(prices, entry)
	}
	return prices, nil
}

func strictPriceEntry(id codec.Value, raw rawPrice) (domain.StorePrice, error) {
	storeID, err := codec.ParseUint64(id)
	if err != nil {
		return domain.StorePrice{}, fmt.Errorf("store id: %w", err)
	}
	if codec.ShapeOf(raw.Amount) != codec.ShapeSplitWide {
		return domain.StorePrice{}, fmt.Errorf("price: %w: %s", codec.ErrUnsupportedShape, codec.ShapeOf(raw.Amount))
	}
	amount, err := codec.ParseWide(raw.Amount)
	if err != nil {
		return domain.StorePrice{}, fmt.Errorf("price: %w", err)
	}
	ts, err := codec.ParseInt64(raw.Timestamp)
	if err != nil {
		return domain.StorePrice{}, fmt.Errorf("timestamp: %w", err)
	}
	return domain.StorePrice{
		StoreID: strconv.FormatUint(storeID, 10),
		Price:   domain.Price{Amount: amount.String(), Timestamp: ts},
	}, nil
}

// GetStore returns one store.
func (r *Reader) GetStore(ctx context.Context, network, storeID string) (domain.Store, error) {
	c, err := r.call(ctx, network, EntryGetStore, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	raw, err := readStore(c)
	if err != nil {
		return domain.Store{}, fmt.Errorf("%s: %w", EntryGetStore, err)
	}
	return r.toStore(EntryGetStore, raw), nil
}

// GetPriceHistory returns the recorded prices of a store, oldest first.
func (r *Reader) GetPriceHistory(ctx context.Context, network, storeID string) ([]domain.Price, error) {
	c, err := r.call(ctx, network, EntryGetPriceHistory, storeID)
	if err != nil {
		return nil, err
	}

	count, err := c.length(3)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryGetPriceHistory, err)
	}
	history := make([]domain.Price, 0, count)
	for i := 0; i < count; i++ {
		raw, err := readPrice(c)
		if err != nil {
			return nil, fmt.Errorf("%s: price %d: %w", EntryGetPriceHistory, i, err)
		}
		history = append(history, r.toPrice(EntryGetPriceHistory, raw))
	}
	return history, nil
}

// GetThanksCount returns how many users thanked a store.
func (r *Reader) GetThanksCount(ctx context.Context, network, storeID string) (uint64, error) {
	c, err := r.call(ctx, network, EntryGetThanksCount, storeID)
	if err != nil {
		return 0, err
	}
	v, err := c.felt()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", EntryGetThanksCount, err)
	}
	return r.uint64Field(EntryGetThanksCount, "count", v), nil
}

// HasUserThanked reports whether wallet already thanked a store.
func (r *Reader) HasUserThanked(ctx context.Context, network, storeID, wallet string) (bool, error) {
	c, err := r.call(ctx, network, EntryHasUserThanked, storeID, wallet)
	if err != nil {
		return false, err
	}
	v, err := c.felt()
	if err != nil {
		return false, fmt.Errorf("%s: %w", EntryHasUserThanked, err)
	}
	return r.boolField(EntryHasUserThanked, v), nil
}

// GetReports returns the reports filed against a store.
func (r *Reader) GetReports(ctx context.Context, network, storeID string) ([]domain.Report, error) {
	c, err := r.call(ctx, network, EntryGetReports, storeID)
	if err != nil {
		return nil, err
	}

	count, err := c.length(6)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EntryGetReports, err)
	}
	reports := make([]domain.Report, 0, count)
	for i := 0; i < count; i++ {
		raw, err := readReport(c)
		if err != nil {
			return nil, fmt.Errorf("%s: report %d: %w", EntryGetReports, i, err)
		}
		reports = append(reports, domain.Report{
			StoreID:     r.idField(EntryGetReports, raw.StoreID),
			Description: r.stringField(EntryGetReports, "description", raw.Description),
			SubmittedAt: r.int64Field(EntryGetReports, "submitted_at", raw.SubmittedAt),
			SubmittedBy: r.addressField(EntryGetReports, raw.SubmittedBy),
		})
	}
	return reports, nil
}

// IsAdmin reports whether wallet may manage stores. Failures read as false.
func (r *Reader) IsAdmin(ctx context.Context, network, wallet string) bool {
	c, err := r.call(ctx, network, EntryIsAdmin, wallet)
	if err != nil {
		r.logger.Warn("admin check failed", zap.String("network", network), zap.Error(err))
		return false
	}
	v, err := c.felt()
	if err != nil {
		r.logger.Warn("admin check returned no value", zap.String("network", network), zap.Error(err))
		return false
	}
	return r.boolField(EntryIsAdmin, v)
}

// GetStoreWithPrice joins a store with its thanks count and reports.
func (r *Reader) GetStoreWithPrice(ctx context.Context, network, storeID string) (domain.StoreDetails, error) {
	var details domain.StoreDetails

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		store, err := r.GetStore(gctx, network, storeID)
		details.Store = store
		return err
	})
	g.Go(func() error {
		count, err := r.GetThanksCount(gctx, network, storeID)
		details.ThanksCount = count
		return err
	})
	g.Go(func() error {
		reports, err := r.GetReports(gctx, network, storeID)
		details.Reports = reports
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.StoreDetails{}, err
	}
	return details, nil
}

// ListStoresWithPrices lists every store joined with its feedback.
func (r *Reader) ListStoresWithPrices(ctx context.Context, network string) ([]domain.StoreDetails, error) {
	stores, err := r.ListStores(ctx, network)
	if err != nil {
		return nil, err
	}

	out := make([]domain.StoreDetails, len(stores))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanOut)
	for i, store := range stores {
		i, store := i, store
		g.Go(func() error {
			details, err := r.GetStoreWithPrice(gctx, network, store.ID)
			if err != nil {
				return fmt.Errorf("store %s: %w", store.ID, err)
			}
			out[i] = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Reader) toStore(entrypoint string, raw rawStore) domain.Store {
	return domain.Store{
		ID:           r.idField(entrypoint, raw.ID),
		Name:         r.stringField(entrypoint, "name", raw.Name),
		Address:      r.stringField(entrypoint, "address", raw.Address),
		Hours:        r.stringField(entrypoint, "hours", raw.Hours),
		URI:          r.stringField(entrypoint, "uri", raw.URI),
		CurrentPrice: r.toPrice(entrypoint, raw.Price),
	}
}

func (r *Reader) toPrice(entrypoint string, raw rawPrice) domain.Price {
	amount, err := codec.ParseWide(raw.Amount)
	if err != nil {
		r.fallback(entrypoint, "price", raw.Amount, err)
		amount = codec.DecodeWide(nil)
	}
	return domain.Price{
		Amount:    amount.String(),
		Timestamp: r.int64Field(entrypoint, "timestamp", raw.Timestamp),
	}
}

func (r *Reader) idField(entrypoint string, v codec.Value) string {
	return strconv.FormatUint(r.uint64Field(entrypoint, "id", v), 10)
}

func (r *Reader) uint64Field(entrypoint, field string, v codec.Value) uint64 {
	n, err := codec.ParseUint64(v)
	if err != nil {
		r.fallback(entrypoint, field, v, err)
		return 0
	}
	return n
}

func (r *Reader) int64Field(entrypoint, field string, v codec.Value) int64 {
	n, err := codec.ParseInt64(v)
	if err != nil {
		r.fallback(entrypoint, field, v, err)
		return 0
	}
	return n
}

func (r *Reader) stringField(entrypoint, field string, v codec.Value) string {
	if codec.ShapeOf(v) == codec.ShapeUnknown {
		r.fallback(entrypoint, field, v, codec.ErrUnsupportedShape)
	}
	return codec.DecodeString(v)
}

func (r *Reader) addressField(entrypoint string, v codec.Value) string {
	n, err := codec.ParseWide(v)
	if err != nil {
		r.fallback(entrypoint, "submitted_by", v, err)
		return codec.DecodeString(v)
	}
	return codec.FormatHex(n)
}

func (r *Reader) boolField(entrypoint string, v codec.Value) bool {
	switch codec.ShapeOf(v) {
	case codec.ShapeNumber, codec.ShapeBool:
	default:
		r.fallback(entrypoint, "value", v, codec.ErrUnsupportedShape)
	}
	return codec.DecodeBool(v)
}

func (r *Reader) fallback(entrypoint, field string, v codec.Value, err error) {
	r.logger.Warn("contract value decoded to default",
		zap.String("entrypoint", entrypoint),
		zap.String("field", field),
		zap.Stringer("shape", codec.ShapeOf(v)),
		zap.Error(err),
	)
	metrics.DecodeFallbacks.WithLabelValues(entrypoint, field).Inc()
}
