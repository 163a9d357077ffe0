package starknet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fernetbarato/fernet-barato/api/internal/codec"
	"github.com/fernetbarato/fernet-barato/api/internal/metrics"
	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

// State-changing entrypoints of the price contract.
const (
	EntryGiveThanks          = "give_thanks"
	EntrySubmitReport        = "submit_report"
	EntryUpdatePrice         = "update_price"
	EntryAddStore            = "add_store"
	EntryUpdateLastConnected = "update_last_connected"
)

// Encoding strategy names recorded in metrics and the journal.
const (
	StrategyPlain = "plain"
	StrategySplit = "split_u256"
)

// ErrInvalidArgument wraps calldata that cannot be encoded.
var ErrInvalidArgument = errors.New("starknet: invalid argument")

// Executor submits calls on behalf of a signed-in user.
type Executor interface {
	ExecuteCalls(ctx context.Context, user session.User, calls []domain.ContractCall) (session.Receipt, error)
}

// JournalEntry records one write attempt.
type JournalEntry struct {
	Entrypoint  string
	Strategy    string
	Attempt     int
	Network     string
	Wallet      string
	Calldata    []string
	TxHash      string
	Error       string
	SubmittedAt time.Time
}

// Journal stores write attempts for auditing.
type Journal interface {
	Record(ctx context.Context, entry JournalEntry) error
}

// Encoding is one way of laying out the calldata of a write. Encode is pure.
type Encoding struct {
	Name   string
	Encode func() ([]string, error)
}

// WriterConfig wires a Writer.
type WriterConfig struct {
	ContractAddress string
	Executor        Executor
	Journal         Journal
	Logger          *zap.Logger
	Now             func() time.Time
}

// Writer submits price contract writes through an Executor.
type Writer struct {
	contract string
	exec     Executor
	journal  Journal
	logger   *zap.Logger
	now      func() time.Time
}

// NewWriter creates a Writer.
func NewWriter(cfg WriterConfig) *Writer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Writer{
		contract: cfg.ContractAddress,
		exec:     cfg.Executor,
		journal:  cfg.Journal,
		logger:   logger,
		now:      now,
	}
}

// GiveThanks thanks a store.
func (w *Writer) GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error) {
	return w.submit(ctx, user, EntryGiveThanks, []Encoding{
		{Name: StrategyPlain, Encode: func() ([]string, error) { return storeIDCalldata(storeID) }},
	})
}

// SubmitReport files a report against a store.
func (w *Writer) SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error) {
	return w.submit(ctx, user, EntrySubmitReport, []Encoding{
		{Name: StrategyPlain, Encode: func() ([]string, error) {
			id, err := storeIDCalldata(storeID)
			if err != nil {
				return nil, err
			}
			return append(id, codec.EncodeByteArray(description)...), nil
		}},
	})
}

// UpdatePrice records a new price. The amount goes out as a split u256 and,
// if the service rejects that, once more as a single felt.
func (w *Writer) UpdatePrice(ctx context.Context, user session.User, storeID string, cents int64) (session.Receipt, error) {
	if cents < 0 {
		return session.Receipt{}, fmt.Errorf("%w: negative price %d", ErrInvalidArgument, cents)
	}
	amount := codec.NumberOf(uint64(cents))

	return w.submit(ctx, user, EntryUpdatePrice, []Encoding{
		{Name: StrategySplit, Encode: func() ([]string, error) {
			id, err := storeIDCalldata(storeID)
			if err != nil {
				return nil, err
			}
			wide, err := codec.EncodeU256(amount.Int)
			if err != nil {
				return nil, err
			}
			return append(id, wide...), nil
		}},
		{Name: StrategyPlain, Encode: func() ([]string, error) {
			id, err := storeIDCalldata(storeID)
			if err != nil {
				return nil, err
			}
			felt, err := codec.Flatten(amount)
			if err != nil {
				return nil, err
			}
			return append(id, felt...), nil
		}},
	})
}

// AddStore registers a store.
func (w *Writer) AddStore(ctx context.Context, user session.User, name, address, hours, uri string) (session.Receipt, error) {
	return w.submit(ctx, user, EntryAddStore, []Encoding{
		{Name: StrategyPlain, Encode: func() ([]string, error) {
			var calldata []string
			for _, field := range []string{name, address, hours, uri} {
				calldata = append(calldata, codec.EncodeByteArray(field)...)
			}
			return calldata, nil
		}},
	})
}

// TouchLastConnected records that the user signed in.
func (w *Writer) TouchLastConnected(ctx context.Context, user session.User) (session.Receipt, error) {
	return w.submit(ctx, user, EntryUpdateLastConnected, []Encoding{
		{Name: StrategyPlain, Encode: func() ([]string, error) { return []string{}, nil }},
	})
}

// submit tries each encoding in order and stops at the first accepted one.
func (w *Writer) submit(ctx context.Context, user session.User, entrypoint string, encodings []Encoding) (session.Receipt, error) {
	if !user.Complete() {
		return session.Receipt{}, session.ErrIncomplete
	}

	var lastErr error
	for i, enc := range encodings {
		if i > 0 {
			if err := ctx.Err(); err != nil {
				break
			}
			w.logger.Info("retrying write with alternate encoding",
				zap.String("entrypoint", entrypoint),
				zap.String("strategy", enc.Name),
				zap.NamedError("previous", lastErr),
			)
		}

		calldata, err := enc.Encode()
		if err != nil {
			lastErr = fmt.Errorf("%w: %s as %s: %v", ErrInvalidArgument, entrypoint, enc.Name, err)
			metrics.ContractWrites.WithLabelValues(entrypoint, enc.Name, metrics.OutcomeError).Inc()
			continue
		}

		receipt, err := w.exec.ExecuteCalls(ctx, user, []domain.ContractCall{{
			ContractAddress: w.contract,
			Entrypoint:      entrypoint,
			Calldata:        calldata,
		}})
		w.record(ctx, user, entrypoint, enc.Name, i+1, calldata, receipt, err)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", entrypoint, err)
			metrics.ContractWrites.WithLabelValues(entrypoint, enc.Name, metrics.OutcomeError).Inc()
			continue
		}

		metrics.ContractWrites.WithLabelValues(entrypoint, enc.Name, metrics.OutcomeOK).Inc()
		return receipt, nil
	}
	return session.Receipt{}, lastErr
}

func (w *Writer) record(ctx context.Context, user session.User, entrypoint, strategy string, attempt int, calldata []string, receipt session.Receipt, callErr error) {
	if w.journal == nil {
		return
	}
	entry := JournalEntry{
		Entrypoint:  entrypoint,
		Strategy:    strategy,
		Attempt:     attempt,
		Network:     user.Network,
		Wallet:      user.WalletAddress,
		Calldata:    calldata,
		TxHash:      receipt.TxHash,
		SubmittedAt: w.now().UTC(),
	}
	if callErr != nil {
		entry.Error = callErr.Error()
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := w.journal.Record(jctx, entry); err != nil {
		w.logger.Warn("failed to journal write", zap.String("entrypoint", entrypoint), zap.Error(err))
	}
}

// storeIDCalldata encodes a decimal or hex store id as one felt.
func storeIDCalldata(storeID string) ([]string, error) {
	n, err := codec.ParseFelt(strings.TrimSpace(storeID))
	if err != nil {
		return nil, fmt.Errorf("store id %q: %w", storeID, err)
	}
	return []string{codec.FormatDec(n)}, nil
}
