package starknet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type recordingExecutor struct {
	mu      sync.Mutex
	calls   [][]domain.ContractCall
	results []error
}

func (e *recordingExecutor) ExecuteCalls(_ context.Context, _ session.User, calls []domain.ContractCall) (session.Receipt, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	attempt := len(e.calls)
	e.calls = append(e.calls, calls)
	if attempt < len(e.results) && e.results[attempt] != nil {
		return session.Receipt{}, e.results[attempt]
	}
	return session.Receipt{TxHash: "0xfeed", AccessToken: "fresh"}, nil
}

type memoryJournal struct {
	entries []JournalEntry
}

func (j *memoryJournal) Record(_ context.Context, entry JournalEntry) error {
	j.entries = append(j.entries, entry)
	return nil
}

var writer1 = session.User{AccessToken: "tok", WalletAddress: "0xabc", Network: session.NetworkSepolia}

func newTestWriter(exec Executor, journal Journal) *Writer {
	return NewWriter(WriterConfig{ContractAddress: testContract, Executor: exec, Journal: journal})
}

func TestUpdatePriceRetriesExactlyOnce(t *testing.T) {
	rejected := errors.New("execution rejected")
	exec := &recordingExecutor{results: []error{rejected, rejected, rejected}}
	journal := &memoryJournal{}

	_, err := newTestWriter(exec, journal).UpdatePrice(context.Background(), writer1, "4", 1550000)
	require.ErrorIs(t, err, rejected)

	require.Len(t, exec.calls, 2)
	assert.Equal(t, []string{"4", "1550000", "0"}, exec.calls[0][0].Calldata)
	assert.Equal(t, []string{"4", "1550000"}, exec.calls[1][0].Calldata)
	assert.Equal(t, EntryUpdatePrice, exec.calls[1][0].Entrypoint)
	assert.Equal(t, testContract, exec.calls[1][0].ContractAddress)

	require.Len(t, journal.entries, 2)
	assert.Equal(t, StrategySplit, journal.entries[0].Strategy)
	assert.Equal(t, StrategyPlain, journal.entries[1].Strategy)
	assert.Equal(t, 2, journal.entries[1].Attempt)
	assert.NotEmpty(t, journal.entries[1].Error)
}

func TestUpdatePriceFallbackSucceeds(t *testing.T) {
	exec := &recordingExecutor{results: []error{errors.New("bad u256")}}

	receipt, err := newTestWriter(exec, nil).UpdatePrice(context.Background(), writer1, "4", 1550000)
	require.NoError(t, err)
	assert.Equal(t, "0xfeed", receipt.TxHash)
	assert.Len(t, exec.calls, 2)
}

func TestUpdatePriceStopsAtFirstSuccess(t *testing.T) {
	exec := &recordingExecutor{}

	receipt, err := newTestWriter(exec, nil).UpdatePrice(context.Background(), writer1, "4", 1550000)
	require.NoError(t, err)
	assert.Equal(t, "fresh", receipt.AccessToken)
	assert.Len(t, exec.calls, 1)
}

func TestOtherWritesAreNotRetried(t *testing.T) {
	rejected := errors.New("execution rejected")
	ctx := context.Background()

	exec := &recordingExecutor{results: []error{rejected, rejected}}
	_, err := newTestWriter(exec, nil).GiveThanks(ctx, writer1, "2")
	require.ErrorIs(t, err, rejected)
	assert.Len(t, exec.calls, 1)

	exec = &recordingExecutor{results: []error{rejected, rejected}}
	_, err = newTestWriter(exec, nil).SubmitReport(ctx, writer1, "2", "Tienda cerrada")
	require.ErrorIs(t, err, rejected)
	assert.Len(t, exec.calls, 1)
}

func TestWriteCalldataLayouts(t *testing.T) {
	ctx := context.Background()
	exec := &recordingExecutor{}
	w := newTestWriter(exec, nil)

	_, err := w.GiveThanks(ctx, writer1, "2")
	require.NoError(t, err)
	_, err = w.SubmitReport(ctx, writer1, "2", "abc")
	require.NoError(t, err)
	_, err = w.AddStore(ctx, writer1, "a", "", "", "")
	require.NoError(t, err)
	_, err = w.TouchLastConnected(ctx, writer1)
	require.NoError(t, err)

	require.Len(t, exec.calls, 4)
	assert.Equal(t, []string{"2"}, exec.calls[0][0].Calldata)
	assert.Equal(t, []string{"2", "0", "6382179", "3"}, exec.calls[1][0].Calldata)
	assert.Equal(t, []string{"0", "97", "1", "0", "0", "0", "0", "0", "0", "0", "0", "0"}, exec.calls[2][0].Calldata)
	assert.Equal(t, EntryUpdateLastConnected, exec.calls[3][0].Entrypoint)
	assert.Empty(t, exec.calls[3][0].Calldata)
}

func TestWriteRejectsBadInput(t *testing.T) {
	exec := &recordingExecutor{}
	w := newTestWriter(exec, nil)

	_, err := w.GiveThanks(context.Background(), writer1, "tienda")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = w.GiveThanks(context.Background(), session.User{WalletAddress: "0xabc"}, "1")
	assert.ErrorIs(t, err, session.ErrIncomplete)

	_, err = w.UpdatePrice(context.Background(), writer1, "1", -5)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	assert.Empty(t, exec.calls)
}
