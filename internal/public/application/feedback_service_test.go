package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

var signedInUser = session.User{AccessToken: "tok", WalletAddress: "0xabc", Network: session.NetworkSepolia}

func TestGiveThanks(t *testing.T) {
	writer := &mockWriter{}
	writer.On("GiveThanks", mock.Anything, signedInUser, "3").Return(session.Receipt{TxHash: "0x1"}, nil)

	receipt, err := NewFeedbackService(writer).GiveThanks(context.Background(), signedInUser, "3")
	require.NoError(t, err)
	assert.Equal(t, "0x1", receipt.TxHash)

	_, err = NewFeedbackService(writer).GiveThanks(context.Background(), signedInUser, "tres")
	assert.ErrorIs(t, err, domain.ErrInvalidStoreID)
	writer.AssertNumberOfCalls(t, "GiveThanks", 1)
}

func TestSubmitReportValidatesDescription(t *testing.T) {
	writer := &mockWriter{}
	writer.On("SubmitReport", mock.Anything, signedInUser, "3", "Tienda cerrada").Return(session.Receipt{TxHash: "0x2"}, nil)
	svc := NewFeedbackService(writer)

	_, err := svc.SubmitReport(context.Background(), signedInUser, "3", "  Tienda cerrada ")
	require.NoError(t, err)

	_, err = svc.SubmitReport(context.Background(), signedInUser, "3", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyReport)

	_, err = svc.SubmitReport(context.Background(), signedInUser, "3", "Este comentario supera el limite de bytes")
	assert.ErrorIs(t, err, domain.ErrReportTooLong)
	assert.True(t, IsRequestError(err))

	writer.AssertNumberOfCalls(t, "SubmitReport", 1)
}
