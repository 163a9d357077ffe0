package application

import (
	"context"

	"github.com/fernetbarato/fernet-barato/api/internal/public/domain"
	"github.com/fernetbarato/fernet-barato/api/internal/session"
)

type feedbackService struct {
	writer LedgerWriter
}

// NewFeedbackService creates the thanks and report use-cases.
func NewFeedbackService(writer LedgerWriter) FeedbackService {
	return &feedbackService{writer: writer}
}

func (s *feedbackService) GiveThanks(ctx context.Context, user session.User, storeID string) (session.Receipt, error) {
	id, err := domain.ParseStoreID(storeID)
	if err != nil {
		return session.Receipt{}, err
	}
	return s.writer.GiveThanks(ctx, user, id)
}

func (s *feedbackService) SubmitReport(ctx context.Context, user session.User, storeID, description string) (session.Receipt, error) {
	id, err := domain.ParseStoreID(storeID)
	if err != nil {
		return session.Receipt{}, err
	}
	text, err := domain.NewReportDescription(description)
	if err != nil {
		return session.Receipt{}, err
	}
	return s.writer.SubmitReport(ctx, user, id, text)
}
