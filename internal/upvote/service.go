// Package upvote implements the merge engine for duplicate complaints:
// instead of filing a near-identical report, a citizen reinforces an
// existing open complaint, raising its support count and, past fixed
// thresholds, its priority.
package upvote

import (
	"context"
	"errors"
	"log"

	"github.com/mayankshukla2904/nagrik-backend/internal/config"
	"github.com/mayankshukla2904/nagrik-backend/internal/models"
	"github.com/mayankshukla2904/nagrik-backend/internal/storage"
)

// Typed failures. Both are surfaced verbatim to the citizen as actionable
// text; anything else becomes the generic fallback reply.
var (
	ErrAlreadyReinforced = storage.ErrAlreadyReinforced
	ErrNotFound          = storage.ErrComplaintNotFound
)

// Service handles the business logic for reinforcements.
type Service struct {
	Storage storage.Storage
}

// NewService creates a new upvote service.
func NewService(s storage.Storage) *Service {
	return &Service{Storage: s}
}

// Reinforce applies one user's support to the open complaint identified by
// trackingCode. The same user reinforcing twice gets ErrAlreadyReinforced;
// a code that does not resolve to an open complaint gets ErrNotFound. The
// mutation is bounded so a slow database cannot stall the caller's turn.
func (s *Service) Reinforce(ctx context.Context, trackingCode, userID string) (*models.Complaint, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ReinforceTimeout)
	defer cancel()

	complaint, err := s.Storage.ReinforceComplaint(ctx, trackingCode, userID)
	if err != nil {
		if !errors.Is(err, ErrAlreadyReinforced) && !errors.Is(err, ErrNotFound) {
			log.Printf("ERROR: Reinforcement of %s by user %s failed: %v", trackingCode, userID, err)
		}
		return nil, err
	}

	return complaint, nil
}
