package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/locks"
	"github.com/aurasflow/backend/internal/logger"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/websocket"
)

// ContentService runs the credit-metered content generation workflow: compute
// cost, lock and debit the ledger, invoke the generator, and park the batch in
// the per-session store. Batches are ephemeral; the ledger entry is the only
// durable write.
type ContentService struct {
	container *Container
	generator ContentGenerator
}

func NewContentService(c *Container, generator ContentGenerator) *ContentService {
	return &ContentService{container: c, generator: generator}
}

type GenerateContentRequest struct {
	Designs  int `json:"designs" binding:"min=0"`
	Videos   int `json:"videos" binding:"min=0"`
	Articles int `json:"articles" binding:"min=0"`
}

// Cost returns the total credit price of the request.
func (r *GenerateContentRequest) Cost() int {
	return r.Designs*CostDesign + r.Videos*CostVideo + r.Articles*CostArticle
}

// Generate produces a content batch for the project and debits its cost. The
// sufficiency check and the debit happen under the same row lock inside one
// transaction, so two concurrent calls cannot both spend the same credits.
func (s *ContentService) Generate(ctx context.Context, userID, projectID, sessionID uuid.UUID, req *GenerateContentRequest) ([]models.GeneratedItem, error) {
	if req.Designs < 0 || req.Videos < 0 || req.Articles < 0 {
		return nil, ErrValidation
	}

	project, err := s.container.Project.Get(userID, projectID)
	if err != nil {
		return nil, err
	}

	cost := req.Cost()

	// Best-effort cross-process serialization per user; the FOR UPDATE lock
	// inside Debit is the authoritative guard.
	if s.container.Locks != nil {
		lock, err := s.container.Locks.Acquire(ctx, locks.ResourceLedger, userID.String(), 10*time.Second)
		if err == nil {
			defer lock.Release(ctx)
		}
	}

	var items []models.GeneratedItem
	err = s.container.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.container.Ledger.Debit(tx, userID, cost, "content_generation", &project.ID); err != nil {
			return err
		}

		generated, err := s.generator.Generate(project, req.Designs, req.Videos, req.Articles)
		if err != nil {
			return err
		}
		items = generated
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The batch replaces whatever the session held before. A store failure is
	// logged but does not undo the committed debit; the items are returned to
	// the caller either way.
	if err := s.container.Batches.Put(ctx, sessionID.String(), items); err != nil {
		logger.Warn().Err(err).Str("session_id", sessionID.String()).Msg("failed to store generated batch")
	}

	if s.container.WSHub != nil {
		s.container.WSHub.BroadcastToUser(userID.String(), websocket.EventContentGenerated, map[string]interface{}{
			"project_id": project.ID,
			"count":      len(items),
			"cost":       cost,
		})
	}

	return items, nil
}

// LastGenerated returns the session's most recent batch, or an empty slice
// when nothing was generated in this session (the caller re-runs generation).
func (s *ContentService) LastGenerated(ctx context.Context, userID, projectID, sessionID uuid.UUID) ([]models.GeneratedItem, error) {
	if _, err := s.container.Project.Get(userID, projectID); err != nil {
		return nil, err
	}

	items, err := s.container.Batches.Get(ctx, sessionID.String())
	if err != nil {
		return nil, err
	}
	return items, nil
}
