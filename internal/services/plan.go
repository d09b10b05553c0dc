package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/locks"
	"github.com/aurasflow/backend/internal/models"
	"github.com/aurasflow/backend/internal/websocket"
)

// PlanService owns the marketing plan lifecycle: flat-rate generation of a
// 30-item monthly schedule, the draft -> approved transition, and read-time
// ordering of items.
type PlanService struct {
	container *Container
	generator PlanItemGenerator
}

func NewPlanService(c *Container, generator PlanItemGenerator) *PlanService {
	return &PlanService{container: c, generator: generator}
}

type GeneratePlanRequest struct {
	Month     int      `json:"month" binding:"required,min=1,max=12"`
	Year      int      `json:"year" binding:"required,min=2000"`
	Notes     string   `json:"notes"`
	Platforms []string `json:"platforms"`
}

// Generate creates a draft plan with its items and debits the flat 50-credit
// fee. Plan row, debit, ledger entry and all 30 items commit together or not
// at all.
func (s *PlanService) Generate(ctx context.Context, userID, projectID uuid.UUID, req *GeneratePlanRequest) (*models.MarketingPlan, error) {
	if req.Month < 1 || req.Month > 12 {
		return nil, ErrValidation
	}

	project, err := s.container.Project.Get(userID, projectID)
	if err != nil {
		return nil, err
	}

	if s.container.Locks != nil {
		lock, err := s.container.Locks.Acquire(ctx, locks.ResourceLedger, userID.String(), 10*time.Second)
		if err == nil {
			defer lock.Release(ctx)
		}
	}

	plan := &models.MarketingPlan{
		ID:        uuid.New(),
		ProjectID: project.ID,
		Month:     req.Month,
		Year:      req.Year,
		Status:    models.PlanStatusDraft,
	}

	err = s.container.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.container.Ledger.Debit(tx, userID, CostMarketingPlan, "plan_generation", &plan.ID); err != nil {
			return err
		}

		if err := tx.Create(plan).Error; err != nil {
			return err
		}

		items := s.generator.GenerateItems(project, plan.ID, req.Month, req.Year, req.Platforms, req.Notes)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		plan.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.container.WSHub != nil {
		s.container.WSHub.BroadcastToUser(userID.String(), websocket.EventPlanGenerated, map[string]interface{}{
			"plan_id":    plan.ID,
			"project_id": project.ID,
			"month":      plan.Month,
			"year":       plan.Year,
		})
	}

	return plan, nil
}

// Get returns a plan with items ordered by scheduled time. The ordering is a
// query-level projection; stored rows are never reordered.
func (s *PlanService) Get(userID, planID uuid.UUID) (*models.MarketingPlan, error) {
	plan, err := s.load(userID, planID)
	if err != nil {
		return nil, err
	}

	if err := s.container.DB.Where("plan_id = ?", plan.ID).
		Order("scheduled_time ASC").Find(&plan.Items).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

// Approve transitions a draft plan to approved and stamps ApprovedAt once.
// Approving an already-approved plan is a no-op.
func (s *PlanService) Approve(userID, planID uuid.UUID) (*models.MarketingPlan, error) {
	plan, err := s.load(userID, planID)
	if err != nil {
		return nil, err
	}

	if plan.Status == models.PlanStatusApproved {
		return plan, nil
	}

	now := time.Now().UTC()
	if err := s.container.DB.Model(plan).Updates(map[string]interface{}{
		"status":      models.PlanStatusApproved,
		"approved_at": now,
	}).Error; err != nil {
		return nil, err
	}
	plan.Status = models.PlanStatusApproved
	plan.ApprovedAt = &now

	if s.container.WSHub != nil {
		s.container.WSHub.BroadcastToUser(userID.String(), websocket.EventPlanApproved, map[string]interface{}{
			"plan_id": plan.ID,
		})
	}

	return plan, nil
}

// load fetches a plan and checks ownership through its project.
func (s *PlanService) load(userID, planID uuid.UUID) (*models.MarketingPlan, error) {
	var plan models.MarketingPlan
	if err := s.container.DB.First(&plan, "id = ?", planID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var project models.Project
	if err := s.container.DB.Select("id", "user_id").
		First(&project, "id = ?", plan.ProjectID).Error; err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return &plan, nil
}
