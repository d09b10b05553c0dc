package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aurasflow/backend/internal/models"
)

// Per-unit credit prices for generated content.
const (
	CostDesign  = 5
	CostVideo   = 15
	CostArticle = 10

	// CostMarketingPlan is flat regardless of platform count.
	CostMarketingPlan = 50

	// PlanItemCount is how many scheduled items one plan generation produces.
	PlanItemCount = 30
)

// ContentGenerator produces a batch of content items for a project. The cost
// and debit contract lives in ContentService; a real generator can replace the
// stub without touching it.
type ContentGenerator interface {
	Generate(project *models.Project, designs, videos, articles int) ([]models.GeneratedItem, error)
}

// PlanItemGenerator produces the scheduled items for one marketing plan.
// Implementations receive the requested platforms and free-text notes; the
// stub ignores both and keeps the fixed one-item-per-day output.
type PlanItemGenerator interface {
	GenerateItems(project *models.Project, planID uuid.UUID, month, year int, platforms []string, notes string) []models.PlanItem
}

// StubContentGenerator emits placeholder items until a real generator lands.
type StubContentGenerator struct{}

func (StubContentGenerator) Generate(project *models.Project, designs, videos, articles int) ([]models.GeneratedItem, error) {
	items := make([]models.GeneratedItem, 0, designs+videos+articles)
	for i := 0; i < designs; i++ {
		items = append(items, models.GeneratedItem{
			Type:    "design",
			Content: fmt.Sprintf("Design concept #%d for %s", i+1, project.Name),
			Cost:    CostDesign,
		})
	}
	for i := 0; i < videos; i++ {
		items = append(items, models.GeneratedItem{
			Type:    "video",
			Content: fmt.Sprintf("Video script #%d for %s", i+1, project.Name),
			Cost:    CostVideo,
		})
	}
	for i := 0; i < articles; i++ {
		items = append(items, models.GeneratedItem{
			Type:    "article",
			Content: fmt.Sprintf("Article draft #%d for %s", i+1, project.Name),
			Cost:    CostArticle,
		})
	}
	return items, nil
}

// StubPlanItemGenerator schedules one design idea per day for 30 days,
// starting at noon UTC on the first of the month.
type StubPlanItemGenerator struct{}

func (StubPlanItemGenerator) GenerateItems(project *models.Project, planID uuid.UUID, month, year int, platforms []string, notes string) []models.PlanItem {
	start := time.Date(year, time.Month(month), 1, 12, 0, 0, 0, time.UTC)

	items := make([]models.PlanItem, 0, PlanItemCount)
	for i := 0; i < PlanItemCount; i++ {
		items = append(items, models.PlanItem{
			ID:            uuid.New(),
			PlanID:        planID,
			Type:          "design",
			Content:       fmt.Sprintf("Design idea #%d", i+1),
			Platform:      "instagram",
			ScheduledTime: start.AddDate(0, 0, i),
			Status:        models.PlanItemStatusPending,
		})
	}
	return items
}
