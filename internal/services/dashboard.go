package services

import (
	"github.com/google/uuid"

	"github.com/aurasflow/backend/internal/models"
)

type DashboardService struct {
	container *Container
}

func NewDashboardService(c *Container) *DashboardService {
	return &DashboardService{container: c}
}

type DashboardStats struct {
	Credits int `json:"credits"`

	TotalProjects int `json:"total_projects"`
	SocialLinks   int `json:"social_links"`

	TotalPlans    int `json:"total_plans"`
	DraftPlans    int `json:"draft_plans"`
	ApprovedPlans int `json:"approved_plans"`
	PendingItems  int `json:"pending_items"`

	CreditsSpent int `json:"credits_spent"`
}

func (s *DashboardService) GetStats(userID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{}

	credits, err := s.container.Ledger.Balance(userID)
	if err != nil {
		return nil, err
	}
	stats.Credits = credits

	var totalProjects int64
	s.container.DB.Model(&models.Project{}).Where("user_id = ?", userID).Count(&totalProjects)
	stats.TotalProjects = int(totalProjects)

	var socialLinks int64
	s.container.DB.Model(&models.SocialLink{}).
		Joins("JOIN projects ON social_links.project_id = projects.id").
		Where("projects.user_id = ?", userID).
		Count(&socialLinks)
	stats.SocialLinks = int(socialLinks)

	var totalPlans, draftPlans, approvedPlans int64
	planQuery := s.container.DB.Model(&models.MarketingPlan{}).
		Joins("JOIN projects ON marketing_plans.project_id = projects.id").
		Where("projects.user_id = ?", userID)
	planQuery.Count(&totalPlans)
	stats.TotalPlans = int(totalPlans)

	s.container.DB.Model(&models.MarketingPlan{}).
		Joins("JOIN projects ON marketing_plans.project_id = projects.id").
		Where("projects.user_id = ? AND marketing_plans.status = ?", userID, models.PlanStatusDraft).
		Count(&draftPlans)
	stats.DraftPlans = int(draftPlans)

	s.container.DB.Model(&models.MarketingPlan{}).
		Joins("JOIN projects ON marketing_plans.project_id = projects.id").
		Where("projects.user_id = ? AND marketing_plans.status = ?", userID, models.PlanStatusApproved).
		Count(&approvedPlans)
	stats.ApprovedPlans = int(approvedPlans)

	var pendingItems int64
	s.container.DB.Model(&models.PlanItem{}).
		Joins("JOIN marketing_plans ON plan_items.plan_id = marketing_plans.id").
		Joins("JOIN projects ON marketing_plans.project_id = projects.id").
		Where("projects.user_id = ? AND plan_items.status = ?", userID, models.PlanItemStatusPending).
		Count(&pendingItems)
	stats.PendingItems = int(pendingItems)

	type spentRow struct{ Total int }
	var spent spentRow
	s.container.DB.Model(&models.CreditTransaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("user_id = ? AND type = ?", userID, models.CreditEntryDebit).
		Scan(&spent)
	stats.CreditsSpent = spent.Total

	return stats, nil
}
