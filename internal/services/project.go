package services

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/models"
)

// ProjectService owns projects and their nested social links. Every read and
// write verifies the requester against the owning user; a mismatch is
// ErrForbidden, never a silent empty result.
type ProjectService struct {
	container *Container
}

func NewProjectService(c *Container) *ProjectService {
	return &ProjectService{container: c}
}

type CreateProjectRequest struct {
	Name           string `json:"name" binding:"required"`
	Website        string `json:"website"`
	Description    string `json:"description"`
	Type           string `json:"type" binding:"required"`
	TargetAudience string `json:"target_audience" binding:"required"`
}

type UpdateProjectRequest struct {
	Name           string `json:"name"`
	Website        string `json:"website"`
	Description    string `json:"description"`
	Type           string `json:"type"`
	TargetAudience string `json:"target_audience"`
}

type AddSocialLinkRequest struct {
	Platform    string `json:"platform" binding:"required"`
	Username    string `json:"username"`
	URL         string `json:"url"`
	APIKey      string `json:"api_key"`
	APISecret   string `json:"api_secret"`
	AccessToken string `json:"access_token"`
}

func (s *ProjectService) List(userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := s.container.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Find(&projects).Error
	return projects, err
}

// Get loads a project and enforces ownership. NotFound and Forbidden are kept
// distinct: an existing project owned by someone else must not look absent.
func (s *ProjectService) Get(userID, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := s.container.DB.Preload("SocialLinks").
		First(&project, "id = ?", projectID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if project.UserID != userID {
		return nil, ErrForbidden
	}
	return &project, nil
}

func (s *ProjectService) Create(userID uuid.UUID, req *CreateProjectRequest) (*models.Project, error) {
	project := &models.Project{
		ID:             uuid.New(),
		UserID:         userID,
		Name:           req.Name,
		Website:        req.Website,
		Description:    req.Description,
		Type:           req.Type,
		TargetAudience: req.TargetAudience,
	}

	if err := s.container.DB.Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (s *ProjectService) Update(userID, projectID uuid.UUID, req *UpdateProjectRequest) (*models.Project, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Website != "" {
		updates["website"] = req.Website
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.TargetAudience != "" {
		updates["target_audience"] = req.TargetAudience
	}

	if len(updates) > 0 {
		if err := s.container.DB.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Delete removes a project and everything under it: social links, marketing
// plans and their items. The cascade is explicit and committed as one
// transaction; the schema-level ON DELETE CASCADE is only a backstop.
func (s *ProjectService) Delete(userID, projectID uuid.UUID) error {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return err
	}

	return s.container.DB.Transaction(func(tx *gorm.DB) error {
		var planIDs []uuid.UUID
		if err := tx.Model(&models.MarketingPlan{}).
			Where("project_id = ?", projectID).Pluck("id", &planIDs).Error; err != nil {
			return err
		}

		if len(planIDs) > 0 {
			if err := tx.Where("plan_id IN ?", planIDs).Delete(&models.PlanItem{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.MarketingPlan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.SocialLink{}).Error; err != nil {
			return err
		}
		return tx.Delete(project).Error
	})
}

// AddSocialLink attaches platform credentials to a project. When an
// encryption key is configured the API credentials are sealed before they
// touch the database.
func (s *ProjectService) AddSocialLink(userID, projectID uuid.UUID, req *AddSocialLinkRequest) (*models.SocialLink, error) {
	project, err := s.Get(userID, projectID)
	if err != nil {
		return nil, err
	}

	apiKey, apiSecret, accessToken := req.APIKey, req.APISecret, req.AccessToken
	if s.container.Secrets != nil {
		if apiKey, err = s.container.Secrets.EncryptString(apiKey); err != nil {
			return nil, err
		}
		if apiSecret, err = s.container.Secrets.EncryptString(apiSecret); err != nil {
			return nil, err
		}
		if accessToken, err = s.container.Secrets.EncryptString(accessToken); err != nil {
			return nil, err
		}
	}

	link := &models.SocialLink{
		ID:          uuid.New(),
		ProjectID:   project.ID,
		Platform:    req.Platform,
		Username:    req.Username,
		URL:         req.URL,
		APIKey:      apiKey,
		APISecret:   apiSecret,
		AccessToken: accessToken,
	}

	if err := s.container.DB.Create(link).Error; err != nil {
		return nil, err
	}
	return link, nil
}

func (s *ProjectService) ListSocialLinks(userID, projectID uuid.UUID) ([]models.SocialLink, error) {
	if _, err := s.Get(userID, projectID); err != nil {
		return nil, err
	}

	var links []models.SocialLink
	err := s.container.DB.Where("project_id = ?", projectID).
		Order("created_at ASC").Find(&links).Error
	return links, err
}
