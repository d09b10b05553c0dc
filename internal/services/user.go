package services

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aurasflow/backend/internal/models"
)

// UserService covers profile reads and updates for the authenticated user.
type UserService struct {
	container *Container
}

func NewUserService(c *Container) *UserService {
	return &UserService{container: c}
}

type UpdateProfileRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email" binding:"omitempty,email"`
	NewPassword string `json:"new_password" binding:"omitempty,min=8"`
}

func (s *UserService) Get(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.container.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.PasswordHash = ""
	return &user, nil
}

func (s *UserService) UpdateProfile(userID uuid.UUID, req *UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := s.container.DB.First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Username != "" && req.Username != user.Username {
		var taken int64
		s.container.DB.Model(&models.User{}).
			Where("username = ? AND id <> ?", req.Username, userID).Count(&taken)
		if taken > 0 {
			return nil, ErrValidation
		}
		updates["username"] = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		var taken int64
		s.container.DB.Model(&models.User{}).
			Where("email = ? AND id <> ?", req.Email, userID).Count(&taken)
		if taken > 0 {
			return nil, ErrValidation
		}
		updates["email"] = req.Email
	}
	if req.NewPassword != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		updates["password_hash"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := s.container.DB.Model(&user).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	user.PasswordHash = ""
	return &user, nil
}
