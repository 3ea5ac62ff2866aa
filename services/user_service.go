package services

import (
	"context"
	"net/mail"
	"strings"

	"github.com/campuscarry/campuscarry-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type CreateUserInput struct {
	Name           string
	Email          string
	Phone          *string
	Campus         *string
	RolePreference models.RolePreference
}

type UpdateUserInput struct {
	Name           *string
	Phone          *string
	Campus         *string
	RolePreference *models.RolePreference
}

// UserService resolves token subjects to profiles and manages profile fields.
// Ratings are owned by ReviewService and never set here.
type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// GetBySubject finds the profile linked to a bearer token subject
func (s *UserService) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("subject = ?", subject).First(&user).Error; err != nil {
		return nil, recordFailure(s.logger, "get_user", lookupError("User profile", err))
	}
	return &user, nil
}

// GetByID returns the public summary of a user
func (s *UserService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Scopes(models.UserSummary).First(&user, userID).Error; err != nil {
		return nil, recordFailure(s.logger, "get_user", lookupError("User", err))
	}
	return &user, nil
}

// Create links a new profile to a token subject
func (s *UserService) Create(ctx context.Context, subject string, in CreateUserInput) (*models.User, error) {
	if subject == "" {
		return nil, invalidInput("Token subject is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidInput("Name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, invalidInput("A valid email is required")
	}
	if in.RolePreference == "" {
		in.RolePreference = models.RoleBoth
	}
	if !in.RolePreference.Valid() {
		return nil, invalidInput("Invalid role preference %q", in.RolePreference)
	}

	user := models.User{
		Subject:        subject,
		Name:           in.Name,
		Email:          strings.ToLower(in.Email),
		Phone:          in.Phone,
		Campus:         in.Campus,
		RolePreference: in.RolePreference,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("A profile already exists for this account or email", err)
		}
		return nil, recordFailure(s.logger, "create_user", unexpected("failed to create user", err))
	}
	return &user, nil
}

// Update edits the caller's own profile
func (s *UserService) Update(ctx context.Context, userID uint, in UpdateUserInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalidInput("Name cannot be empty")
		}
		updates["name"] = *in.Name
	}
	if in.Phone != nil {
		updates["phone"] = *in.Phone
	}
	if in.Campus != nil {
		updates["campus"] = *in.Campus
	}
	if in.RolePreference != nil {
		if !in.RolePreference.Valid() {
			return nil, invalidInput("Invalid role preference %q", *in.RolePreference)
		}
		updates["role_preference"] = *in.RolePreference
	}

	db := s.db.WithContext(ctx)
	if len(updates) > 0 {
		res := db.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
		if res.Error != nil {
			return nil, recordFailure(s.logger, "update_user", unexpected("failed to update user", res.Error))
		}
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return nil, recordFailure(s.logger, "update_user", lookupError("User", err))
	}
	return &user, nil
}
