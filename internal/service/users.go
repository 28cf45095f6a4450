package service

import (
	"context"
	"fmt"
	"strings"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFilter narrows user listings
type UserFilter struct {
	Role     model.Role
	Skill    string
	Location string
	Search   string
}

// ProfileInput holds the editable fields of the caller's own user record.
// Nil fields are left unchanged.
type ProfileInput struct {
	Name      *string   `json:"name" validate:"omitempty,min=2,max=100"`
	Bio       *string   `json:"bio" validate:"omitempty,max=2000"`
	Skills    *[]string `json:"skills"`
	Interests *[]string `json:"interests"`
	Location  *string   `json:"location" validate:"omitempty,max=100"`
	Company   *string   `json:"company" validate:"omitempty,max=100"`
	Website   *string   `json:"website" validate:"omitempty,max=255"`
}

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get loads a user by id
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "user not found")
	}
	return &user, nil
}

// Exists reports whether id belongs to a user that has not been deleted
func (s *UserService) Exists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up user: %w", err)
	}
	return count > 0, nil
}

// List returns a page of users matching filter
func (s *UserService) List(ctx context.Context, filter UserFilter, page Page) (PageResult[model.User], error) {
	query := s.db.WithContext(ctx).Model(&model.User{})

	if filter.Role != "" {
		if !filter.Role.Valid() {
			return PageResult[model.User]{}, apperr.BadRequest("invalid role")
		}
		query = query.Where("role = ?", filter.Role)
	}
	// Skills are a JSON array column
	if skill := strings.TrimSpace(filter.Skill); skill != "" {
		cond, pattern := jsonListContains("skills", skill)
		query = query.Where(cond, pattern)
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		query = query.Where("LOWER(location) LIKE ? ESCAPE '\\'", containsPattern(loc))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := containsPattern(search)
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(bio) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	result, err := paginate[model.User](query, page, "created_at DESC, id DESC")
	if err != nil {
		return result, fmt.Errorf("failed to list users: %w", err)
	}
	return result, nil
}

// UpdateProfile applies in to the user's own record
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput) (*model.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Update fields
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperr.BadRequest("name is required")
		}
		user.Name = name
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Skills != nil {
		user.Skills = cleanList(*in.Skills)
	}
	if in.Interests != nil {
		user.Interests = cleanList(*in.Interests)
	}
	if in.Location != nil {
		user.Location = strings.TrimSpace(*in.Location)
	}
	if in.Company != nil {
		user.Company = strings.TrimSpace(*in.Company)
	}
	if in.Website != nil {
		user.Website = strings.TrimSpace(*in.Website)
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// ChangePassword replaces the password after checking the current one
func (s *UserService) ChangePassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	// Verify current password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)); err != nil {
		return apperr.BadRequest("current password is incorrect")
	}
	if len(next) < 6 {
		return apperr.BadRequest("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	return s.db.WithContext(ctx).Model(user).Update("password", string(hash)).Error
}

// SetProfileImage stores url on the user and returns the previous url
func (s *UserService) SetProfileImage(ctx context.Context, userID uint, url string) (string, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	previous := user.ProfileImage
	if err := s.db.WithContext(ctx).Model(user).Update("profile_image", url).Error; err != nil {
		return "", fmt.Errorf("failed to set profile image: %w", err)
	}
	return previous, nil
}

// Delete soft deletes a user. Only admins may delete, and never themselves.
func (s *UserService) Delete(ctx context.Context, actor Actor, id uint) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("admin access required")
	}
	if actor.ID == id {
		return apperr.BadRequest("cannot delete your own account")
	}
	// Soft delete; AuthMiddleware rejects the user's tokens from here on
	res := s.db.WithContext(ctx).Delete(&model.User{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user not found")
	}
	return nil
}
