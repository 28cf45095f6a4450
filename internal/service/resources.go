package service

import (
	"context"
	"fmt"
	"strings"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"

	"gorm.io/gorm"
)

// ResourceInput is the body of a resource create or update
type ResourceInput struct {
	Title       string             `json:"title" form:"title" validate:"required,max=200"`
	Description string             `json:"description" form:"description" validate:"max=4000"`
	Type        model.ResourceType `json:"type" form:"type" validate:"required,oneof=article video document template link tool"`
	Category    string             `json:"category" form:"category" validate:"max=100"`
	URL         string             `json:"url" form:"url" validate:"omitempty,url,max=500"`
	Tags        []string           `json:"tags" form:"tags"`
	IsPublic    bool               `json:"is_public" form:"is_public"`
}

// ResourceFilter narrows resource listings
type ResourceFilter struct {
	Type     model.ResourceType
	Category string
	Search   string
	Mine     bool
}

type ResourceService struct {
	db *gorm.DB
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{db: db}
}

// visible restricts query to resources the actor may see: public, owned or shared with them
func visible(query *gorm.DB, actor Actor) *gorm.DB {
	if actor.IsAdmin() {
		return query
	}
	return query.Where(
		"resources.is_public = ? OR resources.owner_id = ? OR resources.id IN (SELECT resource_id FROM resource_shares WHERE user_id = ?)",
		true, actor.ID, actor.ID,
	)
}

// Create stores a resource owned by the caller. filePath is the public URL of an uploaded file, if any.
func (s *ResourceService) Create(ctx context.Context, actor Actor, in ResourceInput, filePath string) (*model.Resource, error) {
	if actor.Role != model.RoleMentor && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only mentors can create resources")
	}
	if strings.TrimSpace(in.URL) == "" && filePath == "" {
		return nil, apperr.BadRequest("a url or a file is required")
	}

	resource := &model.Resource{OwnerID: actor.ID, FilePath: filePath}
	in.apply(resource)
	if err := s.db.WithContext(ctx).Create(resource).Error; err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return s.Get(ctx, actor, resource.ID)
}

func (in ResourceInput) apply(r *model.Resource) {
	r.Title = strings.TrimSpace(in.Title)
	r.Description = strings.TrimSpace(in.Description)
	r.Type = in.Type
	r.Category = strings.TrimSpace(in.Category)
	r.URL = strings.TrimSpace(in.URL)
	r.Tags = cleanList(in.Tags)
	r.IsPublic = in.IsPublic
}

// List returns a page of resources visible to the caller
func (s *ResourceService) List(ctx context.Context, actor Actor, filter ResourceFilter, page Page) (PageResult[model.Resource], error) {
	query := s.db.WithContext(ctx).Model(&model.Resource{})
	// Own resources only, or everything the caller can see
	if filter.Mine {
		query = query.Where("resources.owner_id = ?", actor.ID)
	} else {
		query = visible(query, actor)
	}
	if filter.Type != "" {
		query = query.Where("resources.type = ?", filter.Type)
	}
	if v := strings.TrimSpace(filter.Category); v != "" {
		query = query.Where("LOWER(resources.category) = ?", strings.ToLower(v))
	}
	// Case-insensitive search on title and description
	if v := strings.TrimSpace(filter.Search); v != "" {
		pattern := containsPattern(v)
		query = query.Where("LOWER(resources.title) LIKE ? ESCAPE '\\' OR LOWER(resources.description) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	result, err := paginate[model.Resource](query, page, "resources.created_at DESC, resources.id DESC", "Owner")
	if err != nil {
		return result, fmt.Errorf("failed to list resources: %w", err)
	}
	return result, nil
}

// Get loads a resource visible to the caller. Hidden resources are reported as missing.
func (s *ResourceService) Get(ctx context.Context, actor Actor, id uint) (*model.Resource, error) {
	var resource model.Resource
	err := visible(s.db.WithContext(ctx).Model(&model.Resource{}), actor).
		Preload("Owner").
		Where("resources.id = ?", id).
		First(&resource).Error
	if err != nil {
		return nil, apperr.NotFoundOr(err, "resource not found")
	}
	return &resource, nil
}

// Update replaces the fields of a resource owned by the caller
func (s *ResourceService) Update(ctx context.Context, actor Actor, id uint, in ResourceInput) (*model.Resource, error) {
	resource, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	in.apply(resource)
	if resource.URL == "" && resource.FilePath == "" {
		return nil, apperr.BadRequest("a url or a file is required")
	}
	if err := s.db.WithContext(ctx).Omit("Owner", "SharedWith").Save(resource).Error; err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}
	return s.Get(ctx, actor, id)
}

// Delete removes a resource and returns the public path of its file, if any
func (s *ResourceService) Delete(ctx context.Context, actor Actor, id uint) (string, error) {
	resource, err := s.owned(ctx, actor, id)
	if err != nil {
		return "", err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(resource).Association("SharedWith").Clear(); err != nil {
			return err
		}
		return tx.Delete(resource).Error
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete resource: %w", err)
	}
	return resource.FilePath, nil
}

// Share grants the given users access to a resource owned by the caller.
// It returns the ids the resource is now shared with.
func (s *ResourceService) Share(ctx context.Context, actor Actor, id uint, userIDs []uint) ([]uint, error) {
	resource, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(userIDs))
	for _, uid := range userIDs {
		if uid != 0 && uid != resource.OwnerID {
			ids = append(ids, uid)
		}
	}
	if len(ids) == 0 {
		return nil, apperr.BadRequest("at least one other user id is required")
	}

	var users []model.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	if len(users) != len(uniqueIDs(ids)) {
		return nil, apperr.NotFound("one or more users not found")
	}

	if err := s.db.WithContext(ctx).Model(resource).Association("SharedWith").Append(&users); err != nil {
		return nil, fmt.Errorf("failed to share resource: %w", err)
	}

	var shared []uint
	err = s.db.WithContext(ctx).Table("resource_shares").
		Where("resource_id = ?", resource.ID).
		Order("user_id").
		Pluck("user_id", &shared).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load shares: %w", err)
	}
	return shared, nil
}

// Download counts a download of a visible resource and returns its location
func (s *ResourceService) Download(ctx context.Context, actor Actor, id uint) (*model.Resource, error) {
	resource, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Model(&model.Resource{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count download: %w", err)
	}
	resource.Downloads++
	return resource, nil
}

func (s *ResourceService) owned(ctx context.Context, actor Actor, id uint) (*model.Resource, error) {
	var resource model.Resource
	if err := s.db.WithContext(ctx).First(&resource, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "resource not found")
	}
	if resource.OwnerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to modify this resource")
	}
	return &resource, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
