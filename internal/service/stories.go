package service

import (
	"context"
	"fmt"
	"strings"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"

	"gorm.io/gorm"
)

// StoryInput is the body of a success story create or update
type StoryInput struct {
	Title       string   `json:"title" validate:"required,max=200"`
	Content     string   `json:"content" validate:"required"`
	Category    string   `json:"category" validate:"max=100"`
	Tags        []string `json:"tags"`
	ImageURL    string   `json:"image_url" validate:"max=255"`
	MentorID    *uint    `json:"mentor_id"`
	IsPublished bool     `json:"is_published"`
}

// StoryFilter narrows success story listings
type StoryFilter struct {
	Category string
	Featured bool
	Mine     bool
}

type StoryService struct {
	db *gorm.DB
}

func NewStoryService(db *gorm.DB) *StoryService {
	return &StoryService{db: db}
}

func (s *StoryService) apply(ctx context.Context, in StoryInput, story *model.SuccessStory) error {
	story.Title = strings.TrimSpace(in.Title)
	story.Content = strings.TrimSpace(in.Content)
	if story.Title == "" || story.Content == "" {
		return apperr.BadRequest("title and content are required")
	}
	story.Category = strings.TrimSpace(in.Category)
	story.Tags = cleanList(in.Tags)
	story.ImageURL = strings.TrimSpace(in.ImageURL)
	story.IsPublished = in.IsPublished

	story.MentorID = nil
	if in.MentorID != nil && *in.MentorID != 0 {
		var mentor model.User
		if err := s.db.WithContext(ctx).First(&mentor, *in.MentorID).Error; err != nil {
			return apperr.NotFoundOr(err, "mentor not found")
		}
		if mentor.Role != model.RoleMentor {
			return apperr.BadRequest("mentor_id does not reference a mentor")
		}
		id := mentor.ID
		story.MentorID = &id
	}
	return nil
}

// Create stores a story written by the caller
func (s *StoryService) Create(ctx context.Context, actor Actor, in StoryInput) (*model.SuccessStory, error) {
	story := &model.SuccessStory{AuthorID: actor.ID}
	if err := s.apply(ctx, in, story); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(story).Error; err != nil {
		return nil, fmt.Errorf("failed to create story: %w", err)
	}
	return s.load(ctx, story.ID)
}

// List returns published stories, or the caller's own stories with Mine
func (s *StoryService) List(ctx context.Context, actor Actor, filter StoryFilter, page Page) (PageResult[model.SuccessStory], error) {
	query := s.db.WithContext(ctx).Model(&model.SuccessStory{})
	if filter.Mine {
		query = query.Where("author_id = ?", actor.ID)
	} else {
		query = query.Where("is_published = ?", true)
	}
	if v := strings.TrimSpace(filter.Category); v != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(v))
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	result, err := paginate[model.SuccessStory](query, page, "is_featured DESC, created_at DESC, id DESC", "Author", "Mentor")
	if err != nil {
		return result, fmt.Errorf("failed to list stories: %w", err)
	}
	return result, nil
}

// Get loads a story. Unpublished stories are visible to their author and admins only.
// Reading a published story counts a view.
func (s *StoryService) Get(ctx context.Context, actor Actor, id uint) (*model.SuccessStory, error) {
	story, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !story.IsPublished {
		if story.AuthorID != actor.ID && !actor.IsAdmin() {
			return nil, apperr.NotFound("story not found")
		}
		return story, nil
	}

	err = s.db.WithContext(ctx).Model(&model.SuccessStory{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count view: %w", err)
	}
	story.Views++
	return story, nil
}

// Update replaces the fields of a story written by the caller
func (s *StoryService) Update(ctx context.Context, actor Actor, id uint, in StoryInput) (*model.SuccessStory, error) {
	story, err := s.authored(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, in, story); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Author", "Mentor").Save(story).Error; err != nil {
		return nil, fmt.Errorf("failed to update story: %w", err)
	}
	return s.load(ctx, id)
}

// Delete removes a story written by the caller
func (s *StoryService) Delete(ctx context.Context, actor Actor, id uint) error {
	story, err := s.authored(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(story).Error; err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

// SetFeatured flags a story as featured; admin only
func (s *StoryService) SetFeatured(ctx context.Context, actor Actor, id uint, featured bool) (*model.SuccessStory, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Forbidden("admin access required")
	}
	story, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if featured && !story.IsPublished {
		return nil, apperr.BadRequest("only published stories can be featured")
	}
	if err := s.db.WithContext(ctx).Model(story).Update("is_featured", featured).Error; err != nil {
		return nil, fmt.Errorf("failed to feature story: %w", err)
	}
	story.IsFeatured = featured
	return story, nil
}

func (s *StoryService) authored(ctx context.Context, actor Actor, id uint) (*model.SuccessStory, error) {
	var story model.SuccessStory
	if err := s.db.WithContext(ctx).First(&story, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "story not found")
	}
	if story.AuthorID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to modify this story")
	}
	return &story, nil
}

func (s *StoryService) load(ctx context.Context, id uint) (*model.SuccessStory, error) {
	var story model.SuccessStory
	if err := s.db.WithContext(ctx).Preload("Author").Preload("Mentor").First(&story, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "story not found")
	}
	return &story, nil
}
