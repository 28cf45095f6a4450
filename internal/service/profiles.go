package service

import (
	"context"
	"fmt"
	"strings"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"

	"gorm.io/gorm"
)

// MentorProfileInput is the body of a mentor profile create or update
type MentorProfileInput struct {
	Expertise         []string                 `json:"expertise"`
	Industries        []string                 `json:"industries"`
	YearsOfExperience int                      `json:"years_of_experience" validate:"gte=0,lte=80"`
	Availability      []model.AvailabilitySlot `json:"availability" validate:"dive"`
	MaxMentees        int                      `json:"max_mentees" validate:"gte=0,lte=100"`
	HourlyRate        float64                  `json:"hourly_rate" validate:"gte=0"`
	LinkedIn          string                   `json:"linkedin" validate:"omitempty,max=255"`
}

// MenteeProfileInput is the body of a mentee profile create or update
type MenteeProfileInput struct {
	BusinessName  string              `json:"business_name" validate:"max=150"`
	BusinessStage model.BusinessStage `json:"business_stage" validate:"omitempty,oneof=idea startup growth established"`
	Industry      string              `json:"industry" validate:"max=100"`
	Goals         []string            `json:"goals"`
	Challenges    string              `json:"challenges" validate:"max=4000"`
	InterestedIn  []string            `json:"interested_in"`
}

// MentorProfileFilter narrows mentor profile listings
type MentorProfileFilter struct {
	Expertise string
	Industry  string
}

// MenteeProfileFilter narrows mentee profile listings
type MenteeProfileFilter struct {
	Industry string
	Stage    model.BusinessStage
}

type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (in MentorProfileInput) apply(p *model.MentorProfile) error {
	for _, slot := range in.Availability {
		if slot.StartTime >= slot.EndTime {
			return apperr.BadRequest("availability start time must be before end time")
		}
	}
	p.Expertise = cleanList(in.Expertise)
	p.Industries = cleanList(in.Industries)
	p.YearsOfExperience = in.YearsOfExperience
	p.Availability = append([]model.AvailabilitySlot{}, in.Availability...)
	p.MaxMentees = in.MaxMentees
	p.HourlyRate = in.HourlyRate
	p.LinkedIn = strings.TrimSpace(in.LinkedIn)
	return nil
}

func (in MenteeProfileInput) apply(p *model.MenteeProfile) {
	p.BusinessName = strings.TrimSpace(in.BusinessName)
	p.BusinessStage = in.BusinessStage
	p.Industry = strings.TrimSpace(in.Industry)
	p.Goals = cleanList(in.Goals)
	p.Challenges = strings.TrimSpace(in.Challenges)
	p.InterestedIn = cleanList(in.InterestedIn)
}

// CreateMentorProfile creates the caller's mentor profile
func (s *ProfileService) CreateMentorProfile(ctx context.Context, actor Actor, in MentorProfileInput) (*model.MentorProfile, error) {
	if actor.Role != model.RoleMentor {
		return nil, apperr.Forbidden("only mentors can create a mentor profile")
	}
	profile := &model.MentorProfile{UserID: actor.ID}
	if err := in.apply(profile); err != nil {
		return nil, err
	}
	if err := s.create(ctx, &model.MentorProfile{}, actor.ID, profile); err != nil {
		return nil, err
	}
	return s.GetMentorProfile(ctx, actor.ID)
}

// UpdateMentorProfile replaces the caller's mentor profile fields
func (s *ProfileService) UpdateMentorProfile(ctx context.Context, actor Actor, in MentorProfileInput) (*model.MentorProfile, error) {
	var profile model.MentorProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", actor.ID).First(&profile).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "mentor profile not found")
	}
	if err := in.apply(&profile); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update mentor profile: %w", err)
	}
	return s.GetMentorProfile(ctx, actor.ID)
}

// GetMentorProfile loads the mentor profile of userID with its user
func (s *ProfileService) GetMentorProfile(ctx context.Context, userID uint) (*model.MentorProfile, error) {
	var profile model.MentorProfile
	err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, apperr.NotFoundOr(err, "mentor profile not found")
	}
	return &profile, nil
}

// ListMentorProfiles returns a page of mentor profiles
func (s *ProfileService) ListMentorProfiles(ctx context.Context, filter MentorProfileFilter, page Page) (PageResult[model.MentorProfile], error) {
	query := s.db.WithContext(ctx).Model(&model.MentorProfile{}).
		Joins("JOIN users ON users.id = mentor_profiles.user_id AND users.deleted_at IS NULL")

	if v := strings.TrimSpace(filter.Expertise); v != "" {
		cond, pattern := jsonListContains("mentor_profiles.expertise", v)
		query = query.Where(cond, pattern)
	}
	if v := strings.TrimSpace(filter.Industry); v != "" {
		cond, pattern := jsonListContains("mentor_profiles.industries", v)
		query = query.Where(cond, pattern)
	}

	result, err := paginate[model.MentorProfile](query, page, "mentor_profiles.years_of_experience DESC, mentor_profiles.id", "User")
	if err != nil {
		return result, fmt.Errorf("failed to list mentor profiles: %w", err)
	}
	return result, nil
}

// CreateMenteeProfile creates the caller's mentee profile
func (s *ProfileService) CreateMenteeProfile(ctx context.Context, actor Actor, in MenteeProfileInput) (*model.MenteeProfile, error) {
	if actor.Role != model.RoleMentee {
		return nil, apperr.Forbidden("only mentees can create a mentee profile")
	}
	profile := &model.MenteeProfile{UserID: actor.ID}
	in.apply(profile)
	if err := s.create(ctx, &model.MenteeProfile{}, actor.ID, profile); err != nil {
		return nil, err
	}
	return s.GetMenteeProfile(ctx, actor.ID)
}

// UpdateMenteeProfile replaces the caller's mentee profile fields
func (s *ProfileService) UpdateMenteeProfile(ctx context.Context, actor Actor, in MenteeProfileInput) (*model.MenteeProfile, error) {
	var profile model.MenteeProfile
	if err := s.db.WithContext(ctx).Where("user_id = ?", actor.ID).First(&profile).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "mentee profile not found")
	}
	in.apply(&profile)
	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, fmt.Errorf("failed to update mentee profile: %w", err)
	}
	return s.GetMenteeProfile(ctx, actor.ID)
}

// GetMenteeProfile loads the mentee profile of userID with its user
func (s *ProfileService) GetMenteeProfile(ctx context.Context, userID uint) (*model.MenteeProfile, error) {
	var profile model.MenteeProfile
	err := s.db.WithContext(ctx).Preload("User").Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		return nil, apperr.NotFoundOr(err, "mentee profile not found")
	}
	return &profile, nil
}

// ListMenteeProfiles returns a page of mentee profiles
func (s *ProfileService) ListMenteeProfiles(ctx context.Context, filter MenteeProfileFilter, page Page) (PageResult[model.MenteeProfile], error) {
	query := s.db.WithContext(ctx).Model(&model.MenteeProfile{}).
		Joins("JOIN users ON users.id = mentee_profiles.user_id AND users.deleted_at IS NULL")

	if v := strings.TrimSpace(filter.Industry); v != "" {
		query = query.Where("LOWER(mentee_profiles.industry) LIKE ? ESCAPE '\\'", containsPattern(v))
	}
	if filter.Stage != "" {
		query = query.Where("mentee_profiles.business_stage = ?", filter.Stage)
	}

	result, err := paginate[model.MenteeProfile](query, page, "mentee_profiles.created_at DESC, mentee_profiles.id DESC", "User")
	if err != nil {
		return result, fmt.Errorf("failed to list mentee profiles: %w", err)
	}
	return result, nil
}

// create inserts profile unless one already exists for userID
func (s *ProfileService) create(ctx context.Context, table interface{}, userID uint, profile interface{}) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(table).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if count > 0 {
		return apperr.Conflict("profile already exists")
	}
	if err := s.db.WithContext(ctx).Create(profile).Error; err != nil {
		if isDuplicate(err) {
			return apperr.Conflict("profile already exists")
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}
