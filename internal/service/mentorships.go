package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/prometheus"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MentorshipRequestInput is the body of a mentorship request
type MentorshipRequestInput struct {
	MentorID    uint              `json:"mentor_id" validate:"required"`
	Message     string            `json:"message" validate:"max=2000"`
	PackageTier model.PackageTier `json:"package_tier" validate:"omitempty,oneof=basic standard premium"`
	Goals       []string          `json:"goals"`
}

// ProgressInput is the body of a progress update
type ProgressInput struct {
	Percent int    `json:"percent" validate:"gte=0,lte=100"`
	Notes   string `json:"notes" validate:"max=4000"`
}

// FeedbackInput is the body of a feedback entry
type FeedbackInput struct {
	Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
	Comment string `json:"comment" validate:"max=2000"`
}

type MentorshipService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewMentorshipService(db *gorm.DB) *MentorshipService {
	return &MentorshipService{db: db, now: time.Now}
}

// openMentorshipExists reports whether a and b share a pending or accepted mentorship, in either role
func openMentorshipExists(tx *gorm.DB, a, b uint) (bool, error) {
	var count int64
	err := tx.Model(&model.Mentorship{}).
		Where("status IN ?", model.OpenMentorshipStatuses).
		Where("(mentor_id = ? AND mentee_id = ?) OR (mentor_id = ? AND mentee_id = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check mentorship: %w", err)
	}
	return count > 0, nil
}

// Request creates a pending mentorship from the calling mentee to a mentor
func (s *MentorshipService) Request(ctx context.Context, actor Actor, in MentorshipRequestInput) (*model.Mentorship, error) {
	if actor.Role != model.RoleMentee {
		return nil, apperr.Forbidden("only mentees can request a mentorship")
	}
	if in.MentorID == 0 {
		return nil, apperr.BadRequest("mentor id is required")
	}
	if in.MentorID == actor.ID {
		return nil, apperr.BadRequest("cannot request a mentorship with yourself")
	}
	// Default to the basic package
	tier := in.PackageTier
	if tier == "" {
		tier = model.PackageBasic
	}
	if !tier.Valid() {
		return nil, apperr.BadRequest("invalid package tier")
	}

	goals := make([]model.Goal, 0, len(in.Goals))
	for _, title := range cleanList(in.Goals) {
		goals = append(goals, model.Goal{Title: title})
	}

	// Track database operation
	defer prometheus.TrackDBOperation("request_mentorship")(time.Now())

	m := &model.Mentorship{
		MentorID:    in.MentorID,
		MenteeID:    actor.ID,
		Status:      model.MentorshipPending,
		Message:     strings.TrimSpace(in.Message),
		PackageTier: tier,
		Goals:       goals,
		Feedback:    []model.Feedback{},
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Check the target exists and is a mentor
		var mentor model.User
		if err := tx.First(&mentor, in.MentorID).Error; err != nil {
			return apperr.NotFoundOr(err, "mentor not found")
		}
		if mentor.Role != model.RoleMentor {
			return apperr.BadRequest("requested user is not a mentor")
		}

		exists, err := openMentorshipExists(tx, in.MentorID, actor.ID)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("a pending or active mentorship already exists with this mentor")
		}

		// The partial unique index catches a concurrent duplicate request
		if err := tx.Create(m).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("a pending or active mentorship already exists with this mentor")
			}
			return fmt.Errorf("failed to create mentorship: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.MentorshipRequestCounter.Inc()
	return s.load(ctx, m.ID)
}

// List returns the caller's mentorships as mentor or mentee
func (s *MentorshipService) List(ctx context.Context, actor Actor, status model.MentorshipStatus, page Page) (PageResult[model.Mentorship], error) {
	query := s.db.WithContext(ctx).Model(&model.Mentorship{}).
		Where("mentor_id = ? OR mentee_id = ?", actor.ID, actor.ID)
	if status != "" {
		if !status.Valid() {
			return PageResult[model.Mentorship]{}, apperr.BadRequest("invalid status")
		}
		query = query.Where("status = ?", status)
	}

	result, err := paginate[model.Mentorship](query, page, "created_at DESC, id DESC", "Mentor", "Mentee")
	if err != nil {
		return result, fmt.Errorf("failed to list mentorships: %w", err)
	}
	return result, nil
}

// Get loads a mentorship visible to the caller
func (s *MentorshipService) Get(ctx context.Context, actor Actor, id uint) (*model.Mentorship, error) {
	m, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !m.HasParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to access this mentorship")
	}
	return m, nil
}

// UpdateStatus moves a mentorship along pending -> accepted|rejected, accepted -> completed.
// Only the mentor accepts or rejects; either participant completes.
func (s *MentorshipService) UpdateStatus(ctx context.Context, actor Actor, id uint, next model.MentorshipStatus) (*model.Mentorship, error) {
	if !next.Valid() {
		return nil, apperr.BadRequest("invalid status")
	}

	var from model.MentorshipStatus
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Mentorship
		if err := forUpdate(tx).First(&m, id).Error; err != nil {
			return apperr.NotFoundOr(err, "mentorship not found")
		}
		if !m.HasParticipant(actor.ID) {
			return apperr.Forbidden("not authorized to update this mentorship")
		}
		if !m.Status.CanTransitionTo(next) {
			return apperr.BadRequest(fmt.Sprintf("cannot change status from %s to %s", m.Status, next))
		}
		// Only the mentor answers a request
		if (next == model.MentorshipAccepted || next == model.MentorshipRejected) && actor.ID != m.MentorID {
			return apperr.Forbidden("only the mentor can accept or reject a request")
		}

		// Stamp start or end date alongside the status
		now := s.now().UTC()
		updates := map[string]interface{}{"status": next}
		switch next {
		case model.MentorshipAccepted:
			updates["start_date"] = now
			updates["meeting_frequency"] = m.PackageTier.MeetingFrequency()
		case model.MentorshipCompleted:
			updates["end_date"] = now
		}

		from = m.Status
		return tx.Model(&m).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	// Update metrics
	prometheus.RecordMentorshipTransition(string(from), string(next))
	return s.load(ctx, id)
}

// UpdateGoals replaces the goal list of an accepted mentorship
func (s *MentorshipService) UpdateGoals(ctx context.Context, actor Actor, id uint, goals []model.Goal) (*model.Mentorship, error) {
	cleaned := make([]model.Goal, 0, len(goals))
	for _, g := range goals {
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" {
			return nil, apperr.BadRequest("goal title is required")
		}
		cleaned = append(cleaned, g)
	}

	return s.mutateActive(ctx, actor, id, model.MentorshipAccepted, func(tx *gorm.DB, m *model.Mentorship) error {
		m.Goals = cleaned
		return tx.Model(m).Update("goals", m.Goals).Error
	})
}

// UpdateProgress records the latest progress report of an accepted mentorship
func (s *MentorshipService) UpdateProgress(ctx context.Context, actor Actor, id uint, in ProgressInput) (*model.Mentorship, error) {
	if in.Percent < 0 || in.Percent > 100 {
		return nil, apperr.BadRequest("percent must be between 0 and 100")
	}
	now := s.now().UTC()

	return s.mutateActive(ctx, actor, id, model.MentorshipAccepted, func(tx *gorm.DB, m *model.Mentorship) error {
		m.Progress = datatypes.NewJSONType(model.Progress{Percent: in.Percent, Notes: strings.TrimSpace(in.Notes), UpdatedAt: &now})
		return tx.Model(m).Update("progress", m.Progress).Error
	})
}

// AddFeedback appends the caller's feedback to a completed mentorship, once per participant
func (s *MentorshipService) AddFeedback(ctx context.Context, actor Actor, id uint, in FeedbackInput) (*model.Mentorship, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.BadRequest("rating must be between 1 and 5")
	}
	now := s.now().UTC()

	return s.mutateActive(ctx, actor, id, model.MentorshipCompleted, func(tx *gorm.DB, m *model.Mentorship) error {
		for _, f := range m.Feedback {
			if f.By == actor.ID {
				return apperr.Conflict("feedback already submitted")
			}
		}
		m.Feedback = append(m.Feedback, model.Feedback{
			By:        actor.ID,
			Rating:    in.Rating,
			Comment:   strings.TrimSpace(in.Comment),
			CreatedAt: now,
		})
		return tx.Model(m).Update("feedback", m.Feedback).Error
	})
}

// mutateActive locks a mentorship, checks participation and status, then applies fn
func (s *MentorshipService) mutateActive(ctx context.Context, actor Actor, id uint, status model.MentorshipStatus, fn func(tx *gorm.DB, m *model.Mentorship) error) (*model.Mentorship, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Mentorship
		if err := forUpdate(tx).First(&m, id).Error; err != nil {
			return apperr.NotFoundOr(err, "mentorship not found")
		}
		if !m.HasParticipant(actor.ID) {
			return apperr.Forbidden("not authorized to update this mentorship")
		}
		if m.Status != status {
			return apperr.BadRequest(fmt.Sprintf("mentorship must be %s", status))
		}
		return fn(tx, &m)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

func (s *MentorshipService) load(ctx context.Context, id uint) (*model.Mentorship, error) {
	var m model.Mentorship
	if err := s.db.WithContext(ctx).Preload("Mentor").Preload("Mentee").First(&m, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "mentorship not found")
	}
	return &m, nil
}
