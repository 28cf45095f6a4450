package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/prometheus"

	"gorm.io/gorm"
)

// ScheduleInput is the body of a session booking
type ScheduleInput struct {
	MentorshipID uint              `json:"mentorship_id" validate:"required"`
	Title        string            `json:"title" validate:"required,max=200"`
	Description  string            `json:"description" validate:"max=4000"`
	Type         model.SessionType `json:"type" validate:"omitempty,oneof=video audio in-person chat"`
	StartTime    time.Time         `json:"start_time" validate:"required"`
	EndTime      time.Time         `json:"end_time" validate:"required"`
	MeetingLink  string            `json:"meeting_link" validate:"omitempty,max=255"`
}

// SessionFilter narrows session listings
type SessionFilter struct {
	Status       model.SessionStatus
	Upcoming     bool
	MentorshipID uint
}

type SessionService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db, now: time.Now}
}

// Schedule books a session for an accepted mentorship. The start must be in the future,
// the end after the start, and the range must not overlap another non-cancelled session
// of the same mentor.
func (s *SessionService) Schedule(ctx context.Context, actor Actor, in ScheduleInput) (*model.Session, error) {
	// Validate input
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.BadRequest("title is required")
	}
	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if !start.After(s.now()) {
		return nil, apperr.BadRequest("session start time must be in the future")
	}
	if !end.After(start) {
		return nil, apperr.BadRequest("session end time must be after start time")
	}
	sessionType := in.Type
	if sessionType == "" {
		sessionType = model.SessionVideo
	}

	// Track database operation
	defer prometheus.TrackDBOperation("schedule_session")(time.Now())

	var session *model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get mentorship and check the caller belongs to it
		var m model.Mentorship
		if err := tx.First(&m, in.MentorshipID).Error; err != nil {
			return apperr.NotFoundOr(err, "mentorship not found")
		}
		if !m.HasParticipant(actor.ID) {
			return apperr.Forbidden("not authorized to schedule for this mentorship")
		}
		if m.Status != model.MentorshipAccepted {
			return apperr.BadRequest("sessions can only be scheduled for accepted mentorships")
		}

		// Lock the mentor row so bookings for one mentor run one at a time
		var mentor model.User
		if err := forUpdate(tx).Select("id").First(&mentor, m.MentorID).Error; err != nil {
			return apperr.NotFoundOr(err, "mentor not found")
		}

		// Reject any non-cancelled session that intersects [start, end)
		var overlapping int64
		err := tx.Model(&model.Session{}).
			Where("mentor_id = ? AND status <> ?", m.MentorID, model.SessionCancelled).
			Where("start_time < ? AND end_time > ?", end, start).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("failed to check overlapping sessions: %w", err)
		}
		if overlapping > 0 {
			prometheus.SessionConflictCounter.Inc()
			return apperr.Conflict("the mentor already has a session in this time range")
		}

		session = &model.Session{
			MentorshipID: m.ID,
			MentorID:     m.MentorID,
			MenteeID:     m.MenteeID,
			Title:        title,
			Description:  strings.TrimSpace(in.Description),
			Type:         sessionType,
			StartTime:    start,
			EndTime:      end,
			Status:       model.SessionUpcoming,
			MeetingLink:  strings.TrimSpace(in.MeetingLink),
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Update metrics
	prometheus.SessionsScheduledCounter.Inc()
	return session, nil
}

// List returns the caller's sessions
func (s *SessionService) List(ctx context.Context, actor Actor, filter SessionFilter, page Page) (PageResult[model.Session], error) {
	query := s.db.WithContext(ctx).Model(&model.Session{}).
		Where("mentor_id = ? OR mentee_id = ?", actor.ID, actor.ID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.MentorshipID != 0 {
		query = query.Where("mentorship_id = ?", filter.MentorshipID)
	}
	// Upcoming sessions read soonest first
	order := "start_time DESC, id DESC"
	if filter.Upcoming {
		query = query.Where("start_time > ? AND status = ?", s.now().UTC(), model.SessionUpcoming)
		order = "start_time ASC, id ASC"
	}

	result, err := paginate[model.Session](query, page, order)
	if err != nil {
		return result, fmt.Errorf("failed to list sessions: %w", err)
	}
	return result, nil
}

// ListForMentorship returns the sessions of one mentorship the caller takes part in
func (s *SessionService) ListForMentorship(ctx context.Context, actor Actor, mentorshipID uint, page Page) (PageResult[model.Session], error) {
	var m model.Mentorship
	if err := s.db.WithContext(ctx).First(&m, mentorshipID).Error; err != nil {
		return PageResult[model.Session]{}, apperr.NotFoundOr(err, "mentorship not found")
	}
	if !m.HasParticipant(actor.ID) && !actor.IsAdmin() {
		return PageResult[model.Session]{}, apperr.Forbidden("not authorized to access this mentorship")
	}

	query := s.db.WithContext(ctx).Model(&model.Session{}).Where("mentorship_id = ?", mentorshipID)
	result, err := paginate[model.Session](query, page, "start_time ASC, id ASC")
	if err != nil {
		return result, fmt.Errorf("failed to list sessions: %w", err)
	}
	return result, nil
}

// Get loads a session visible to the caller
func (s *SessionService) Get(ctx context.Context, actor Actor, id uint) (*model.Session, error) {
	var session model.Session
	if err := s.db.WithContext(ctx).First(&session, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "session not found")
	}
	if !session.HasParticipant(actor.ID) && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to access this session")
	}
	return &session, nil
}

// UpdateStatus moves a session along its lifecycle
func (s *SessionService) UpdateStatus(ctx context.Context, actor Actor, id uint, next model.SessionStatus) (*model.Session, error) {
	var session model.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&session, id).Error; err != nil {
			return apperr.NotFoundOr(err, "session not found")
		}
		if !session.HasParticipant(actor.ID) {
			return apperr.Forbidden("not authorized to update this session")
		}
		// Check transition is allowed
		if !session.Status.CanTransitionTo(next) {
			return apperr.BadRequest(fmt.Sprintf("cannot change session status from %s to %s", session.Status, next))
		}
		session.Status = next
		return tx.Model(&session).Update("status", next).Error
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateNotes replaces the notes of a session
func (s *SessionService) UpdateNotes(ctx context.Context, actor Actor, id uint, notes string) (*model.Session, error) {
	session, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !session.HasParticipant(actor.ID) {
		return nil, apperr.Forbidden("not authorized to update this session")
	}
	session.Notes = strings.TrimSpace(notes)
	if err := s.db.WithContext(ctx).Model(session).Update("notes", session.Notes).Error; err != nil {
		return nil, fmt.Errorf("failed to update notes: %w", err)
	}
	return session, nil
}
