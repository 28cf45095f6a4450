package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/prometheus"

	"gorm.io/gorm"
)

// EventInput is the body of an event create or update
type EventInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=8000"`
	Type        model.EventType `json:"type" validate:"required,oneof=workshop webinar networking pitch conference"`
	Category    string          `json:"category" validate:"max=100"`
	StartTime   time.Time       `json:"start_time" validate:"required"`
	EndTime     time.Time       `json:"end_time" validate:"required"`
	Location    string          `json:"location" validate:"max=255"`
	IsVirtual   bool            `json:"is_virtual"`
	MeetingURL  string          `json:"meeting_url" validate:"omitempty,url,max=500"`
	Capacity    int             `json:"capacity" validate:"gte=0"`
	Tags        []string        `json:"tags"`
	ImageURL    string          `json:"image_url" validate:"max=255"`
}

// EventFilter narrows event listings
type EventFilter struct {
	Type     model.EventType
	Category string
	Upcoming bool
}

type EventService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

func (in EventInput) apply(e *model.Event) error {
	if !in.EndTime.After(in.StartTime) {
		return apperr.BadRequest("event end time must be after start time")
	}
	e.Title = strings.TrimSpace(in.Title)
	e.Description = strings.TrimSpace(in.Description)
	e.Type = in.Type
	e.Category = strings.TrimSpace(in.Category)
	e.StartTime = in.StartTime.UTC()
	e.EndTime = in.EndTime.UTC()
	e.Location = strings.TrimSpace(in.Location)
	e.IsVirtual = in.IsVirtual
	e.MeetingURL = strings.TrimSpace(in.MeetingURL)
	e.Capacity = in.Capacity
	e.Tags = cleanList(in.Tags)
	e.ImageURL = strings.TrimSpace(in.ImageURL)
	return nil
}

// Create stores an event organised by the caller
func (s *EventService) Create(ctx context.Context, actor Actor, in EventInput) (*model.Event, error) {
	if actor.Role != model.RoleMentor && !actor.IsAdmin() {
		return nil, apperr.Forbidden("only mentors and admins can create events")
	}
	event := &model.Event{OrganizerID: actor.ID}
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return s.Get(ctx, event.ID)
}

// List returns a page of events with their registration counts
func (s *EventService) List(ctx context.Context, filter EventFilter, page Page) (PageResult[model.Event], error) {
	query := s.db.WithContext(ctx).Model(&model.Event{})
	order := "start_time DESC, id DESC"
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if v := strings.TrimSpace(filter.Category); v != "" {
		query = query.Where("LOWER(category) = ?", strings.ToLower(v))
	}
	if filter.Upcoming {
		query = query.Where("start_time > ?", s.now().UTC())
		order = "start_time ASC, id ASC"
	}

	result, err := paginate[model.Event](query, page, order, "Organizer")
	if err != nil {
		return result, fmt.Errorf("failed to list events: %w", err)
	}
	if err := s.countRegistrations(ctx, result.Data); err != nil {
		return result, err
	}
	return result, nil
}

// Get loads an event with its registration count
func (s *EventService) Get(ctx context.Context, id uint) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).Preload("Organizer").First(&event, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "event not found")
	}
	events := []model.Event{event}
	if err := s.countRegistrations(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// Update replaces the fields of an event organised by the caller
func (s *EventService) Update(ctx context.Context, actor Actor, id uint, in EventInput) (*model.Event, error) {
	event, err := s.organized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(event); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit("Organizer").Save(event).Error; err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes an event organised by the caller
func (s *EventService) Delete(ctx context.Context, actor Actor, id uint) error {
	event, err := s.organized(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(event).Error; err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	return nil
}

// Registrations lists the registrations of an event for its organizer
func (s *EventService) Registrations(ctx context.Context, actor Actor, id uint) ([]model.EventRegistration, error) {
	if _, err := s.organized(ctx, actor, id); err != nil {
		return nil, err
	}
	regs := make([]model.EventRegistration, 0)
	err := s.db.WithContext(ctx).Preload("User").
		Where("event_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	return regs, nil
}

// Register signs the caller up for an event. A cancelled registration is reactivated.
func (s *EventService) Register(ctx context.Context, actor Actor, eventID uint) (*model.EventRegistration, error) {
	var reg model.EventRegistration
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the event so capacity is checked against a stable count
		var event model.Event
		if err := forUpdate(tx).First(&event, eventID).Error; err != nil {
			return apperr.NotFoundOr(err, "event not found")
		}
		if !event.StartTime.After(s.now()) {
			return apperr.BadRequest("cannot register for a past event")
		}

		// Check for an existing registration
		err := tx.Where("event_id = ? AND user_id = ?", eventID, actor.ID).First(&reg).Error
		switch {
		case err == nil && reg.Status != model.RegistrationCancelled:
			return apperr.Conflict("already registered for this event")
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("failed to load registration: %w", err)
		}

		// Zero capacity means unlimited
		if event.Capacity > 0 {
			var taken int64
			err := tx.Model(&model.EventRegistration{}).
				Where("event_id = ? AND status <> ?", eventID, model.RegistrationCancelled).
				Count(&taken).Error
			if err != nil {
				return fmt.Errorf("failed to count registrations: %w", err)
			}
			if taken >= int64(event.Capacity) {
				return apperr.BadRequest("event is full")
			}
		}

		// Reactivate a cancelled registration
		if reg.ID != 0 {
			reg.Status = model.RegistrationRegistered
			return tx.Model(&reg).Update("status", reg.Status).Error
		}

		reg = model.EventRegistration{EventID: eventID, UserID: actor.ID, Status: model.RegistrationRegistered}
		if err := tx.Create(&reg).Error; err != nil {
			if isDuplicate(err) {
				return apperr.Conflict("already registered for this event")
			}
			return fmt.Errorf("failed to create registration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Update metrics
	prometheus.RecordEventRegistration("register")
	return &reg, nil
}

// MyRegistrations lists the caller's registrations with their events
func (s *EventService) MyRegistrations(ctx context.Context, actor Actor) ([]model.EventRegistration, error) {
	regs := make([]model.EventRegistration, 0)
	err := s.db.WithContext(ctx).Preload("Event").
		Where("user_id = ?", actor.ID).
		Order("created_at DESC, id DESC").
		Find(&regs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	return regs, nil
}

// CancelRegistration cancels one of the caller's registrations
func (s *EventService) CancelRegistration(ctx context.Context, actor Actor, id uint) (*model.EventRegistration, error) {
	var reg model.EventRegistration
	if err := s.db.WithContext(ctx).First(&reg, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "registration not found")
	}
	if reg.UserID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to cancel this registration")
	}
	if reg.Status == model.RegistrationCancelled {
		return &reg, nil
	}
	reg.Status = model.RegistrationCancelled
	if err := s.db.WithContext(ctx).Model(&reg).Update("status", reg.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel registration: %w", err)
	}
	prometheus.RecordEventRegistration("cancel")
	return &reg, nil
}

// MarkAttended marks a registration as attended; only the organizer may do this
func (s *EventService) MarkAttended(ctx context.Context, actor Actor, id uint) (*model.EventRegistration, error) {
	var reg model.EventRegistration
	if err := s.db.WithContext(ctx).Preload("Event").First(&reg, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "registration not found")
	}
	if reg.Event == nil || (reg.Event.OrganizerID != actor.ID && !actor.IsAdmin()) {
		return nil, apperr.Forbidden("only the organizer can mark attendance")
	}
	if reg.Status == model.RegistrationCancelled {
		return nil, apperr.BadRequest("registration is cancelled")
	}
	reg.Status = model.RegistrationAttended
	if err := s.db.WithContext(ctx).Model(&reg).Update("status", reg.Status).Error; err != nil {
		return nil, fmt.Errorf("failed to mark attendance: %w", err)
	}
	prometheus.RecordEventRegistration("attend")
	return &reg, nil
}

func (s *EventService) organized(ctx context.Context, actor Actor, id uint) (*model.Event, error) {
	var event model.Event
	if err := s.db.WithContext(ctx).First(&event, id).Error; err != nil {
		return nil, apperr.NotFoundOr(err, "event not found")
	}
	if event.OrganizerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Forbidden("not authorized to manage this event")
	}
	return &event, nil
}

// countRegistrations fills RegistrationCount with the non-cancelled registrations of each event
func (s *EventService) countRegistrations(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]uint, len(events))
	for i := range events {
		ids[i] = events[i].ID
	}

	var rows []struct {
		EventID uint
		Total   int64
	}
	err := s.db.WithContext(ctx).Model(&model.EventRegistration{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ? AND status <> ?", ids, model.RegistrationCancelled).
		Group("event_id").
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("failed to count registrations: %w", err)
	}

	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.EventID] = r.Total
	}
	for i := range events {
		events[i].RegistrationCount = counts[events[i].ID]
	}
	return nil
}
