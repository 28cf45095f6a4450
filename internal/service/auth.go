package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentorship-service/internal/apperr"
	"mentorship-service/internal/model"
	"mentorship-service/pkg/jwtutil"
	"mentorship-service/pkg/logger"
	"mentorship-service/pkg/mailer"
	"mentorship-service/pkg/tokenstore"
	"mentorship-service/prometheus"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = time.Hour

// RegisterInput is the payload of a registration
type RegisterInput struct {
	Name     string     `json:"name" validate:"required,min=2,max=100"`
	Email    string     `json:"email" validate:"required,email,max=255"`
	Password string     `json:"password" validate:"required,min=6,max=72"`
	Role     model.Role `json:"role" validate:"omitempty,oneof=mentee mentor"`
}

// AuthResult is returned by register and login
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService handles credentials, tokens and account verification
type AuthService struct {
	db        *gorm.DB
	jwt       *jwtutil.JWTUtil
	tokens    tokenstore.Store
	mail      mailer.Sender
	clientURL string
	now       func() time.Time
}

func NewAuthService(db *gorm.DB, jwt *jwtutil.JWTUtil, tokens tokenstore.Store, mail mailer.Sender, clientURL string) *AuthService {
	return &AuthService{
		db:        db,
		jwt:       jwt,
		tokens:    tokens,
		mail:      mail,
		clientURL: clientURL,
		now:       time.Now,
	}
}

// Register creates an account and returns a session token
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	role := in.Role
	if role == "" {
		role = model.RoleMentee
	}
	if role != model.RoleMentee && role != model.RoleMentor {
		return nil, apperr.BadRequest("role must be mentee or mentor")
	}

	defer prometheus.TrackDBOperation("register")(time.Now())

	// Check if email already exists, deleted accounts included
	var count int64
	if err := s.db.WithContext(ctx).Unscoped().Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return nil, apperr.Conflict("user already exists")
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Create user
	user := &model.User{
		Name:              strings.TrimSpace(in.Name),
		Email:             email,
		Password:          string(hash),
		Role:              role,
		VerificationToken: newToken(),
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return nil, apperr.Conflict("user already exists")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	prometheus.RegisterCounter.Inc()

	s.sendMail(ctx, user.Email, "Verify your email",
		fmt.Sprintf("Hello %s,\n\nPlease verify your email address:\n%s/verify-email/%s\n", user.Name, s.clientURL, user.VerificationToken))

	return s.issue(user)
}

// Login checks credentials and returns a session token
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		prometheus.RecordAuthError("login_failure")
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		prometheus.RecordAuthError("login_failure")
		return nil, apperr.Unauthorized("invalid credentials")
	}

	now := s.now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("failed to stamp last login: %w", err)
	}
	prometheus.LoginCounter.Inc()

	return s.issue(&user)
}

// Logout revokes the token described by claims for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *jwtutil.UserClaims) error {
	if claims.ID == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, claims.ID, claims.ExpiresIn(s.now()))
}

// VerifyEmail marks the account holding token as verified
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return apperr.BadRequest("invalid verification token")
	}
	res := s.db.WithContext(ctx).Model(&model.User{}).
		Where("verification_token = ?", token).
		Updates(map[string]interface{}{"is_verified": true, "verification_token": ""})
	if res.Error != nil {
		return fmt.Errorf("failed to verify email: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.BadRequest("invalid verification token")
	}
	return nil
}

// ForgotPassword mails a reset link. Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.FromCtx(ctx).Info("Password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	// Generate reset token valid for one hour
	token := newToken()
	expires := s.now().UTC().Add(resetTokenTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_password_token":   token,
		"reset_password_expires": expires,
	}).Error; err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}

	s.sendMail(ctx, user.Email, "Reset your password",
		fmt.Sprintf("Hello %s,\n\nReset your password within one hour:\n%s/reset-password/%s\n", user.Name, s.clientURL, token))
	return nil
}

// ResetPassword sets a new password using a reset token
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return apperr.BadRequest("invalid or expired reset token")
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", token, s.now().UTC()).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.BadRequest("invalid or expired reset token")
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Set password and clear the token so it cannot be reused
	return s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password":               string(hash),
		"reset_password_token":   "",
		"reset_password_expires": nil,
	}).Error
}

func (s *AuthService) issue(user *model.User) (*AuthResult, error) {
	token, _, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) sendMail(ctx context.Context, to, subject, body string) {
	if err := s.mail.Send(ctx, to, subject, body); err != nil {
		logger.FromCtx(ctx).Warn("Failed to send mail", zap.String("subject", subject), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func newToken() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
