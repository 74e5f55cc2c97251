package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wichananm65/boutique-backend/internal/logger"
	"github.com/wichananm65/boutique-backend/internal/mailer"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

type Service struct {
	repo     Repository
	mail     mailer.EmailSender
	appURL   string
	resetTTL time.Duration
	now      func() time.Time
}

type Option func(*Service)

// WithMailer sets the sender used for password reset emails and the base
// URL of the storefront used to build the reset link.
func WithMailer(m mailer.EmailSender, appURL string) Option {
	return func(s *Service) {
		s.mail = m
		s.appURL = strings.TrimRight(appURL, "/")
	}
}

func WithResetTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.resetTTL = ttl
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		mail:     mailer.LogSender{},
		resetTTL: 15 * time.Minute,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) List() ([]User, error) {
	return s.repo.List()
}

func (s *Service) GetByID(id string) (User, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Register(user User) (User, error) {
	if len(user.Password) < minPasswordLength {
		return User{}, ErrPasswordTooShort
	}
	user.Email = strings.TrimSpace(strings.ToLower(user.Email))
	if _, err := s.repo.GetByEmail(user.Email); err == nil {
		return User{}, ErrEmailExists
	} else if err != ErrNotFound {
		return User{}, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user.Password = string(hashed)
	user.Role = RoleUser
	return s.repo.Create(user)
}

func (s *Service) Authenticate(email, password string) (User, error) {
	user, err := s.repo.GetByEmail(strings.TrimSpace(email))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

func (s *Service) UpdateRole(id, role string) (User, error) {
	role = strings.ToUpper(strings.TrimSpace(role))
	if role != RoleAdmin && role != RoleUser {
		return User{}, ErrInvalidRole
	}
	return s.repo.UpdateRole(id, role)
}

// RequestPasswordReset stores a fresh token and emails the reset link.
// Unknown emails are not reported so the endpoint cannot be used to probe
// for accounts.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.GetByEmail(strings.TrimSpace(email))
	if err == ErrNotFound {
		logger.Log.Info("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	if err := s.repo.SetResetToken(user.ID, token, s.now().Add(s.resetTTL)); err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reinitialiser-mot-de-passe?token=%s", s.appURL, token)
	body := fmt.Sprintf(`<p>Bonjour %s,</p>
<p>Vous avez demandé la réinitialisation de votre mot de passe. Ce lien expire dans %d minutes :</p>
<p><a href="%s">%s</a></p>
<p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>`,
		html.EscapeString(user.FirstName), int(s.resetTTL.Minutes()), link, link)

	if err := s.mail.SendEmail(ctx, user.Email, "Réinitialisation de votre mot de passe", body); err != nil {
		logger.Log.Error("failed to send reset email", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}
	return nil
}

// ResetPassword replaces the password of the user holding token, provided
// the token has not expired.
func (s *Service) ResetPassword(token, password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if token == "" {
		return ErrInvalidResetToken
	}

	user, err := s.repo.GetByResetToken(token)
	if err == ErrNotFound {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}
	if user.ResetTokenExpiry == nil || !s.now().Before(*user.ResetTokenExpiry) {
		return ErrInvalidResetToken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(user.ID, string(hashed))
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
