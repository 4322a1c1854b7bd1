// Package services contains the server-side business logic. UserService
// handles registration, activation, login and profile updates.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tentech-me/tentech-api/internal/common"
	"github.com/tentech-me/tentech-api/internal/cryptox"
	"github.com/tentech-me/tentech-api/internal/dbx"
	"github.com/tentech-me/tentech-api/internal/logging"
	"github.com/tentech-me/tentech-api/internal/server/auth"
	"github.com/tentech-me/tentech-api/internal/server/mail"
	"github.com/tentech-me/tentech-api/internal/server/models"
	"github.com/tentech-me/tentech-api/internal/server/repositories/repomanager"
)

// Registration is the input of Register.
type Registration struct {
	Username string
	Nickname string
	Email    string
	Password string
}

type UserService struct {
	runner            dbx.TxRunner
	repomanager       repomanager.RepositoryManager
	authority         *auth.Authority
	mailer            mail.Sender
	activationBaseURL string
	logger            logging.Logger
	now               func() time.Time
}

func NewUserService(runner dbx.TxRunner, m repomanager.RepositoryManager, a *auth.Authority,
	mailer mail.Sender, activationBaseURL string, logger logging.Logger) *UserService {
	return &UserService{
		runner:            runner,
		repomanager:       m,
		authority:         a,
		mailer:            mailer,
		activationBaseURL: activationBaseURL,
		logger:            logger.With("module", "users"),
		now:               time.Now,
	}
}

// Register stores the account and mails an activation link. The insert is
// rolled back when the mail cannot be sent so the address can be reused.
func (s *UserService) Register(ctx context.Context, in Registration) (*models.User, error) {
	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var user *models.User
	err = s.runner.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		u, err := s.repomanager.Users(tx).Create(ctx, &models.User{
			Username:     in.Username,
			Nickname:     in.Nickname,
			Email:        in.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}

		token, err := s.authority.Issue(auth.IdentityFromUser(u))
		if err != nil {
			return err
		}

		if err := s.mailer.Send(ctx, u.Email, u.Nickname, s.ActivationLink(token)); err != nil {
			s.logger.Warn(ctx, "activation mail failed", "user_id", u.ID, "error", err)
			return ErrCannotSendEmail
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// ActivationLink appends the percent-encoded token to the activation URL.
func (s *UserService) ActivationLink(token string) string {
	sep := "?"
	if strings.Contains(s.activationBaseURL, "?") {
		sep = "&"
	}
	return s.activationBaseURL + sep + common.ActivationTokenParam + "=" + url.QueryEscape(token)
}

// Activate marks the account named by an activation token as activated.
// Expired tokens are rejected before storage is consulted.
func (s *UserService) Activate(ctx context.Context, token string) (*models.User, error) {
	payload, err := s.authority.Verify(token)
	if err != nil {
		return nil, err
	}
	if s.authority.IsExpired(payload) {
		return nil, auth.ErrExpired
	}

	repo := s.repomanager.Users(s.runner.DB())
	user, err := repo.GetByID(ctx, payload.Identity.ID)
	if err != nil {
		return nil, err
	}
	if user.Activated {
		return nil, common.ErrorAlreadyActivated
	}

	user, err = repo.MarkActivated(ctx, user.ID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "user activated", "user_id", user.ID)
	return user, nil
}

// Login checks the password and returns a session token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.runner.DB()).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", ErrCannotVerifyPassword
		}
		return "", err
	}

	if err := cryptox.ComparePassword(user.PasswordHash, password); err != nil {
		return "", ErrCannotVerifyPassword
	}

	return s.authority.Issue(auth.IdentityFromUser(user))
}

func (s *UserService) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.runner.DB()).GetByID(ctx, id)
}

// Update applies a partial profile update. Users may only edit themselves.
// Tokens issued earlier keep the old profile until the next login.
func (s *UserService) Update(ctx context.Context, actorID, id int64, upd models.UserUpdate) (*models.User, error) {
	if actorID != id {
		return nil, common.ErrorForbidden
	}
	return s.repomanager.Users(s.runner.DB()).Update(ctx, id, upd)
}
