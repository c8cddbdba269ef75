package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
)

var (
	ErrNotFound             = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("invalid credentials")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		// GetUserByCredentials matches the exact (Email, Password) pair the way
		// the store compares strings; the store's first match wins.
		GetUserByCredentials(ctx context.Context, email, password string) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

// Register creates a student account. The display name is derived from the
// email's local part; no duplicate-email check is performed (the store accepts
// any write that satisfies its required columns).
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	usr := User{
		Email:    nu.Email,
		Password: nu.Password,
		Name:     localPart(nu.Email),
		Role:     RoleStudent,
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

// Authenticate matches the credentials against the store. A miss yields
// ErrAuthenticationFailed and no session is established.
func (svc *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	usr, err := svc.repo.GetUserByCredentials(ctx, email, password)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrAuthenticationFailed
		}
		return User{}, errors.Wrap(err, "matching credentials")
	}
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) sendWelcomeEmail(usr User) {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour student account is ready. Log in with your email to see "+
			"your homework, payments and assigned tests.",
		usr.Name,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome aboard!",
		Body:    body,
	})
}
