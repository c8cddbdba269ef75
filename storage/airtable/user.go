package airtable

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shakhna/portal/core/user"
)

type userRepository struct {
	client *Client
	table  string
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(client *Client, table string) user.Repository {
	return &userRepository{client: client, table: table}
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	fields := map[string]interface{}{
		"Email":    usr.Email,
		"Password": usr.Password,
		"Name":     usr.Name,
		"Role":     usr.Role,
	}
	if usr.GroupID.Valid {
		fields["Group"] = []string{usr.GroupID.String}
	}
	rec, err := repo.client.Create(ctx, repo.table, fields)
	if err != nil {
		return user.User{}, err
	}
	return userFromRecord(rec), nil
}

func (repo *userRepository) GetUserByCredentials(ctx context.Context, email, password string) (user.User, error) {
	filter := And(Eq("Email", email), Eq("Password", password))
	recs, err := repo.client.List(ctx, repo.table, filter)
	if err != nil {
		return user.User{}, err
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return userFromRecord(recs[0]), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	rec, err := repo.client.Get(ctx, repo.table, id)
	if err != nil {
		if isNotFound(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return userFromRecord(rec), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	recs, err := repo.client.List(ctx, repo.table, Eq("Email", email))
	if err != nil {
		return user.User{}, err
	}
	if len(recs) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return userFromRecord(recs[0]), nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	recs, err := repo.client.List(ctx, repo.table, "")
	if err != nil {
		return nil, err
	}
	users := make([]user.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, userFromRecord(rec))
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return user.User{}, errors.New("updating a user requires its record id")
	}
	fields := map[string]interface{}{
		"Email":    usr.Email,
		"Password": usr.Password,
		"Name":     usr.Name,
		"Role":     usr.Role,
	}
	rec, err := repo.client.Update(ctx, repo.table, usr.ID, fields)
	if err != nil {
		return user.User{}, err
	}
	return userFromRecord(rec), nil
}

func userFromRecord(rec Record) user.User {
	usr := user.User{
		ID:        rec.ID,
		Email:     rec.Str("Email"),
		Password:  rec.Str("Password"),
		Name:      rec.Str("Name"),
		Role:      rec.Str("Role"),
		CreatedAt: rec.CreatedTime,
	}
	if ids := rec.IDs("Group"); len(ids) > 0 {
		usr.GroupID = null.StringFrom(ids[0])
	}
	return usr
}

func isNotFound(err error) bool {
	re, ok := errors.Cause(err).(*ReadError)
	return ok && re.Status == http.StatusNotFound
}
