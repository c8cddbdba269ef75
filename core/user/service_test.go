package user

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/shakhna/portal/core"
	emailsvc "github.com/shakhna/portal/services/email"
)

type stubRepo struct {
	users   map[string]User
	byCreds map[[2]string]User
	err     error
}

var _ Repository = (*stubRepo)(nil)

func (r *stubRepo) CreateUser(_ context.Context, usr User) (User, error) {
	if r.err != nil {
		return User{}, r.err
	}
	usr.ID = "recNewUser"
	if r.users == nil {
		r.users = make(map[string]User)
	}
	r.users[usr.ID] = usr
	return usr, nil
}

func (r *stubRepo) GetUserByCredentials(_ context.Context, email, password string) (User, error) {
	if r.err != nil {
		return User{}, r.err
	}
	if usr, ok := r.byCreds[[2]string{email, password}]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *stubRepo) GetUserByID(_ context.Context, id string) (User, error) {
	if usr, ok := r.users[id]; ok {
		return usr, nil
	}
	return User{}, ErrNotFound
}

func (r *stubRepo) GetUserByEmail(_ context.Context, email string) (User, error) {
	for _, usr := range r.users {
		if usr.Email == email {
			return usr, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *stubRepo) QueryAllUsers(_ context.Context) ([]User, error) {
	users := make([]User, 0, len(r.users))
	for _, usr := range r.users {
		users = append(users, usr)
	}
	return users, nil
}

func (r *stubRepo) UpdateUser(_ context.Context, usr User) (User, error) {
	r.users[usr.ID] = usr
	return usr, nil
}

func newMailMock() *emailsvc.ConsoleServiceMock {
	return emailsvc.NewConsoleServiceMock(&core.Config{AppName: "Test"})
}

func TestService_Register(t *testing.T) {
	repo := &stubRepo{}
	mailSvc := newMailMock()
	svc := NewService(repo, mailSvc)

	usr, err := svc.Register(context.Background(), NewUser{Email: "aliya.k@test.cd", Password: "sekret"})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}

	if usr.Name != "aliya.k" {
		t.Errorf("Name = %q; want the email's local part", usr.Name)
	}
	if usr.Role != RoleStudent {
		t.Errorf("Role = %q; want %q", usr.Role, RoleStudent)
	}
	if usr.ID == "" {
		t.Error("registered user has no id")
	}

	sent := mailSvc.SentMessages()
	if len(sent) != 1 {
		t.Fatalf("len(sent) = %d; want 1 welcome email", len(sent))
	}
	if to := sent[0].To[0].Address; to != usr.Email {
		t.Errorf("welcome email to %q; want %q", to, usr.Email)
	}
}

func TestService_Authenticate(t *testing.T) {
	usr := User{ID: "recU1", Email: "awe@test.cd", Password: "mdr", Name: "awe", Role: RoleStudent}
	repo := &stubRepo{byCreds: map[[2]string]User{{"awe@test.cd", "mdr"}: usr}}
	svc := NewService(repo, newMailMock())

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "exact match", email: "awe@test.cd", password: "mdr"},
		{name: "wrong password", email: "awe@test.cd", password: "MDR", wantErr: ErrAuthenticationFailed},
		{name: "unknown email", email: "lol@test.cd", password: "mdr", wantErr: ErrAuthenticationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Authenticate(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("err = %v; want %v", err, tt.wantErr)
				}
				if got.ID != "" {
					t.Error("failed login must not yield a user")
				}
				return
			}
			if err != nil {
				t.Fatalf("Authenticate() failed: %v", err)
			}
			if got.ID != usr.ID {
				t.Errorf("got user %q; want %q", got.ID, usr.ID)
			}
		})
	}
}

func TestService_Authenticate_storeError(t *testing.T) {
	storeErr := errors.New("store down")
	svc := NewService(&stubRepo{err: storeErr}, newMailMock())

	_, err := svc.Authenticate(context.Background(), "awe@test.cd", "mdr")
	if errors.Cause(err) != storeErr {
		t.Errorf("err = %v; store failures must not read as bad credentials", err)
	}
	if err == ErrAuthenticationFailed {
		t.Error("store failure reported as authentication failure")
	}
}

func TestUser_roles(t *testing.T) {
	tests := []struct {
		role        string
		wantTeacher bool
	}{
		{role: "Teacher", wantTeacher: true},
		{role: "teacher", wantTeacher: true},
		{role: "TEACHER", wantTeacher: true},
		{role: "Student"},
		{role: ""},
		{role: "Admin"},
	}
	for _, tt := range tests {
		usr := User{Role: tt.role}
		if usr.IsTeacher() != tt.wantTeacher {
			t.Errorf("IsTeacher() with role %q = %v", tt.role, usr.IsTeacher())
		}
		if usr.IsStudent() == tt.wantTeacher {
			t.Errorf("IsStudent() with role %q = %v", tt.role, usr.IsStudent())
		}
	}
}
