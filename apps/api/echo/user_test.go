package echoapi

import (
	"net/http"
	"testing"

	"github.com/shakhna/portal/core/user"
)

func TestAuthAPI_register(t *testing.T) {
	env := setup(t)

	t.Run("missing fields", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/register", []byte(`{}`))
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("code = %d; want 400\nbody: %s", rec.Code, rec.Body.String())
		}
		var fldErrs map[string]string
		decodeBody(t, rec, &fldErrs)
		for _, fld := range []string{"email", "password"} {
			if _, ok := fldErrs[fld]; !ok {
				t.Errorf("missing field error for %q: %v", fld, fldErrs)
			}
		}
	})

	t.Run("student account is created and logged in", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/register",
			[]byte(`{"email": "aliya.k@test.cd", "password": "sekret"}`))
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %d; want 201\nbody: %s", rec.Code, rec.Body.String())
		}
		var res LoginResponse
		decodeBody(t, rec, &res)
		if res.Token == "" {
			t.Error("register must log the student straight in")
		}
		if res.User.Name != "aliya.k" {
			t.Errorf("Name = %q; want the email's local part", res.User.Name)
		}
		if res.User.Role != user.RoleStudent {
			t.Errorf("Role = %q; register only ever creates students", res.User.Role)
		}

		sent := env.mailSvc.SentMessages()
		if len(sent) != 1 || sent[0].To[0].Address != "aliya.k@test.cd" {
			t.Errorf("welcome email not sent: %+v", sent)
		}
	})
}

func TestAuthAPI_login(t *testing.T) {
	env := setup(t)
	usr := env.db.AddUser(user.User{Email: "awe@test.cd", Password: "mdr", Name: "awe", Role: user.RoleStudent})

	t.Run("exact match wins", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/auth/login",
			[]byte(`{"email": "awe@test.cd", "password": "mdr"}`))
		env.server.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d; want 200\nbody: %s", rec.Code, rec.Body.String())
		}
		var res LoginResponse
		decodeBody(t, rec, &res)
		if res.Token == "" {
			t.Error("login must yield a session token")
		}
		if res.User.ID != usr.ID {
			t.Errorf("user = %+v", res.User)
		}
	})

	tests := []httpTest{
		{
			name:     "wrong password yields no session",
			body:     []byte(`{"email": "awe@test.cd", "password": "MDR"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown email yields no session",
			body:     []byte(`{"email": "lol@test.cd", "password": "mdr"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/auth/login", tt.body)
			env.server.ServeHTTP(rec, req)

			tt.wantData = marchallObj(t, httpErr{Error: "invalid credentials"})
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAuthAPI_me(t *testing.T) {
	env := setup(t)
	usr := env.db.AddUser(user.User{Email: "awe@test.cd", Password: "mdr", Name: "awe", Role: user.RoleStudent})

	tests := []httpTest{
		{
			name:     "no token",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed token reads as no session",
			token:    "lol.not.a.token",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name:     "session carries the user record",
			token:    getToken(t, env.conf, usr),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, user.User{ID: usr.ID, Email: usr.Email, Name: usr.Name, Role: usr.Role}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/auth/me", tt.token)
			env.server.ServeHTTP(rec, req)

			if tt.name == "no token" {
				tt.wantData = marchallObj(t, errMissingToken)
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func TestAuthAPI_logout(t *testing.T) {
	env := setup(t)
	usr := env.db.AddUser(user.User{Email: "awe@test.cd", Password: "mdr", Role: user.RoleStudent})

	req, rec := newAuthRequest(http.MethodPost, "/api/auth/logout", getToken(t, env.conf, usr))
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("code = %d; want 204", rec.Code)
	}
}

func TestHome(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/")
	env.server.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("code = %d; want 200", rec.Code)
	}
	if rec.Body.String() != "Welcome to the Shakhna portal API!" {
		t.Errorf("body = %q", rec.Body.String())
	}
}
