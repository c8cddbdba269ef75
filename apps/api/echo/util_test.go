package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/shakhna/portal/core"
	"github.com/shakhna/portal/core/school"
	"github.com/shakhna/portal/core/user"
	emailsvc "github.com/shakhna/portal/services/email"
	inmemdb "github.com/shakhna/portal/storage/inmem"
	"github.com/shakhna/portal/storage/testindex"
)

type httpErr struct {
	Error string `json:"error"`
}

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mediaMock struct {
	uploaded *core.UploadedFile
}

func (m *mediaMock) Upload(_ context.Context, filename string, _ io.Reader) *core.UploadedFile {
	if m.uploaded == nil {
		return nil
	}
	up := *m.uploaded
	if up.Filename == "" {
		up.Filename = filename
	}
	return &up
}

type catalogMock struct {
	files []testindex.File
	err   error
}

func (m *catalogMock) Available(context.Context) ([]testindex.File, error) {
	return m.files, m.err
}

type testEnv struct {
	server  Server
	conf    *core.Config
	db      *inmemdb.DB
	mailSvc *emailsvc.ConsoleServiceMock
	media   *mediaMock
	catalog *catalogMock
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	conf := &core.Config{
		TestMode:  true,
		AppName:   "Shakhna",
		SecretKey: "test-secret",
		TestsDir:  t.TempDir(),
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}

	db := inmemdb.New()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	media := &mediaMock{}
	catalog := &catalogMock{}
	validate, translator := core.NewValidator()

	srv := NewServer("", nil, &Deps{
		Conf:           conf,
		Logger:         nopLogger{},
		UserSvc:        user.NewService(inmemdb.NewUserRepository(db), mailSvc),
		SchoolSvc:      school.NewService(inmemdb.NewSchoolRepository(db), nopLogger{}),
		MediaSvc:       media,
		TestCatalog:    catalog,
		Validate:       validate,
		Translator:     translator,
		DisableReqLogs: true,
	})
	return &testEnv{
		server:  srv,
		conf:    conf,
		db:      db,
		mailSvc: mailSvc,
		media:   media,
		catalog: catalog,
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newUploadRequest(t *testing.T, path, token, filename string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile() failed: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), obj); err != nil {
		t.Fatalf("decoding response body failed: %v\nbody: %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v\nbody: %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
		return
	}
	if !ok {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(tt.wantData)),
			B:        difflib.SplitLines(rec.Body.String()),
			FromFile: "want",
			ToFile:   "got",
			Context:  2,
		})
		t.Errorf("failed! data mismatch:\n%s", diff)
	}
}
