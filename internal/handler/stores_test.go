package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwilber99/calbright-portal-backend-seperated/internal/config"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/handler"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/middleware"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/model"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/repository"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/router"
	"github.com/jwilber99/calbright-portal-backend-seperated/internal/utils"
)

// In-memory store fakes.  They mirror the repository contracts,
// including sentinel errors and expiry-as-absence for sessions.

type fakeUsers struct {
	mu     sync.Mutex
	nextID uint64
	byName map[string]model.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{nextID: 1, byName: map[string]model.User{}}
}

func (f *fakeUsers) Create(_ context.Context, username, passwordHash string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[username]; ok {
		return model.User{}, repository.ErrUsernameExists
	}
	now := time.Now().UTC()
	u := model.User{
		ID: f.nextID, Username: username, PasswordHash: passwordHash,
		Role: model.RoleUser, CreatedAt: now, UpdatedAt: now,
	}
	f.nextID++
	f.byName[username] = u
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byName[username]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

// add seeds an account directly, bypassing the registration role guard.
func (f *fakeUsers) add(t *testing.T, username, password, role string) model.User {
	t.Helper()
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	u := model.User{ID: f.nextID, Username: username, PasswordHash: hash, Role: role, CreatedAt: now, UpdatedAt: now}
	f.nextID++
	f.byName[username] = u
	return u
}

type fakeSessions struct {
	mu sync.Mutex
	n  int
	m  map[string]model.Session
}

func newFakeSessions() *fakeSessions { return &fakeSessions{m: map[string]model.Session{}} }

func (f *fakeSessions) Create(_ context.Context, userID uint64, role string, ttl time.Duration) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	now := time.Now().UTC()
	s := model.Session{
		ID: fmt.Sprintf("sess-%d", f.n), UserID: userID, Role: role,
		ExpiresAt: now.Add(ttl), CreatedAt: now,
	}
	f.m[s.ID] = s
	return s, nil
}

func (f *fakeSessions) Get(_ context.Context, id string) (model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[id]
	if !ok || s.Expired() {
		delete(f.m, id)
		return model.Session{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeSessions) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.m, id)
	return nil
}

type fakeStudents struct {
	mu     sync.Mutex
	nextID uint64
	m      map[uint64]model.Student
}

func newFakeStudents() *fakeStudents {
	return &fakeStudents{nextID: 1, m: map[uint64]model.Student{}}
}

func (f *fakeStudents) List(_ context.Context) ([]model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Student, 0, len(f.m))
	for _, s := range f.m {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStudents) GetByID(_ context.Context, id uint64) (model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	return s, nil
}

func (f *fakeStudents) Create(_ context.Context, s *model.Student) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.nextID
	f.nextID++
	f.m[s.ID] = *s
	return nil
}

func (f *fakeStudents) Update(_ context.Context, id uint64, p model.StudentPatch) (model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.m[id]
	if !ok {
		return model.Student{}, repository.ErrNotFound
	}
	apply := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&s.FirstName, p.FirstName)
	apply(&s.LastName, p.LastName)
	apply(&s.Email, p.Email)
	apply(&s.Address.City, p.City)
	apply(&s.Address.State, p.State)
	apply(&s.EyeColor, p.EyeColor)
	f.m[id] = s
	return s, nil
}

type deviceRow struct {
	name, deviceType, status string
	assigned                 *uint64
	createdAt, updatedAt     time.Time
}

type fakeDevices struct {
	mu       sync.Mutex
	nextID   uint64
	m        map[uint64]deviceRow
	students *fakeStudents
}

func newFakeDevices(students *fakeStudents) *fakeDevices {
	return &fakeDevices{nextID: 1, m: map[uint64]deviceRow{}, students: students}
}

// build resolves the assignment the way the SQL LEFT JOIN does: a
// dangling student id yields a null projection.
func (f *fakeDevices) build(id uint64, row deviceRow) model.Device {
	d := model.Device{
		ID: id, Name: row.name, Type: row.deviceType, Status: row.status,
		CreatedAt: row.createdAt, UpdatedAt: row.updatedAt,
	}
	if row.assigned != nil {
		if s, ok := f.students.m[*row.assigned]; ok {
			d.AssignedTo = &model.AssignedStudent{
				ID: s.ID, FirstName: s.FirstName, LastName: s.LastName, Email: s.Email,
			}
		}
	}
	return d
}

func (f *fakeDevices) List(_ context.Context) ([]model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Device, 0, len(f.m))
	for id, row := range f.m {
		out = append(out, f.build(id, row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeDevices) GetByID(_ context.Context, id uint64) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.m[id]
	if !ok {
		return model.Device{}, repository.ErrNotFound
	}
	return f.build(id, row), nil
}

func (f *fakeDevices) Create(_ context.Context, name, deviceType, status string, assignedTo *uint64) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	id := f.nextID
	f.nextID++
	f.m[id] = deviceRow{name: name, deviceType: deviceType, status: status, assigned: assignedTo, createdAt: now, updatedAt: now}
	return f.build(id, f.m[id]), nil
}

func (f *fakeDevices) Update(_ context.Context, id uint64, p model.DevicePatch) (model.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.m[id]
	if !ok {
		return model.Device{}, repository.ErrNotFound
	}
	if p.Name != nil {
		row.name = *p.Name
	}
	if p.Type != nil {
		row.deviceType = *p.Type
	}
	if p.Status != nil {
		row.status = *p.Status
	}
	switch {
	case p.ClearAssigned:
		row.assigned = nil
	case p.AssignedTo != nil:
		row.assigned = p.AssignedTo
	}
	row.updatedAt = time.Now().UTC()
	f.m[id] = row
	return f.build(id, row), nil
}

func (f *fakeDevices) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.m, id)
	return nil
}

// testEnv wires the real routes and middleware over the fakes.
type testEnv struct {
	e        *echo.Echo
	users    *fakeUsers
	sessions *fakeSessions
	students *fakeStudents
	devices  *fakeDevices
}

func newEnv() *testEnv {
	env := &testEnv{
		e:        echo.New(),
		users:    newFakeUsers(),
		sessions: newFakeSessions(),
		students: newFakeStudents(),
	}
	env.devices = newFakeDevices(env.students)

	cfg := config.Config{BcryptCost: bcrypt.MinCost, SessionTTL: time.Hour}
	router.RegisterRoutes(env.e)
	router.RegisterAuth(env.e, handler.NewAuthHandler(cfg, env.users, env.sessions, nil))
	router.RegisterStudents(env.e, handler.NewStudentHandler(env.students), env.sessions, env.users)
	router.RegisterDevices(env.e, handler.NewDeviceHandler(env.devices, nil), env.sessions, env.users)
	return env
}

func (env *testEnv) do(method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == middleware.SessionCookie && ck.Value != "" {
			return ck
		}
	}
	return nil
}

// login authenticates an existing account and returns its cookie.
func (env *testEnv) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()
	rec := env.do(http.MethodPost, "/login",
		fmt.Sprintf(`{"username":%q,"password":%q}`, username, password), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: got status %d, body %s", username, rec.Code, rec.Body.String())
	}
	ck := sessionCookie(rec)
	if ck == nil {
		t.Fatalf("login %s: no session cookie set", username)
	}
	return ck
}

// loginAdmin seeds an admin account and logs it in.
func (env *testEnv) loginAdmin(t *testing.T) *http.Cookie {
	t.Helper()
	env.users.add(t, "admin", "adminpassword", model.RoleAdmin)
	return env.login(t, "admin", "adminpassword")
}
