package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/agrolink/apiserver/internal/services"
	"github.com/agrolink/apiserver/internal/store"
	"github.com/agrolink/apiserver/types"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type memUserRepo struct {
	mu     sync.Mutex
	nextID int
	users  map[int]types.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (r *memUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *memUserRepo) List(_ context.Context) ([]types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]types.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, user)
	}
	return out, nil
}

func (r *memUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func newAuthTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	router := chi.NewRouter()
	AuthRouter(router, services.NewUserService(newMemUserRepo()), testSecret)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any, token string) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func registerUser(t *testing.T, server *httptest.Server, name, email, role string) AuthResponse {
	t.Helper()
	resp := postJSON(t, server.URL+"/register", RegisterRequest{
		Name:     name,
		Email:    email,
		Password: "secret123",
		Role:     role,
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[AuthResponse](t, resp)
}

func TestRegisterIssuesToken(t *testing.T) {
	server := newAuthTestServer(t)

	auth := registerUser(t, server, "Fatema", "fatema@agrolink.test", "farmer")
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, types.RoleFarmer, auth.User.Role)
	assert.NotZero(t, auth.User.ID)
}

func TestRegisterRejectsReservedRoles(t *testing.T) {
	server := newAuthTestServer(t)

	for _, role := range []string{"admin", "transporter", "superuser"} {
		resp := postJSON(t, server.URL+"/register", RegisterRequest{
			Name:     "X",
			Email:    "x@agrolink.test",
			Password: "secret123",
			Role:     role,
		}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "role %s", role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := newAuthTestServer(t)
	registerUser(t, server, "Fatema", "fatema@agrolink.test", "farmer")

	resp := postJSON(t, server.URL+"/register", RegisterRequest{
		Name:     "Imposter",
		Email:    "fatema@agrolink.test",
		Password: "secret123",
		Role:     "buyer",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	server := newAuthTestServer(t)

	// Short password and malformed email are rejected before any
	// account is created.
	resp := postJSON(t, server.URL+"/register", RegisterRequest{
		Name: "X", Email: "not-an-email", Password: "secret123", Role: "buyer",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, server.URL+"/register", RegisterRequest{
		Name: "X", Email: "x@agrolink.test", Password: "123", Role: "buyer",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	server := newAuthTestServer(t)
	registerUser(t, server, "Bashir", "bashir@agrolink.test", "buyer")

	resp := postJSON(t, server.URL+"/login", LoginRequest{Email: "bashir@agrolink.test", Password: "secret123"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	auth := decodeBody[AuthResponse](t, resp)
	assert.NotEmpty(t, auth.Token)
	assert.Equal(t, "Bashir", auth.User.Name)

	resp = postJSON(t, server.URL+"/login", LoginRequest{Email: "bashir@agrolink.test", Password: "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = postJSON(t, server.URL+"/login", LoginRequest{Email: "nobody@agrolink.test", Password: "secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProfileRequiresAuth(t *testing.T) {
	server := newAuthTestServer(t)
	auth := registerUser(t, server, "Fatema", "fatema@agrolink.test", "farmer")

	req, err := http.NewRequest(http.MethodGet, server.URL+"/user", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer "+auth.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user := decodeBody[types.User](t, resp)
	assert.Equal(t, auth.User.ID, user.ID)

	badReq, err := http.NewRequest(http.MethodGet, server.URL+"/user", nil)
	require.NoError(t, err)
	badReq.Header.Set("Authorization", "Bearer not.a.token")
	resp, err = http.DefaultClient.Do(badReq)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshAndLogout(t *testing.T) {
	server := newAuthTestServer(t)
	auth := registerUser(t, server, "Fatema", "fatema@agrolink.test", "farmer")

	resp := postJSON(t, server.URL+"/refresh", struct{}{}, auth.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	refreshed := decodeBody[AuthResponse](t, resp)
	assert.NotEmpty(t, refreshed.Token)
	assert.Equal(t, auth.User.ID, refreshed.User.ID)

	resp = postJSON(t, server.URL+"/logout", struct{}{}, auth.Token)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, server.URL+"/refresh", struct{}{}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
