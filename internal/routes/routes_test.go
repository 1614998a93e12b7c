package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"microblog/internal/handlers"
	"microblog/internal/models"
	"microblog/internal/utils"
)

type stubServices struct{}

func (stubServices) Register(context.Context, string, string, string) (*models.User, error) {
	return &models.User{ID: 1}, nil
}
func (stubServices) Login(context.Context, string, string) (string, *models.User, error) {
	return "", nil, errors.New("not used")
}
func (stubServices) Logout(context.Context, string, time.Time) error { return nil }
func (stubServices) Allow(context.Context, string, int, time.Duration) bool {
	return true
}
func (stubServices) RequestReset(context.Context, string) error { return nil }
func (stubServices) CheckToken(_ context.Context, token string) bool {
	return token == "good"
}
func (stubServices) ConfirmReset(context.Context, string, string) error { return nil }
func (stubServices) Create(context.Context, int64, string, string) (*models.Post, error) {
	return &models.Post{ID: 1}, nil
}
func (stubServices) Get(context.Context, int64) (*models.Post, error) { return &models.Post{ID: 1}, nil }
func (stubServices) Update(context.Context, int64, int64, string, string) (*models.Post, error) {
	return &models.Post{ID: 1}, nil
}
func (stubServices) Delete(context.Context, int64, int64) error { return nil }
func (stubServices) List(_ context.Context, page int) (models.Page[*models.Post], error) {
	return models.NewPage[*models.Post](nil, page, 5, 0), nil
}
func (stubServices) ListByUser(_ context.Context, _ string, page int) (models.Page[*models.Post], error) {
	return models.NewPage[*models.Post](nil, page, 5, 0), nil
}

type stubAccount struct{}

func (stubAccount) Get(_ context.Context, id int64) (*models.User, error) {
	return &models.User{ID: id}, nil
}
func (stubAccount) Update(_ context.Context, id int64, u, e string) (*models.User, error) {
	return &models.User{ID: id, Username: u, Email: e}, nil
}
func (stubAccount) SavePicture(_ context.Context, id int64, _ string, _ io.Reader) (*models.User, error) {
	return &models.User{ID: id}, nil
}

type tokenAuth struct{}

func (tokenAuth) Authenticate(_ context.Context, raw string) (*utils.AccessClaims, error) {
	if raw != "valid" {
		return nil, errors.New("bad token")
	}
	return &utils.AccessClaims{UserID: 1}, nil
}

func newRouter(t *testing.T) *mux.Router {
	s := stubServices{}
	r := mux.NewRouter()
	InitRoutes(r, Handlers{
		Auth:     handlers.NewAuthHandler(s, s),
		Password: handlers.NewPasswordHandler(s),
		Posts:    handlers.NewPostHandler(s),
		Account:  handlers.NewAccountHandler(stubAccount{}),
		Health:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) },
	}, tokenAuth{}, t.TempDir())
	return r
}

func TestRoutes(t *testing.T) {
	router := newRouter(t)

	cases := []struct {
		method, path, body, token string
		want                      int
	}{
		{http.MethodGet, "/healthz", "", "", http.StatusOK},
		{http.MethodGet, "/api/posts", "", "", http.StatusOK},
		{http.MethodGet, "/api/posts/1", "", "", http.StatusOK},
		{http.MethodGet, "/api/users/alice/posts", "", "", http.StatusOK},
		{http.MethodGet, "/api/reset_password/good", "", "", http.StatusOK},
		{http.MethodGet, "/api/reset_password/bad", "", "", http.StatusBadRequest},
		{http.MethodPost, "/api/reset_password", `{"email":"a@example.com"}`, "", http.StatusOK},
		{http.MethodPost, "/api/reset_password/good", `{"password":"NewPass1!","confirm_password":"NewPass1!"}`, "", http.StatusOK},
		{http.MethodPost, "/api/posts", `{"title":"t","content":"c"}`, "", http.StatusUnauthorized},
		{http.MethodPost, "/api/posts", `{"title":"t","content":"c"}`, "valid", http.StatusCreated},
		{http.MethodDelete, "/api/posts/1", "", "invalid", http.StatusUnauthorized},
		{http.MethodDelete, "/api/posts/1", "", "valid", http.StatusOK},
		{http.MethodGet, "/api/account", "", "", http.StatusUnauthorized},
		{http.MethodGet, "/api/account", "", "valid", http.StatusOK},
		{http.MethodPost, "/api/logout", "", "valid", http.StatusOK},
		{http.MethodPut, "/api/posts/1", "", "valid", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
			if tc.want != http.StatusMethodNotAllowed {
				// middleware роутера не вызываются, если маршрут не найден
				assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			}
		})
	}
}
