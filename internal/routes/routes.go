package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"microblog/internal/handlers"
	"microblog/internal/middleware"
)

type Handlers struct {
	Auth     *handlers.AuthHandler
	Password *handlers.PasswordHandler
	Posts    *handlers.PostHandler
	Account  *handlers.AccountHandler
	Health   http.HandlerFunc
}

func InitRoutes(router *mux.Router, h Handlers, auth middleware.Authenticator, uploadDir string) {
	router.Use(middleware.RequestID, middleware.Recoverer, middleware.Logging)

	router.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	router.PathPrefix("/static/profile_pics/").Handler(
		http.StripPrefix("/static/profile_pics/", http.FileServer(http.Dir(uploadDir))),
	).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()

	// --- Публичные маршруты ---
	api.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)

	api.HandleFunc("/reset_password", h.Password.RequestReset).Methods(http.MethodPost)
	api.HandleFunc("/reset_password/{token}", h.Password.CheckReset).Methods(http.MethodGet)
	api.HandleFunc("/reset_password/{token}", h.Password.ConfirmReset).Methods(http.MethodPost)

	api.HandleFunc("/posts", h.Posts.List).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{username}/posts", h.Posts.ListByUser).Methods(http.MethodGet)

	// --- Защищённые JWT ---
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.JWTAuth(auth))

	protected.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodPost)

	protected.HandleFunc("/posts", h.Posts.Create).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/posts/{id:[0-9]+}", h.Posts.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/account", h.Account.Get).Methods(http.MethodGet)
	protected.HandleFunc("/account", h.Account.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/account/picture", h.Account.UploadPicture).Methods(http.MethodPost)
}
