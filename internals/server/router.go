package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/rs/cors"

	"tasklist/internals/handlers/respond"
	"tasklist/internals/handlers/tasks"
	"tasklist/internals/handlers/users"
	"tasklist/internals/middleware"
	"tasklist/internals/security"
	"tasklist/internals/storage"
)

// Options carries the router settings taken from configuration.
type Options struct {
	AllowedOrigins []string
	Superuser      users.Superuser
}

// NewRouter wires every endpoint over one store and hasher.
func NewRouter(store *storage.Storage, hasher security.Hasher, opts Options) http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("POST /user/add", users.RegisterHandler(store, hasher))
	router.HandleFunc("POST /users/login", users.LoginHandler(store, hasher, opts.Superuser))
	router.HandleFunc("POST /user/verify", users.VerifyHandler(store, hasher))
	router.HandleFunc("GET /user/get", users.ListHandler(store))
	router.HandleFunc("GET /user/get/{id}", users.GetHandler(store))
	router.HandleFunc("DELETE /user/delete/{id}", users.DeleteHandler(store))

	router.HandleFunc("POST /tasks/add", tasks.AddHandler(store))
	router.HandleFunc("GET /tasks/getall/{user_id}", tasks.ListHandler(store))
	router.HandleFunc("DELETE /tasks/delete/{id}", tasks.DeleteHandler(store))

	router.HandleFunc("GET /health", healthHandler(store))

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})

	return middleware.RequestLogger(middleware.Recovery(c.Handler(router)))
}

func healthHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			log.Printf("Health check failed: %v", err)
			respond.JSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "down",
			})
			return
		}
		respond.JSON(w, http.StatusOK, map[string]string{
			"status":   "healthy",
			"database": "up",
		})
	}
}
