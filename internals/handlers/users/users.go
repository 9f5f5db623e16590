package users

import (
	"context"
	"errors"
	"log"
	"net/http"

	"tasklist/internals/handlers/respond"
	"tasklist/internals/models"
	"tasklist/internals/security"
	"tasklist/internals/storage"
)

const jsonRequired = "Data must be json"

var errWrongPassword = errors.New("wrong password")

// Superuser is the fixed account that login reports as admin. It is matched
// against the submitted plaintext pair, after the stored hash has verified.
type Superuser struct {
	Username string
	Password string
}

func (s Superuser) matches(username, password string) bool {
	return s.Username != "" && username == s.Username && password == s.Password
}

// Missing JSON fields stay nil and reach the store as NULL.
type credentials struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
}

func (c credentials) values() (username, password string) {
	if c.Username != nil {
		username = *c.Username
	}
	if c.Password != nil {
		password = *c.Password
	}
	return username, password
}

// RegisterHandler handles user registration
func RegisterHandler(store *storage.Storage, hasher security.Hasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireJSON(w, r, jsonRequired) {
			return
		}
		var req credentials
		if !respond.Decode(w, r, &req) {
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		// Check if user exists
		if req.Username != nil {
			_, err := sess.UserByUsername(r.Context(), *req.Username)
			if err == nil {
				respond.Error(w, http.StatusConflict, "The username is already registered.")
				return
			}
			if !errors.Is(err, storage.ErrNotFound) {
				respond.StoreError(w, r, err, "")
				return
			}
		}

		var hash *string
		if req.Password != nil {
			h, err := hasher.Hash(*req.Password)
			if errors.Is(err, security.ErrPasswordTooLong) {
				respond.Error(w, http.StatusBadRequest, "Password is too long")
				return
			}
			if err != nil {
				log.Printf("Error hashing password: %v", err)
				respond.Error(w, http.StatusInternalServerError, "Error hashing password")
				return
			}
			hash = &h
		}

		user, err := sess.CreateUser(r.Context(), req.Username, hash)
		if errors.Is(err, storage.ErrDuplicate) {
			// lost a race with a concurrent registration of the same name
			respond.Error(w, http.StatusConflict, "The username is already registered.")
			return
		}
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		log.Printf("User %d registered", user.Id)
		respond.JSON(w, http.StatusCreated, models.RegisterView{Username: user.Username})
	}
}

// LoginHandler handles user login. Every response carries the fixed CORS
// pair, including failures.
func LoginHandler(store *storage.Storage, hasher security.Hasher, admin Superuser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if !respond.RequireJSON(w, r, jsonRequired) {
			return
		}
		var req credentials
		if !respond.Decode(w, r, &req) {
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		username, password := req.values()
		user, err := authenticate(r.Context(), sess, hasher, username, password)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "User does not exist")
			return
		case errors.Is(err, errWrongPassword):
			respond.Error(w, http.StatusUnauthorized, "Wrong password, try again")
			return
		case err != nil:
			respond.StoreError(w, r, err, "")
			return
		}

		view, err := userView(r.Context(), sess, user)
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		respond.JSON(w, http.StatusOK, models.LoginView{
			Data:          view,
			AdminLoggedIn: admin.matches(username, password),
			UserFound:     true,
		})
	}
}

// VerifyHandler answers the user record for valid credentials. Unknown user
// and wrong password are deliberately indistinguishable.
func VerifyHandler(store *storage.Storage, hasher security.Hasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireJSON(w, r, jsonRequired) {
			return
		}
		var req credentials
		if !respond.Decode(w, r, &req) {
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		username, password := req.values()
		user, err := authenticate(r.Context(), sess, hasher, username, password)
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, errWrongPassword) {
			respond.Error(w, http.StatusUnauthorized, "User NOT verified")
			return
		}
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}

		view, err := userView(r.Context(), sess, user)
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		respond.JSON(w, http.StatusOK, view)
	}
}

// ListHandler answers every user with its tasks nested.
func ListHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		users, err := sess.Users(r.Context())
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		owned, err := sess.TasksByOwner(r.Context())
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}

		views := make([]models.UserView, 0, len(users))
		for _, u := range users {
			views = append(views, models.NewUserView(u, owned[u.Id]))
		}
		respond.JSON(w, http.StatusOK, views)
	}
}

// GetHandler answers the user with the given id, or null if there is none.
func GetHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := respond.PathID(r, "id")
		if !ok {
			respond.JSON(w, http.StatusOK, nil)
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		user, err := sess.UserById(r.Context(), id)
		if errors.Is(err, storage.ErrNotFound) {
			respond.JSON(w, http.StatusOK, nil)
			return
		}
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}

		view, err := userView(r.Context(), sess, user)
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		respond.JSON(w, http.StatusOK, view)
	}
}

// DeleteHandler removes a user together with all of its tasks.
func DeleteHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := respond.PathID(r, "id")
		if !ok {
			respond.Error(w, http.StatusNotFound, "User not found")
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		if err := sess.DeleteUser(r.Context(), id); err != nil {
			respond.StoreError(w, r, err, "User not found")
			return
		}
		log.Printf("User %d deleted", id)
		respond.Message(w, "The user has been deleted")
	}
}

func authenticate(ctx context.Context, sess *storage.Session, hasher security.Hasher, username, password string) (models.User, error) {
	user, err := sess.UserByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if !hasher.Verify(user.Password, password) {
		return models.User{}, errWrongPassword
	}
	return user, nil
}

func userView(ctx context.Context, sess *storage.Session, user models.User) (models.UserView, error) {
	tasks, err := sess.TasksByUser(ctx, user.Id)
	if err != nil {
		return models.UserView{}, err
	}
	return models.NewUserView(user, tasks), nil
}
