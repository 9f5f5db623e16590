package tasks

import (
	"log"
	"net/http"

	"tasklist/internals/handlers/respond"
	"tasklist/internals/models"
	"tasklist/internals/storage"
)

type addRequest struct {
	Task   *string `json:"task"`
	UserId *int64  `json:"user_id"`
}

// AddHandler creates a task. The owner is not looked up first; an unknown
// user id is refused by the store's foreign key.
func AddHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !respond.RequireJSON(w, r, "Please send as JSON") {
			return
		}
		var req addRequest
		if !respond.Decode(w, r, &req) {
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		task, err := sess.CreateTask(r.Context(), req.Task, req.UserId)
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		log.Printf("Task %d created for user %d", task.Id, task.UserId)
		respond.JSON(w, http.StatusCreated, models.NewTaskView(task))
	}
}

// ListHandler answers every task owned by user_id, [] when there are none.
func ListHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userId, ok := respond.PathID(r, "user_id")
		if !ok {
			respond.JSON(w, http.StatusOK, []models.TaskView{})
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		tasks, err := sess.TasksByUser(r.Context(), userId)
		if err != nil {
			respond.StoreError(w, r, err, "")
			return
		}
		respond.JSON(w, http.StatusOK, models.NewTaskViews(tasks))
	}
}

// DeleteHandler removes one task by id.
func DeleteHandler(store *storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := respond.PathID(r, "id")
		if !ok {
			respond.Error(w, http.StatusNotFound, "Task not found")
			return
		}
		sess, ok := respond.Session(w, r, store)
		if !ok {
			return
		}
		defer sess.Close()

		if err := sess.DeleteTask(r.Context(), id); err != nil {
			respond.StoreError(w, r, err, "Task not found")
			return
		}
		log.Printf("Task %d deleted", id)
		respond.Message(w, "The task has been deleted.")
	}
}
