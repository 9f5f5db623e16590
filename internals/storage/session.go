package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklist/internals/models"
)

// Session is one request's view of the store, bound to a single connection.
// Every write commits before the method returns.
type Session struct {
	conn *sql.Conn
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}

// UserByUsername looks a user up by exact username.
func (s *Session) UserByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE username = ?", username,
	).Scan(&u.Id, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

// UserById looks a user up by id.
func (s *Session) UserById(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := s.conn.QueryRowContext(ctx,
		"SELECT id, username, password FROM users WHERE id = ?", id,
	).Scan(&u.Id, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("query user by id: %w", err)
	}
	return u, nil
}

// Users returns every user ordered by id.
func (s *Session) Users(ctx context.Context) ([]models.User, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, username, password FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.Id, &u.Username, &u.Password); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CreateUser inserts a user with an already hashed password. A nil argument
// is stored as NULL and rejected by the schema with ErrConstraint; a taken
// username yields ErrDuplicate.
func (s *Session) CreateUser(ctx context.Context, username, passwordHash *string) (models.User, error) {
	res, err := s.conn.ExecContext(ctx,
		"INSERT INTO users (username, password) VALUES (?, ?)", username, passwordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, fmt.Errorf("insert user: %w", err)
	}
	return s.UserById(ctx, id)
}

// DeleteUser removes the user and, through ON DELETE CASCADE, its tasks.
func (s *Session) DeleteUser(ctx context.Context, id int64) error {
	return s.deleteExisting(ctx, "users", id)
}

// TaskById looks a task up by id.
func (s *Session) TaskById(ctx context.Context, id int64) (models.Task, error) {
	var t models.Task
	err := s.conn.QueryRowContext(ctx,
		"SELECT id, task, user_id FROM tasks WHERE id = ?", id,
	).Scan(&t.Id, &t.Task, &t.UserId)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// TasksByUser returns the user's tasks in insertion order. The user is not
// required to exist.
func (s *Session) TasksByUser(ctx context.Context, userId int64) ([]models.Task, error) {
	rows, err := s.conn.QueryContext(ctx,
		"SELECT id, task, user_id FROM tasks WHERE user_id = ? ORDER BY id", userId)
	if err != nil {
		return nil, fmt.Errorf("query tasks by user: %w", err)
	}
	return scanTasks(rows)
}

// TasksByOwner groups every task by owning user id, each group in insertion
// order.
func (s *Session) TasksByOwner(ctx context.Context) (map[int64][]models.Task, error) {
	rows, err := s.conn.QueryContext(ctx, "SELECT id, task, user_id FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	tasks, err := scanTasks(rows)
	if err != nil {
		return nil, err
	}
	owned := make(map[int64][]models.Task)
	for _, t := range tasks {
		owned[t.UserId] = append(owned[t.UserId], t)
	}
	return owned, nil
}

// CreateTask inserts a task. The owner is checked only by the foreign key:
// an unknown or missing user id yields ErrConstraint.
func (s *Session) CreateTask(ctx context.Context, text *string, userId *int64) (models.Task, error) {
	res, err := s.conn.ExecContext(ctx,
		"INSERT INTO tasks (task, user_id) VALUES (?, ?)", text, userId)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", classify(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.TaskById(ctx, id)
}

// DeleteTask removes one task, or returns ErrNotFound.
func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	return s.deleteExisting(ctx, "tasks", id)
}

// deleteExisting checks the row exists and deletes it in one transaction,
// returning ErrNotFound instead of deleting nothing.
func (s *Session) deleteExisting(ctx context.Context, table string, id int64) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete from %s: %w", table, err)
	}
	defer tx.Rollback()

	var found int64
	err = tx.QueryRowContext(ctx, "SELECT id FROM "+table+" WHERE id = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup in %s: %w", table, err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete from %s: %w", table, classify(err))
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete from %s: %w", table, err)
	}
	return nil
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.Id, &t.Task, &t.UserId); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
