package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
)

func newTestStore(t *testing.T) *Storage {
	t.Helper()
	store, err := New(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"), 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := newTestStore(t).Session(context.Background())
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func ptr[T any](v T) *T { return &v }

func TestCreateUser_AssignsIdAndFindsByUsername(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	created, err := sess.CreateUser(ctx, ptr("ann"), ptr("hash-1"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.Id == 0 || created.Username != "ann" || created.Password != "hash-1" {
		t.Fatalf("unexpected user %+v", created)
	}

	found, err := sess.UserByUsername(ctx, "ann")
	if err != nil {
		t.Fatalf("UserByUsername: %v", err)
	}
	if found != created {
		t.Fatalf("expected %+v, got %+v", created, found)
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	if _, err := sess.CreateUser(ctx, ptr("ann"), ptr("hash-1")); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	_, err := sess.CreateUser(ctx, ptr("ann"), ptr("hash-2"))
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	users, err := sess.Users(ctx)
	if err != nil {
		t.Fatalf("Users: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
}

func TestCreateUser_NullUsernameIsConstraintFault(t *testing.T) {
	sess := newTestSession(t)

	_, err := sess.CreateUser(context.Background(), nil, ptr("hash"))
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestLookups_NotFound(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	if _, err := sess.UserByUsername(ctx, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserByUsername: expected ErrNotFound, got %v", err)
	}
	if _, err := sess.UserById(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UserById: expected ErrNotFound, got %v", err)
	}
	if _, err := sess.TaskById(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("TaskById: expected ErrNotFound, got %v", err)
	}
}

func TestCreateTask_UnknownOwnerIsConstraintFault(t *testing.T) {
	sess := newTestSession(t)

	_, err := sess.CreateTask(context.Background(), ptr("write tests"), ptr(int64(99)))
	if !errors.Is(err, ErrConstraint) {
		t.Fatalf("expected ErrConstraint, got %v", err)
	}
}

func TestTasksByUser_EmptyForUnknownUser(t *testing.T) {
	tasks, err := newTestSession(t).TasksByUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("TasksByUser: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", tasks)
	}
}

func TestDeleteUser_CascadesToTasks(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	ann, err := sess.CreateUser(ctx, ptr("ann"), ptr("h"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	bob, err := sess.CreateUser(ctx, ptr("bob"), ptr("h"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	for _, text := range []string{"one", "two"} {
		if _, err := sess.CreateTask(ctx, ptr(text), &ann.Id); err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
	}
	if _, err := sess.CreateTask(ctx, ptr("bob's"), &bob.Id); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := sess.DeleteUser(ctx, ann.Id); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	left, err := sess.TasksByUser(ctx, ann.Id)
	if err != nil {
		t.Fatalf("TasksByUser: %v", err)
	}
	if len(left) != 0 {
		t.Fatalf("expected cascade to remove tasks, got %+v", left)
	}

	owned, err := sess.TasksByOwner(ctx)
	if err != nil {
		t.Fatalf("TasksByOwner: %v", err)
	}
	if len(owned) != 1 || len(owned[bob.Id]) != 1 {
		t.Fatalf("expected only bob's task to remain, got %+v", owned)
	}
}

func TestDelete_MissingRowsReturnNotFound(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	if err := sess.DeleteUser(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteUser: expected ErrNotFound, got %v", err)
	}
	if err := sess.DeleteTask(ctx, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteTask: expected ErrNotFound, got %v", err)
	}
}

func TestDeleteTask_RemovesOnlyThatTask(t *testing.T) {
	ctx := context.Background()
	sess := newTestSession(t)

	ann, err := sess.CreateUser(ctx, ptr("ann"), ptr("h"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	first, err := sess.CreateTask(ctx, ptr("first"), &ann.Id)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	second, err := sess.CreateTask(ctx, ptr("second"), &ann.Id)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := sess.DeleteTask(ctx, first.Id); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	tasks, err := sess.TasksByUser(ctx, ann.Id)
	if err != nil {
		t.Fatalf("TasksByUser: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != second {
		t.Fatalf("expected only %+v, got %+v", second, tasks)
	}
}

func TestDeleteTask_ConcurrentSessions(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	setup, err := store.Session(ctx)
	if err != nil {
		t.Fatalf("Session: %v", err)
	}
	ann, err := setup.CreateUser(ctx, ptr("ann"), ptr("h"))
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	var ids []int64
	for i := 0; i < 50; i++ {
		task, err := setup.CreateTask(ctx, ptr("task"), &ann.Id)
		if err != nil {
			t.Fatalf("CreateTask: %v", err)
		}
		ids = append(ids, task.Id)
	}
	setup.Close()

	// Each id is deleted twice at once: exactly one delete wins, the other
	// sees ErrNotFound. Nothing may fail with a lock error.
	var mu sync.Mutex
	var wg sync.WaitGroup
	deleted, missing := 0, 0
	var failures []error
	for _, id := range append(append([]int64{}, ids...), ids...) {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sess, err := store.Session(ctx)
			if err == nil {
				err = sess.DeleteTask(ctx, id)
				sess.Close()
			}
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				deleted++
			case errors.Is(err, ErrNotFound):
				missing++
			default:
				failures = append(failures, err)
			}
		}(id)
	}
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("concurrent deletes failed (%d): first %v", len(failures), failures[0])
	}
	if deleted != len(ids) || missing != len(ids) {
		t.Fatalf("expected %d deleted and %d missing, got %d and %d", len(ids), len(ids), deleted, missing)
	}
}
