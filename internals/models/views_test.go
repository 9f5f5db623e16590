package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewUserView_EmptyTasksEncodeAsList(t *testing.T) {
	view := NewUserView(User{Id: 1, Username: "ann", Password: "$2a$hash"}, nil)

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"tasks":[]`) {
		t.Fatalf("expected empty task list, got %s", data)
	}
}

func TestNewUserView_KeepsTaskOrder(t *testing.T) {
	tasks := []Task{{Id: 3, Task: "b", UserId: 1}, {Id: 7, Task: "a", UserId: 1}}
	view := NewUserView(User{Id: 1, Username: "ann"}, tasks)

	if len(view.Tasks) != 2 || view.Tasks[0].Id != 3 || view.Tasks[1].Id != 7 {
		t.Fatalf("unexpected tasks %+v", view.Tasks)
	}
}
