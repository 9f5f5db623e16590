package models

// TaskView is the transport form of a Task.
type TaskView struct {
	Id     int64  `json:"id"`
	Task   string `json:"task"`
	UserId int64  `json:"user_id"`
}

// UserView is the transport form of a User with its owned tasks.
// Password carries the stored hash.
type UserView struct {
	Id       int64      `json:"id"`
	Username string     `json:"username"`
	Password string     `json:"password"`
	Tasks    []TaskView `json:"tasks"`
}

type RegisterView struct {
	Username string `json:"username"`
}

type LoginView struct {
	Data          UserView `json:"data"`
	AdminLoggedIn bool     `json:"admin_logged_in"`
	UserFound     bool     `json:"user_found"`
}

func NewTaskView(t Task) TaskView {
	return TaskView{Id: t.Id, Task: t.Task, UserId: t.UserId}
}

// NewTaskViews never returns nil, so an empty list encodes as [].
func NewTaskViews(tasks []Task) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t))
	}
	return views
}

func NewUserView(u User, tasks []Task) UserView {
	return UserView{
		Id:       u.Id,
		Username: u.Username,
		Password: u.Password,
		Tasks:    NewTaskViews(tasks),
	}
}
