package models

type Task struct {
	Id     int64  `db:"id"`
	Task   string `db:"task"`
	UserId int64  `db:"user_id"`
}
