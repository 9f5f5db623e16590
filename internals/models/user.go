package models

type User struct {
	Id       int64  `db:"id"`
	Username string `db:"username"`
	Password string `db:"password"` // bcrypt hash, never plaintext
}
