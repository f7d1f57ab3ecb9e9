package ds

import "time"

const (
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

// User - учётная запись сотрудника. Пароль хранится только в виде bcrypt-хеша.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Login     string    `json:"login" gorm:"uniqueIndex;size:150;not null"`
	Password  string    `json:"-" gorm:"size:100;not null"`
	Name      string    `json:"name" gorm:"size:100"`
	Role      string    `json:"role" gorm:"size:20;default:manager"`
	CreatedAt time.Time `json:"created_at"`
}
