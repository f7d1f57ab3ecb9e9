package ds

import "time"

// Session - серверная сессия авторизованного пользователя.
// Токен (uuid) уходит клиенту в cookie, сама запись живёт в БД,
// чтобы logout мгновенно инвалидировал доступ.
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey;size:36"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired - истекла ли сессия на момент t
func (s Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}
