package service

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mileoa/vehicle-accounting/internal/app/ds"
	"github.com/mileoa/vehicle-accounting/internal/app/repository"
)

var (
	ErrInvalidCredentials = errors.New("неверное имя пользователя или пароль")
	ErrUnauthenticated    = errors.New("требуется вход в систему")
)

// SessionService - выдача и проверка сессий. Единственный путь получить
// сессию — успешный Authenticate; никаких «тихих» повторных входов нет.
type SessionService struct {
	repo *repository.Repository
	ttl  time.Duration
}

func NewSessionService(repo *repository.Repository, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{repo: repo, ttl: ttl}
}

// Authenticate - проверка пары логин/пароль и выдача новой сессии
func (s *SessionService) Authenticate(login, password string) (ds.Session, error) {
	user, err := s.repo.GetUserByLogin(login)
	if err != nil {
		return ds.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ds.Session{}, ErrInvalidCredentials
	}
	return s.repo.CreateSession(user.ID, s.ttl)
}

// Authorize - пользователь по токену живой сессии.
// Вызывается на каждом защищённом запросе.
func (s *SessionService) Authorize(token string) (ds.User, error) {
	if token == "" {
		return ds.User{}, ErrUnauthenticated
	}
	session, err := s.repo.GetSession(token)
	if err != nil {
		return ds.User{}, ErrUnauthenticated
	}
	user, err := s.repo.GetUser(session.UserID)
	if err != nil {
		return ds.User{}, ErrUnauthenticated
	}
	return user, nil
}

// Destroy - инвалидация сессии; последующие Authorize с этим токеном откажут
func (s *SessionService) Destroy(token string) error {
	if token == "" {
		return nil
	}
	return s.repo.DeleteSession(token)
}
