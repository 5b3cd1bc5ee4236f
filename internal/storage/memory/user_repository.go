package memory

import (
	"strings"
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// userRepositoryInMemory — in-memory реализация UserRepository.
// Ключ — email в нижнем регистре.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUserRepository возвращает in-memory хранилище учётных записей.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{
		items: make(map[string]domain.User),
	}
}

// Create сохраняет пользователя, если email свободен.
func (r *userRepositoryInMemory) Create(user domain.User) error {
	key := normalizeEmail(user.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[key]; exists {
		return domain.ErrEmailTaken
	}
	r.items[key] = user
	return nil
}

// GetByEmail возвращает пользователя или ErrUserNotFound.
func (r *userRepositoryInMemory) GetByEmail(email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[normalizeEmail(email)]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// UpdatePassword перезаписывает хеш пароля существующего пользователя.
func (r *userRepositoryInMemory) UpdatePassword(email, passwordHash string) error {
	key := normalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.items[key]
	if !ok {
		return domain.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	r.items[key] = user
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
