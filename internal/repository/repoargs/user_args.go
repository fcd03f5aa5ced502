package repoargs

import "github.com/fsdevblog/creator-market/internal/domain"

type CreateUser struct {
	Email        string
	PasswordHash string
	Role         domain.UserRole
}
