package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/trentd187/scorekeeper/internal/models"
)

// SyncUser finds the user for an auth subject or creates it on first visit
// ("lazy user sync"). A non-empty role from the token overwrites the stored role so
// role changes at the identity provider take effect on the next request.
func (s *Store) SyncUser(ctx context.Context, externalID, name, email string, role models.UserRole, roleFromToken bool) (models.User, error) {
	db := s.db.WithContext(ctx)

	var user models.User
	err := db.Where("external_id = ?", externalID).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			ExternalID:  externalID,
			DisplayName: name,
			Email:       email,
			Role:        role,
		}
		if err := db.Create(&user).Error; err != nil {
			return models.User{}, fmt.Errorf("create user: %w", err)
		}
		return user, nil

	case err != nil:
		return models.User{}, fmt.Errorf("find user: %w", err)
	}

	if roleFromToken && user.Role != role {
		if err := db.Model(&user).Update("role", role).Error; err != nil {
			return models.User{}, fmt.Errorf("update user role: %w", err)
		}
		user.Role = role
	}
	return user, nil
}
