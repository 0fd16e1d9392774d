package seed

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emirk/academia/internal/app/models"
	"github.com/emirk/academia/internal/app/store"
	"github.com/emirk/academia/internal/pkg/filestorage"
)

// EnsureDefaultAdmin synthesizes the bootstrap administrator when no user
// data exists yet, and persists it immediately so the next start finds it on
// disk. A portal with no administrator would be unusable: nobody could log
// in to create accounts.
func EnsureDefaultAdmin(dataStore *store.Store, files *filestorage.FlatFileStore, username, password string, lgr zerolog.Logger) error {
	if files.UsersFileExists() {
		return nil
	}

	admin, err := dataStore.CreateUser(username, password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create bootstrap administrator: %w", err)
	}

	users, courses, enrollments := dataStore.Snapshot()
	if err := files.Save(users, courses, enrollments); err != nil {
		return fmt.Errorf("failed to persist bootstrap administrator: %w", err)
	}

	lgr.Info().Str("username", admin.Username).Int64("id", admin.ID).Msg("Bootstrap administrator created")
	return nil
}
