package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/socialtrust/services/social/internal/store"
)

// PromoteModerators sets role=moderator for every listed user id, creating
// the profile when the user has not signed in yet.
func PromoteModerators(ctx context.Context, users store.UserStore, ids []string, log *zap.Logger) error {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := users.SetRole(ctx, id, store.RoleModerator); err != nil {
			return fmt.Errorf("promote %s: %w", id, err)
		}
		if log != nil {
			log.Info("moderator promoted", zap.String("user_id", id))
		}
	}
	return nil
}
