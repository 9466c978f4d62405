package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ms-booking/internal/models"
	"ms-booking/internal/utils"

	"github.com/go-redis/redis/v8"
	"github.com/uptrace/bun"
)

const (
	CapabilityAdmin           = "admin"
	CapabilityValidateTickets = "ticket:validate"
)

const capabilityCacheTTL = 60 * time.Second

// Authorizer answers capability checks from the roles table. Grants are
// cached in Redis briefly so the door scanner doesn't hit Postgres on every
// scan.
type Authorizer struct {
	Bun   *bun.DB
	Redis *redis.Client
}

func NewAuthorizer(db *bun.DB, rdb *redis.Client) *Authorizer {
	return &Authorizer{Bun: db, Redis: rdb}
}

func (a *Authorizer) Can(ctx context.Context, userID, capability string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	cacheKey := fmt.Sprintf("cap:%s:%s", userID, capability)
	if a.Redis != nil {
		if val, err := a.Redis.Get(ctx, cacheKey).Result(); err == nil {
			return val == "1", nil
		}
	}

	granted, err := a.Bun.NewSelect().
		Model((*models.Role)(nil)).
		Where("user_id = ? AND capability = ?", userID, capability).
		Exists(ctx)
	if err != nil {
		return false, err
	}

	if a.Redis != nil {
		val := "0"
		if granted {
			val = "1"
		}
		_ = a.Redis.Set(ctx, cacheKey, val, capabilityCacheTTL).Err()
	}

	return granted, nil
}

// Grant gives a user a capability. Granting twice is a no-op.
func (a *Authorizer) Grant(ctx context.Context, userID, capability string) error {
	role := &models.Role{UserID: userID, Capability: capability}
	_, err := a.Bun.NewInsert().
		Model(role).
		On("CONFLICT (user_id, capability) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return err
	}

	if a.Redis != nil {
		_ = a.Redis.Del(ctx, fmt.Sprintf("cap:%s:%s", userID, capability)).Err()
	}
	return nil
}

// RequireCapability gates a route group on a capability from the roles table.
func RequireCapability(a *Authorizer, capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := UserID(r.Context())
			if userID == "" {
				utils.WriteError(w, http.StatusUnauthorized, "not authenticated")
				return
			}

			ok, err := a.Can(r.Context(), userID, capability)
			if err != nil {
				utils.WriteError(w, http.StatusInternalServerError, "authorization check failed")
				return
			}
			if !ok {
				utils.WriteError(w, http.StatusForbidden, "missing capability: "+capability)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
