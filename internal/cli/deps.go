package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/jrsteele09/crm-console/authclient"
	"github.com/jrsteele09/crm-console/internal/config"
	apperrors "github.com/jrsteele09/crm-console/internal/errors"
	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/jrsteele09/crm-console/kvstore/filestore"
	"github.com/jrsteele09/crm-console/kvstore/memory"
	"github.com/jrsteele09/crm-console/kvstore/redisstore"
	"github.com/jrsteele09/crm-console/permissions"
	"github.com/jrsteele09/crm-console/server"
	"github.com/jrsteele09/crm-console/token/jwt"
	"github.com/jrsteele09/crm-console/users"
	fakeuserrepo "github.com/jrsteele09/crm-console/users/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const sessionsFile = "sessions.json"

// console is everything loaded from configuration that the commands share
type console struct {
	perms   permissions.Map
	screens []server.Screen
}

func loadConsole(cfg config.Config) (console, error) {
	file, err := config.LoadConsoleFile(cfg.GetConsoleFile())
	if err != nil {
		return console{}, err
	}
	return console{
		perms:   file.PermissionMap(),
		screens: server.ApplyOverrides(server.Screens(), file.Routes),
	}, nil
}

// openStore opens the configured session backend. The returned func releases it.
func openStore(ctx context.Context, cfg config.Config) (kvstore.Store, func(), error) {
	noop := func() {}

	switch backend := cfg.GetStoreBackend(); backend {
	case config.StoreMemory:
		log.Warn().Msg("sessions are kept in memory and are lost on restart")
		return memory.New(), noop, nil

	case config.StoreFile:
		path := filepath.Join(cfg.GetDataFolder(), sessionsFile)
		store, err := filestore.Open(path)
		if err != nil {
			return nil, noop, err
		}
		log.Info().Str("path", path).Msg("using file session store")
		return store, noop, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
		})
		store := redisstore.New(client, cfg.GetRedisPrefix())
		if err := store.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("[openStore] redis %s: %w", cfg.GetRedisAddr(), err)
		}
		log.Info().Str("addr", cfg.GetRedisAddr()).Msg("using redis session store")
		return store, func() { _ = client.Close() }, nil

	default:
		return nil, noop, apperrors.Wrapf(apperrors.ErrUnknownBackend, "store %q", backend)
	}
}

// newAuthenticator returns the configured login backend. The local backend seeds
// the demo accounts.
func newAuthenticator(cfg config.Config, perms permissions.Map) (authclient.Authenticator, error) {
	switch backend := cfg.GetAuthBackend(); backend {
	case config.AuthRemote:
		return authclient.NewRemote(cfg.GetAuthLoginURL(), authclient.WithTimeout(cfg.GetAuthTimeout())), nil

	case config.AuthLocal:
		secret := cfg.GetLocalJWTSecret()
		if secret == "" {
			if !cfg.IsDev() {
				return nil, apperrors.Wrapf(apperrors.ErrInvalidConfig, "LOCAL_JWT_SECRET is required outside DEV")
			}
			secret = "dev-only-local-signing-secret"
		}
		creator, err := jwt.NewCreator([]byte(secret), cfg.GetLocalTokenExpiry())
		if err != nil {
			return nil, err
		}

		repo := fakeuserrepo.NewFakeUserRepo()
		if err := users.Seed(repo, perms, cfg.GetDemoPassword()); err != nil {
			return nil, err
		}
		seeded, err := repo.List(0, 0)
		if err != nil {
			return nil, err
		}
		for _, u := range seeded.Users {
			log.Info().Str("email", u.Email).Str("role", u.Role).Int("permissions", len(u.Permissions)).Msg("demo account")
		}
		return authclient.NewLocal(repo, creator), nil

	default:
		return nil, apperrors.Wrapf(apperrors.ErrUnknownBackend, "auth %q", backend)
	}
}
