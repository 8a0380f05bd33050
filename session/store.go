package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/crm-console/kvstore"
	"github.com/jrsteele09/crm-console/permissions"
	"github.com/rs/zerolog/log"
)

// Store is the single source of truth for who is logged in and what they may see.
// Every change is written through to the key-value store before it becomes visible
// to readers.
type Store struct {
	kv    kvstore.Store
	perms permissions.Map

	lock    sync.RWMutex
	token   string
	user    *UserRecord
	role    string
	modules []ModuleGrant
}

// New returns an empty, logged-out session. Call Hydrate to load persisted state.
func New(kv kvstore.Store, perms permissions.Map) *Store {
	return &Store{
		kv:      kv,
		perms:   perms,
		modules: []ModuleGrant{},
	}
}

// hydrateAttempts bounds how often Hydrate re-reads a namespace that changed under it
const hydrateAttempts = 3

// Hydrate loads the session from storage. Missing or malformed values fall back to
// their empty defaults. A read that overlaps a login or logout is retried, and if the
// namespace keeps changing the session stays logged out.
func (s *Store) Hydrate() {
	for attempt := 0; attempt < hydrateAttempts; attempt++ {
		token, user, role, modules := s.read()
		if after, _ := s.kv.Get(KeyToken); after != token {
			continue
		}

		s.lock.Lock()
		s.token, s.user, s.role, s.modules = token, user, role, modules
		s.lock.Unlock()
		return
	}

	log.Warn().Msg("session changed while loading, treating as logged out")
	s.lock.Lock()
	s.token, s.user, s.role, s.modules = "", nil, "", []ModuleGrant{}
	s.lock.Unlock()
}

// read loads every field once. The token is read first so a caller can compare it
// with a second read of the token.
func (s *Store) read() (string, *UserRecord, string, []ModuleGrant) {
	token, _ := s.kv.Get(KeyToken)
	role, _ := s.kv.Get(KeyRole)

	var user *UserRecord
	if raw, ok := s.kv.Get(KeyUser); ok {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			log.Debug().Err(err).Msg("discarding stored user")
			user = nil
		}
	}

	modules := []ModuleGrant{}
	if raw, ok := s.kv.Get(KeyModules); ok {
		var decoded []ModuleGrant
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			log.Debug().Err(err).Msg("discarding stored modules")
		} else if decoded != nil {
			modules = decoded
		}
	}
	return token, user, role, modules
}

// Login replaces the session with the one described by an authentication response
func (s *Store) Login(resp LoginResponse) {
	var role string
	modules := []ModuleGrant{}

	if resp.User != nil {
		role = resp.User.Role.Name
		for _, id := range resp.User.Role.Permissions {
			modules = append(modules, Module(id, s.perms.Resolve(id)))
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.persist(resp.Token, resp.User, role, modules)
	s.token, s.user, s.role, s.modules = resp.Token, resp.User.clone(), role, modules
}

// LoginWith runs fetch and applies its result. If ctx is done before the result is
// applied the session is left untouched.
func (s *Store) LoginWith(ctx context.Context, fetch func(context.Context) (LoginResponse, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := fetch(ctx)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Login(resp)
	return nil
}

// Logout clears the session and every storage key. Safe to call repeatedly.
func (s *Store) Logout() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.persist("", nil, "", nil)
	s.token, s.user, s.role, s.modules = "", nil, "", []ModuleGrant{}
}

// Current returns a copy of the live session
func (s *Store) Current() Snapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return Snapshot{
		Token:   s.token,
		User:    s.user.clone(),
		Role:    s.role,
		Modules: cloneModules(s.modules),
	}
}

// persist writes each field independently; empty values remove their key.
// The token is removed first and written last, so a reader that lands between two
// writes finds no token and treats the namespace as logged out.
// Storage failures are logged, the in-memory session is still updated.
func (s *Store) persist(token string, user *UserRecord, role string, modules []ModuleGrant) {
	s.writeRaw(KeyToken, "")
	s.writeRaw(KeyRole, role)

	if user == nil {
		s.writeRaw(KeyUser, "")
	} else {
		s.writeJSON(KeyUser, user)
	}

	if len(modules) == 0 {
		s.writeRaw(KeyModules, "")
	} else {
		s.writeJSON(KeyModules, modules)
	}

	s.writeRaw(KeyToken, token)
}

func (s *Store) writeJSON(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Err(err).Str("key", key).Msg("failed to encode session field")
		s.writeRaw(key, "")
		return
	}
	s.writeRaw(key, string(data))
}

func (s *Store) writeRaw(key, value string) {
	var err error
	if value == "" {
		err = s.kv.Delete(key)
	} else {
		err = s.kv.Set(key, value)
	}
	if err != nil {
		log.Err(err).Str("key", key).Msg("failed to persist session field")
	}
}
