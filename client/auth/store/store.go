package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/viant/aura/internal/conv"
)

// Persisted keys.
const (
	AccessTokenKey  = "aura_access_token"
	RefreshTokenKey = "aura_refresh_token"
	ExpiresAtKey    = "aura_expires_at"
	IdentityKey     = "aura_user_data"
)

var keys = []string{AccessTokenKey, RefreshTokenKey, ExpiresAtKey, IdentityKey}

// ErrCorrupt reports a persisted value that could not be decoded. Load
// recovers from it by treating the value as absent.
var ErrCorrupt = errors.New("stored credential corrupt")

// Store is a write-through projection of a Session onto a KeyValue.
type Store struct {
	kv     KeyValue
	logger zerolog.Logger
}

// Option configures a Store.
type Option func(s *Store)

// WithLogger sets the logger used to report recovered read errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New creates a Store over kv; a nil kv selects an in-memory backend.
func New(kv KeyValue, options ...Option) *Store {
	if kv == nil {
		kv = NewMemory()
	}
	ret := &Store{kv: kv, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Load reads the persisted session. Malformed expiry or identity values are
// logged and treated as absent; only backend errors are returned.
func (s *Store) Load(ctx context.Context) (*Session, error) {
	values, err := s.kv.Get(ctx, keys...)
	if err != nil {
		return nil, err
	}
	ret := &Session{
		AccessToken:  values[AccessTokenKey],
		RefreshToken: values[RefreshTokenKey],
	}
	if raw, ok := values[ExpiresAtKey]; ok && raw != "" {
		expiresAt, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			s.logger.Warn().Err(errors.Join(ErrCorrupt, err)).Str("key", ExpiresAtKey).Msg("ignoring stored expiry")
		} else {
			ret.ExpiresAt = &expiresAt
		}
	}
	if raw, ok := values[IdentityKey]; ok && raw != "" {
		identity := &Identity{}
		if err := json.Unmarshal([]byte(raw), identity); err != nil {
			s.logger.Warn().Err(errors.Join(ErrCorrupt, err)).Str("key", IdentityKey).Msg("ignoring stored identity")
		} else {
			ret.Identity = identity
		}
	}
	return ret, nil
}

// Save writes only the fields set in update, leaving the others untouched.
func (s *Store) Save(ctx context.Context, update *Update) error {
	values, err := encode(update)
	if err != nil || len(values) == 0 {
		return err
	}
	return s.kv.Set(ctx, values)
}

func encode(update *Update) (map[string]string, error) {
	values := map[string]string{}
	if update == nil {
		return values, nil
	}
	if update.AccessToken != nil {
		values[AccessTokenKey] = *update.AccessToken
	}
	if update.RefreshToken != nil {
		values[RefreshTokenKey] = *update.RefreshToken
	}
	if update.ExpiresAt != nil {
		values[ExpiresAtKey] = conv.FormatFloat(*update.ExpiresAt)
	}
	if update.Identity != nil {
		data, err := json.Marshal(update.Identity)
		if err != nil {
			return nil, err
		}
		values[IdentityKey] = string(data)
	}
	return values, nil
}

// Clear removes all persisted keys in one backend call.
func (s *Store) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, keys...)
}

// Replace persists session as a whole in one backend call: present fields are
// written and absent ones removed.
func (s *Store) Replace(ctx context.Context, session *Session) error {
	update := &Update{}
	var absent []string
	if session.AccessToken != "" {
		update.AccessToken = &session.AccessToken
	} else {
		absent = append(absent, AccessTokenKey)
	}
	if session.RefreshToken != "" {
		update.RefreshToken = &session.RefreshToken
	} else {
		absent = append(absent, RefreshTokenKey)
	}
	if session.ExpiresAt != nil {
		update.ExpiresAt = session.ExpiresAt
	} else {
		absent = append(absent, ExpiresAtKey)
	}
	if session.Identity != nil {
		update.Identity = session.Identity
	} else {
		absent = append(absent, IdentityKey)
	}
	values, err := encode(update)
	if err != nil {
		return err
	}
	return s.kv.Apply(ctx, values, absent)
}
