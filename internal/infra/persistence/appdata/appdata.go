// Package appdata is the durable store adapter: it owns the storage key
// layout and the JSON codec for the app-data blob, the backup blob and
// the four scalar session keys.
package appdata

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"finboard/internal/domain/entity"
	"finboard/internal/domain/repository"
	"finboard/internal/infra/persistence/model"

	"github.com/pkg/errors"
)

// Storage key layout. The session values are four independent scalar keys
// rather than fields of the blob so the session guard can detect the
// removal of a single key.
const (
	KeyAppData = "app-data"
	KeyBackup  = "app-data-backup"

	KeyAuthToken  = "auth-token"
	KeyAuthRole   = "auth-role"
	KeyAuthUser   = "auth-user"
	KeyAuthExpiry = "auth-expiry"
)

// SessionKeys lists the four scalar session keys in a stable order.
var SessionKeys = []string{KeyAuthToken, KeyAuthRole, KeyAuthUser, KeyAuthExpiry}

// Adapter wraps a KeyValue store with the blob codec and session helpers.
type Adapter struct {
	kv     repository.KeyValue
	logger *slog.Logger
}

// New is the constructor for Adapter.
func New(kv repository.KeyValue, logger *slog.Logger) *Adapter {
	return &Adapter{kv: kv, logger: logger}
}

// Store exposes the underlying key-value store, mainly for Subscribe.
func (a *Adapter) Store() repository.KeyValue {
	return a.kv
}

// HasBlob reports whether the app-data blob is present.
func (a *Adapter) HasBlob() bool {
	return a.kv.Has(KeyAppData)
}

// ReadBlob returns the decoded app-data blob, or nil when the key is
// absent or its content is malformed. It never fails: malformed durable
// data is treated as absence at this boundary.
func (a *Adapter) ReadBlob() *model.Document {
	return a.readDocument(KeyAppData)
}

// WriteBlob overwrites the entire app-data blob. There is no partial
// write; the caller constructs the full document it wants persisted.
func (a *Adapter) WriteBlob(doc *model.Document) error {
	return a.writeDocument(KeyAppData, doc)
}

// EraseBlob removes the app-data blob entirely.
func (a *Adapter) EraseBlob() error {
	return errors.Wrap(a.kv.Remove(KeyAppData), "erase blob")
}

// ReadBackup returns the decoded backup blob, or nil when absent or malformed.
func (a *Adapter) ReadBackup() *model.Document {
	return a.readDocument(KeyBackup)
}

// WriteBackup overwrites the backup blob.
func (a *Adapter) WriteBackup(doc *model.Document) error {
	return a.writeDocument(KeyBackup, doc)
}

// HasBackup reports whether a backup blob is present.
func (a *Adapter) HasBackup() bool {
	return a.kv.Has(KeyBackup)
}

// WriteSession persists all four scalar session keys.
func (a *Adapter) WriteSession(session entity.Session) error {
	rawUser, err := json.Marshal(session.User)
	if err != nil {
		return errors.Wrap(err, "encode session user")
	}

	if err := a.kv.Set(KeyAuthToken, session.Token); err != nil {
		return errors.Wrap(err, "write auth token")
	}
	if err := a.kv.Set(KeyAuthRole, session.Role.String()); err != nil {
		return errors.Wrap(err, "write auth role")
	}
	if err := a.kv.Set(KeyAuthUser, string(rawUser)); err != nil {
		return errors.Wrap(err, "write auth user")
	}
	if err := a.kv.Set(KeyAuthExpiry, strconv.FormatInt(session.Expiry.UnixMilli(), 10)); err != nil {
		return errors.Wrap(err, "write auth expiry")
	}

	return nil
}

// ReadSession reads the four scalar session keys. It returns ok=false
// when any key is absent or undecodable; the partial content is not
// surfaced because a partial session is treated as no session.
func (a *Adapter) ReadSession() (entity.Session, bool) {
	token, err := a.kv.Get(KeyAuthToken)
	if err != nil {
		return entity.Session{}, false
	}
	role, err := a.kv.Get(KeyAuthRole)
	if err != nil {
		return entity.Session{}, false
	}
	rawUser, err := a.kv.Get(KeyAuthUser)
	if err != nil {
		return entity.Session{}, false
	}
	rawExpiry, err := a.kv.Get(KeyAuthExpiry)
	if err != nil {
		return entity.Session{}, false
	}

	var user entity.Identity
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		a.logger.Warn("malformed session user, treating session as absent", slog.Any("error", err))

		return entity.Session{}, false
	}
	millis, err := strconv.ParseInt(rawExpiry, 10, 64)
	if err != nil {
		a.logger.Warn("malformed session expiry, treating session as absent", slog.Any("error", err))

		return entity.Session{}, false
	}

	return entity.Session{
		Token:  token,
		Role:   entity.Role(role),
		User:   user,
		Expiry: time.UnixMilli(millis),
	}, true
}

// ClearSession removes all four scalar session keys. Absent keys are
// no-ops, so a double clear is safe.
func (a *Adapter) ClearSession() error {
	for _, key := range SessionKeys {
		if err := a.kv.Remove(key); err != nil {
			return errors.Wrapf(err, "clear %s", key)
		}
	}

	return nil
}

// SessionKeysPresent reports whether every one of the four scalar session
// keys is currently present.
func (a *Adapter) SessionKeysPresent() bool {
	for _, key := range SessionKeys {
		if !a.kv.Has(key) {
			return false
		}
	}

	return true
}

func (a *Adapter) readDocument(key string) *model.Document {
	raw, err := a.kv.Get(key)
	if err != nil {
		return nil
	}

	doc := new(model.Document)
	if err := json.Unmarshal([]byte(raw), doc); err != nil {
		a.logger.Warn("malformed blob, treating as absent",
			slog.String("key", key), slog.Any("error", err))

		return nil
	}

	return doc
}

func (a *Adapter) writeDocument(key string, doc *model.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}

	return errors.Wrapf(a.kv.Set(key, string(raw)), "write %s", key)
}
