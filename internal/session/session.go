// Package session manages the shop owner's account and the single active
// login.
//
// Logged-in state is a row in the store's session table, not a field of the
// user record. PINs are stored as bcrypt hashes, and the hash never leaves
// the device: mutations carry model.UserProfile.
package session

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/iir20/amar-dokan-pos-system/internal/model"
	"github.com/iir20/amar-dokan-pos-system/internal/mutation"
	"github.com/iir20/amar-dokan-pos-system/internal/store"
)

// Registration is the input to Register.
type Registration struct {
	Username  string `json:"username" validate:"required,alphanum,min=3,max=32"`
	PIN       string `json:"pin" validate:"required,numeric,min=4,max=8"`
	StoreName string `json:"store_name" validate:"required,max=120"`
	Address   string `json:"address" validate:"max=256"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

// ProfileUpdate replaces the store profile of the logged-in user.
type ProfileUpdate struct {
	StoreName string `json:"store_name" validate:"required,max=120"`
	Address   string `json:"address" validate:"max=256"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

// Manager implements register/login/logout over the store.
type Manager struct {
	store  *store.Store
	exec   *mutation.Executor
	ids    model.IDGenerator
	clock  model.Clock
	cost   int
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithBcryptCost sets the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(m *Manager) { m.cost = cost }
}

// WithClock sets the clock for account and session timestamps.
func WithClock(c model.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithIDGenerator sets the idempotency key generator.
func WithIDGenerator(g model.IDGenerator) Option {
	return func(m *Manager) { m.ids = g }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a session manager.
func NewManager(st *store.Store, exec *mutation.Executor, opts ...Option) *Manager {
	m := &Manager{
		store:  st,
		exec:   exec,
		ids:    model.UUIDv7Generator{},
		clock:  model.SystemClock{},
		cost:   bcrypt.DefaultCost,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register creates the account and logs it in.
func (m *Manager) Register(ctx context.Context, reg Registration) (model.UserCredential, error) {
	reg.Username = model.NormalizeText(reg.Username)
	reg.StoreName = model.NormalizeText(reg.StoreName)
	reg.Address = model.NormalizeText(reg.Address)
	reg.Phone = model.NormalizeText(reg.Phone)
	if err := model.ValidateStruct("user.register", reg); err != nil {
		return model.UserCredential{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.PIN), m.cost)
	if err != nil {
		return model.UserCredential{}, fmt.Errorf("user.register: hash pin: %w", err)
	}

	now := m.clock.Now()
	user := model.UserCredential{
		Username:  reg.Username,
		PINHash:   string(hash),
		StoreName: reg.StoreName,
		Address:   reg.Address,
		Phone:     reg.Phone,
		CreatedAt: now,
	}
	mut, err := model.NewMutation(m.ids, model.CollectionUsers, model.OpCreate, user.Profile())
	if err != nil {
		return model.UserCredential{}, err
	}

	_, err = m.exec.Execute(ctx, mut, func(ctx context.Context) error {
		return m.store.Update(ctx, func(tx *store.Tx) error {
			_, err := store.Get[model.UserCredential](ctx, tx, user.Username)
			switch {
			case err == nil:
				return model.Validation("user.register", "username already registered",
					map[string]string{"username": "taken"})
			case !model.IsNotFound(err):
				return err
			}
			if err := store.Put(ctx, tx, user); err != nil {
				return err
			}
			return store.SaveSession(ctx, tx, store.Session{Username: user.Username, StartedAt: now})
		})
	})
	if err != nil {
		return model.UserCredential{}, err
	}

	m.logger.Info("user registered", "username", user.Username)
	return user, nil
}

// Login checks the PIN and starts a session, replacing any existing one.
// An unknown user and a wrong PIN both return INVALID_CREDENTIALS.
func (m *Manager) Login(ctx context.Context, username, pin string) (model.UserCredential, error) {
	user, err := store.Get[model.UserCredential](ctx, m.store, model.NormalizeText(username))
	if model.IsNotFound(err) {
		return model.UserCredential{}, model.InvalidCredentials("user.login")
	}
	if err != nil {
		return model.UserCredential{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PINHash), []byte(pin)); err != nil {
		m.logger.Warn("login rejected", "username", user.Username)
		return model.UserCredential{}, model.InvalidCredentials("user.login")
	}

	if err := store.SaveSession(ctx, m.store, store.Session{Username: user.Username, StartedAt: m.clock.Now()}); err != nil {
		return model.UserCredential{}, err
	}
	m.logger.Info("user logged in", "username", user.Username)
	return user, nil
}

// CurrentUser returns the logged-in user, or ok=false when nobody is.
func (m *Manager) CurrentUser(ctx context.Context) (model.UserCredential, bool, error) {
	sess, ok, err := store.LoadSession(ctx, m.store)
	if err != nil || !ok {
		return model.UserCredential{}, false, err
	}
	user, err := store.Get[model.UserCredential](ctx, m.store, sess.Username)
	if err != nil {
		return model.UserCredential{}, false, err
	}
	return user, true, nil
}

// Require returns the logged-in user or a NO_SESSION error.
func (m *Manager) Require(ctx context.Context, op string) (model.UserCredential, error) {
	user, ok, err := m.CurrentUser(ctx)
	if err != nil {
		return model.UserCredential{}, err
	}
	if !ok {
		return model.UserCredential{}, model.NoSession(op)
	}
	return user, nil
}

// Logout ends the session. Logging out twice is not an error.
func (m *Manager) Logout(ctx context.Context) error {
	return store.ClearSession(ctx, m.store)
}

// UpdateProfile changes the logged-in user's store profile.
func (m *Manager) UpdateProfile(ctx context.Context, upd ProfileUpdate) (model.UserCredential, error) {
	upd.StoreName = model.NormalizeText(upd.StoreName)
	upd.Address = model.NormalizeText(upd.Address)
	upd.Phone = model.NormalizeText(upd.Phone)
	if err := model.ValidateStruct("user.profile", upd); err != nil {
		return model.UserCredential{}, err
	}

	user, err := m.Require(ctx, "user.profile")
	if err != nil {
		return model.UserCredential{}, err
	}
	user.StoreName = upd.StoreName
	user.Address = upd.Address
	user.Phone = upd.Phone

	mut, err := model.NewMutation(m.ids, model.CollectionUsers, model.OpUpdate, user.Profile())
	if err != nil {
		return model.UserCredential{}, err
	}
	if _, err := m.exec.Execute(ctx, mut, func(ctx context.Context) error {
		return store.Put(ctx, m.store, user)
	}); err != nil {
		return model.UserCredential{}, err
	}
	return user, nil
}
