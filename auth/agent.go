package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/core"
	"github.com/hupe1980/agentswarm/logging"
)

// Error messages returned by the auth operations. Credential and token
// failures all share MsgAuthError so callers cannot probe which part failed.
const (
	MsgUnableToAddUser = "Unable to add User"
	MsgAuthError       = "Auth error"
)

var (
	errUnableToAddUser = errors.New(MsgUnableToAddUser)
	errAuth            = errors.New(MsgAuthError)
)

// Config defines the auth agent.
type Config struct {
	ServerSecret      string              `json:"server_secret" koanf:"server_secret"`
	TokenValidityDays int                 `json:"token_validity_days" koanf:"token_validity_days"`
	ProtectedActions  map[string][]string `json:"protected_actions" koanf:"protected_actions"`
	DBPath            string              `json:"db_path" koanf:"db_path"`
}

// Options configures an Agent beyond its Config.
type Options struct {
	// Store overrides the user store. Defaults to a JSONFileStore on
	// Config.DBPath, or an InMemoryStore when DBPath is empty.
	Store  Store
	Logger logging.Logger
	// Now is the clock used for token expiry.
	Now func() time.Time
}

// Agent is the authentication agent.
type Agent struct {
	secret    string
	validity  time.Duration
	protected map[string][]string
	store     Store
	logger    logging.Logger
	now       func() time.Time
}

var table = func() *agent.Table[*Agent] {
	t := agent.NewTable[*Agent]()
	agent.HandleAction(t, "register_user", (*Agent).RegisterUser)
	agent.HandleAction(t, "login", (*Agent).Login)
	agent.HandleAction(t, "refresh_token", (*Agent).RefreshToken)
	agent.HandleAction(t, "update_password", (*Agent).UpdatePassword)
	return t
}()

// New creates an auth agent.
func New(cfg Config, optFns ...func(o *Options)) *Agent {
	opts := Options{
		Logger: logging.NoOpLogger{},
		Now:    time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		if cfg.DBPath != "" {
			opts.Store = NewJSONFileStore(cfg.DBPath)
		} else {
			opts.Store = NewInMemoryStore()
		}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	opts.Logger = logging.ForComponent(opts.Logger, "auth")

	days := cfg.TokenValidityDays
	if days <= 0 {
		days = 1
	}

	protected := make(map[string][]string, len(cfg.ProtectedActions))
	for action, roles := range cfg.ProtectedActions {
		protected[action] = append([]string(nil), roles...)
	}

	return &Agent{
		secret:    cfg.ServerSecret,
		validity:  time.Duration(days) * 24 * time.Hour,
		protected: protected,
		store:     opts.Store,
		logger:    opts.Logger,
		now:       opts.Now,
	}
}

// Execute implements core.Agent.
func (a *Agent) Execute(ctx context.Context, action core.Action, ex core.Executor) core.Output {
	return table.Dispatch(ctx, a, action, ex)
}

// Describe implements core.Describer.
func (a *Agent) Describe() core.AgentInfo {
	return core.AgentInfo{
		Type:        "auth",
		Description: "User registration and token based authentication",
		Operations:  table.Operations(),
	}
}

// RegisterUser creates an account and returns a fresh token.
func (a *Agent) RegisterUser(ctx context.Context, nu NewUser) (*UserAuth, error) {
	if _, err := a.store.FindByLogin(ctx, nu.Login); err == nil {
		return nil, errUnableToAddUser
	} else if !errors.Is(err, ErrUserNotFound) {
		a.logger.Error("User lookup failed", "login", nu.Login, "error", err)
		return nil, errUnableToAddUser
	}

	hash, err := HashPassword(nu.Password)
	if err != nil {
		a.logger.Error("Password hashing failed", "error", err)
		return nil, errUnableToAddUser
	}

	user := &UserInfo{
		ID:       uuid.NewString(),
		Login:    nu.Login,
		FullName: nu.FullName,
		Email:    nu.Email,
		Password: hash,
		Roles:    append([]string{}, nu.Roles...),
	}

	if err := a.store.Add(ctx, user); err != nil {
		a.logger.Warn("Unable to add user", "login", nu.Login, "error", err)
		return nil, errUnableToAddUser
	}

	a.logger.Info("User registered", "user_id", user.ID, "login", user.Login)
	return a.authFor(user)
}

// Login checks credentials and returns a fresh token.
func (a *Agent) Login(ctx context.Context, creds UserCredentials) (*UserAuth, error) {
	user, err := a.store.FindByLogin(ctx, creds.Login)
	if err != nil || !VerifyPassword(creds.Password, user.Password) {
		a.logger.Debug("Login rejected", "login", creds.Login)
		return nil, errAuth
	}
	return a.authFor(user)
}

// RefreshToken exchanges a valid token for a new one.
func (a *Agent) RefreshToken(ctx context.Context, tok UserToken) (*UserAuth, error) {
	user, err := a.userFromToken(ctx, tok.Token)
	if err != nil {
		return nil, errAuth
	}
	return a.authFor(user)
}

// UpdatePassword replaces the password of the token owner once the old
// password has been verified.
func (a *Agent) UpdatePassword(ctx context.Context, upd PasswordUpdate) (*UserAuth, error) {
	user, err := a.userFromToken(ctx, upd.Token)
	if err != nil || !VerifyPassword(upd.OldPassword, user.Password) {
		return nil, errAuth
	}

	hash, err := HashPassword(upd.NewPassword)
	if err != nil {
		a.logger.Error("Password hashing failed", "error", err)
		return nil, errAuth
	}
	user.Password = hash

	if err := a.store.Update(ctx, user); err != nil {
		a.logger.Error("Unable to save user", "user_id", user.ID, "error", err)
		return nil, errAuth
	}

	a.logger.Info("Password updated", "user_id", user.ID)
	return a.authFor(user)
}

// IsAccessible reports whether token grants access to actionID. Actions
// without protection rules are always accessible; protected ones need a
// valid token carrying at least one of the listed roles.
func (a *Agent) IsAccessible(token, actionID string) bool {
	roles, ok := a.protected[actionID]
	if !ok {
		return true
	}

	claims, err := VerifyToken(token, a.secret)
	if err != nil {
		return false
	}
	return claims.HasAnyRole(roles)
}

func (a *Agent) userFromToken(ctx context.Context, token string) (*UserInfo, error) {
	claims, err := VerifyToken(token, a.secret)
	if err != nil {
		a.logger.Debug("Token rejected", "error", err)
		return nil, err
	}
	return a.store.FindByID(ctx, claims.UserID)
}

func (a *Agent) authFor(u *UserInfo) (*UserAuth, error) {
	token, err := NewToken(u.ID, u.Roles, a.secret, a.validity, a.now())
	if err != nil {
		a.logger.Error("Token signing failed", "user_id", u.ID, "error", err)
		return nil, errAuth
	}
	return &UserAuth{
		UserID:   u.ID,
		FullName: u.FullName,
		Token:    token,
		Roles:    append([]string{}, u.Roles...),
	}, nil
}
