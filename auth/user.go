package auth

// UserInfo is a stored account. Password holds the argon2id hash.
type UserInfo struct {
	ID       string   `json:"id"`
	Login    string   `json:"login"`
	FullName string   `json:"full_name"`
	Email    *string  `json:"email,omitempty"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

func (u *UserInfo) clone() *UserInfo {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	if u.Email != nil {
		email := *u.Email
		cp.Email = &email
	}
	return &cp
}

// NewUser is the register_user payload.
type NewUser struct {
	Login    string   `json:"login"`
	Password string   `json:"password"`
	Email    *string  `json:"email"`
	FullName string   `json:"full_name"`
	Roles    []string `json:"roles"`
}

// UserCredentials is the login payload.
type UserCredentials struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserToken is the refresh_token payload.
type UserToken struct {
	Token string `json:"token"`
}

// PasswordUpdate is the update_password payload.
type PasswordUpdate struct {
	Token       string `json:"token"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserAuth is returned by every successful auth operation.
type UserAuth struct {
	UserID   string   `json:"user_id"`
	FullName string   `json:"full_name"`
	Token    string   `json:"token"`
	Roles    []string `json:"roles"`
}
