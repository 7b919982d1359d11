package models

// User is the authenticated identity as returned by /api/auth/me and the
// login response. Storage counters are the server's quota snapshot at the
// time of the response.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	StorageUsed  int64  `json:"storage_used"`
	StorageLimit int64  `json:"storage_limit"`
}

// Quota returns the quota snapshot embedded in the identity.
func (u User) Quota() StorageQuota {
	return StorageQuota{Used: u.StorageUsed, Limit: u.StorageLimit}
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token and the identity it belongs to.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is the acknowledgement of a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}
