package domain

// ============================================================
// Auth — Request / Response types (matches web client contract)
// ============================================================

// RegisterRequest is the body for POST /v1/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	CPF      string `json:"cpf"`
}

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by login and register.
type SessionResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int          `json:"expiresIn"`
	User        *UserProfile `json:"user"`
}

// UserProfile is the public view of a User (no credentials).
type UserProfile struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Level    int     `json:"level"`
	XP       int     `json:"xp"`
	Rating   float64 `json:"rating"`
	Verified bool    `json:"verified"`
}

// Profile strips credential fields from a User.
func (u *User) Profile() *UserProfile {
	if u == nil {
		return nil
	}
	return &UserProfile{
		Name:     u.Name,
		Email:    u.Email,
		Level:    u.Level,
		XP:       u.XP,
		Rating:   u.Rating,
		Verified: u.Verified,
	}
}

// ============================================================
// Missions
// ============================================================

// CreateMissionRequest is the body for POST /v1/missions.
type CreateMissionRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Reward        float64 `json:"reward"`
	Location      string  `json:"location"`
	Duration      string  `json:"duration"`
	PaymentMethod string  `json:"paymentMethod,omitempty"`
}

// BalanceResponse is returned by GET /v1/balance.
type BalanceResponse struct {
	Balance float64 `json:"balance"`
}

// ============================================================
// Messaging
// ============================================================

// SendMessageRequest is the body for POST /v1/messages/{userId}.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// ============================================================
// Marketplace stats — GET /v1/stats
// ============================================================

// MarketStats is a snapshot of marketplace counters, derived from the
// Prometheus registry.
type MarketStats struct {
	MissionsCreated   int64   `json:"missionsCreated"`
	MissionsAccepted  int64   `json:"missionsAccepted"`
	MissionsCompleted int64   `json:"missionsCompleted"`
	FeesCollected     float64 `json:"feesCollected"`
	XPAwarded         int64   `json:"xpAwarded"`
	RequestsTotal     int64   `json:"requestsTotal"`
	ErrorRate         float64 `json:"errorRate"`
	CacheHitRate      float64 `json:"cacheHitRate"`
	Period            string  `json:"period"`
}
