package accountsdk

import "time"

// Verification purposes accepted by ResendVerificationRequest.Type.
const (
	VerificationEmail    = "EMAIL_VERIFICATION"
	VerificationPassword = "PASSWORD_RESET"
	VerificationEmailNew = "EMAIL_CHANGE"
	VerificationDeletion = "ACCOUNT_DELETION"
)

// ============================================================================
// Common
// ============================================================================

// MessageResponse is returned by endpoints whose only output is a notice.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of individual dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// ============================================================================
// Users and sessions
// ============================================================================

// PublicUser is the user view exposed to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Profile extends PublicUser with the owner-only fields returned by /me.
type Profile struct {
	PublicUser

	Email         string  `json:"email"`
	PendingEmail  *string `json:"pendingEmail,omitempty"`
	EmailVerified bool    `json:"emailVerified"`
	Country       string  `json:"country,omitempty"`
	Timezone      string  `json:"timezone"`
	Locale        string  `json:"locale"`
}

// Location is the approximate geo position recorded with a session.
type Location struct {
	City        string  `json:"city,omitempty"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// SessionView describes one session of the signed-in user.
type SessionView struct {
	ID        string    `json:"id"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent,omitempty"`
	Device    string    `json:"device,omitempty"`
	Location  *Location `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
	Current   bool      `json:"current"`
}

// ============================================================================
// Requests
// ============================================================================

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=30,username"`
	Email           string `json:"email" validate:"required,max=320,email"`
	Password        string `json:"password" validate:"required,min=8,max=255"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=320,email"`
	Password string `json:"password" validate:"required,max=255"`
}

// VerifyCodeRequest redeems an EMAIL_VERIFICATION code.
type VerifyCodeRequest struct {
	Token string `json:"token" validate:"required,min=6,max=255"`
	Email string `json:"email" validate:"required,max=320,email"`
}

type ResendVerificationRequest struct {
	Email string `json:"email" validate:"required,max=320,email"`
	Type  string `json:"type" validate:"omitempty,oneof=EMAIL_VERIFICATION PASSWORD_RESET EMAIL_CHANGE ACCOUNT_DELETION"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,max=320,email"`
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required,min=6,max=255"`
	Email           string `json:"email" validate:"required,max=320,email"`
	Password        string `json:"password" validate:"required,min=8,max=255"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

type EmailChangeRequest struct {
	NewEmail        string `json:"newEmail" validate:"required,max=320,email"`
	CurrentPassword string `json:"currentPassword" validate:"required,max=255"`
}

type ConfirmEmailChangeRequest struct {
	Token    string `json:"token" validate:"required,min=6,max=255"`
	NewEmail string `json:"newEmail" validate:"required,max=320,email"`
}

type DeleteAccountRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=255"`
}

type ConfirmDeleteAccountRequest struct {
	Token string `json:"token" validate:"required,min=6,max=255"`
	Email string `json:"email" validate:"required,max=320,email"`
}

// ============================================================================
// Responses
// ============================================================================

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type LoginResponse struct {
	Message   string     `json:"message"`
	User      PublicUser `json:"user"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

type MeResponse struct {
	User    Profile     `json:"user"`
	Session SessionView `json:"session"`
}

type SessionListResponse struct {
	Sessions []SessionView `json:"sessions"`
}

type RevokeSessionsResponse struct {
	Revoked int64 `json:"revoked"`
}
