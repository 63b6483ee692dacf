package domain

import "time"

// Location is an approximate geo position resolved from an IP address.
type Location struct {
	City        string  `json:"city,omitempty"`
	Region      string  `json:"region,omitempty"`
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"countryCode,omitempty"`
	Latitude    float64 `json:"lat,omitempty"`
	Longitude   float64 `json:"lon,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
}

// String renders the location for humans, e.g. "Sydney, NSW, Australia".
func (l *Location) String() string {
	if l == nil {
		return "Unknown"
	}
	out := ""
	for _, part := range []string{l.City, l.Region, l.Country} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	if out == "" {
		return "Unknown"
	}
	return out
}

// SessionMetadata describes the client a session is created for. It is
// captured once and never refreshed.
type SessionMetadata struct {
	IPAddress string
	UserAgent string
	Device    string
	Locale    string
	Location  *Location
}

// Session is the server-side record behind a session token. Only the
// fingerprint of the token is stored.
type Session struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	IPAddress string
	UserAgent string
	Device    string
	Location  *Location
	RevokedAt *time.Time
	CreatedAt time.Time
}

// Valid reports whether the session is unrevoked and unexpired at now.
func (s Session) Valid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// IssuedSession is handed to the client once at login.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
	Session   Session
}
