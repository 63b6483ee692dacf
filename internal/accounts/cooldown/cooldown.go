// Package cooldown throttles verification code issuance per (user, purpose,
// destination) so repeated send requests cannot flood a mailbox.
package cooldown

import (
	"context"
	"strings"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

// DefaultWindow is the minimum gap between two codes for the same key.
const DefaultWindow = 60 * time.Second

// Key identifies one issuance stream.
type Key struct {
	UserID      string
	Purpose     domain.VerificationType
	Destination string
}

func (k Key) String() string {
	return k.UserID + ":" + string(k.Purpose) + ":" + strings.ToLower(k.Destination)
}

// Limiter decides whether a code may be issued now. Allow starts the
// cooldown when it returns true.
type Limiter interface {
	Allow(ctx context.Context, key Key) (bool, error)
}
