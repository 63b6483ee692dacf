package notify

import (
	"context"
	"sync"

	"github.com/scrimflow/accounts/internal/accounts/domain"
)

// SentCode is a verification email captured by MemoryMailer.
type SentCode struct {
	To      string
	Code    string
	Purpose domain.VerificationType
}

// SentAlert is a sign-in alert captured by MemoryMailer.
type SentAlert struct {
	To    string
	Alert LoginAlert
}

// MemoryMailer records emails in memory. Used by tests and local tooling.
type MemoryMailer struct {
	mu     sync.Mutex
	codes  []SentCode
	alerts []SentAlert

	// Err, when set, is returned by every send after recording it.
	Err error
}

func (m *MemoryMailer) SendVerificationCode(_ context.Context, to, code string, purpose domain.VerificationType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes = append(m.codes, SentCode{To: to, Code: code, Purpose: purpose})
	return m.Err
}

func (m *MemoryMailer) SendNewLoginAlert(_ context.Context, to string, alert LoginAlert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, SentAlert{To: to, Alert: alert})
	return m.Err
}

// Codes returns a copy of the captured verification emails.
func (m *MemoryMailer) Codes() []SentCode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentCode(nil), m.codes...)
}

// Alerts returns a copy of the captured sign-in alerts.
func (m *MemoryMailer) Alerts() []SentAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentAlert(nil), m.alerts...)
}

// LastCode returns the most recent code sent to to for purpose.
func (m *MemoryMailer) LastCode(to string, purpose domain.VerificationType) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.codes) - 1; i >= 0; i-- {
		if m.codes[i].To == to && m.codes[i].Purpose == purpose {
			return m.codes[i].Code, true
		}
	}
	return "", false
}
