package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/internal/accounts/service"
	"github.com/scrimflow/accounts/pkg/httpx"
	"golang.org/x/text/language"
)

// DefaultGeoTimeout bounds the geo lookup performed while handling a request.
const DefaultGeoTimeout = 1500 * time.Millisecond

// maxUserAgentLength caps the stored user agent.
const maxUserAgentLength = 512

// metadataResolver captures the client description stored with sessions and
// new users.
type metadataResolver struct {
	geo     service.GeoLocator
	timeout time.Duration
}

func (m metadataResolver) resolve(r *http.Request, withLocation bool) domain.SessionMetadata {
	ua := r.UserAgent()
	if len(ua) > maxUserAgentLength {
		ua = ua[:maxUserAgentLength]
	}

	meta := domain.SessionMetadata{
		IPAddress: httpx.ClientIP(r),
		UserAgent: ua,
		Device:    deviceFromUserAgent(ua),
		Locale:    localeFromHeader(r.Header.Get("Accept-Language")),
	}

	if withLocation && m.geo != nil {
		timeout := m.timeout
		if timeout <= 0 {
			timeout = DefaultGeoTimeout
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		meta.Location = m.geo.Lookup(ctx, meta.IPAddress)
	}
	return meta
}

// deviceFromUserAgent classifies a user agent as mobile, tablet or desktop.
func deviceFromUserAgent(ua string) string {
	if ua == "" {
		return ""
	}
	s := strings.ToLower(ua)
	switch {
	case strings.Contains(s, "ipad"), strings.Contains(s, "tablet"),
		strings.Contains(s, "android") && !strings.Contains(s, "mobile"):
		return "tablet"
	case strings.Contains(s, "mobi"), strings.Contains(s, "iphone"), strings.Contains(s, "ipod"):
		return "mobile"
	default:
		return "desktop"
	}
}

// localeFromHeader returns the base language of the most preferred
// Accept-Language entry, or "" when the header is absent or malformed.
func localeFromHeader(header string) string {
	if header == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, conf := tags[0].Base()
	if conf == language.No || base.String() == "und" {
		return ""
	}
	return base.String()
}
