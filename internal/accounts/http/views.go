package http

import (
	"github.com/scrimflow/accounts/internal/accounts/domain"
	"github.com/scrimflow/accounts/pkg/accountsdk"
)

func publicUserView(u domain.User) accountsdk.PublicUser {
	p := u.Public()
	return accountsdk.PublicUser{ID: p.ID, Username: p.Username, Role: string(p.Role)}
}

func profileView(u domain.User) accountsdk.Profile {
	return accountsdk.Profile{
		PublicUser:    publicUserView(u),
		Email:         u.Email,
		PendingEmail:  u.PendingEmail,
		EmailVerified: u.EmailVerified,
		Country:       u.Country,
		Timezone:      u.Timezone,
		Locale:        u.Locale,
	}
}

func sessionView(s domain.Session, currentID string) accountsdk.SessionView {
	v := accountsdk.SessionView{
		ID:        s.ID,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		Device:    s.Device,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Current:   s.ID == currentID,
	}
	if l := s.Location; l != nil {
		v.Location = &accountsdk.Location{
			City:        l.City,
			Region:      l.Region,
			Country:     l.Country,
			CountryCode: l.CountryCode,
			Latitude:    l.Latitude,
			Longitude:   l.Longitude,
			Timezone:    l.Timezone,
		}
	}
	return v
}
