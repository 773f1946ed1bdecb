package me

import authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"

// MeResponse is the identity check. User is set only when authenticated.
type MeResponse struct {
	Authenticated bool              `json:"authenticated" example:"true"`
	User          *authsdk.Identity `json:"user,omitempty"`
}
