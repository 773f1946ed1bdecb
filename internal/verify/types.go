package verify

import (
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
)

// VerifyResponse is returned once the link has been redeemed and the session
// cookies are set.
type VerifyResponse struct {
	Success bool             `json:"success" example:"true"`
	User    authsdk.Identity `json:"user"`
	Intent  *pkg.Intent      `json:"intent,omitempty"`
}
