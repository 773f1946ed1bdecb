package verify

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/intrpom/Kurzy-sub001/internal/dto"
	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/internal/metrics"
	"github.com/intrpom/Kurzy-sub001/internal/pkg"
	authsdk "github.com/intrpom/Kurzy-sub001/packages/auth-sdk"
	"github.com/intrpom/Kurzy-sub001/packages/response"

	"github.com/gin-gonic/gin"
)

// Redeemer consumes magic-link tokens.
type Redeemer interface {
	Redeem(ctx context.Context, token, email string) (*authsdk.Identity, *response.BusinessError)
}

type VerifyHandler struct {
	redeemer Redeemer
	codec    *authsdk.Codec
	cookies  *pkg.CookieHelper
	logger   *slog.Logger
}

func NewVerifyHandler(redeemer Redeemer, codec *authsdk.Codec, cookies *pkg.CookieHelper) *VerifyHandler {
	return &VerifyHandler{
		redeemer: redeemer,
		codec:    codec,
		cookies:  cookies,
		logger:   logging.For("verify"),
	}
}

// Verify redeems a magic link
// @Summary Redeem a sign-in link
// @Description Consumes the token, sets the session cookies and echoes the pre-login intent. HEAD and prefetch requests answer 204 without consuming the token.
// @Tags auth
// @Produce json
// @Param token query string true "magic-link token"
// @Param email query string true "email the link was sent to"
// @Param courseId query string false "intent course id"
// @Param slug query string false "intent course slug"
// @Param price query string false "intent price"
// @Param action query string false "intent action"
// @Param returnUrl query string false "same-site path to resume"
// @Success 200 {object} VerifyResponse
// @Success 204
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /auth/verify [get]
func (h *VerifyHandler) Verify(c *gin.Context) {
	if isPrefetch(c.Request) {
		c.Status(http.StatusNoContent)
		return
	}

	id, bizErr := h.redeemer.Redeem(c.Request.Context(), c.Query("token"), c.Query("email"))
	if bizErr != nil {
		metrics.TokenRedemptions.WithLabelValues(bizErr.Code.String()).Inc()
		dto.ErrorResponse(c, bizErr)
		return
	}

	blob, _, err := h.codec.Encode(*id)
	if err != nil {
		h.logger.ErrorContext(c.Request.Context(), "encode session failed", "user_id", id.ID, "error", err)
		metrics.TokenRedemptions.WithLabelValues(response.StorageError.String()).Inc()
		dto.ErrorResponse(c, response.NewBusinessError(
			response.WithErrorCode(response.StorageError),
			response.WithErrorMessage("Something went wrong, please try again"),
			response.WithHTTPStatus(http.StatusInternalServerError),
			response.WithError(err),
		))
		return
	}
	h.cookies.SetSessionCookies(c, blob, id.ID, h.codec.TTL())
	metrics.TokenRedemptions.WithLabelValues("success").Inc()

	res := VerifyResponse{Success: true, User: *id}
	if intent := pkg.IntentFromQuery(c.Request.URL.Query()); !intent.IsZero() {
		res.Intent = &intent
	}
	dto.SuccessResponse(c, res)
}

// isPrefetch reports requests from link scanners and browser prefetchers,
// which must not burn the single-use token.
func isPrefetch(r *http.Request) bool {
	if r.Method == http.MethodHead {
		return true
	}
	for _, h := range []string{"Sec-Purpose", "Purpose", "X-Purpose", "X-Moz"} {
		if strings.Contains(strings.ToLower(r.Header.Get(h)), "prefetch") {
			return true
		}
	}
	return false
}
