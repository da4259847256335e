// Public verification endpoint.
//
// GET /verify?q=… is the only unauthenticated API route. It resolves a
// free-text query (warranty code first, serial number second) to a redacted
// warranty view with a localized status message.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cardbox/warranty-backend/internal/i18n"
	"github.com/cardbox/warranty-backend/internal/services"
	"github.com/cardbox/warranty-backend/internal/warranty"
)

// VerifyResponse is the public verification payload: the redacted record plus
// a localized, human-readable status message.
type VerifyResponse struct {
	services.VerifyResult
	Message string `json:"message" example:"Valid / Active"`
}

// verifyLang picks the response language from the explicit lang query
// parameter, falling back to the Accept-Language header.
func verifyLang(c *gin.Context) string {
	if l := strings.TrimSpace(c.Query("lang")); l != "" {
		return l
	}
	return c.GetHeader("Accept-Language")
}

// messageKey selects the localized message for a verify result. Unverified
// records surface as self-declared regardless of coverage status.
func messageKey(r *services.VerifyResult) string {
	if r.VerificationStatus != "verified" {
		return "verify.unverified"
	}
	switch r.Status {
	case warranty.StatusExpired:
		return "verify.expired"
	case warranty.StatusExpiringSoon:
		return "verify.expiring"
	default:
		return "verify.valid"
	}
}

// VerifyWarranty godoc
// @ID          verifyWarranty
// @Summary     Verify a warranty (public)
// @Description Looks up a warranty by code or serial number and returns a redacted view with a localized status message. Requires no authentication.
// @Tags        Verify
// @Produce     json
//
// @Param       q                query   string  true  "Warranty code or serial number" example(CB-K9M2-P3XW)
// @Param       lang             query   string  false "Response language (en, bn)"     example(bn)
// @Param       Accept-Language  header  string  false "Fallback response language"     example(bn)
//
// @Success     200  {object} handlers.VerifyResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing query"
// @Failure     404  {object} handlers.ErrorResponse "No match"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /verify [get]
func (h *Handlers) VerifyWarranty(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "query parameter q is required")
		return
	}
	lang := i18n.Match(verifyLang(c))

	res, err := h.verifySvc.Lookup(c.Request.Context(), q)
	if err != nil {
		if errors.Is(err, services.ErrWarrantyNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, i18n.T(lang, "verify.not_found"))
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeVerifyFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, VerifyResponse{
		VerifyResult: *res,
		Message:      i18n.T(lang, messageKey(res)),
	})
}
