package handlers

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"renovestimate/services"
)

type contextKey string

const EstimateKey contextKey = "estimate"

// TokenHeader carries the public token of an estimate for API clients.
const TokenHeader = "X-Estimate-Token"

// GetEstimate extracts the estimate loaded by EstimateAccessMiddleware.
func GetEstimate(r *http.Request) *core.Record {
	if val, ok := r.Context().Value(EstimateKey).(*core.Record); ok {
		return val
	}
	return nil
}

// requestToken reads the estimate token from the query string, then the header.
func requestToken(r *http.Request) string {
	if t := strings.TrimSpace(r.URL.Query().Get("token")); t != "" {
		return t
	}
	return strings.TrimSpace(r.Header.Get(TokenHeader))
}

// CanAccessEstimate reports whether the request may read or change estimate:
// superusers always can, everyone else needs the estimate's public token.
func CanAccessEstimate(e *core.RequestEvent, estimate *core.Record) bool {
	if e.HasSuperuserAuth() {
		return true
	}
	token := requestToken(e.Request)
	want := estimate.GetString("public_token")
	if token == "" || want == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(want)) == 1
}

// EstimateAccessMiddleware loads the estimate named by the {id} path value,
// checks the caller's access and stores the record in the request context.
func EstimateAccessMiddleware(app *pocketbase.PocketBase) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id := e.Request.PathValue("id")
		estimate, err := services.FindEstimate(app, id)
		if err != nil {
			return denyAccess(e, http.StatusNotFound, "Estimate not found")
		}
		if !CanAccessEstimate(e, estimate) {
			log.Printf("access: rejected request for estimate %s", id)
			return denyAccess(e, http.StatusForbidden, "Invalid or missing estimate token")
		}

		ctx := context.WithValue(e.Request.Context(), EstimateKey, estimate)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}

func denyAccess(e *core.RequestEvent, code int, message string) error {
	if strings.HasPrefix(e.Request.URL.Path, "/api/") {
		return RespondError(e, code, message, nil)
	}
	if isHTMX(e) {
		return ErrorToast(e, code, message)
	}
	return e.String(code, message)
}

// estimateID returns the id of the estimate being served, preferring the
// record stored by the middleware.
func estimateID(e *core.RequestEvent) string {
	if rec := GetEstimate(e.Request); rec != nil {
		return rec.Id
	}
	return e.Request.PathValue("id")
}
