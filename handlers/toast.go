package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

// Toast is the payload of the showToast client event.
type Toast struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// flashCookie carries a toast across a full-page redirect.
const flashCookie = "flash_toast"

// mergeTrigger adds event to an HX-Trigger JSON value. An existing value that
// is not a JSON object is replaced.
func mergeTrigger(existing, event string, payload any) (string, error) {
	events := map[string]any{}
	if existing != "" {
		if err := json.Unmarshal([]byte(existing), &events); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			events = map[string]any{}
		}
	}
	events[event] = payload
	data, err := json.Marshal(events)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SetToast queues a toast for the client: through the HX-Trigger header for
// HTMX swaps, and through a short-lived flash cookie for plain redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	toast := Toast{Message: message, Type: toastType}

	trigger, err := mergeTrigger(e.Response.Header().Get("HX-Trigger"), "showToast", toast)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", trigger)

	cookieVal, err := json.Marshal(toast)
	if err != nil {
		return
	}
	http.SetCookie(e.Response, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(string(cookieVal)),
		Path:     "/",
		MaxAge:   10,
		HttpOnly: false, // read by toast.js
		SameSite: http.SameSiteLaxMode,
	})
}

// ErrorToast sets an error toast and answers with HX-Reswap: none so HTMX
// keeps the current DOM.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
