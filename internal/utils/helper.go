package utils

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	nonAlnumRegex  = regexp.MustCompile(`[^a-z0-9]+`)
	multiDashRegex = regexp.MustCompile(`-+`)
	nonDigitRegex  = regexp.MustCompile(`[^0-9]`)
)

// Slugify lowercases, strips accents and joins words with dashes.
func Slugify(input string) string {
	slug := strings.ToLower(strings.TrimSpace(stripAccents(input)))
	slug = nonAlnumRegex.ReplaceAllString(slug, "-")
	slug = multiDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func stripAccents(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(s) {
		// combining diacritical marks
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func DigitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// NormalizePhoneBR returns the phone in international digits form (55 + DDD +
// number). Local 10/11 digit numbers get the country code prepended.
func NormalizePhoneBR(phone string) string {
	digits := DigitsOnly(phone)
	digits = strings.TrimLeft(digits, "0")
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

func StrPtr(s string) *string {
	return &s
}

func PtrString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSONError writes the error envelope. Error is a stable snake_case code
// derived from the status; Message is meant for people.
func WriteJSONError(w http.ResponseWriter, requestID, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorResponse{
		Error:     errorCode(code),
		Message:   message,
		RequestID: requestID,
	})
}

func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
