package services

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var slugStripRegex = regexp.MustCompile(`[^a-z0-9-]+`)
var slugDashRegex = regexp.MustCompile(`-{2,}`)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}, location ...string) {

	w.Header().Set("Content-Type", "application/json")

	// We don't want to cache API responses so the client receives most curent data
	w.Header().Set("Cache-Control", "max-age=0")

	// Conditionally set the Location header if provided
	if len(location) > 0 && location[0] != "" {
		w.Header().Set("Location", location[0])
	}

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return // **Return immediately to avoid multiple WriteHeader calls**
		}
	}
}

// Slugify lowercases a title and reduces it to url-safe characters.
func Slugify(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = slugStripRegex.ReplaceAllString(slug, "")
	slug = slugDashRegex.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
