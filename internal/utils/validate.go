package utils

// validate.go holds the pure input validators shared by the auth and place
// handlers.  Validators never touch the database; they only check shape and
// range.  The Validate* aggregates return every violated rule so clients can
// show the full list at once instead of fixing errors one at a time.

import (
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nameRe  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
)

// IsValidEmail reports whether s looks like an email address.
func IsValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// IsValidPassword requires a minimum length of 6 characters.
func IsValidPassword(s string) bool {
	return len(s) >= 6
}

// IsValidPersonName requires at least 2 characters, letters and spaces only.
func IsValidPersonName(s string) bool {
	return len(s) >= 2 && nameRe.MatchString(s)
}

// IsValidPlaceName requires a length between 2 and 100 characters.
func IsValidPlaceName(s string) bool {
	return len(s) >= 2 && len(s) <= 100
}

// IsValidDescription caps free-text descriptions at 1000 characters.
func IsValidDescription(s string) bool {
	return len(s) <= 1000
}

// IsValidLatitude checks the WGS84 latitude range.
func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

// IsValidLongitude checks the WGS84 longitude range.
func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// IsValidCoordinates checks both halves of a coordinate pair.
func IsValidCoordinates(lat, lng float64) bool {
	return IsValidLatitude(lat) && IsValidLongitude(lng)
}

// RegistrationInput carries the fields checked during account creation.
type RegistrationInput struct {
	Name     string
	Email    string
	Password string
}

// ValidateRegistration returns the list of violated rules for a registration
// request.  An empty slice means the input is acceptable.
func ValidateRegistration(in RegistrationInput) []string {
	var errs []string
	if !IsValidPersonName(strings.TrimSpace(in.Name)) {
		errs = append(errs, "Name must be at least 2 characters and contain only letters")
	}
	if !IsValidEmail(in.Email) {
		errs = append(errs, "Invalid email address")
	}
	if !IsValidPassword(in.Password) {
		errs = append(errs, "Password must be at least 6 characters")
	}
	return errs
}

// PlaceInput carries the user-supplied fields of a place submission.
// Pointer fields are optional; nil means the client omitted them.
type PlaceInput struct {
	Name        string
	Description *string
	CategoryID  string
	Latitude    *float64
	Longitude   *float64
}

// ValidatePlace returns the list of violated rules for a place submission.
func ValidatePlace(in PlaceInput) []string {
	var errs []string
	if !IsValidPlaceName(strings.TrimSpace(in.Name)) {
		errs = append(errs, "Place name must be between 2 and 100 characters")
	}
	if in.Description != nil && !IsValidDescription(*in.Description) {
		errs = append(errs, "Description must not exceed 1000 characters")
	}
	if strings.TrimSpace(in.CategoryID) == "" {
		errs = append(errs, "Category is required")
	}
	if in.Latitude != nil && !IsValidLatitude(*in.Latitude) {
		errs = append(errs, "Invalid latitude")
	}
	if in.Longitude != nil && !IsValidLongitude(*in.Longitude) {
		errs = append(errs, "Invalid longitude")
	}
	return errs
}
