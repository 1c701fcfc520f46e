package utils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/campusnav/campus-navigator/internal/utils"
)

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"student@cu.edu.in", true},
		{"a@b.co", true},
		{"no-at-sign", false},
		{"two@@signs.com", false},
		{"spaces in@mail.com", false},
		{"missing@tld", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, utils.IsValidEmail(tc.in), "email %q", tc.in)
	}
}

func TestIsValidPersonName(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"Asha Verma", true},
		{"Jo", true},
		{"A", false},
		{"R2D2", false},
		{"name_with_underscore", false},
		{"", false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, utils.IsValidPersonName(tc.in), "name %q", tc.in)
	}
}

func TestCoordinateBounds(t *testing.T) {
	require.True(t, utils.IsValidCoordinates(30.7699, 76.5766))
	require.True(t, utils.IsValidCoordinates(-90, -180))
	require.True(t, utils.IsValidCoordinates(90, 180))
	require.False(t, utils.IsValidCoordinates(90.0001, 0))
	require.False(t, utils.IsValidCoordinates(0, 180.0001))
	require.False(t, utils.IsValidCoordinates(-91, 0))
}

func TestValidateRegistration_CollectsAllViolations(t *testing.T) {
	errs := utils.ValidateRegistration(utils.RegistrationInput{
		Name:     "1",
		Email:    "not-an-email",
		Password: "123",
	})
	require.Len(t, errs, 3)
}

func TestValidateRegistration_OK(t *testing.T) {
	errs := utils.ValidateRegistration(utils.RegistrationInput{
		Name:     "Asha Verma",
		Email:    "asha@cu.edu.in",
		Password: "secret123",
	})
	require.Empty(t, errs)
}

func TestValidatePlace(t *testing.T) {
	lat, lng := 30.7699, 76.5766
	okName := "Food Court"

	errs := utils.ValidatePlace(utils.PlaceInput{
		Name:       okName,
		CategoryID: "cat-1",
		Latitude:   &lat,
		Longitude:  &lng,
	})
	require.Empty(t, errs)

	// Single-character name, no category.
	errs = utils.ValidatePlace(utils.PlaceInput{Name: "X"})
	require.Len(t, errs, 2)

	long := strings.Repeat("d", 1001)
	errs = utils.ValidatePlace(utils.PlaceInput{
		Name:        okName,
		CategoryID:  "cat-1",
		Description: &long,
	})
	require.Len(t, errs, 1)

	badLat := 123.0
	errs = utils.ValidatePlace(utils.PlaceInput{
		Name:       okName,
		CategoryID: "cat-1",
		Latitude:   &badLat,
	})
	require.Len(t, errs, 1)
}

func TestValidatePlace_NameLengthEdges(t *testing.T) {
	require.True(t, utils.IsValidPlaceName("ab"))
	require.True(t, utils.IsValidPlaceName(strings.Repeat("n", 100)))
	require.False(t, utils.IsValidPlaceName("a"))
	require.False(t, utils.IsValidPlaceName(strings.Repeat("n", 101)))
}
