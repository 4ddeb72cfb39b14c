package validation

import (
	"strings"
	"testing"
	"time"

	"socialhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Valid", "secret1", false},
		{"Exactly Min Length", "abcdef", false},
		{"Exactly Max Length", strings.Repeat("p", 72), false},
		{"Too Short", "abc12", true},
		{"Too Long", strings.Repeat("p", 73), true},
		{"Empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"Valid", "a@x.com", false},
		{"Subdomain", "user@mail.example.org", false},
		{"Empty", "", true},
		{"Invalid Format", "not-an-email", true},
		{"Missing Domain", "user@", true},
		{"Multiple At Symbols", "user@@example.com", true},
		{"Too Long", strings.Repeat("a", 250) + "@x.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ada@x.com", NormalizeEmail("  Ada@X.com "))
}

func TestNames(t *testing.T) {
	assert.NoError(t, ValidateFirstName("A"))
	assert.Error(t, ValidateFirstName("   "))
	assert.Error(t, ValidateFirstName(strings.Repeat("n", 31)))
	assert.NoError(t, ValidateFirstName(strings.Repeat("é", 30)))

	assert.NoError(t, ValidateSurname(""))
	assert.NoError(t, ValidateSurname(strings.Repeat("s", 50)))
	assert.Error(t, ValidateSurname(strings.Repeat("s", 51)))
}

func TestParseGender(t *testing.T) {
	g, err := ParseGender("Male")
	require.NoError(t, err)
	assert.Equal(t, models.GenderMale, g)

	g, err = ParseGender(" Others ")
	require.NoError(t, err)
	assert.Equal(t, models.GenderOthers, g)

	_, err = ParseGender("female")
	assert.Error(t, err)
}

func TestParseBirthdate(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	d, err := ParseBirthdate("2000-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseBirthdate("1999-12-31T10:00:00+02:00", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(1999, 12, 31, 8, 0, 0, 0, time.UTC), d)

	_, err = ParseBirthdate("2030-01-01", now)
	assert.Error(t, err)

	_, err = ParseBirthdate("01/02/2000", now)
	assert.Error(t, err)

	_, err = ParseBirthdate("", now)
	assert.Error(t, err)
}

func TestCaptionAndComment(t *testing.T) {
	assert.NoError(t, ValidateCaption(""))
	assert.Error(t, ValidateCaption(strings.Repeat("c", MaxCaptionLength+1)))

	text, err := NormalizeCommentText("  nice post  ")
	require.NoError(t, err)
	assert.Equal(t, "nice post", text)

	_, err = NormalizeCommentText(" \t ")
	assert.Error(t, err)
}
