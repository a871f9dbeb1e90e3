package service

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func TestParseIDAcceptsOnlyHyphenatedForm(t *testing.T) {
	const canonical = "a0eebc99-9c0b-4ef8-bb6d-6bb9bd380a11"

	accepted := map[string]string{
		"lower case": canonical,
		"upper case": strings.ToUpper(canonical),
	}
	for name, in := range accepted {
		t.Run(name, func(t *testing.T) {
			id, err := parseID(in, "ticket")
			require.NoError(t, err)
			assert.Equal(t, canonical, id)
		})
	}

	rejected := map[string]string{
		"urn":      "urn:uuid:" + canonical,
		"braces":   "{" + canonical + "}",
		"undashed": strings.ReplaceAll(canonical, "-", ""),
		"short":    canonical[:35],
		"garbage":  strings.Repeat("z", 36),
		"empty":    "",
	}
	for name, in := range rejected {
		t.Run(name, func(t *testing.T) {
			_, err := parseID(in, "ticket")
			require.Error(t, err)
			assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest))
			assert.Equal(t, "invalid ticket id", err.Error())
		})
	}
}

func TestValidatePasswordBounds(t *testing.T) {
	assert.NoError(t, validatePassword("secret"))
	assert.NoError(t, validatePassword(strings.Repeat("a", 72)))

	for _, pw := range []string{"abc", strings.Repeat("a", 73), strings.Repeat("é", 40)} {
		err := validatePassword(pw)
		assert.True(t, apperrors.IsStatus(err, http.StatusBadRequest), "len=%d", len(pw))
	}
}
