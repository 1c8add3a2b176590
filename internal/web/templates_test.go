package web

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_RenderEveryPage(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	data := map[string]interface{}{
		"Lang":   "en",
		"Title":  "Login",
		"CSRF":   "csrf-token-value",
		"Status": "",
		"Errors": map[string]string{"email": "The email field is required."},
		"Old":    map[string]string{"email": "writer@example.com"},
		"Token":  "abc",
		"Email":  "writer@example.com",
	}

	for _, page := range []string{"home.html", "login.html", "register.html", "forgot_password.html", "reset_password.html"} {
		t.Run(page, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, tmpl.ExecuteTemplate(&buf, page, data))
			assert.Contains(t, buf.String(), "csrf-token-value")
		})
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "login.html", data))
	assert.Contains(t, buf.String(), "The email field is required.")
	assert.Contains(t, buf.String(), `value="writer@example.com"`)
}
