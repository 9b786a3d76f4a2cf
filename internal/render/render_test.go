package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membergate/membergate/internal/model"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	renderer, err := NewRenderer()
	require.NoError(t, err)

	t.Run("login form carries notices and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := renderer.Render(context.Background(), &buf, model.RouteLogin.Template(), model.PageAttributes{
			"Title":      "Log In",
			"Notices":    []string{"You are now logged out."},
			"Errors":     []string{"The password field is empty."},
			"Login":      "ada@example.com",
			"RedirectTo": "/members",
		})
		require.NoError(t, err)

		page := buf.String()
		assert.Contains(t, page, "You are now logged out.")
		assert.Contains(t, page, "The password field is empty.")
		assert.Contains(t, page, `value="ada@example.com"`)
		assert.Contains(t, page, `name="redirect_to" value="/members"`)
	})

	t.Run("register form shows the captcha widget only with a site key", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := renderer.Render(context.Background(), &buf, model.RouteRegister.Template(), model.PageAttributes{
			"Title":          "Register",
			"CaptchaSiteKey": "site-key",
		})
		require.NoError(t, err)
		assert.Contains(t, buf.String(), `data-sitekey="site-key"`)

		buf.Reset()
		err = renderer.Render(context.Background(), &buf, model.RouteRegister.Template(), model.PageAttributes{
			"Title": "Register",
		})
		require.NoError(t, err)
		assert.NotContains(t, buf.String(), "g-recaptcha")
	})

	t.Run("reset form carries the token pair", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		err := renderer.Render(context.Background(), &buf, model.RouteResetPassword.Template(), model.PageAttributes{
			"Title": "Reset Password",
			"Key":   "reset-key",
			"Login": "ada",
		})
		require.NoError(t, err)

		page := buf.String()
		assert.Contains(t, page, `name="rp_key" value="reset-key"`)
		assert.Contains(t, page, `name="rp_login" value="ada"`)
	})

	t.Run("every route template exists", func(t *testing.T) {
		t.Parallel()

		routes := []model.Route{
			model.RouteLogin,
			model.RouteRegister,
			model.RouteLostPassword,
			model.RouteResetPassword,
			model.RouteAccount,
		}
		for _, route := range routes {
			var buf bytes.Buffer
			err := renderer.Render(context.Background(), &buf, route.Template(), model.PageAttributes{
				"Title": "x",
			})
			assert.NoError(t, err, route)
		}
	})
}
