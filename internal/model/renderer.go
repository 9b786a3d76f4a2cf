package model

import (
	"context"
	"io"
)

// PageAttributes is the attribute mapping handed to the presentation layer:
// show_title, errors, redirect, status flags and the like. The gateway never
// inspects the produced markup.
type PageAttributes map[string]any

// PageRenderer renders a named page template with its attributes. It is the
// boundary to the presentation layer.
type PageRenderer interface {
	Render(ctx context.Context, w io.Writer, template string, attrs PageAttributes) error
}

// CaptchaVerifier checks a client-supplied CAPTCHA response token against the
// third-party verification service. Implementations fail closed: any
// transport or service failure reports false.
type CaptchaVerifier interface {
	Verify(ctx context.Context, secret, response string) bool
}
