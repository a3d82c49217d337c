package render

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/futig/panel-product-bot/internal/entity"
	"github.com/futig/panel-product-bot/internal/integration/panel"
	"github.com/futig/panel-product-bot/internal/session"
	pkghttp "github.com/futig/panel-product-bot/pkg/http"
)

// errorPreviewLength bounds panel bodies echoed back to the chat.
const errorPreviewLength = 200

// ClassifyError turns a gateway or login error into a short message with a
// specific reason. It never exposes stack traces or secrets.
func ClassifyError(err error) string {
	if err == nil {
		return ErrGeneric
	}

	var loginErr *session.LoginError
	if errors.As(err, &loginErr) {
		return fmt.Sprintf(ErrLoginFailed, loginErr.Code)
	}

	switch {
	case errors.Is(err, entity.ErrNoSite), errors.Is(err, entity.ErrNoCredentials):
		return ErrNoCredentials
	case errors.Is(err, entity.ErrNoCSRFToken):
		return ErrNoCSRFToken
	case errors.Is(err, context.DeadlineExceeded):
		return ErrTimeout
	}

	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprintf(ErrPanelRejected, httpErr.StatusCode, shorten(httpErr.Message))
	}

	var shapeErr *panel.ShapeError
	if errors.As(err, &shapeErr) {
		reason := shapeErr.Reason
		if shapeErr.Preview != "" {
			reason = fmt.Sprintf("%s • %s", reason, shorten(shapeErr.Preview))
		}
		return fmt.Sprintf(ErrPanelResponse, reason)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	var networkErr *pkghttp.NetworkError
	if errors.As(err, &networkErr) {
		return fmt.Sprintf(ErrNetworkIssue, networkReason(networkErr.Err))
	}

	return ErrGeneric
}

func networkReason(err error) string {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "host not found"
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "connection refused"
	case strings.Contains(msg, "certificate"):
		return "TLS certificate problem"
	case strings.Contains(msg, "no such host"):
		return "host not found"
	default:
		return "connection failed"
	}
}

func shorten(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= errorPreviewLength {
		return s
	}
	return string(runes[:errorPreviewLength]) + "…"
}
