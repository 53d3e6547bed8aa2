package feed

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	LoginURL        = "https://secure.formula1.com/reg/login"
	authCookieName  = "USER"
	authContentType = "application/x-www-form-urlencoded; charset=utf-8"
)

// Exchanges account credentials for the token used to fetch session seeds
func Login(ctx context.Context, client *http.Client, loginURL, username, password string) (token string, err error) {
	if username == "" || password == "" {
		err = fmt.Errorf("username and password are required")
		return
	}
	if client == nil {
		client = http.DefaultClient
	}
	if loginURL == "" {
		loginURL = LoginURL
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Fetching auth token from %s for user %s\n", loginURL, username)

	body := "email=" + url.QueryEscape(username) + "&password=" + url.QueryEscape(password)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, strings.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed to build login request: %w", err)
		return
	}
	req.Header.Set("Content-Type", authContentType)

	// Session cookie is set on the login response itself, never follow the redirect
	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := noRedirect.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to fetch auth token: %w", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == authCookieName && cookie.Value != "" {
			token = cookie.Value
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "Fetched auth token\n")
			return
		}
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
		"Login response had no %s cookie, assuming the credentials were rejected\n", authCookieName)
	err = ErrCredentialsRejected
	return
}
