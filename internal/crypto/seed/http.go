package seed

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Session id and auth token are substituted in order
	LiveSeedURLFormat = "http://live-timing.formula1.com/reg/getkey/%s.asp?auth=%s"

	maxSeedResponse = 64
)

// Fetches seeds from the live timing service using an authentication token
type HTTPResolver struct {
	Client    *http.Client
	URLFormat string
	Token     string
}

func NewHTTPResolver(client *http.Client, token string) (resolver *HTTPResolver) {
	if client == nil {
		client = http.DefaultClient
	}
	resolver = &HTTPResolver{
		Client:    client,
		URLFormat: LiveSeedURLFormat,
		Token:     token,
	}
	return
}

func (r *HTTPResolver) Resolve(ctx context.Context, sessionID string) (seed uint32, err error) {
	seedURL := fmt.Sprintf(r.URLFormat, url.PathEscape(sessionID), url.QueryEscape(r.Token))
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Fetching seed for session %s\n", sessionID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, seedURL, nil)
	if err != nil {
		err = fmt.Errorf("failed to build seed request: %w", err)
		return
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to fetch session seed: %w", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("seed request returned status %s", resp.Status)
		return
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSeedResponse))
	if err != nil {
		err = fmt.Errorf("failed to read seed response: %w", err)
		return
	}

	response := strings.TrimSpace(string(body))
	if strings.EqualFold(response, "invalid") {
		err = ErrCredentialsRejected
		return
	}
	seed, err = ParseHex(response)
	return
}

// Parses a hexadecimal seed, keeping the low 32 bits
func ParseHex(text string) (seed uint32, err error) {
	text = strings.TrimSpace(text)
	value, err := strconv.ParseUint(text, 16, 64)
	if err != nil {
		err = fmt.Errorf("unable to parse seed from %q: %w", text, err)
		return
	}
	seed = uint32(value & 0xFFFFFFFF)
	return
}
