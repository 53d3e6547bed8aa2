package feed

import (
	"context"
	"errors"
	"f1timing/internal/crypto/seed"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"net/http"
	"time"
)

type LiveOptions struct {
	Username       string
	Password       string
	SeedStorePath  string // optional sqlite seed cache
	ConnectTimeout time.Duration
	LoginURL       string   // defaults to LoginURL
	Endpoint       Endpoint // defaults to the provider's live servers
}

// Live reader plus the resources opened for it
type LiveSession struct {
	*Reader
	store *seed.Store
}

// Logs in and builds a reader for the live feed. No connection is made until the first Read.
func OpenLive(ctx context.Context, opts LiveOptions) (session *LiveSession, err error) {
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = global.DefaultConnectTimeout
	}
	client := &http.Client{Timeout: opts.ConnectTimeout}

	token, err := Login(ctx, client, opts.LoginURL, opts.Username, opts.Password)
	if err != nil {
		return
	}
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Logged in as %s\n", opts.Username)

	var resolver seed.Resolver = seed.NewHTTPResolver(client, token)

	session = &LiveSession{}
	if opts.SeedStorePath != "" {
		session.store, err = seed.OpenStore(opts.SeedStorePath)
		if err != nil {
			err = fmt.Errorf("failed to open seed store: %w", err)
			return
		}
		resolver = &seed.CachingResolver{Store: session.store, Next: resolver}
	}

	endpoint := opts.Endpoint
	if endpoint == nil {
		live := NewLiveEndpoint(client)
		live.ConnectTimeout = opts.ConnectTimeout
		endpoint = live
	}

	session.Reader = NewReader(endpoint, seed.NewFactory(resolver))
	return
}

func (s *LiveSession) Close() (err error) {
	err = s.Reader.Close()
	if s.store != nil {
		err = errors.Join(err, s.store.Close())
	}
	return
}
