// Resolution and caching of per-session keystream seeds
package seed

import (
	"context"
	"errors"
	"f1timing/internal/crypto/keystream"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"sync"
)

// Looks up the seed for a session from an external source
type Resolver interface {
	Resolve(ctx context.Context, sessionID string) (seed uint32, err error)
}

// Adapts a plain function to Resolver
type ResolverFunc func(ctx context.Context, sessionID string) (uint32, error)

func (f ResolverFunc) Resolve(ctx context.Context, sessionID string) (uint32, error) {
	return f(ctx, sessionID)
}

// Creates decrypters, resolving each session id at most once.
// Ids are cached exactly as given, so ids differing only in case resolve separately.
type Factory struct {
	resolver Resolver
	mutex    sync.Mutex
	cache    map[string]*cacheEntry
}

type cacheEntry struct {
	mutex    sync.Mutex // serializes resolution for one id
	seed     uint32
	resolved bool
}

func NewFactory(resolver Resolver) (factory *Factory) {
	factory = &Factory{
		resolver: resolver,
		cache:    make(map[string]*cacheEntry),
	}
	return
}

// Decrypter for data sent before any session is announced
func (f *Factory) Default() (decrypter *keystream.Decrypter) {
	decrypter = keystream.New(keystream.DefaultSeed)
	return
}

// Decrypter for the given session. Failed resolutions are not cached.
func (f *Factory) Create(ctx context.Context, sessionID string) (decrypter *keystream.Decrypter, err error) {
	if sessionID == "" {
		err = &ResolutionError{SessionID: sessionID, Err: errors.New("session id is empty")}
		return
	}
	ctx = logctx.AppendCtxTag(ctx, global.NSSeed)

	f.mutex.Lock()
	entry, ok := f.cache[sessionID]
	if !ok {
		entry = &cacheEntry{}
		f.cache[sessionID] = entry
	}
	f.mutex.Unlock()

	entry.mutex.Lock()
	defer entry.mutex.Unlock()

	if entry.resolved {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Cache hit for session %s with seed %x\n", sessionID, entry.seed)
	} else {
		if f.resolver == nil {
			err = &ResolutionError{SessionID: sessionID, Err: errors.New("no seed resolver configured")}
			return
		}

		var seed uint32
		seed, err = f.resolver.Resolve(ctx, sessionID)
		if err != nil {
			var resErr *ResolutionError
			if !errors.As(err, &resErr) {
				err = &ResolutionError{SessionID: sessionID, Err: err}
			}
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "%v\n", err)
			return
		}
		entry.seed = seed
		entry.resolved = true
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Creating decrypter for session %s\n", sessionID)
	decrypter = keystream.New(entry.seed)
	return
}
