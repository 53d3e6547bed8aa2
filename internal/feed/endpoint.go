package feed

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"f1timing/internal/network"
	"fmt"
	"net/http"
	"path/filepath"
	"time"
)

const (
	LiveStreamAddress = "live-timing.formula1.com:4321"
	LiveKeyframeURL   = "http://live-timing.formula1.com/keyframe"

	streamFileName   = "stream.bin"
	keyframeFileName = "keyframe"
	keyframeFileExt  = ".bin"
)

// Source of the raw feed and its keyframes
type Endpoint interface {
	Open(ctx context.Context) (Stream, error)
	// Keyframe 0 is the current keyframe
	OpenKeyframe(ctx context.Context, keyframe int) (Stream, error)
}

// Provider's live servers
type LiveEndpoint struct {
	Address        string
	KeyframeURL    string // without the .bin suffix
	Client         *http.Client
	ConnectTimeout time.Duration
}

func NewLiveEndpoint(client *http.Client) (endpoint *LiveEndpoint) {
	if client == nil {
		client = &http.Client{Timeout: global.DefaultConnectTimeout}
	}
	endpoint = &LiveEndpoint{
		Address:        LiveStreamAddress,
		KeyframeURL:    LiveKeyframeURL,
		Client:         client,
		ConnectTimeout: global.DefaultConnectTimeout,
	}
	return
}

func (e *LiveEndpoint) Open(ctx context.Context) (stream Stream, err error) {
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Connecting to feed %s\n", e.Address)

	conn, err := network.DialStream(ctx, e.Address, e.ConnectTimeout)
	if err != nil {
		err = fmt.Errorf("failed to open feed stream %s: %w", e.Address, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Connected to feed %s\n", e.Address)
	stream = NewSocketStream(conn)
	return
}

func (e *LiveEndpoint) OpenKeyframe(ctx context.Context, keyframe int) (stream Stream, err error) {
	if keyframe < 0 {
		err = fmt.Errorf("invalid keyframe %d", keyframe)
		return
	}
	url := e.KeyframeURL
	if keyframe != 0 {
		url += fmt.Sprintf("_%05d", keyframe)
	}
	url += keyframeFileExt

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Opening keyframe %s\n", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		err = fmt.Errorf("failed to build keyframe request: %w", err)
		return
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to fetch keyframe %d: %w", keyframe, err)
		return
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		err = fmt.Errorf("failed to fetch keyframe %d: server returned %s", keyframe, resp.Status)
		return
	}

	stream = NewByteStream(resp.Body)
	return
}

// Raw feed captured to a directory: stream.bin plus the keyframes fetched during the session.
// Current keyframes were saved as keyframe.bin, keyframe_1.bin, ... in fetch order.
type RecordedEndpoint struct {
	Dir           string
	keyframeCount int
}

func NewRecordedEndpoint(dir string) (endpoint *RecordedEndpoint) {
	endpoint = &RecordedEndpoint{Dir: dir}
	return
}

func (e *RecordedEndpoint) Open(ctx context.Context) (stream Stream, err error) {
	path := filepath.Join(e.Dir, streamFileName)
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Opening recorded feed %s\n", path)

	stream, err = OpenFileStream(path)
	if err != nil {
		err = fmt.Errorf("failed to open recorded feed: %w", err)
	}
	return
}

func (e *RecordedEndpoint) OpenKeyframe(ctx context.Context, keyframe int) (stream Stream, err error) {
	if keyframe < 0 {
		err = fmt.Errorf("invalid keyframe %d", keyframe)
		return
	}
	path := filepath.Join(e.Dir, e.keyframeFile(keyframe))
	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Opening recorded keyframe %s\n", path)

	stream, err = OpenFileStream(path)
	if err != nil {
		err = fmt.Errorf("failed to open recorded keyframe: %w", err)
	}
	return
}

func (e *RecordedEndpoint) keyframeFile(keyframe int) (name string) {
	if keyframe != 0 {
		e.keyframeCount = 0
		name = fmt.Sprintf("%s_%05d%s", keyframeFileName, keyframe, keyframeFileExt)
		return
	}
	if e.keyframeCount > 0 {
		name = fmt.Sprintf("%s_%d%s", keyframeFileName, e.keyframeCount, keyframeFileExt)
	} else {
		name = keyframeFileName + keyframeFileExt
	}
	e.keyframeCount++
	return
}
