package lifecycle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Block (with timeout) until child sends readiness message over file descriptor.
func readinessReceiver(readyReader *os.File) (err error) {
	readyReader.SetReadDeadline(time.Now().Add(DefaultMaxWaitForUpdate))

	// Wait for ready message
	buf := make([]byte, len(ReadyMessage))
	_, err = io.ReadFull(readyReader, buf)
	if err != nil {
		err = fmt.Errorf("error reading readiness message: %w", err)
		return
	}

	// Verify
	msg := string(buf)
	if msg != ReadyMessage {
		err = fmt.Errorf("received message '%s', does not match expected message '%s'", msg, ReadyMessage)
		return
	}

	return
}

// Opens the file descriptor number held in an environment variable.
// Returns nil file if env var does not exist.
func inheritedFile(envName, name string) (file *os.File, err error) {
	fdStr := os.Getenv(envName)
	if fdStr == "" {
		return
	}

	fd, err := strconv.Atoi(fdStr)
	if err != nil {
		err = fmt.Errorf("invalid %s: %w", envName, err)
		return
	}

	file = os.NewFile(uintptr(fd), name)
	if file == nil {
		err = fmt.Errorf("failed to open %s=%d", envName, fd)
		return
	}
	return
}

// Send readiness signal to file descriptor in parent-supplied environment variable file descriptor.
// Returns nil if env var does not exist.
func ReadinessSender() (err error) {
	readyPipe, err := inheritedFile(EnvNameReadinessFD, "ready")
	if err != nil || readyPipe == nil {
		return // not running under updater
	}
	defer readyPipe.Close()

	// Send readiness message
	msg := []byte(ReadyMessage)
	for len(msg) > 0 {
		var bytesWritten int
		bytesWritten, err = readyPipe.Write(msg)
		if err != nil {
			err = fmt.Errorf("failed to send readiness message: %w", err)
			return
		}
		msg = msg[bytesWritten:]
	}

	return
}

// Blocks until the process that spawned this one has exited (its end of the aliveness pipe closes).
// Returns false immediately when not started by an updating parent.
func WaitForParentExit() (replaced bool, err error) {
	aliveR, err := inheritedFile(EnvNameAlivenessFD, "parent-alive")
	if err != nil || aliveR == nil {
		return
	}
	defer aliveR.Close()

	// Parent never writes, read only returns at EOF
	_, err = io.Copy(io.Discard, aliveR)
	if err != nil && !errors.Is(err, os.ErrClosed) {
		err = fmt.Errorf("failed waiting on parent process: %w", err)
		return
	}
	err = nil
	replaced = true
	return
}
