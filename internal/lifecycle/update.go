package lifecycle

import (
	"context"
	"f1timing/internal/global"
	"f1timing/internal/logctx"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"syscall"
	"time"
)

// Write end of the aliveness pipe, held open until this process exits
var parentAlive *os.File

// Spawns new "copy" of self with most current executable and waits for signal from child to return.
// The child binds the same listening port (SO_REUSEPORT) so clients are never refused during the swap.
func updateSelf(ctx context.Context) (err error) {
	// Readiness Pipe - Child -> Parent notification (signals when to start parent shutdown)
	readyR, readyW, err := os.Pipe()
	if err != nil {
		err = fmt.Errorf("failed to create readiness pipe for new process: %w", err)
		return
	}
	defer readyR.Close()
	defer readyW.Close()

	// Aliveness Pipe - Parent -> Child (signals when to tell systemd that child is new main process)
	// Write end stays open, the OS closes it when this process is actually gone
	parentAliveR, parentAliveW, err := os.Pipe()
	if err != nil {
		err = fmt.Errorf("failed to create aliveness pipe for new process: %w", err)
		return
	}
	defer parentAliveR.Close()

	// Copy ourselves
	exePath, err := os.Executable()
	if err != nil {
		err = fmt.Errorf("failed to get executable path: %w", err)
		parentAliveW.Close()
		return
	}
	workingDir, err := os.Getwd()
	if err != nil {
		err = fmt.Errorf("failed to get current working directory: %w", err)
		parentAliveW.Close()
		return
	}

	// New executable (the child)
	cmd := exec.Command(exePath, os.Args[1:]...)
	cmd.Dir = workingDir
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// New environment for child
	const fdStartingIndex int = 3
	cmd.ExtraFiles = []*os.File{readyW, parentAliveR}
	readyFDNum := fdStartingIndex + slices.Index(cmd.ExtraFiles, readyW)
	parentAliveFDNum := fdStartingIndex + slices.Index(cmd.ExtraFiles, parentAliveR)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("%s=%d", EnvNameReadinessFD, readyFDNum),
		fmt.Sprintf("%s=%d", EnvNameAlivenessFD, parentAliveFDNum),
	)

	err = cmd.Start()
	if err != nil {
		err = fmt.Errorf("failed to start new process: %w", err)
		parentAliveW.Close()
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Started replacement child process with PID %d\n", cmd.Process.Pid)

	// Wait for child to successfully start
	err = readinessReceiver(readyR)
	if err != nil {
		stopChild(ctx, cmd)
		parentAliveW.Close()
		return
	}

	parentAlive = parentAliveW
	return
}

// Terminates a child that never reported ready
func stopChild(ctx context.Context, cmd *exec.Cmd) {
	if cmd.Process.Signal(syscall.Signal(0)) != nil {
		_ = cmd.Wait()
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Found child PID %d still alive despite not sending readiness signal\n", cmd.Process.Pid)

	// Attempt graceful shutdown
	err := cmd.Process.Signal(syscall.SIGTERM)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Failed to send graceful shutdown signal to child PID %d: %v\n", cmd.Process.Pid, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-time.After(DefaultChildStopTimeout):
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Child PID %d did not exit gracefully, forcing shutdown\n", cmd.Process.Pid)

		err = cmd.Process.Kill()
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Failed to force shutdown for child PID %d: %v\n", cmd.Process.Pid, err)
		}
		<-done
	case <-done:
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
			"Child PID %d exited gracefully\n", cmd.Process.Pid)
	}
}
