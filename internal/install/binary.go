package install

import (
	"errors"
	"f1timing/internal/global"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Replaces whatever is at dst with the running executable
func installBinary() (err error) {
	selfPath, err := os.Executable()
	if err != nil {
		err = fmt.Errorf("failed to locate running executable: %w", err)
		return
	}
	selfPath, err = filepath.EvalSymlinks(selfPath)
	if err != nil {
		err = fmt.Errorf("failed to resolve running executable: %w", err)
		return
	}
	if selfPath == global.DefaultBinaryPath {
		fmt.Printf("Binary already installed at '%s'\n", global.DefaultBinaryPath)
		return
	}

	err = placeBinary(selfPath, global.DefaultBinaryPath)
	if err != nil {
		return
	}

	fmt.Printf("Installed f1timing to '%s'\n", global.DefaultBinaryPath)
	return
}

// Moves src over dst. Across filesystems the file is copied next to dst first,
// so a service executing the old binary never sees a half written one.
func placeBinary(src, dst string) (err error) {
	err = os.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		if err != nil {
			err = fmt.Errorf("failed to move binary: %w", err)
		}
		return
	}

	staged := dst + ".new"
	err = copyExecutable(src, staged)
	if err != nil {
		_ = os.Remove(staged)
		return
	}
	err = os.Rename(staged, dst)
	if err != nil {
		_ = os.Remove(staged)
		err = fmt.Errorf("failed to replace binary: %w", err)
		return
	}
	err = os.Remove(src)
	if err != nil {
		// Installed copy is complete, a leftover source is harmless
		fmt.Fprintf(os.Stderr, "Warning: could not remove '%s': %v\n", src, err)
		err = nil
	}
	return
}

func copyExecutable(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		err = fmt.Errorf("failed to open binary: %w", err)
		return
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		err = fmt.Errorf("failed to create staged binary: %w", err)
		return
	}
	_, err = io.Copy(out, in)
	if err == nil {
		err = out.Sync()
	}
	err = errors.Join(err, out.Close())
	if err != nil {
		err = fmt.Errorf("failed to copy binary: %w", err)
	}
	return
}

func uninstallBinary() (err error) {
	err = os.Remove(global.DefaultBinaryPath)
	if err != nil && !os.IsNotExist(err) {
		err = fmt.Errorf("failed to remove binary: %w", err)
		return
	}
	err = nil

	fmt.Printf("Removed '%s'\n", global.DefaultBinaryPath)
	return
}
