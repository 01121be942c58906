// Package viewer launches an external document viewer on a hit.
package viewer

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	terrors "github.com/tome-search/tome/internal/errors"
)

// Open spawns the configured viewer on a document, detached from this
// process. The command template may use {path} and {page} placeholders; a
// template without {path} gets the path appended. An empty command falls
// back to the platform opener, which cannot jump to a page.
func Open(ctx context.Context, command, docPath string, page int) error {
	name, args := buildCommand(command, docPath, page)
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return terrors.IOError(fmt.Sprintf("launching viewer %s", name), err)
	}
	// The viewer outlives us; reap it in the background so a quick exit
	// does not leave a zombie while this process is still running.
	go func() { _ = cmd.Wait() }()
	return nil
}

func buildCommand(command, docPath string, page int) (string, []string) {
	if strings.TrimSpace(command) == "" {
		return platformOpener(docPath)
	}

	fields := strings.Fields(command)
	name := fields[0]
	args := make([]string, 0, len(fields))
	sawPath := false
	for _, f := range fields[1:] {
		if strings.Contains(f, "{path}") {
			sawPath = true
		}
		f = strings.ReplaceAll(f, "{path}", docPath)
		f = strings.ReplaceAll(f, "{page}", strconv.Itoa(page))
		args = append(args, f)
	}
	if !sawPath {
		args = append(args, docPath)
	}
	return name, args
}

func platformOpener(docPath string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{docPath}
	case "windows":
		return "cmd", []string{"/c", "start", "", docPath}
	default:
		return "xdg-open", []string{docPath}
	}
}
