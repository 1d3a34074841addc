package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// openCommand is swapped in tests so no browser is launched.
var openCommand = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenBrowser opens the default system browser to the specified URL.
//
// Supports macOS, Linux, and Windows platforms.
func OpenBrowser(url string) error {
	var err error
	switch rt := getRuntime(); rt {
	case "darwin":
		err = openCommand("open", url)
	case "linux":
		err = openCommand("xdg-open", url)
	case "windows":
		err = openCommand("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}
