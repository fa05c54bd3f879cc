package config

import (
	"os"
	"path/filepath"
)

// defaultDataDir places the token database under the user config directory,
// falling back to a dot directory in the working directory.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "gleandesk")
	}
	return ".gleandesk"
}
