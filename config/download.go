package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DownloadConfig controls where payslips are written.
type DownloadConfig struct {
	// Dir receives downloaded files. A leading "~" is expanded to the home directory.
	Dir string `env:"DOWNLOAD_DIR" envDefault:"."`
}

// Sanitize expands the home directory and defaults to the working directory.
func (d *DownloadConfig) Sanitize() {
	d.Dir = strings.TrimSpace(d.Dir)
	if d.Dir == "" {
		d.Dir = "."
		return
	}
	if d.Dir == "~" || strings.HasPrefix(d.Dir, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			d.Dir = filepath.Join(home, strings.TrimPrefix(d.Dir, "~"))
		}
	}
}
