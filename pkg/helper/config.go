package helper

import (
	"os"
	"path/filepath"
)

// ConfigDirEnv names the environment variable that overrides the config directory.
const ConfigDirEnv = "ANACHAK_CONFIG_DIR"

// DefaultConfigDir is used when no other candidate exists.
const DefaultConfigDir = "/etc/anachak"

// GetCfgPath returns the path to the configuration file.
//
// Priority:
// 1. If filename is an absolute path, return it directly.
// 2. $ANACHAK_CONFIG_DIR/{filename} when the variable is set and the file exists
// 3. ./{filename}, then ./configs/{filename}
// 4. Otherwise, fallback to /etc/anachak/{filename}
func GetCfgPath(filename string) string {
	if filename == "" {
		panic("filename cannot be empty")
	}

	if filepath.IsAbs(filename) {
		return filename
	}

	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		if p := existingAbs(filepath.Join(dir, filename)); p != "" {
			return p
		}
	}

	if p := lookupWorkingDir(filename); p != "" {
		return p
	}

	return filepath.Join(DefaultConfigDir, filename)
}

func lookupWorkingDir(filename string) string {
	wd, err := os.Getwd()
	if err != nil || wd == "" {
		return ""
	}
	for _, candidate := range []string{
		filepath.Join(wd, filename),
		filepath.Join(wd, "configs", filename),
	} {
		if p := existingAbs(candidate); p != "" {
			return p
		}
	}
	return ""
}

func existingAbs(path string) string {
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return abs
}
