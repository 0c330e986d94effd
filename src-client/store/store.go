package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Identity remembers which response row this client owns: the id of
// the first row it successfully inserted. Read once at startup,
// written once after the first insert, never expires. Wiping the file
// by hand is the only way to forget it.
type Identity struct {
	path string
}

func NewIdentity(path string) *Identity {
	return &Identity{path: path}
}

func DefaultPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("store.DefaultPath: %w", err)
	}
	return filepath.Join(configDir, "potluck", "identity"), nil
}

// Load reads the remembered row id, blank when nothing was ever saved.
func (i *Identity) Load() (string, error) {
	data, err := os.ReadFile(i.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("(*Identity).Load: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (i *Identity) Save(id string) error {
	if id == "" {
		return fmt.Errorf("(*Identity).Save: id is blank")
	}
	if err := os.MkdirAll(filepath.Dir(i.path), 0o700); err != nil {
		return fmt.Errorf("(*Identity).Save: %w", err)
	}
	if err := os.WriteFile(i.path, []byte(id+"\n"), 0o600); err != nil {
		return fmt.Errorf("(*Identity).Save: %w", err)
	}
	return nil
}
