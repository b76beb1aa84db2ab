package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".daynote"

// Paths holds resolved filesystem paths for daynote data.
type Paths struct {
	Base   string // ~/.daynote
	Config string // ~/.daynote/config.yaml
	DB     string // ~/.daynote/daynote.db
	Blobs  string // ~/.daynote/blobs
	Search string // ~/.daynote/search.bleve
}

// ResolvePaths computes all standard paths from the home directory.
// If DAYNOTE_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("DAYNOTE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	return Paths{
		Base:   base,
		Config: filepath.Join(base, "config.yaml"),
		DB:     filepath.Join(base, "daynote.db"),
		Blobs:  filepath.Join(base, "blobs"),
		Search: filepath.Join(base, "search.bleve"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Blobs} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
