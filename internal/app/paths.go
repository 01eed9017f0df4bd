package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved filesystem paths for the .vigia/ project directory.
// All fields are pre-computed strings.
type Paths struct {
	Root string // .vigia/
	DB   string // .vigia/vigia.db

	LogDir    string // .vigia/logs/
	DaemonLog string // .vigia/logs/vigia.log

	RunDir   string // .vigia/run/
	PIDFile  string // .vigia/run/daemon.pid
	PortFile string // .vigia/run/http.port

	DropDir string // .vigia/drops/
}

// NewPaths constructs all resolved paths from a project root directory.
func NewPaths(projectRoot string) *Paths {
	root := filepath.Join(projectRoot, ".vigia")
	return &Paths{
		Root: root,
		DB:   filepath.Join(root, "vigia.db"),

		LogDir:    filepath.Join(root, "logs"),
		DaemonLog: filepath.Join(root, "logs", "vigia.log"),

		RunDir:   filepath.Join(root, "run"),
		PIDFile:  filepath.Join(root, "run", "daemon.pid"),
		PortFile: filepath.Join(root, "run", "http.port"),

		DropDir: filepath.Join(root, "drops"),
	}
}

// EnsureDirs creates all subdirectories under .vigia/. Idempotent.
func (p *Paths) EnsureDirs() error {
	dirs := []string{
		p.Root,
		p.LogDir,
		p.RunDir,
		p.DropDir,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0755); err != nil {
			return err
		}
	}
	return nil
}

// CleanEphemeral removes ephemeral runtime files (PID file and port file).
// Called on clean daemon shutdown.
func (p *Paths) CleanEphemeral() {
	os.Remove(p.PIDFile)
	os.Remove(p.PortFile)
}
