/*
The config package holds the client-side defaults file for the ferrite
library: the broker target, log settings, and TLS material paths. Values live
in a YAML file guarded by a file lock so that concurrent client processes can
share one config; environment variables take precedence over the file so a
running process can always be steered without editing it.
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/ferritemq/ferrite-go/fileio"
)

// Environment variables that override their file counterparts
const (
	hostEnvVar     = "FERRITE_HOST"
	portEnvVar     = "FERRITE_PORT"
	logLevelEnvVar = "FERRITE_LOG_LEVEL"
	debugEnvVar    = "FERRITE_DEBUG"
)

const lockRetryDelay = 10 * time.Millisecond

type Defaults struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"logLevel"`
	Debug    bool   `yaml:"debug"`

	TLSCertPath string `yaml:"tlsCertPath"`
	TLSKeyPath  string `yaml:"tlsKeyPath"`
	TLSCaPath   string `yaml:"tlsCaPath"`
}

// Store reads and writes the defaults file.
type Store struct {
	path     string
	fileIo   fileio.FileIo
	fileLock *flock.Flock
}

func NewStore(path string) (*Store, error) {
	return NewStoreWithFileIo(path, fileio.OsFileIo{})
}

func NewStoreWithFileIo(path string, fileIo fileio.FileIo) (*Store, error) {
	// create path if needed
	if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}

	return &Store{
		path:     path,
		fileIo:   fileIo,
		fileLock: flock.New(path + ".lock"),
	}, nil
}

// Load returns the defaults on file with any environment overrides applied.
// A missing file is not an error; it yields the zero defaults, still subject
// to the environment.
func (s *Store) Load() (Defaults, error) {
	var defaults Defaults

	if err := s.withLock(func() error {
		data, err := s.fileIo.ReadFile(s.path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", s.path, err)
		}

		if err := yaml.Unmarshal(data, &defaults); err != nil {
			return fmt.Errorf("failed to parse config file %s: %w", s.path, err)
		}
		return nil
	}); err != nil {
		return Defaults{}, err
	}

	defaults.applyEnvOverrides()

	return defaults, nil
}

// Save writes the defaults to file. Environment overrides are not persisted;
// they belong to the process that set them.
func (s *Store) Save(defaults Defaults) error {
	return s.withLock(func() error {
		data, err := yaml.Marshal(defaults)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}

		if err := s.fileIo.WriteFile(s.path, data, 0600); err != nil {
			return fmt.Errorf("failed to write config file %s: %w", s.path, err)
		}
		return nil
	})
}

func (s *Store) withLock(f func() error) error {
	for {
		if acquiredLock, err := s.fileLock.TryLock(); err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		} else if acquiredLock {
			break
		}
		time.Sleep(lockRetryDelay)
	}
	defer s.fileLock.Unlock()

	return f()
}

func (d *Defaults) applyEnvOverrides() {
	if host, set := os.LookupEnv(hostEnvVar); set {
		d.Host = host
	}
	if port, set := os.LookupEnv(portEnvVar); set {
		if p, err := strconv.Atoi(port); err == nil {
			d.Port = p
		}
	}
	if level, set := os.LookupEnv(logLevelEnvVar); set {
		d.LogLevel = level
	}
	if debug, set := os.LookupEnv(debugEnvVar); set {
		d.Debug = strings.EqualFold(debug, "true") || debug == "1"
	}
}
