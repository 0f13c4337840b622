package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/process"
)

// Errors returned by stores.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileStore    = errors.New("profile store error")
)

// Source of profile entries.
//
// Lookup returns the value of a "<section>.<name>" key scoped to a profile.
// An absent key is reported as an empty string with a nil error; an error
// means the profile itself could not be read.
type Store interface {
	Lookup(ctx context.Context, profile, key string) (string, error)
}

// Reads and writes profiles as INI files in a directory.
//
// This is the on-disk layout of the package manager's profile directory, so a
// FileStore rooted at [paths.Profiles] sees the same profiles the package
// manager uses.
type FileStore struct {
	dir string
}

// Creates a new [FileStore] rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Returns the file path of a profile.
func (s *FileStore) Path(profile string) string {
	return filepath.Join(s.dir, profile)
}

// Implements [Store].
func (s *FileStore) Lookup(ctx context.Context, profile, key string) (string, error) {
	p, err := s.Load(profile)
	if err != nil {
		return "", err
	}
	return p.Get(key), nil
}

// Loads a profile by name.
func (s *FileStore) Load(profile string) (*Profile, error) {
	path := s.Path(profile)

	f, err := ini.LoadSources(loadOptions(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrProfileStore, err)
	}

	p := &Profile{
		Name:     profile,
		Settings: sectionMap(f, sectionSettings),
		Env:      sectionMap(f, sectionEnv),
		Conf:     sectionMap(f, sectionConf),
	}
	return p, nil
}

// Writes a profile, replacing any existing file of the same name.
//
// Keys are written in sorted order so saving the same profile twice produces
// identical files.
func (s *FileStore) Save(p *Profile) error {
	if err := os.MkdirAll(s.dir, paths.DefaultDirMode); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileStore, err)
	}

	f := ini.Empty(loadOptions())
	for _, sec := range []struct {
		name    string
		entries map[string]string
	}{
		{sectionSettings, p.Settings},
		{sectionEnv, p.Env},
		{sectionConf, p.Conf},
	} {
		section, err := f.NewSection(sec.name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrProfileStore, err)
		}
		for _, k := range sortedKeys(sec.entries) {
			if _, err := section.NewKey(k, sec.entries[k]); err != nil {
				return fmt.Errorf("%w: %w", ErrProfileStore, err)
			}
		}
	}

	path := s.Path(p.Name)
	if err := f.SaveTo(path); err != nil {
		return fmt.Errorf("%w: %w", ErrProfileStore, err)
	}

	slog.Info("profile written", "profile", p.Name, "path", path)
	return nil
}

// INI options matching the profile format. Conf keys contain ":", so "=" is
// the only key/value delimiter, and unknown lines such as include() are
// skipped.
func loadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		KeyValueDelimiters:       "=",
		KeyValueDelimiterOnWrite: "=",
		SkipUnrecognizableLines:  true,
		IgnoreInlineComment:      true,
	}
}

// Returns the entries of an INI section, or an empty map if absent.
func sectionMap(f *ini.File, name string) map[string]string {
	m := make(map[string]string)
	section, err := f.GetSection(name)
	if err != nil {
		return m
	}
	for _, k := range section.Keys() {
		m[k.Name()] = k.String()
	}
	return m
}

// Queries profiles through the package manager CLI.
//
// Each lookup runs "conan profile get <key> <profile>". A non-zero exit is
// treated as an absent key, matching how the package manager reports unknown
// entries.
type ConanStore struct {
	runner     process.Runner
	executable string
	env        map[string]string
}

// Creates a new [ConanStore].
//
// The env overlay is passed to every invocation, typically to relocate the
// package manager home.
func NewConanStore(runner process.Runner, executable string, env map[string]string) *ConanStore {
	if executable == "" {
		executable = "conan"
	}
	return &ConanStore{runner: runner, executable: executable, env: env}
}

// Implements [Store].
func (s *ConanStore) Lookup(ctx context.Context, profile, key string) (string, error) {
	var stdout bytes.Buffer

	result, err := s.runner.Run(ctx, process.Command{
		Args:   []string{s.executable, "profile", "get", key, profile},
		Env:    s.env,
		Stdout: &stdout,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProfileStore, err)
	}
	if result.ExitCode != 0 {
		return "", nil
	}

	return strings.TrimSpace(stdout.String()), nil
}
