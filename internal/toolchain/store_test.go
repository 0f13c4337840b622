package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/process/processtest"
)

func TestNewProfile(t *testing.T) {
	p, err := NewProfile(Clang, "15", Linux, "/usr/lib/llvm-15/bin")
	require.NoError(t, err)

	assert.Equal(t, "clang15", p.Name)
	assert.Equal(t, "clang", p.Get("settings.compiler"))
	assert.Equal(t, "15", p.Get("settings.compiler.version"))
	assert.Equal(t, "libstdc++11", p.Get("settings.compiler.libcxx"))
	assert.Equal(t, "Linux", p.Get("settings.os"))
	assert.Equal(t, filepath.Join("/usr/lib/llvm-15/bin", "clang-15"), p.Get(KeyCC))
	assert.Equal(t, filepath.Join("/usr/lib/llvm-15/bin", "clang++-15"), p.Get(KeyCXX))
	assert.Equal(t, "Ninja", p.Get("conf.tools.cmake.cmaketoolchain:generator"))
	assert.Equal(t, "", p.Get("options.shared"))
	assert.Equal(t, "", p.Get("nodot"))
}

func TestNewProfileWithoutLibCXX(t *testing.T) {
	p, err := NewProfile(VisualStudio, "17", Windows, "")
	require.NoError(t, err)

	assert.Equal(t, "Visual Studio", p.Get("settings.compiler"))
	assert.NotContains(t, p.Settings, "compiler.libcxx")
	assert.Equal(t, Environment{CC: "cl", CXX: "cl"}, p.Environment())
}

func TestNewProfileUnsupported(t *testing.T) {
	_, err := NewProfile(VisualStudio, "17", Linux, "")
	require.ErrorIs(t, err, fault.ErrConfiguration)
}

func TestFileStoreSaveAndResolve(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "profiles"))

	p, err := NewProfile(GCC, "12", Linux, "")
	require.NoError(t, err)
	require.NoError(t, store.Save(p))

	env, err := NewResolver(store).Resolve(context.Background(), "gcc12")
	require.NoError(t, err)
	assert.Equal(t, &Environment{CC: "gcc-12", CXX: "g++-12"}, env)

	loaded, err := store.Load("gcc12")
	require.NoError(t, err)
	assert.Equal(t, p.Conf, loaded.Conf)
	assert.Equal(t, p.Settings, loaded.Settings)
}

func TestFileStoreSaveDeterministic(t *testing.T) {
	store := NewFileStore(t.TempDir())

	p, err := NewProfile(Clang, "15", Darwin, "")
	require.NoError(t, err)

	require.NoError(t, store.Save(p))
	first, err := os.ReadFile(store.Path(p.Name))
	require.NoError(t, err)

	require.NoError(t, store.Save(p))
	second, err := os.ReadFile(store.Path(p.Name))
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
}

func TestFileStoreReadsHandWrittenProfile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		"include(default)",
		"[settings]",
		"compiler=gcc",
		"compiler.version=12",
		"[env]",
		"CC=/usr/bin/gcc-12",
		"CXX=/usr/bin/g++-12",
		"[conf]",
		"tools.cmake.cmaketoolchain:generator=Ninja",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gcc12"), []byte(content), 0o644))

	store := NewFileStore(dir)
	p, err := store.Load("gcc12")
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/gcc-12", p.Get(KeyCC))
	assert.Equal(t, "Ninja", p.Get("conf.tools.cmake.cmaketoolchain:generator"))
}

func TestFileStoreMissingProfile(t *testing.T) {
	store := NewFileStore(t.TempDir())

	_, err := store.Lookup(context.Background(), "gcc12", KeyCC)
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestConanStore(t *testing.T) {
	fake := processtest.New(
		processtest.Rule{Prefix: "conan profile get env.CC gcc12", Stdout: "gcc-12\n"},
		processtest.Rule{Prefix: "conan profile get env.CXX gcc12", ExitCode: 1},
	)
	store := NewConanStore(fake, "", map[string]string{"CONAN_USER_HOME": "/work"})

	cc, err := store.Lookup(context.Background(), "gcc12", KeyCC)
	require.NoError(t, err)
	assert.Equal(t, "gcc-12", cc)

	cxx, err := store.Lookup(context.Background(), "gcc12", KeyCXX)
	require.NoError(t, err)
	assert.Empty(t, cxx)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "/work", calls[0].Env["CONAN_USER_HOME"])
}

func TestConanStoreMissingExecutable(t *testing.T) {
	fake := processtest.New(processtest.Rule{Prefix: "conan", Missing: true})
	store := NewConanStore(fake, "conan", nil)

	_, err := store.Lookup(context.Background(), "gcc12", KeyCC)
	require.ErrorIs(t, err, ErrProfileStore)
	require.True(t, errors.Is(err, fault.ErrToolNotFound))
}
