package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHome(t *testing.T) {
	t.Setenv(HomeEnv, "/env/home")

	if got := Home("/flag/home"); got != "/flag/home" {
		t.Fatalf("Home(override) = %q, want /flag/home", got)
	}
	if got := Home(""); got != "/env/home" {
		t.Fatalf("Home() = %q, want /env/home", got)
	}
}

func TestHomeDefault(t *testing.T) {
	t.Setenv(HomeEnv, "")

	got := Home("")
	if filepath.Base(got) != appName {
		t.Fatalf("Home() = %q, want a path ending in %s", got, appName)
	}
}

func TestProfiles(t *testing.T) {
	got := Profiles("/work")
	want := filepath.Join("/work", ".conan", "profiles")
	if got != want {
		t.Fatalf("Profiles() = %q, want %q", got, want)
	}
}

func TestEnsureParentIdempotent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "results", "coverage", "cobertura.xml")

	for i := 0; i < 2; i++ {
		if err := EnsureParent(file); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	info, err := os.Stat(filepath.Dir(file))
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsDir() {
		t.Fatal("parent is not a directory")
	}
}
