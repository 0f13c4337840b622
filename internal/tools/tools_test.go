package tools

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

func TestArgv(t *testing.T) {
	opts := buildconf.OptionSet{
		{Name: "CMAKE_BUILD_TYPE", Value: "Release"},
		{Name: "TC_ENABLE_UNIT_TESTS", Value: "True"},
	}

	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{
			name: "configure",
			got:  Configure(".", "build/Release", opts),
			want: []string{"cmake", "-G", "Ninja", "-D", "CMAKE_BUILD_TYPE=Release", "-D", "TC_ENABLE_UNIT_TESTS=True", "-B", "build/Release", "-S", ".", "--fresh"},
		},
		{
			name: "build",
			got:  Build("build/Debug", 16),
			want: []string{"cmake", "--build", "build/Debug", "--parallel", "16"},
		},
		{
			name: "build with no jobs",
			got:  Build("build/Debug", 0),
			want: []string{"cmake", "--build", "build/Debug", "--parallel", "1"},
		},
		{
			name: "install",
			got:  Install("build/Debug", "install"),
			want: []string{"cmake", "--install", "build/Debug", "--prefix", "install"},
		},
		{
			name: "docs",
			got:  Docs("build/Debug"),
			want: []string{"cmake", "--build", "build/Debug", "--target", "docs"},
		},
		{
			name: "test",
			got:  Test("build/Release", "/work/results/unit_tests/unit_tests.xml"),
			want: []string{"ctest", "--parallel", "1", "--test-dir", "build/Release", "--output-junit", "/work/results/unit_tests/unit_tests.xml", "--timeout", "30", "--output-on-failure", "--progress", "--schedule-random"},
		},
		{
			name: "conan install",
			got:  ConanInstall("sdk", "build/modules", buildconf.Debug, "/home/.conan/profiles/gcc12"),
			want: []string{"conan", "install", "sdk", "--install-folder", "build/modules", "--settings", "build_type=Debug", "--profile:build", "/home/.conan/profiles/gcc12", "--profile:host", "/home/.conan/profiles/gcc12", "--build", "missing"},
		},
		{
			name: "conan create",
			got:  ConanCreate(".", buildconf.Release, "gcc12"),
			want: []string{"conan", "create", ".", "_/_", "--settings", "build_type=Release", "--profile:build", "gcc12", "--profile:host", "gcc12", "--build", "missing"},
		},
		{
			name: "conan upload",
			got:  ConanUpload("origin", "sdk/1.0.0@acme/stable", false),
			want: []string{"conan", "upload", "--all", "--confirm", "--parallel", "--remote", "origin", "sdk/1.0.0@acme/stable"},
		},
		{
			name: "conan upload forced",
			got:  ConanUpload("origin", "sdk/1.0.0@acme/stable", true),
			want: []string{"conan", "upload", "--all", "--confirm", "--parallel", "--remote", "origin", "sdk/1.0.0@acme/stable", "--force"},
		},
		{
			name: "format",
			got:  Format("", "src/a.cpp"),
			want: []string{"clang-format", "-i", "src/a.cpp", "-style=file"},
		},
		{
			name: "format with executable",
			got:  Format("/usr/bin/clang-format-15", "src/a.cpp"),
			want: []string{"/usr/bin/clang-format-15", "-i", "src/a.cpp", "-style=file"},
		},
		{
			name: "tidy",
			got:  Tidy("", "src/a.cpp"),
			want: []string{"clang-tidy", "src/a.cpp", "-checks=clang-analyzer-cplusplus.*"},
		},
		{
			name: "cppcheck",
			got:  CppcheckProject("/work/build/Debug"),
			want: []string{"cppcheck", "--error-exitcode=1", "--project=/work/build/Debug/compile_commands.json", "--cppcheck-build-dir=/work/build/Debug/cppcheck", "-DTEST", "-DTEST_F", "-DTEST_P", "-DTYPED_TEST"},
		},
		{
			name: "coverage",
			got:  Coverage(".", "results/coverage/cobertura.xml", "results/coverage/html/coverage.html", "sdk", "gcov-12"),
			want: []string{"gcovr", "-r", ".", "--xml", "--xml-pretty", "--output", "results/coverage/cobertura.xml", "--html-title", "sdk", "--html-details", "results/coverage/html/coverage.html", "--gcov-executable", "gcov-12", "--exclude-unreachable-branches", "--exclude-throw-branches"},
		},
		{
			name: "benchmark",
			got:  Benchmark("bin/benchmarks", "results/benchmarks/results.json"),
			want: []string{"bin/benchmarks", "--benchmark_out=results/benchmarks/results.json", "--benchmark_out_format=json", "--benchmark_format=console", "--benchmark_time_unit=ms", "--benchmark_repetitions=3"},
		},
		{
			name: "memcheck",
			got:  Memcheck(ValgrindOutputs{Log: "m.log", Output: "m.xml"}, "bin/app", "--flag"),
			want: []string{"valgrind", "--tool=memcheck", "--verbose", "--leak-check=full", "--show-leak-kinds=all", "--track-origins=yes", "--error-exitcode=1", "--demangle=yes", "--xml=yes", "--xml-file=m.xml", "--log-file=m.log", "--child-silent-after-fork=yes", "bin/app", "--flag"},
		},
		{
			name: "callgrind",
			got:  Callgrind(ValgrindOutputs{Log: "c.log", Output: "c.out"}, "bin/app"),
			want: []string{"valgrind", "--tool=callgrind", "--verbose", "--callgrind-out-file=c.out", "--log-file=c.log", "--error-exitcode=1", "bin/app"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.got); diff != "" {
				t.Fatalf("argv mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMemcheckSuppressions(t *testing.T) {
	argv := Memcheck(ValgrindOutputs{Log: "m.log", Output: "m.xml", Suppressions: "valgrind/supp"}, "bin/app")
	found := false
	for _, a := range argv {
		if a == "--suppressions=valgrind/supp" {
			found = true
		}
	}
	if !found {
		t.Fatalf("suppressions missing from %v", argv)
	}
}

func TestGcovExecutable(t *testing.T) {
	tests := []struct {
		family  toolchain.Family
		want    string
		wantErr bool
	}{
		{family: toolchain.GCC, want: "gcov-12"},
		{family: toolchain.Clang, want: "llvm-cov-12 gcov"},
		{family: toolchain.AppleClang, want: "llvm-cov-12 gcov"},
		{family: toolchain.VisualStudio, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.family), func(t *testing.T) {
			got, err := GcovExecutable(tt.family, "12")
			if tt.wantErr {
				if !errors.Is(err, fault.ErrConfiguration) {
					t.Fatalf("err = %v, want ErrConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizerEnv(t *testing.T) {
	asan := SanitizerEnv(buildconf.AddressSanitizer, "results/asan.log")
	if diff := cmp.Diff(map[string]string{"ASAN_OPTIONS": "exitcode=2 verbosity=1 log_path=results/asan.log"}, asan); diff != "" {
		t.Errorf("asan env mismatch (-want +got):\n%s", diff)
	}

	tsan := SanitizerEnv(buildconf.ThreadSanitizer, "results/tsan.log")
	if diff := cmp.Diff(map[string]string{"TSAN_OPTIONS": "exitcode=2 verbosity=1 log_path=results/tsan.log"}, tsan); diff != "" {
		t.Errorf("tsan env mismatch (-want +got):\n%s", diff)
	}
}
