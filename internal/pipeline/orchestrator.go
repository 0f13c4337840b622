package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cruciblehq/cruxci/internal/buildconf"
	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/filetask"
	"github.com/cruciblehq/cruxci/internal/paths"
	"github.com/cruciblehq/cruxci/internal/process"
	"github.com/cruciblehq/cruxci/internal/toolchain"
)

// Collaborators of an [Orchestrator].
type Options struct {
	Runner   process.Runner      // Executes every external command.
	Resolver *toolchain.Resolver // Resolves the compiler environment.
	Home     string              // Package manager home, exported to package manager commands when set.
	Profiles string              // Directory holding toolchain profiles.
	Source   string              // Project root. Defaults to the current directory.
}

// Composes and runs pipeline stages for a configuration.
type Orchestrator struct {
	runner   process.Runner
	resolver *toolchain.Resolver
	home     string
	profiles string
	source   string
}

// Creates a new [Orchestrator].
func New(opts Options) *Orchestrator {
	if opts.Source == "" {
		opts.Source = "."
	}
	return &Orchestrator{
		runner:   opts.Runner,
		resolver: opts.Resolver,
		home:     opts.Home,
		profiles: opts.Profiles,
		source:   opts.Source,
	}
}

// Returns the stages of a full run for cfg, in execution order.
//
// Coverage runs the unit tests first, so it always plans the unit-tests
// stage.
func (o *Orchestrator) Plan(cfg *buildconf.Configuration) []Stage {
	stages := []Stage{InstallDeps(), Configure(), Build(), Install()}

	gates := cfg.Gates
	if gates.Has(buildconf.Coverage) {
		gates = gates.With(buildconf.UnitTests)
	}

	for _, g := range gates.List() {
		switch g {
		case buildconf.UnitTests:
			stages = append(stages, UnitTests())
		case buildconf.Coverage:
			stages = append(stages, Coverage())
		case buildconf.Benchmarks:
			stages = append(stages, Benchmarks())
		case buildconf.Examples:
			stages = append(stages, Examples())
		case buildconf.AddressSanitizer, buildconf.ThreadSanitizer:
			stages = append(stages, Sanitize())
		case buildconf.Format:
			stages = append(stages, Format())
		case buildconf.Tidy:
			stages = append(stages, Tidy())
		case buildconf.Cppcheck:
			stages = append(stages, Cppcheck())
		case buildconf.Docs:
			stages = append(stages, Docs())
		}
	}

	if cfg.Package.Create {
		stages = append(stages, Package())
	}
	if cfg.Package.Remote != "" {
		stages = append(stages, Upload())
	}

	return stages
}

// Runs the full pipeline for cfg.
//
// See [Orchestrator.RunStages].
func (o *Orchestrator) Run(ctx context.Context, cfg *buildconf.Configuration) (*Report, error) {
	if cfg.Compiler.Family == "" || cfg.Compiler.Version == "" {
		return nil, fault.Invalid("compiler", "a full run requires a compiler family and version")
	}
	return o.RunStages(ctx, cfg, o.Plan(cfg))
}

// Runs stages in order and reports their results.
//
// The configuration is validated first and the toolchain is resolved once
// when any stage needs a compiler. A failure of either is returned as an
// error and no stage runs. Stage failures never produce an error here: they are recorded
// in the report, whose [Report.Err] returns the first one.
func (o *Orchestrator) RunStages(ctx context.Context, cfg *buildconf.Configuration, stages []Stage) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := buildconf.Options(cfg)

	report := &Report{
		RunID:         uuid.NewString(),
		StartedAt:     time.Now().UTC(),
		Configuration: cfg,
		Options:       opts,
		OptionsDigest: opts.Digest(),
		Stages:        []StageResult{},
		Outcome:       Outcome{Status: Success},
	}

	run := &Run{
		ID:       report.RunID,
		Config:   cfg,
		runner:   o.runner,
		files:    filetask.NewRunner(cfg.Workers),
		home:     o.home,
		profiles: o.profiles,
		source:   o.source,
	}

	if needsToolchain(stages) {
		env, err := o.resolve(ctx, cfg)
		if err != nil {
			return nil, err
		}
		run.Toolchain = *env
		report.Toolchain = env
	}

	slog.Info("starting pipeline", "run", report.RunID, "stages", len(stages), "digest", report.OptionsDigest)

	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := stage.execute(ctx, run)
		report.record(result)

		if result.halts() {
			slog.Error("pipeline aborted", "stage", stage.Name)
			break
		}
	}

	slog.Info("pipeline finished", "run", report.RunID, "outcome", report.Outcome)
	return report, nil
}

// Resolves the compiler environment of cfg.
func (o *Orchestrator) resolve(ctx context.Context, cfg *buildconf.Configuration) (*toolchain.Environment, error) {
	if cfg.Compiler.Family == "" || cfg.Compiler.Version == "" {
		return nil, fault.Invalid("compiler", "a compiler family and version are required to resolve the toolchain")
	}
	if o.resolver == nil {
		return nil, &fault.ConfigurationError{Profile: cfg.Compiler.Profile(), Reason: "no toolchain resolver configured"}
	}
	return o.resolver.Resolve(ctx, cfg.Compiler.Profile())
}

// Returns true if any stage needs the compiler environment.
func needsToolchain(stages []Stage) bool {
	for _, s := range stages {
		if s.Toolchain {
			return true
		}
	}
	return false
}

// State shared by the stages of one run.
//
// Config and Toolchain are read-only for stages.
type Run struct {
	ID        string
	Config    *buildconf.Configuration
	Toolchain toolchain.Environment // Zero when no stage needs a compiler.

	runner   process.Runner
	files    *filetask.Runner
	home     string
	profiles string
	source   string
}

// Runs one command, treating a non-zero exit as failure.
func (r *Run) exec(ctx context.Context, args []string, env map[string]string) (*process.Result, error) {
	return r.runner.Run(ctx, process.Command{Args: args, Env: env, Dir: r.source, FailOnNonZero: true})
}

// Returns the compiler overlay, or an empty overlay when no compiler was
// resolved.
func (r *Run) compilerEnv() map[string]string {
	if !r.Toolchain.Complete() {
		return map[string]string{}
	}
	return r.Toolchain.Overlay()
}

// Returns the environment overlay for package manager commands.
func (r *Run) conanEnv() map[string]string {
	env := r.compilerEnv()
	if r.home != "" {
		env[paths.HomeEnv] = r.home
	}
	return env
}

// Returns the path of the run's toolchain profile.
func (r *Run) profile() string {
	return filepath.Join(r.profiles, r.Config.Compiler.Profile())
}

// Returns path resolved against the project root.
func (r *Run) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(r.source, p)
}

// Returns path resolved against the project root, made absolute.
func (r *Run) abs(p string) (string, error) {
	return filepath.Abs(r.path(p))
}
