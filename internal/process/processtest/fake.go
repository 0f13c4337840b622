// Provides a scripted [process.Runner] for tests.
//
// [Fake] records every command it receives and answers from a list of rules
// matched against the command line, so pipeline tests can assert on argument
// vectors and simulate failing tools without launching processes.
package processtest

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cruciblehq/cruxci/internal/fault"
	"github.com/cruciblehq/cruxci/internal/process"
)

// Scripted reply for commands whose line starts with Prefix.
type Rule struct {
	Prefix   string        // Matched against the space-joined argument vector.
	ExitCode int           // Exit code to report.
	Missing  bool          // Simulate an executable that cannot be launched.
	Stdout   string        // Written to the command's stdout, if any.
	Delay    time.Duration // Time to block before replying.
}

// Records commands and replies according to its rules.
//
// The first matching rule wins. Commands that match no rule exit 0. Fake is
// safe for concurrent use.
type Fake struct {
	mu    sync.Mutex
	rules []Rule
	calls []process.Command
}

// Creates a new [Fake] with the given rules.
func New(rules ...Rule) *Fake {
	return &Fake{rules: rules}
}

// Adds a rule. Rules added later have lower priority.
func (f *Fake) On(rule Rule) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules = append(f.rules, rule)
	return f
}

// Implements [process.Runner].
func (f *Fake) Run(ctx context.Context, cmd process.Command) (*process.Result, error) {
	line := strings.Join(cmd.Args, " ")

	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	rule, _ := f.match(line)
	f.mu.Unlock()

	if rule.Delay > 0 {
		select {
		case <-time.After(rule.Delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if rule.Missing {
		return nil, fmt.Errorf("%w: %s", fault.ErrToolNotFound, cmd.Args[0])
	}

	if rule.Stdout != "" && cmd.Stdout != nil {
		io.WriteString(cmd.Stdout, rule.Stdout)
	}

	return &process.Result{
		ExitCode: rule.ExitCode,
		Failed:   cmd.FailOnNonZero && rule.ExitCode != 0,
		Duration: rule.Delay,
	}, nil
}

// Returns a copy of every command received, in call order.
func (f *Fake) Calls() []process.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Returns the space-joined command lines received, in call order.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = strings.Join(c.Args, " ")
	}
	return lines
}

// Returns the first rule whose prefix matches line.
func (f *Fake) match(line string) (Rule, bool) {
	for _, r := range f.rules {
		if strings.HasPrefix(line, r.Prefix) {
			return r, true
		}
	}
	return Rule{}, false
}
