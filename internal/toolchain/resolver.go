package toolchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cruciblehq/cruxci/internal/fault"
)

// Resolves profile names into compiler environments.
type Resolver struct {
	store Store
}

// Creates a new [Resolver] backed by store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Returns the compiler environment of a profile.
//
// Both CC and CXX must be present and non-empty. Any other outcome, including
// a store that cannot read the profile, fails with a
// [fault.ConfigurationError] naming the profile.
func (r *Resolver) Resolve(ctx context.Context, profile string) (*Environment, error) {
	var env Environment

	for _, entry := range []struct {
		key  string
		dest *string
	}{
		{KeyCC, &env.CC},
		{KeyCXX, &env.CXX},
	} {
		value, err := r.store.Lookup(ctx, profile, entry.key)
		if err != nil {
			return nil, &fault.ConfigurationError{Profile: profile, Reason: "cannot read profile", Err: err}
		}
		if value == "" {
			return nil, &fault.ConfigurationError{
				Profile: profile,
				Reason:  fmt.Sprintf("%s is empty or missing", entry.key),
			}
		}
		*entry.dest = value
	}

	slog.Info("toolchain resolved", "profile", profile, "cc", env.CC, "cxx", env.CXX)
	return &env, nil
}
