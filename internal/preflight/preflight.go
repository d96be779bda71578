package preflight

import (
	"context"

	"panograb/internal/config"
	"panograb/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string
	Passed   bool
	Optional bool
	Detail   string
}

// Options select which checks apply to a run.
type Options struct {
	NoVideo     bool
	CheckPortal bool
}

// RunAll executes the preflight checks for cfg.
func RunAll(ctx context.Context, cfg *config.Config, opts Options) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	for _, status := range CheckSystemDeps(cfg, opts.NoVideo) {
		results = append(results, Result{
			Name:     status.Name,
			Passed:   status.Available,
			Optional: status.Optional,
			Detail:   statusDetail(status),
		})
	}

	results = append(results, CheckDirectoryAccess("Export directory", cfg.Paths.ExportDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	if opts.CheckPortal {
		results = append(results, CheckPortal(ctx, cfg.Portal.BaseURL))
	}
	return results
}

// Failed returns the required checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed && !r.Optional {
			failed = append(failed, r)
		}
	}
	return failed
}

func statusDetail(status deps.Status) string {
	if status.Available {
		return status.Command
	}
	return status.Detail
}
