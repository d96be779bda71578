package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program panograb relies on.
type Requirement struct {
	Name        string
	Command     string
	Candidates  []string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// A requirement without an explicit Command is satisfied by the first of its
// Candidates found on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		names := candidateNames(req)
		if len(names) == 0 {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		status.Command = names[0]
		for _, name := range names {
			if resolved, err := exec.LookPath(name); err == nil {
				status.Command = resolved
				status.Available = true
				break
			}
		}
		if !status.Available {
			status.Detail = fmt.Sprintf("binary %q not found", strings.Join(names, `" or "`))
		}
		results = append(results, status)
	}
	return results
}

func candidateNames(req Requirement) []string {
	if cmd := strings.TrimSpace(req.Command); cmd != "" {
		return []string{cmd}
	}
	var names []string
	for _, c := range req.Candidates {
		if c = strings.TrimSpace(c); c != "" {
			names = append(names, c)
		}
	}
	return names
}
