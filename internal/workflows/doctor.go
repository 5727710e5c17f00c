package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	herrors "github.com/PolarWolf314/huna/internal/errors"
	"github.com/PolarWolf314/huna/internal/index"
	"github.com/PolarWolf314/huna/internal/tempfile"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// Doctor runs read-only health checks on the store. It never repairs
// anything.
//
// The doctor workflow checks:
//   - Identities file existence and permissions
//   - Store directory permissions
//   - Recipient artifact
//   - Index integrity (the path to ID mapping is a bijection)
//   - Every indexed record exists and decrypts
//   - Records that no path refers to
//   - Temporary files left behind by an interrupted process
func Doctor(ctx context.Context, env *Env) (*DoctorResult, error) {
	d := &doctor{env: env}

	checks := []func() CheckResult{
		d.checkIdentities,
		d.checkStoreDir,
		d.checkRecipients,
		d.checkIndex,
		d.checkRecords,
		d.checkOrphans,
		d.checkLeftovers,
	}

	var results []CheckResult
	for _, check := range checks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		results = append(results, check())
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

type doctor struct {
	env   *Env
	index *index.Index
}

func (d *doctor) checkIdentities() CheckResult {
	const name = "Identities file"
	path := d.env.Config.IdentitiesFile

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("No identities file at %s", path),
			Suggestion: "Run 'huna init' to generate an identity, or set HUNA_IDENTITIES",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat identities file: %v", err),
			Suggestion: "Check that the identities file is accessible",
		}
	}

	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Identities file has insecure permissions (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 600 %s' to fix permissions", path),
		}
	}

	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Identities file exists with private permissions",
	}
}

func (d *doctor) checkStoreDir() CheckResult {
	const name = "Store directory"
	dir := d.env.Config.StoreDir

	info, err := os.Stat(dir)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Store directory %s is not accessible: %v", dir, err),
			Suggestion: "Run 'huna init' to create a store",
		}
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Store directory is accessible by other users (%04o)", mode),
			Suggestion: fmt.Sprintf("Run 'chmod 700 %s' to fix permissions", dir),
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Store directory is private",
	}
}

func (d *doctor) checkRecipients() CheckResult {
	const name = "Recipients"
	set, err := d.env.Recipients.Load()
	if err != nil {
		suggestion := "Check that your identity is one of the store's recipients"
		if errors.Is(err, herrors.ErrStoreNotInitialized) {
			suggestion = "Run 'huna init' to create a store"
		}
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Cannot load recipients: %v", err),
			Suggestion: suggestion,
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("Store is encrypted for %d recipient(s)", len(set)),
	}
}

func (d *doctor) checkIndex() CheckResult {
	const name = "Index"
	idx, err := d.env.Index.Load()
	if err != nil {
		suggestion := "Check that your identity can decrypt the index"
		if errors.Is(err, herrors.ErrCorruptIndex) {
			suggestion = "Restore the index from git history with 'huna git log -- .index.age'"
		}
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Cannot load index: %v", err),
			Suggestion: suggestion,
		}
	}
	d.index = idx
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("Index holds %d path(s)", idx.Len()),
	}
}

func (d *doctor) checkRecords() CheckResult {
	const name = "Records"
	if d.index == nil {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "Skipped: index could not be loaded",
		}
	}

	var missing, unreadable []string
	for _, e := range d.index.Entries() {
		if _, err := d.env.Records.Read(e.ID); err != nil {
			if errors.Is(err, herrors.ErrMissingRecord) {
				missing = append(missing, e.ID)
			} else {
				unreadable = append(unreadable, e.ID)
			}
		}
	}

	switch {
	case len(missing) > 0:
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("%d indexed record(s) are missing: %s", len(missing), strings.Join(missing, ", ")),
			Suggestion: "Restore the missing records from git history",
		}
	case len(unreadable) > 0:
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("%d record(s) cannot be decrypted: %s", len(unreadable), strings.Join(unreadable, ", ")),
			Suggestion: "Run 'huna rotate --force' with the full recipient list to finish an interrupted rotation",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("All %d indexed record(s) decrypt", d.index.Len()),
	}
}

func (d *doctor) checkOrphans() CheckResult {
	const name = "Unreferenced records"
	if d.index == nil {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "Skipped: index could not be loaded",
		}
	}

	ids, err := d.env.Records.IDs()
	if err != nil {
		return CheckResult{
			Name:    name,
			Status:  CheckError,
			Message: fmt.Sprintf("Cannot list records: %v", err),
		}
	}

	var orphans []string
	for _, id := range ids {
		if _, ok := d.index.LookupByID(id); !ok {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%d record(s) are not referenced by any path: %s", len(orphans), strings.Join(orphans, ", ")),
			Suggestion: "Records left by an interrupted delete can be removed with 'huna git rm'",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Every record is referenced by a path",
	}
}

func (d *doctor) checkLeftovers() CheckResult {
	const name = "Temporary files"

	var leftovers []string
	for _, dir := range []string{d.env.Config.StoreDir, d.env.Config.ScratchDir} {
		matches, _ := filepath.Glob(filepath.Join(dir, tempfile.Prefix+"*"))
		leftovers = append(leftovers, matches...)
	}
	sort.Strings(leftovers)

	if len(leftovers) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%d temporary file(s) were left behind by an interrupted command", len(leftovers)),
			Suggestion: "Remove the leftover " + tempfile.Prefix + "* files; they may contain plaintext",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "No temporary files left behind",
	}
}

// calculateDoctorSummary calculates the counts of checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}
