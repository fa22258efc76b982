package repo

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/estebanpuyanas/FVT/pkg/object"
)

// Branch is a named pointer to a commit.
type Branch struct {
	Name   string
	Target object.Hash
}

// Describe returns a one-line summary.
func (b Branch) Describe() string {
	return fmt.Sprintf("branch %s -> %s", b.Name, b.Target.Short())
}

// UpdateOptions controls UpdateBranch.
type UpdateOptions struct {
	// FastForwardOnly rejects moves to a commit that does not descend from
	// the branch's current target.
	FastForwardOnly bool
}

// ValidateBranchName rejects names that cannot be stored as a single ref
// file or would be confused with HEAD or the null sentinel.
func ValidateBranchName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidBranchName)
	case name == "HEAD" || name == string(object.NullHash):
		return fmt.Errorf("%w: %q is reserved", ErrInvalidBranchName, name)
	case strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-"):
		return fmt.Errorf("%w: %q may not start with %q", ErrInvalidBranchName, name, name[:1])
	case strings.HasSuffix(name, ".lock"):
		return fmt.Errorf("%w: %q may not end with .lock", ErrInvalidBranchName, name)
	case strings.ContainsAny(name, `/\:*?"<>|`):
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidBranchName, name)
	case strings.IndexFunc(name, func(r rune) bool { return unicode.IsSpace(r) || unicode.IsControl(r) }) >= 0:
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidBranchName, name)
	}
	return nil
}

// CreateBranch points a new branch at the current HEAD commit.
func (r *Repo) CreateBranch(name string) (Branch, error) {
	if err := ValidateBranchName(name); err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	l, err := r.lock("create branch")
	if err != nil {
		return Branch{}, err
	}
	defer l.release()

	head, err := r.Head()
	if err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	if head.IsNull() {
		return Branch{}, fmt.Errorf("create branch %q: %w", name, ErrNoCommits)
	}
	existing, err := r.readRef(name)
	if err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}
	if existing != "" {
		return Branch{}, fmt.Errorf("create branch %q: %w", name, ErrDuplicateBranch)
	}
	if err := r.updateRefCAS(name, head, "branch: created from "+head.Short(), ""); err != nil {
		return Branch{}, fmt.Errorf("create branch: %w", err)
	}

	r.logger.Info("branch created", zap.String("branch", name), zap.String("target", head.Short()))
	return Branch{Name: name, Target: head}, nil
}

// UpdateBranch moves an existing branch to the commit ident resolves to.
// HEAD is left alone, even when it is attached to the branch.
func (r *Repo) UpdateBranch(name, ident string, opts UpdateOptions) (Branch, error) {
	if err := ValidateBranchName(name); err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	l, err := r.lock("update branch")
	if err != nil {
		return Branch{}, err
	}
	defer l.release()

	current, err := r.readRef(name)
	if err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	if current == "" {
		return Branch{}, fmt.Errorf("update branch %q: %w", name, ErrBranchNotFound)
	}
	target, err := r.graph.Resolve(ident)
	if err != nil {
		return Branch{}, fmt.Errorf("update branch %q: %w", name, err)
	}

	if opts.FastForwardOnly {
		ok, err := r.graph.IsAncestor(current, target.Hash)
		if err != nil {
			return Branch{}, fmt.Errorf("update branch %q: %w", name, err)
		}
		if !ok {
			return Branch{}, fmt.Errorf("update branch %q: %w (%s is not an ancestor of %s)",
				name, ErrNotFastForward, current.Short(), target.Hash.Short())
		}
	}

	if err := r.updateRefCAS(name, target.Hash, "branch: updated to "+target.Hash.Short(), current); err != nil {
		return Branch{}, fmt.Errorf("update branch: %w", err)
	}
	r.logger.Info("branch updated",
		zap.String("branch", name),
		zap.String("from", current.Short()),
		zap.String("to", target.Hash.Short()),
	)
	return Branch{Name: name, Target: target.Hash}, nil
}

// ResolveBranch returns the named branch.
func (r *Repo) ResolveBranch(name string) (Branch, error) {
	if err := ValidateBranchName(name); err != nil {
		return Branch{}, fmt.Errorf("resolve branch: %w", err)
	}
	h, err := r.readRef(name)
	if err != nil {
		return Branch{}, fmt.Errorf("resolve branch: %w", err)
	}
	if h == "" {
		return Branch{}, fmt.Errorf("resolve branch %q: %w", name, ErrBranchNotFound)
	}
	return Branch{Name: name, Target: h}, nil
}

// ListBranches returns all branches sorted by name.
func (r *Repo) ListBranches() ([]Branch, error) {
	dir := r.metaPath("refs", "heads")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list branches: %w", ioErr("readdir", dir, err))
	}

	var out []Branch
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || ValidateBranchName(name) != nil {
			continue
		}
		h, err := r.readRef(name)
		if err != nil {
			return nil, fmt.Errorf("list branches: %w", err)
		}
		out = append(out, Branch{Name: name, Target: h})
	}
	slices.SortFunc(out, func(a, b Branch) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// DeleteBranch removes a branch. The branch HEAD is attached to cannot be
// deleted.
func (r *Repo) DeleteBranch(name string) error {
	if err := ValidateBranchName(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	l, err := r.lock("delete branch")
	if err != nil {
		return err
	}
	defer l.release()

	attached, err := r.AttachedBranch()
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	if attached == name {
		return fmt.Errorf("delete branch %q: HEAD is attached to it: %w", name, ErrInvalidArgument)
	}
	if err := r.deleteRef(name); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	r.logger.Info("branch deleted", zap.String("branch", name))
	return nil
}
