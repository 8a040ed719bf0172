package index

import (
	"context"
	"errors"
	"fmt"
	"github.com/djcass44/debscan/pkg/debian"
	"github.com/djcass44/debscan/pkg/version"
	"github.com/go-logr/logr"
	"os"
	"path/filepath"
	"strings"
)

var ErrInvalidRoot = errors.New("invalid scan root")

const DefaultPackageType = "deb"

type Options struct {
	// Multiversion keeps every version of a package
	// instead of only the newest.
	Multiversion bool
	// PackageType is the filename suffix of candidate
	// archives. Defaults to DefaultPackageType.
	PackageType string
	// Arch, if set, drops packages whose Architecture
	// field is not an exact match.
	Arch string
	// Prefix is prepended to every Filename.
	Prefix string
}

// Skip records a file that could not be indexed.
type Skip struct {
	Path string
	Err  error
}

func (s Skip) String() string {
	return s.Path + ": " + s.Err.Error()
}

type Result struct {
	Packages []*debian.Package
	Skipped  []Skip
}

// Build scans the top level of root for package archives and
// returns the packages that belong in the index, in discovery order.
//
// Errors reading an individual archive are recorded in
// Result.Skipped and do not stop the scan. The only errors returned
// are ErrInvalidRoot and context cancellation.
func Build(ctx context.Context, root string, opts Options) (*Result, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("root", root)

	if opts.PackageType == "" {
		opts.PackageType = DefaultPackageType
	}

	files, err := candidates(root, opts.PackageType)
	if err != nil {
		return nil, err
	}
	log.V(1).Info("found candidate archives", "count", len(files), "type", opts.PackageType)

	result := &Result{}
	// position of each package name in result.Packages
	seen := map[string]int{}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		pkg, err := debian.NewPackage(ctx, root, name, opts.Prefix)
		if err != nil {
			log.V(1).Info("skipping file", "file", name, "reason", err.Error())
			result.Skipped = append(result.Skipped, Skip{Path: name, Err: err})
			continue
		}

		if opts.Arch != "" && pkg.Architecture() != opts.Arch {
			log.V(2).Info("skipping package with unwanted architecture", "file", name, "arch", pkg.Architecture())
			continue
		}

		if opts.Multiversion {
			result.Packages = append(result.Packages, pkg)
			continue
		}

		i, ok := seen[pkg.Name()]
		if !ok {
			seen[pkg.Name()] = len(result.Packages)
			result.Packages = append(result.Packages, pkg)
			continue
		}
		existing := result.Packages[i]
		if version.Compare(pkg.Version(), existing.Version()) > 0 {
			log.V(2).Info("replacing package with newer version", "name", pkg.Name(), "old", existing.Version(), "new", pkg.Version())
			result.Packages[i] = pkg
			continue
		}
		log.V(2).Info("ignoring older or equal version", "name", pkg.Name(), "version", pkg.Version(), "kept", existing.Version())
	}

	log.V(1).Info("scan complete", "packages", len(result.Packages), "skipped", len(result.Skipped))
	return result, nil
}

// candidates lists the regular files directly inside root whose
// name ends with suffix, sorted by name. Hidden files are ignored.
func candidates(root, suffix string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	var out []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		if !e.Type().IsRegular() {
			// follow symlinks to regular files
			info, err := os.Stat(filepath.Join(root, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		out = append(out, e.Name())
	}
	return out, nil
}
