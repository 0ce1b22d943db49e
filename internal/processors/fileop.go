package processors

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cruciblehq/reciperunner/internal/registry"
	"github.com/cruciblehq/reciperunner/internal/variables"
	"github.com/cruciblehq/reciperunner/internal/xerr"
)

// archiveFilesFactory builds the archive_files processor: the FileOp role
// example (§3, §4.4) — moves every file matching a glob pattern into a
// destination directory, touching neither input nor output stages.
//
// The deprecated Python lookup sibling aside, this is the one out-of-scope
// "file operations" example the spec carves a place for since it needs no
// stage plumbing at all; everything else FileOp-shaped is left to callers.
type archiveFilesFactory struct{}

// NewArchiveFilesFactory returns the archive_files processor factory.
func NewArchiveFilesFactory() registry.Factory { return archiveFilesFactory{} }

func (archiveFilesFactory) Role() registry.Role { return registry.FileOp }

func (archiveFilesFactory) MinimalConfig() map[string]any {
	return map[string]any{
		"pattern":  "*.tmp",
		"dest_dir": "archive",
	}
}

func (archiveFilesFactory) Describe() registry.Describe {
	return registry.Describe{
		ProcessorType: "archive_files",
		Role:          registry.FileOp,
		Summary:       "moves files matching a glob pattern into a destination directory",
		Options:       []string{"pattern", "dest_dir"},
	}
}

func (archiveFilesFactory) Examples() []map[string]any {
	return []map[string]any{
		{
			"processor_type": "archive_files",
			"pattern":        "exports/*.csv",
			"dest_dir":       "archive/{YYYY}-{MM}-{DD}",
		},
	}
}

func (archiveFilesFactory) New(config map[string]any) (registry.Processor, error) {
	pattern, err := requireString(config, "pattern")
	if err != nil {
		return nil, err
	}
	destDir, err := requireString(config, "dest_dir")
	if err != nil {
		return nil, err
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, xerr.Wrapf(xerr.ErrConfig, "pattern %q is not a valid glob", pattern)
	}
	return &archiveFilesProcessor{pattern: pattern, destDir: destDir}, nil
}

type archiveFilesProcessor struct {
	pattern string
	destDir string
}

func (p *archiveFilesProcessor) Execute(scope registry.Scope) registry.Outcome {
	pattern, err := variables.Substitute(p.pattern, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}
	destDir, err := variables.Substitute(p.destDir, scope.Variables, variables.Lenient)
	if err != nil {
		return registry.Err(err)
	}

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return registry.Err(xerr.Wrapf(xerr.ErrIO, "archive_files: globbing %q: %v", pattern, err))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return registry.Err(xerr.Wrapf(xerr.ErrIO, "archive_files: creating %q: %v", destDir, err))
	}

	for _, src := range matches {
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			continue
		}
		dest := filepath.Join(destDir, filepath.Base(src))
		if err := os.Rename(src, dest); err != nil {
			return registry.Err(xerr.Wrapf(xerr.ErrIO, "archive_files: moving %q to %q: %v", src, dest, err))
		}
	}

	return registry.OK
}
