// Package loader reads a requirements project from disk: the project file,
// every document file below the project root and, when source traceability is
// enabled, the scanned source tree.
package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-reqdoc/internal/logging"
	"github.com/goliatone/go-reqdoc/pkg/model"
	"github.com/goliatone/go-reqdoc/pkg/source"
)

// ErrNotFound is returned when the project root holds no project file.
var ErrNotFound = errors.New("loader: project file not found")

// ProjectFiles are the accepted project file names, in lookup order.
var ProjectFiles = []string{"reqdoc.yaml", "reqdoc.yml", "reqdoc.json"}

// DocumentExtensions are the suffixes that mark a document file.
var DocumentExtensions = []string{".sdoc.yaml", ".sdoc.yml", ".sdoc.json"}

var skipDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"output":       {},
}

// Option customises a Loader.
type Option func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithSourceScan toggles scanning the source tree. Scanning is enabled by
// default and only happens when the project enables source traceability.
func WithSourceScan(enabled bool) Option {
	return func(l *Loader) {
		l.scanSources = enabled
	}
}

// Loader reads projects rooted at one directory of a filesystem.
type Loader struct {
	fs          afero.Fs
	root        string
	logger      *slog.Logger
	scanSources bool
}

// New constructs a Loader. A nil filesystem falls back to the OS filesystem.
func New(fsys afero.Fs, root string, opts ...Option) *Loader {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	l := &Loader{
		fs:          fsys,
		root:        filepath.Clean(root),
		logger:      logging.NewNop(),
		scanSources: true,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Root returns the project directory.
func (l *Loader) Root() string {
	return l.root
}

// LoadProject is shorthand for New(fsys, root).Load(ctx).
func LoadProject(ctx context.Context, fsys afero.Fs, root string) (*model.Project, error) {
	return New(fsys, root).Load(ctx)
}

// Load reads, validates and indexes the project.
func (l *Loader) Load(ctx context.Context) (*model.Project, error) {
	cfg, err := l.loadConfig()
	if err != nil {
		return nil, err
	}
	project := &model.Project{Config: cfg}

	paths, err := l.documentPaths(ctx)
	if err != nil {
		return nil, err
	}
	for _, rel := range paths {
		doc, err := l.loadDocument(rel)
		if err != nil {
			return nil, err
		}
		project.Documents = append(project.Documents, doc)
	}

	if l.scanSources && project.HasFeature(model.FeatureSourceTraceability) && cfg.SourceRootPath != "" {
		files, err := source.Scan(ctx, l.projectFs(), cfg.SourceRootPath, cfg.IncludeSourcePaths, cfg.ExcludeSourcePaths)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loader: %w", err)
		}
		project.SourceFiles = files
	}

	if err := Validate(project); err != nil {
		return nil, err
	}
	if err := project.Index(); err != nil {
		return nil, fmt.Errorf("loader: index: %w", err)
	}
	l.logger.Debug("project loaded",
		"root", l.root,
		"documents", len(project.Documents),
		"source_files", len(project.SourceFiles),
	)
	return project, nil
}

// Validate checks every document of the project.
func Validate(project *model.Project) error {
	if project == nil {
		return errors.New("loader: project is nil")
	}
	var errs []error
	for _, doc := range project.Documents {
		if err := doc.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Save writes doc back to its file below the project root as YAML.
func (l *Loader) Save(doc *model.Document) error {
	if doc == nil || strings.TrimSpace(doc.Path) == "" {
		return errors.New("loader: document path is required")
	}
	data, err := yaml.Marshal(fileFromDocument(doc))
	if err != nil {
		return fmt.Errorf("loader: encode %s: %w", doc.Path, err)
	}
	target := filepath.Join(l.root, filepath.FromSlash(doc.Path))
	if err := l.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("loader: create folder for %s: %w", doc.Path, err)
	}
	if err := afero.WriteFile(l.fs, target, data, 0o644); err != nil {
		return fmt.Errorf("loader: write %s: %w", doc.Path, err)
	}
	return nil
}

// SaveConfig writes the project file. An existing project file keeps its
// name; a new project gets the first entry of ProjectFiles.
func (l *Loader) SaveConfig(cfg model.ProjectConfig) error {
	name := ProjectFiles[0]
	for _, candidate := range ProjectFiles {
		if ok, _ := afero.Exists(l.fs, filepath.Join(l.root, candidate)); ok {
			name = candidate
			break
		}
	}
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(name, ".json") {
		data, err = json.MarshalIndent(fileFromConfig(cfg), "", "  ")
	} else {
		data, err = yaml.Marshal(fileFromConfig(cfg))
	}
	if err != nil {
		return fmt.Errorf("loader: encode %s: %w", name, err)
	}
	if err := l.fs.MkdirAll(l.root, 0o755); err != nil {
		return fmt.Errorf("loader: create %s: %w", l.root, err)
	}
	if err := afero.WriteFile(l.fs, filepath.Join(l.root, name), data, 0o644); err != nil {
		return fmt.Errorf("loader: write %s: %w", name, err)
	}
	return nil
}

// IsDocumentFile reports whether name carries a document extension.
func IsDocumentFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range DocumentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// projectFs exposes the project root as the filesystem root so scanned paths
// are relative to the project directory.
func (l *Loader) projectFs() afero.Fs {
	if l.root == "." {
		return l.fs
	}
	return afero.NewBasePathFs(l.fs, l.root)
}

func (l *Loader) loadConfig() (model.ProjectConfig, error) {
	for _, name := range ProjectFiles {
		full := filepath.Join(l.root, name)
		data, err := afero.ReadFile(l.fs, full)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return model.ProjectConfig{}, fmt.Errorf("loader: read %s: %w", name, err)
		}
		var raw projectFile
		if err := decode(data, name, &raw); err != nil {
			return model.ProjectConfig{}, err
		}
		cfg := raw.config()
		if cfg.Title == "" {
			cfg.Title = filepath.Base(l.root)
		}
		return cfg, nil
	}
	return model.ProjectConfig{}, fmt.Errorf("%w in %s", ErrNotFound, l.root)
}

func (l *Loader) documentPaths(ctx context.Context) ([]string, error) {
	var paths []string
	err := afero.Walk(l.fs, l.root, func(p string, info fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if info.IsDir() {
			if _, skip := skipDirs[info.Name()]; skip && p != l.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsDocumentFile(info.Name()) {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, path.Clean(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loader: walk %s: %w", l.root, err)
	}
	sort.Strings(paths)
	return paths, nil
}

func (l *Loader) loadDocument(rel string) (*model.Document, error) {
	data, err := afero.ReadFile(l.fs, filepath.Join(l.root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, fmt.Errorf("loader: read %s: %w", rel, err)
	}
	var raw documentFile
	if err := decode(data, rel, &raw); err != nil {
		return nil, err
	}
	return raw.document(rel)
}
