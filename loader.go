package reqdoc

import (
	"context"

	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/model"
)

// NewLoader constructs a loader for the project folder root on the OS
// filesystem.
func NewLoader(root string, options ...loader.Option) *loader.Loader {
	return loader.New(afero.NewOsFs(), root, options...)
}

// LoadProject reads, validates and indexes the project at root.
func LoadProject(ctx context.Context, root string) (*model.Project, error) {
	return NewLoader(root).Load(ctx)
}
