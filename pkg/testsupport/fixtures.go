package testsupport

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// Golden returns a goldie instance reading testdata/golden/<name>.golden
// files of the calling package. Run with -update to rewrite them.
func Golden(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// CaptureRender runs a render function that both returns its output and
// streams it to a writer, and returns the two copies.
func CaptureRender(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out, buf.String()
}
