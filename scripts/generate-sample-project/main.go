// Command generate-sample-project writes the test sample project to disk so it
// can be browsed with `reqdoc serve -p <dir>`.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/goliatone/go-reqdoc/pkg/loader"
	"github.com/goliatone/go-reqdoc/pkg/testsupport"
)

var sources = map[string]string{
	"src/usb.go": `package usb

// @relation(SW-1, scope=range_start)
func usbInit() error {
	if err := detect(); err != nil {
		return err
	}
	enumerate()
	return nil
}
// @relation(SW-1, scope=range_end)

func usbClose() {
	release()
}
`,
	"src/util/strings.go": `package util

func trim(s string) string {
	return s
}
`,
}

func main() {
	output := flag.String("output", filepath.Join(os.TempDir(), "reqdoc-sample"), "folder to write the project into")
	flag.Parse()

	fsys := afero.NewOsFs()
	project := testsupport.NewSampleProject()
	l := loader.New(fsys, *output)

	if err := l.SaveConfig(project.Config); err != nil {
		log.Fatal(err)
	}
	for _, doc := range project.Documents {
		if err := l.Save(doc); err != nil {
			log.Fatal(err)
		}
	}
	for rel, body := range sources {
		target := filepath.Join(*output, filepath.FromSlash(rel))
		if err := fsys.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			log.Fatal(err)
		}
		if err := afero.WriteFile(fsys, target, []byte(body), 0o644); err != nil {
			log.Fatal(err)
		}
	}

	loaded, err := l.Load(context.Background())
	if err != nil {
		log.Fatalf("written project does not load: %v", err)
	}
	fmt.Printf("Sample project with %d documents and %d source files written to %s\n",
		len(loaded.Documents), len(loaded.SourceFiles), l.Root())
}
