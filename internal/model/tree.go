package model

import (
	"path"
	"sort"
	"strings"
)

// Folder is a directory node of the project file tree.
type Folder struct {
	Name    string    `json:"name"`
	RelPath string    `json:"rel_path"`
	Level   int       `json:"level"`
	Folders []*Folder `json:"folders,omitempty"`
	Files   []*File   `json:"files,omitempty"`
}

// File is a leaf of the project file tree pointing at a document or a
// scanned source file.
type File struct {
	Name     string      `json:"name"`
	RelPath  string      `json:"rel_path"`
	Level    int         `json:"level"`
	Document *Document   `json:"-"`
	Source   *SourceFile `json:"-"`
}

// IsEmpty reports whether the folder holds no files at any depth.
func (f *Folder) IsEmpty() bool {
	if f == nil {
		return true
	}
	if len(f.Files) > 0 {
		return false
	}
	for _, child := range f.Folders {
		if !child.IsEmpty() {
			return false
		}
	}
	return true
}

// FileCount returns the number of files below the folder.
func (f *Folder) FileCount() int {
	if f == nil {
		return 0
	}
	total := len(f.Files)
	for _, child := range f.Folders {
		total += child.FileCount()
	}
	return total
}

// DocumentTree arranges the project's documents by path. Fragments are
// listed as well; callers decide whether to show them.
func (p *Project) DocumentTree() *Folder {
	if p == nil {
		return &Folder{}
	}
	root := &Folder{Name: p.Config.Title}
	for _, doc := range p.Documents {
		file := insertFile(root, doc.Path)
		file.Document = doc
	}
	sortFolder(root)
	return root
}

// SourceTree arranges the scanned source files by path.
func (p *Project) SourceTree() *Folder {
	if p == nil {
		return &Folder{}
	}
	root := &Folder{Name: p.Config.SourceRootPath}
	for _, src := range p.SourceFiles {
		file := insertFile(root, src.Path)
		file.Source = src
	}
	sortFolder(root)
	return root
}

func insertFile(root *Folder, rel string) *File {
	clean := strings.TrimPrefix(path.Clean("/"+rel), "/")
	segments := strings.Split(clean, "/")
	current := root
	for idx, segment := range segments[:len(segments)-1] {
		next := findFolder(current, segment)
		if next == nil {
			next = &Folder{
				Name:    segment,
				RelPath: strings.Join(segments[:idx+1], "/"),
				Level:   idx + 1,
			}
			current.Folders = append(current.Folders, next)
		}
		current = next
	}
	file := &File{
		Name:    segments[len(segments)-1],
		RelPath: clean,
		Level:   len(segments),
	}
	current.Files = append(current.Files, file)
	return file
}

func findFolder(parent *Folder, name string) *Folder {
	for _, folder := range parent.Folders {
		if folder.Name == name {
			return folder
		}
	}
	return nil
}

func sortFolder(folder *Folder) {
	sort.SliceStable(folder.Folders, func(i, j int) bool {
		return folder.Folders[i].Name < folder.Folders[j].Name
	})
	sort.SliceStable(folder.Files, func(i, j int) bool {
		return folder.Files[i].Name < folder.Files[j].Name
	})
	for _, child := range folder.Folders {
		sortFolder(child)
	}
}
