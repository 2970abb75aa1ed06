// Package archive keeps filesystem copies of processed statement files so an
// import run can always be traced back to its source document.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Entry is one archived statement file.
type Entry struct {
	ImportID uuid.UUID
	Name     string
	Path     string
	Size     int64
}

// Archive stores statement copies under basePath/<owner>/.
type Archive struct {
	basePath string
}

// New creates the archive directory if needed.
func New(basePath string) (*Archive, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{basePath: basePath}, nil
}

// Store copies a statement into the owner's archive, keyed by the import run.
func (a *Archive) Store(ownerID, importID uuid.UUID, filename string, r io.Reader) (*Entry, error) {
	ownerDir := filepath.Join(a.basePath, ownerID.String())
	if err := os.MkdirAll(ownerDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", importID, sanitizeFilename(filename))
	path := filepath.Join(ownerDir, name)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("failed to write archive file: %w", err)
	}

	return &Entry{ImportID: importID, Name: filename, Path: path, Size: size}, nil
}

// List returns the owner's archived statements, sorted by file name.
func (a *Archive) List(ownerID uuid.UUID) ([]Entry, error) {
	ownerDir := filepath.Join(a.basePath, ownerID.String())
	files, err := os.ReadDir(ownerDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive directory: %w", err)
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		idPart, namePart, ok := strings.Cut(f.Name(), "_")
		if !ok {
			continue
		}
		importID, err := uuid.Parse(idPart)
		if err != nil {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			ImportID: importID,
			Name:     namePart,
			Path:     filepath.Join(ownerDir, f.Name()),
			Size:     info.Size(),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// sanitizeFilename strips path separators and control characters so archive
// names stay inside the owner directory.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == ".." {
		return "statement"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == '/' || r == '\\' || r < 0x20:
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "statement"
	}
	return b.String()
}
