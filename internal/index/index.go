package index

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	herrors "github.com/PolarWolf314/huna/internal/errors"
)

// Entry binds a path to a record ID.
type Entry struct {
	ID   string
	Path string
}

// Index is the decrypted mapping.
type Index struct {
	entries []Entry
	byPath  map[string]string
	byID    map[string]string
}

// New returns an empty index.
func New() *Index {
	return &Index{byPath: make(map[string]string), byID: make(map[string]string)}
}

// Parse decodes the plaintext index and checks it is a bijection.
func Parse(data []byte) (*Index, error) {
	idx := New()
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, path, ok := strings.Cut(line, " ")
		if !ok || id == "" || path == "" {
			return nil, fmt.Errorf("%w: malformed entry on line %d", herrors.ErrCorruptIndex, lineNo)
		}
		if _, dup := idx.byPath[path]; dup {
			return nil, fmt.Errorf("%w: path on line %d appears more than once", herrors.ErrCorruptIndex, lineNo)
		}
		if _, dup := idx.byID[id]; dup {
			return nil, fmt.Errorf("%w: id %s appears more than once", herrors.ErrCorruptIndex, id)
		}
		idx.put(Entry{ID: id, Path: path})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", herrors.ErrCorruptIndex, err)
	}
	return idx, nil
}

// Marshal encodes the index in entry order.
func (idx *Index) Marshal() []byte {
	var buf bytes.Buffer
	for _, e := range idx.entries {
		buf.WriteString(e.ID)
		buf.WriteByte(' ')
		buf.WriteString(e.Path)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (idx *Index) put(e Entry) {
	idx.entries = append(idx.entries, e)
	idx.byPath[e.Path] = e.ID
	idx.byID[e.ID] = e.Path
}

// Len returns the number of entries.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// LookupByPath returns the ID bound to path.
func (idx *Index) LookupByPath(path string) (string, bool) {
	id, ok := idx.byPath[path]
	return id, ok
}

// LookupByID returns the path bound to id.
func (idx *Index) LookupByID(id string) (string, bool) {
	path, ok := idx.byID[id]
	return path, ok
}

// Add appends a new entry. Neither the path nor the ID may be present.
func (idx *Index) Add(path, id string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}
	if id == "" || strings.ContainsAny(id, " \t\r\n") {
		return fmt.Errorf("%w: malformed id %q", herrors.ErrCorruptIndex, id)
	}
	if _, ok := idx.byPath[path]; ok {
		return fmt.Errorf("%w: %s", herrors.ErrPathExists, path)
	}
	if _, ok := idx.byID[id]; ok {
		return fmt.Errorf("%w: %s", herrors.ErrIDExists, id)
	}
	idx.put(Entry{ID: id, Path: path})
	return nil
}

// Remove drops every entry bound to id and reports how many were removed.
func (idx *Index) Remove(id string) int {
	kept := idx.entries[:0]
	removed := 0
	for _, e := range idx.entries {
		if e.ID == id {
			delete(idx.byPath, e.Path)
			removed++
			continue
		}
		kept = append(kept, e)
	}
	idx.entries = kept
	delete(idx.byID, id)
	return removed
}

// Entries returns the entries sorted by path.
func (idx *Index) Entries() []Entry {
	out := make([]Entry, len(idx.entries))
	copy(out, idx.entries)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// IDs returns every referenced ID, sorted.
func (idx *Index) IDs() []string {
	out := make([]string, 0, len(idx.entries))
	for _, e := range idx.entries {
		out = append(out, e.ID)
	}
	sort.Strings(out)
	return out
}

// Paths returns every path, sorted.
func (idx *Index) Paths() []string {
	out := make([]string, 0, len(idx.entries))
	for _, e := range idx.Entries() {
		out = append(out, e.Path)
	}
	return out
}

// Under returns the sorted paths equal to prefix or below it. Characters in
// prefix are matched literally.
func (idx *Index) Under(prefix string) []string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return idx.Paths()
	}
	re := regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `(/|$)`)

	var out []string
	for _, p := range idx.Paths() {
		if re.MatchString(p) {
			out = append(out, p)
		}
	}
	return out
}

// Glob returns the sorted paths matching a doublestar pattern.
func (idx *Index) Glob(pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern %q", pattern)
	}
	var out []string
	for _, p := range idx.Paths() {
		if doublestar.MatchUnvalidated(pattern, p) {
			out = append(out, p)
		}
	}
	return out, nil
}
