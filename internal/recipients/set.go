package recipients

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Set is a sorted, de-duplicated list of recipient strings.
type Set []string

// NewSet normalizes recipients into a Set. Blank entries are dropped, age
// X25519 keys are lower-cased and ssh keys lose their trailing comment, so
// the same membership always yields the same Set regardless of order,
// duplicates, case or comments.
func NewSet(recipients ...string) Set {
	seen := make(map[string]struct{}, len(recipients))
	out := make(Set, 0, len(recipients))
	for _, r := range recipients {
		r = normalize(r)
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// ParseSet reads one recipient per line. Lines starting with # are comments.
func ParseSet(data []byte) Set {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return NewSet(lines...)
}

func normalize(r string) string {
	fields := strings.Fields(r)
	r = strings.Join(fields, " ")
	switch {
	case strings.HasPrefix(strings.ToLower(r), "age1"):
		return strings.ToLower(r)
	case strings.HasPrefix(r, "ssh-") && len(fields) > 2:
		// The key is "type base64"; anything after it is a comment.
		return fields[0] + " " + fields[1]
	}
	return r
}

// Bytes is the canonical plaintext form: one recipient per line.
func (s Set) Bytes() []byte {
	if len(s) == 0 {
		return nil
	}
	return []byte(strings.Join(s, "\n") + "\n")
}

// Digest is the hex sha256 of the canonical form.
func (s Set) Digest() string {
	sum := sha256.Sum256(s.Bytes())
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both sets have the same members.
func (s Set) Equal(other Set) bool {
	return NewSet(s...).Digest() == NewSet(other...).Digest()
}

// Strings returns the recipients as a plain slice.
func (s Set) Strings() []string {
	return []string(s)
}
