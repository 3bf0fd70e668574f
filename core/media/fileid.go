package media

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Default allowed extensions, grouped by media kind. A backend configured
// with the defaults accepts the union of these groups.
var (
	AudioExtensions    = []string{"mp3", "wav"}
	DataExtensions     = []string{"csv", "tsv"}
	DocumentExtensions = []string{"pdf"}
	ImageExtensions    = []string{"gif", "jpeg", "jpg", "png", "svg", "tif", "webp"}
	TextExtensions     = []string{"rtf", "txt"}
	VideoExtensions    = []string{"mov", "mp4", "webm"}
)

// DefaultAllowedExtensions returns the union of the default extension groups.
func DefaultAllowedExtensions() []string {
	var out []string
	for _, group := range [][]string{
		AudioExtensions,
		DataExtensions,
		DocumentExtensions,
		ImageExtensions,
		TextExtensions,
		VideoExtensions,
	} {
		out = append(out, group...)
	}
	return out
}

// DefaultAllowedCharacters is the default character whitelist for file names.
// Deliberately strict: rejecting unknown characters by default keeps null
// bytes and control characters out of file names.
const DefaultAllowedCharacters = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ" +
	"0123456789" +
	" -_."

// maxFileNameLength bounds the base-name component of generated keys so they
// stay within filesystem and database column limits.
const maxFileNameLength = 50

// IDGenerator produces the random component of a file key. Injectable so
// tests can substitute a fixed sequence.
type IDGenerator func() uuid.UUID

// FileNamePolicy validates proposed file names and derives unique storage
// keys from them. It performs no I/O. A policy is immutable after
// construction and safe for concurrent use.
type FileNamePolicy struct {
	allowedExtensions map[string]struct{} // nil means unrestricted
	allowedCharacters map[rune]struct{}   // nil means unrestricted
	newID             IDGenerator
}

// PolicyOption configures a FileNamePolicy.
type PolicyOption func(*FileNamePolicy)

// WithAllowedExtensions restricts file names to the given extensions
// (matched case-insensitively, no leading dot).
func WithAllowedExtensions(exts ...string) PolicyOption {
	return func(p *FileNamePolicy) {
		p.allowedExtensions = make(map[string]struct{}, len(exts))
		for _, ext := range exts {
			p.allowedExtensions[strings.ToLower(ext)] = struct{}{}
		}
	}
}

// WithUnrestrictedExtensions disables extension checking. Not recommended
// unless uploaders are trusted.
func WithUnrestrictedExtensions() PolicyOption {
	return func(p *FileNamePolicy) {
		p.allowedExtensions = nil
	}
}

// WithAllowedCharacters restricts file names to the characters of chars.
func WithAllowedCharacters(chars string) PolicyOption {
	return func(p *FileNamePolicy) {
		p.allowedCharacters = make(map[rune]struct{}, len(chars))
		for _, r := range chars {
			p.allowedCharacters[r] = struct{}{}
		}
	}
}

// WithUnrestrictedCharacters disables character checking. Not recommended
// unless uploaders are trusted.
func WithUnrestrictedCharacters() PolicyOption {
	return func(p *FileNamePolicy) {
		p.allowedCharacters = nil
	}
}

// WithIDGenerator replaces the random source for key generation.
// Primarily used in tests to pin the generated keys.
func WithIDGenerator(fn IDGenerator) PolicyOption {
	return func(p *FileNamePolicy) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// NewFileNamePolicy creates a policy with the default extension and
// character whitelists and a uuid.New random source.
func NewFileNamePolicy(opts ...PolicyOption) *FileNamePolicy {
	p := &FileNamePolicy{newID: uuid.New}
	WithAllowedExtensions(DefaultAllowedExtensions()...)(p)
	WithAllowedCharacters(DefaultAllowedCharacters)(p)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateFileID validates fileName and derives a storage key of the form
// <base>-<uuid>.<ext>. The base name keeps the original casing and is
// truncated to 50 characters when the whole file name is longer than that.
//
// Validation order: empty check, directory stripping, hidden-file check,
// traversal check, character whitelist, extension split, extension
// whitelist. Character checking runs before the extension split, so a
// disallowed character inside the extension reports ErrDisallowedCharacter,
// not an extension error.
func (p *FileNamePolicy) GenerateFileID(fileName string) (string, error) {
	if fileName == "" {
		return "", ErrEmptyFileName
	}

	// Client-supplied names may carry a full path (e.g. /foo/bar.jpg or
	// C:\foo\bar.jpg); only the final segment matters.
	fileName = strings.TrimRight(fileName, `/\`)
	if i := strings.LastIndexAny(fileName, `/\`); i >= 0 {
		fileName = fileName[i+1:]
	}
	if fileName == "" {
		return "", ErrEmptyFileName
	}

	// A leading period would create a hidden file on Unix.
	if strings.HasPrefix(fileName, ".") {
		return "", ErrHiddenFile
	}

	// Directory components were already stripped; rejecting ".." anyway
	// keeps a crafted name from ever reaching a parent folder.
	if strings.Contains(fileName, "..") {
		return "", ErrPathTraversal
	}

	if p.allowedCharacters != nil {
		for _, r := range fileName {
			if _, ok := p.allowedCharacters[r]; !ok {
				return "", fmt.Errorf("%w: %q", ErrDisallowedCharacter, r)
			}
		}
	}

	dot := strings.LastIndex(fileName, ".")
	if dot < 0 {
		return "", ErrMissingExtension
	}
	base, ext := fileName[:dot], fileName[dot+1:]

	if p.allowedExtensions != nil {
		if _, ok := p.allowedExtensions[strings.ToLower(ext)]; !ok {
			return "", ErrExtensionNotAllowed
		}
	}

	// The length check looks at the whole remaining file name, the slice
	// applies to the base only. Counted in runes so an unrestricted
	// character set can't cut a multi-byte character in half.
	if utf8.RuneCountInString(fileName) > maxFileNameLength {
		if r := []rune(base); len(r) > maxFileNameLength {
			base = string(r[:maxFileNameLength])
		}
	}

	fileID := base + "-" + p.newID().String()
	if ext != "" {
		fileID += "." + ext
	}
	return fileID, nil
}
