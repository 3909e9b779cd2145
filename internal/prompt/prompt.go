// Package prompt loads and caches the two-part stage templates.
//
// A template has a persona section (System) and a task section
// (Instruction). Two on-disk formats are accepted:
//
//	<id>.yaml   system: ... / instruction: ...
//	<id>.txt    "System:" label, text, blank line, "Instruction:" label, text
//
// Parsing is strict: a template missing either section is an error, never an
// empty string.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

var (
	// ErrTemplateNotFound is returned when no file exists for a template id.
	ErrTemplateNotFound = errors.New("prompt: template not found")
	// ErrMalformedTemplate is returned when a template lacks a section.
	ErrMalformedTemplate = errors.New("prompt: malformed template")
)

// Template is a parsed stage template.
type Template struct {
	System      string `yaml:"system"`
	Instruction string `yaml:"instruction"`
}

// Store loads templates from a filesystem and caches them per id for the
// lifetime of the process.
type Store struct {
	fsys fs.FS

	mu    sync.RWMutex
	cache map[string]Template
	group singleflight.Group
}

// NewStore creates a store over fsys (typically prompts.FS or os.DirFS).
func NewStore(fsys fs.FS) *Store {
	return &Store{
		fsys:  fsys,
		cache: make(map[string]Template),
	}
}

// Load returns the template for id, reading and parsing it on first use.
// Concurrent first loads of the same id share one read.
func (s *Store) Load(id string) (Template, error) {
	s.mu.RLock()
	tpl, ok := s.cache[id]
	s.mu.RUnlock()
	if ok {
		return tpl, nil
	}

	v, err, _ := s.group.Do(id, func() (any, error) {
		tpl, err := s.read(id)
		if err != nil {
			return Template{}, err
		}
		s.mu.Lock()
		s.cache[id] = tpl
		s.mu.Unlock()
		return tpl, nil
	})
	if err != nil {
		return Template{}, err
	}
	return v.(Template), nil
}

func (s *Store) read(id string) (Template, error) {
	if !validID.MatchString(id) {
		return Template{}, fmt.Errorf("%w: invalid id %q", ErrTemplateNotFound, id)
	}

	if raw, err := fs.ReadFile(s.fsys, id+".yaml"); err == nil {
		tpl, perr := ParseYAML(raw)
		if perr != nil {
			return Template{}, fmt.Errorf("prompt %s: %w", id, perr)
		}
		return tpl, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Template{}, fmt.Errorf("prompt %s: read yaml: %w", id, err)
	}

	raw, err := fs.ReadFile(s.fsys, id+".txt")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Template{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return Template{}, fmt.Errorf("prompt %s: read: %w", id, err)
	}
	tpl, err := Parse(string(raw))
	if err != nil {
		return Template{}, fmt.Errorf("prompt %s: %w", id, err)
	}
	return tpl, nil
}

var (
	validID = regexp.MustCompile(`^[a-z0-9_\-]+$`)

	// System text runs up to the blank line that precedes the Instruction label.
	sectionsRe = regexp.MustCompile(`(?s)^\s*System:[ \t]*\r?\n?(.*?)\r?\n[ \t]*\r?\n\s*Instruction:[ \t]*(.*)$`)
)

// Parse splits a labelled text template into its sections.
func Parse(raw string) (Template, error) {
	m := sectionsRe.FindStringSubmatch(raw)
	if m == nil {
		return Template{}, fmt.Errorf("%w: want a System: section, a blank line, then an Instruction: section", ErrMalformedTemplate)
	}
	return checked(Template{
		System:      strings.TrimSpace(m[1]),
		Instruction: strings.TrimSpace(m[2]),
	})
}

// ParseYAML decodes a structured template.
func ParseYAML(raw []byte) (Template, error) {
	var tpl Template
	if err := yaml.Unmarshal(raw, &tpl); err != nil {
		return Template{}, fmt.Errorf("%w: %v", ErrMalformedTemplate, err)
	}
	tpl.System = strings.TrimSpace(tpl.System)
	tpl.Instruction = strings.TrimSpace(tpl.Instruction)
	return checked(tpl)
}

func checked(tpl Template) (Template, error) {
	if tpl.System == "" {
		return Template{}, fmt.Errorf("%w: empty system section", ErrMalformedTemplate)
	}
	if tpl.Instruction == "" {
		return Template{}, fmt.Errorf("%w: empty instruction section", ErrMalformedTemplate)
	}
	return tpl, nil
}
