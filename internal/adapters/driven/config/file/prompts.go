package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves prompt templates from user-editable files, falling back
// to built-in defaults. The directory and default files are created on the
// first Load, not in the constructor.
type PromptStore struct {
	promptDir string

	mu    sync.RWMutex
	cache map[string]string

	initOnce sync.Once
	initErr  error
}

// defaultPrompts are used when user files don't exist and as the initial
// content for new files.
var defaultPrompts = map[string]string{
	driven.PromptRAGSystem:  driven.DefaultRAGSystemPrompt,
	driven.PromptCompletion: driven.DefaultCompletionTemplate,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.ragkit/prompts/.
//
// The constructor does not perform any I/O - directory creation and
// file writes happen lazily on first Load() call.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, ".ragkit", "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for name: the file content when present,
// otherwise the built-in default. Results are cached until invalidated.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	if prompt, ok := s.cached(name); ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	switch {
	case err == nil:
	case s.initErr != nil || errors.Is(err, fs.ErrNotExist):
		fallback, ok := defaultPrompts[name]
		if !ok {
			return "", fmt.Errorf("load prompt %q: %w", name, errors.Join(s.initErr, err))
		}
		// Defaults are not cached so a file created later is picked up.
		return fallback, nil
	default:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.cache[name]; ok {
		return existing, nil
	}
	s.cache[name] = prompt
	return prompt, nil
}

func (s *PromptStore) cached(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prompt, ok := s.cache[name]
	return prompt, ok
}

// Invalidate drops one prompt from the cache.
func (s *PromptStore) Invalidate(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, name)
}

// Reload clears the whole prompt cache.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]string)
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// initialise creates the prompt directory, any missing default files and
// the README. Existing files are never overwritten.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	for name, content := range defaultPrompts {
		if err := writeIfMissing(s.path(name), content); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
	if err := writeIfMissing(filepath.Join(s.promptDir, "README.md"), promptReadme); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return os.WriteFile(path, []byte(content), 0600)
}

// loadFromFile reads a prompt from disk, trimming surrounding whitespace.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

const promptReadme = `# ragkit Prompts

This directory contains the prompts used when answering queries.

## Files

- ` + "`rag_system.txt`" + ` - Instruction sent with every grounded answer
- ` + "`completion.txt`" + ` - Prompt layout for plain-completion backends

## Customisation

Edit any file to customise answers. A running ` + "`ragkit serve`" + ` picks up
changes immediately; other commands read them on the next run.

## Format Placeholders

` + "`completion.txt`" + ` takes three ` + "`%s`" + ` placeholders, in order: the system
instruction, the retrieved context and the question. A template with a
different number of placeholders is ignored in favour of the default.
`
