package prompts

import (
	"cmp"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
)

// SourceEmbedded marks a prompt resolved from its compiled-in default.
const SourceEmbedded = "embedded"

// Resolver resolves prompts by key, preferring file overrides.
type Resolver struct {
	mu        sync.RWMutex
	embedded  map[string]EmbeddedPrompt
	overrides map[string]string // key -> file path
	logger    *slog.Logger
}

// NewResolver creates a new prompt resolver.
func NewResolver(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		embedded:  make(map[string]EmbeddedPrompt),
		overrides: make(map[string]string),
		logger:    logger,
	}
}

// Register registers an embedded prompt.
func (r *Resolver) Register(prompt EmbeddedPrompt) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prompt.Hash == "" {
		prompt.Hash = HashText(prompt.Text)
	}
	if prompt.Variables == nil {
		prompt.Variables = ExtractVariables(prompt.Text)
	}

	r.embedded[prompt.Key] = prompt
	r.logger.Debug("prompts.register", "key", prompt.Key, "vars", prompt.Variables)
}

// SetOverride makes key resolve to the contents of path.
// An empty path removes the override.
func (r *Resolver) SetOverride(key, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if path == "" {
		delete(r.overrides, key)
		return
	}
	r.overrides[key] = path
}

// Resolve returns the override for key if one is set, otherwise the
// embedded default. An override that cannot be read is an error; an
// override referencing variables the default does not define is rejected.
func (r *Resolver) Resolve(key string) (*ResolvedPrompt, error) {
	r.mu.RLock()
	embedded, ok := r.embedded[key]
	path := r.overrides[key]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("prompt not found: %s", key)
	}

	if path == "" {
		return &ResolvedPrompt{
			Key:       key,
			Text:      embedded.Text,
			Variables: embedded.Variables,
			Hash:      embedded.Hash,
			Source:    SourceEmbedded,
		}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt override %s: %w", path, err)
	}
	text := string(data)
	vars := ExtractVariables(text)
	for _, v := range vars {
		if !slices.Contains(embedded.Variables, v) {
			return nil, fmt.Errorf("prompt override %s: unknown variable %q", path, v)
		}
	}

	r.logger.Debug("prompts.override", "key", key, "path", path)
	return &ResolvedPrompt{
		Key:        key,
		Text:       text,
		Variables:  vars,
		Hash:       HashText(text),
		IsOverride: true,
		Source:     path,
	}, nil
}

// AllEmbedded returns all registered embedded prompts sorted by key.
func (r *Resolver) AllEmbedded() []EmbeddedPrompt {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]EmbeddedPrompt, 0, len(r.embedded))
	for _, p := range r.embedded {
		result = append(result, p)
	}
	slices.SortFunc(result, func(a, b EmbeddedPrompt) int {
		return cmp.Compare(a.Key, b.Key)
	})
	return result
}
