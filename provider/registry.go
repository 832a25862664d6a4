package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/manimation/manimation/logger"
)

// ErrNoDynamicListing marks providers without a live model endpoint.
var ErrNoDynamicListing = errors.New("provider has no dynamic model listing")

// ModelLister fetches the live model list for a provider.
type ModelLister interface {
	ListModels(ctx context.Context, d Descriptor, apiKey string) ([]ModelInfo, error)
}

// Registry holds every known provider and caches dynamic model
// discovery per credential, so switching keys never serves a stale
// list that belongs to another credential.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Descriptor
	cache  map[string][]ModelInfo
	lister ModelLister
	log    logger.Logger
}

// NewRegistry creates a registry pre-loaded with the built-in providers.
func NewRegistry(log logger.Logger) *Registry {
	r := NewEmptyRegistry(NewHTTPLister(), log)
	for _, d := range Builtins() {
		r.byName[d.Name] = d
	}
	return r
}

// NewEmptyRegistry creates a registry with no providers. A nil lister
// disables dynamic discovery entirely.
func NewEmptyRegistry(lister ModelLister, log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Registry{
		byName: make(map[string]Descriptor),
		cache:  make(map[string][]ModelInfo),
		lister: lister,
		log:    log,
	}
}

// Register adds a provider. Duplicate names are rejected.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return errors.New("provider name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, d.Name)
	}
	r.byName[d.Name] = d
	return nil
}

// Get returns the descriptor for a provider name.
func (r *Registry) Get(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return d, nil
}

// Names returns all registered provider names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Models returns the model list for a provider: the static table merged
// with live discovery when a credential resolves and the provider has a
// listing endpoint. Discovery failures degrade to the static table.
func (r *Registry) Models(ctx context.Context, name string, creds Credentials) ([]ModelInfo, error) {
	d, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	key, err := creds.Resolve(d)
	if err != nil {
		// Listable without a key, just not callable.
		return sortedModels(d.Models), nil
	}

	ck := cacheKey(name, key)
	r.mu.RLock()
	cached, ok := r.cache[ck]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if r.lister == nil {
		return sortedModels(d.Models), nil
	}

	dynamic, err := r.lister.ListModels(ctx, d, key)
	if err != nil {
		if !errors.Is(err, ErrNoDynamicListing) {
			r.log.WithField("provider", name).Warn(fmt.Sprintf("model discovery failed: %v", err))
		}
		return sortedModels(d.Models), nil
	}

	merged := mergeModels(d.Models, dynamic)
	r.mu.Lock()
	r.cache[ck] = merged
	r.mu.Unlock()
	return merged, nil
}

// AllModels returns the models of every registered provider.
func (r *Registry) AllModels(ctx context.Context, creds Credentials) []ModelInfo {
	var all []ModelInfo
	for _, name := range r.Names() {
		models, err := r.Models(ctx, name, creds)
		if err != nil {
			continue
		}
		all = append(all, models...)
	}
	return all
}

// mergeModels unions static and dynamic entries by model name. Dynamic
// entries win, but keep the static label and token limit when the
// discovery endpoint did not report them.
func mergeModels(static, dynamic []ModelInfo) []ModelInfo {
	byName := make(map[string]ModelInfo, len(static)+len(dynamic))
	for _, m := range static {
		byName[m.Name] = m
	}
	for _, m := range dynamic {
		if prev, ok := byName[m.Name]; ok {
			if m.Label == "" || m.Label == m.Name {
				m.Label = prev.Label
			}
			if m.MaxTokens == 0 {
				m.MaxTokens = prev.MaxTokens
			}
		}
		byName[m.Name] = m
	}
	merged := make([]ModelInfo, 0, len(byName))
	for _, m := range byName {
		merged = append(merged, m)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged
}

func sortedModels(models []ModelInfo) []ModelInfo {
	out := make([]ModelInfo, len(models))
	copy(out, models)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func cacheKey(name, apiKey string) string {
	sum := sha256.Sum256([]byte(apiKey))
	return name + ":" + hex.EncodeToString(sum[:])[:16]
}
