package category

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"LunaroNews/internal/domain"
)

const (
	Cybersecurity = "cybersecurity"
	SEO           = "seo"

	LabelCybersecurity = "Киберсигурност"
	LabelSEO           = "SEO"
)

// Profile carries everything the pipeline needs to know about one category:
// how to search for it, how to prompt for it and what to fall back to.
type Profile struct {
	Key              string
	Label            string
	Query            string
	ExpandPrompt     string
	FallbackTags     []string
	FallbackKeywords []string
	Authors          []domain.Persona
}

// PickAuthor chooses a persona from the roster deterministically by seed.
func (p Profile) PickAuthor(seed string) domain.Persona {
	if len(p.Authors) == 0 {
		return domain.Persona{Name: "Редакция Lunaro", Bio: "Екипът на Lunaro News."}
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	return p.Authors[int(h.Sum32()%uint32(len(p.Authors)))]
}

// Registry keeps a mapping from category discriminators to their profiles.
type Registry struct {
	profiles map[string]Profile
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{profiles: map[string]Profile{}}
}

// Register adds or replaces a profile.
func (r *Registry) Register(p Profile) {
	if r.profiles == nil {
		r.profiles = map[string]Profile{}
	}
	r.profiles[normalize(p.Key)] = p
}

// Resolve returns a profile by discriminator or an error if it is absent.
func (r *Registry) Resolve(key string) (Profile, error) {
	if p, ok := r.profiles[normalize(key)]; ok {
		return p, nil
	}
	return Profile{}, fmt.Errorf("category %q is not registered", key)
}

// Keys lists registered discriminators in stable order.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.profiles))
	for k := range r.profiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func normalize(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}
