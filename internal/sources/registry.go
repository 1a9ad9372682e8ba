package sources

import (
	"time"

	"github.com/scouthq/scout/internal/config"
)

// Source names as they appear in requests and envelopes.
const (
	NameHackerNews    = "hackernews"
	NameStackOverflow = "stackoverflow"
	NameLobsters      = "lobsters"
	NameDevto         = "devto"
	NameArxiv         = "arxiv"
	NameWikipedia     = "wikipedia"
	NameDuckDuckGo    = "duckduckgo"
	NameBrave         = "brave"
	NameReddit        = "reddit" // enrichment only, not part of the fan-out
)

// Short aliases accepted on the CLI.
var aliases = map[string]string{
	"hn": NameHackerNews,
	"so": NameStackOverflow,
}

// Registry is the static set of known adapters. Built once at startup;
// read-only afterwards.
type Registry struct {
	adapters map[string]Adapter
	order    []string
}

// NewRegistry registers every adapter. The Brave grounding adapter is
// registered even without an API key so that requesting it yields an
// explicit configuration failure instead of an unknown-source error.
func NewRegistry(cfg *config.Config) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	r.Register(NewHackerNews(cfg))
	r.Register(NewStackOverflow(cfg))
	r.Register(NewLobsters(cfg))
	r.Register(NewDevto(cfg))
	r.Register(NewArxiv(cfg))
	r.Register(NewWikipedia(cfg))
	r.Register(NewDuckDuckGo(cfg))
	r.Register(NewGrounding(cfg))
	return r
}

// Register adds an adapter. Later registrations with the same name replace
// earlier ones, which tests use to install fixtures.
func (r *Registry) Register(a Adapter) {
	if _, ok := r.adapters[a.Name()]; !ok {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Resolve maps a requested name (or alias) to its adapter.
func (r *Registry) Resolve(name string) (Adapter, bool) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns all registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Infos returns the registry dump for list-sources.
func (r *Registry) Infos() []Info {
	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, r.adapters[name].Info())
	}
	return infos
}

// Depth tiers control default source sets and budgets.
const (
	DepthQuick   = "quick"
	DepthDefault = "default"
	DepthDeep    = "deep"
)

// SourcesForDepth returns the default source set for a depth tier.
func SourcesForDepth(depth string) []string {
	switch depth {
	case DepthQuick:
		return []string{NameHackerNews, NameStackOverflow}
	case DepthDeep:
		return []string{NameHackerNews, NameStackOverflow, NameLobsters, NameDevto, NameArxiv, NameWikipedia, NameDuckDuckGo}
	default:
		return []string{NameHackerNews, NameStackOverflow, NameLobsters, NameDevto, NameWikipedia}
	}
}

// LimitForDepth returns the per-source item limit for a depth tier.
func LimitForDepth(depth string) int {
	switch depth {
	case DepthQuick:
		return 5
	case DepthDeep:
		return 15
	default:
		return 10
	}
}

// TimeoutForDepth returns the total fetch budget for a depth tier.
func TimeoutForDepth(depth string) time.Duration {
	switch depth {
	case DepthQuick:
		return 15 * time.Second
	case DepthDeep:
		return 60 * time.Second
	default:
		return 30 * time.Second
	}
}
