package league

import (
	"fmt"
	"sort"
)

// Registry is the read-only table of league configuration keyed by code.
type Registry struct {
	configs map[string]Config
}

func NewRegistry(configs ...Config) (*Registry, error) {
	out := make(map[string]Config, len(configs))
	for _, cfg := range configs {
		cfg.Code = NormalizeCode(cfg.Code)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if _, dup := out[cfg.Code]; dup {
			return nil, fmt.Errorf("league %s configured twice", cfg.Code)
		}
		out[cfg.Code] = cfg
	}
	return &Registry{configs: out}, nil
}

func DefaultRegistry() *Registry {
	registry, err := NewRegistry(DefaultConfigs()...)
	if err != nil {
		panic(fmt.Sprintf("default league configs are invalid: %v", err))
	}
	return registry
}

func (r *Registry) Get(code string) (Config, error) {
	cfg, ok := r.configs[NormalizeCode(code)]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownLeague, code)
	}
	return cfg, nil
}

func (r *Registry) Codes() []string {
	out := make([]string, 0, len(r.configs))
	for code := range r.configs {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Subset keeps only the given codes; every code must already be registered.
func (r *Registry) Subset(codes []string) (*Registry, error) {
	if len(codes) == 0 {
		return r, nil
	}
	configs := make([]Config, 0, len(codes))
	for _, code := range codes {
		cfg, err := r.Get(code)
		if err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return NewRegistry(configs...)
}
