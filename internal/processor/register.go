package processor

import "github.com/souzomain/logflow/internal/registry"

func init() {
	registry.Register(registry.RoleProcessor, "json", func() any { return NewStructured() })
	registry.Register(registry.RoleProcessor, "structured", func() any { return NewStructured() })
	registry.Register(registry.RoleProcessor, "filter", func() any { return NewFilter() })
	registry.Register(registry.RoleProcessor, "regex", func() any { return NewRegex() })
	registry.Register(registry.RoleProcessor, "grok", func() any { return NewNamedPattern() })
	registry.Register(registry.RoleProcessor, "namedpattern", func() any { return NewNamedPattern() })
	registry.Register(registry.RoleProcessor, "mutate", func() any { return NewMutator() })
	registry.Register(registry.RoleProcessor, "enrich", func() any { return NewEnricher() })
}
