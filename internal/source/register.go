package source

import "github.com/souzomain/logflow/internal/registry"

func init() {
	registry.Register(registry.RoleSource, "file", func() any { return NewFile() })
	registry.Register(registry.RoleSource, "broker", func() any { return NewBroker() })
	registry.Register(registry.RoleSource, "kafka", func() any { return NewBroker() })
	registry.Register(registry.RoleSource, "objectstore", func() any { return NewObjectStore() })
	registry.Register(registry.RoleSource, "s3", func() any { return NewObjectStore() })
	registry.Register(registry.RoleSource, "eventstream", func() any { return NewEventStream() })
	registry.Register(registry.RoleSource, "winlog", func() any { return NewEventStream() })
}
