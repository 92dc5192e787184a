package sink

import "github.com/souzomain/logflow/internal/registry"

func init() {
	registry.Register(registry.RoleSink, "file", func() any { return NewFile() })
	registry.Register(registry.RoleSink, "elasticsearch", func() any { return NewSearchCluster() })
	registry.Register(registry.RoleSink, "opensearch", func() any { return NewSearchCluster() })
	registry.Register(registry.RoleSink, "searchcluster", func() any { return NewSearchCluster() })
	registry.Register(registry.RoleSink, "s3", func() any { return NewObjectStore() })
	registry.Register(registry.RoleSink, "objectstore", func() any { return NewObjectStore() })
	registry.Register(registry.RoleSink, "console", func() any { return NewConsole() })
}
