// internal/di/container.go
package di

import (
	"sort"
	"sync"
)

// Names the server registers its services under.
const (
	Logger            = "logger"
	Metrics           = "metrics"
	Storage           = "storage"
	Locks             = "locks"
	ManuscriptService = "manuscript"
	CharacterService  = "character"
	StatsService      = "stats"
)

// Container is a small name-keyed service registry.
type Container struct {
	services map[string]interface{}
	mutex    sync.RWMutex
}

var (
	globalContainer *Container
	once            sync.Once
)

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{
		services: make(map[string]interface{}),
	}
}

// GetContainer returns the process-wide container.
func GetContainer() *Container {
	once.Do(func() {
		globalContainer = NewContainer()
	})
	return globalContainer
}

// Register stores service under name, replacing any previous registration.
func (c *Container) Register(name string, service interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.services[name] = service
}

// Get returns the service registered under name, or nil.
func (c *Container) Get(name string) interface{} {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return c.services[name]
}

// GetNames lists the registered names, sorted.
func (c *Container) GetNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the service under name as T.
func Lookup[T any](c *Container, name string) (T, bool) {
	v, ok := c.Get(name).(T)
	return v, ok
}
