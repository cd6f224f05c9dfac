package config

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/NetPo4ki/go-smoke/scheduler"
)

const (
	BackendSync   = "sync"
	BackendThread = "thread"
	BackendPool   = "pool"
)

// SchedulerConfig selects the scheduler injected into the application.
type SchedulerConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Threads is the pool size; zero means max(8, NumCPU).
	Threads int `yaml:"threads" mapstructure:"threads"`
}

func (c *SchedulerConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPool
	}
	c.Backend = strings.ToLower(c.Backend)
	if c.Backend == BackendPool && c.Threads == 0 {
		c.Threads = max(8, runtime.NumCPU())
	}
}

func (c *SchedulerConfig) Validate() error {
	valid := []string{BackendSync, BackendThread, BackendPool}
	if !slices.Contains(valid, c.Backend) {
		return fmt.Errorf("scheduler.backend must be one of %v (got: %s)", valid, c.Backend)
	}
	if c.Threads < 0 {
		return fmt.Errorf("scheduler.threads must not be negative (got: %d)", c.Threads)
	}
	return nil
}

// Build constructs the configured scheduler. opts are applied after the
// configured name.
func (c SchedulerConfig) Build(opts ...scheduler.Option) (*scheduler.Scheduler, error) {
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Name != "" {
		opts = append([]scheduler.Option{scheduler.WithName(c.Name)}, opts...)
	}
	switch c.Backend {
	case BackendSync:
		return scheduler.NewSync(opts...), nil
	case BackendThread:
		return scheduler.NewThread(opts...), nil
	default:
		return scheduler.NewPool(c.Threads, opts...), nil
	}
}
