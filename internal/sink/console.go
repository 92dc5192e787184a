package sink

import (
	"fmt"
	"sync"

	"github.com/souzomain/logflow/internal/model"
)

// Console prints events to stdout in a human-readable form, one block
// per event. Adapted from the teacher's console.ConsoleSink (which
// formatted USDC transfer/approval logs); generalized here from
// blockchain event display to arbitrary LogEvent fields.
type Console struct {
	mu sync.Mutex
}

func NewConsole() *Console { return &Console{} }

func (c *Console) Configure(cfg map[string]any) error {
	fmt.Println("console sink initialized")
	return nil
}

func (c *Console) Write(batch []*model.LogEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	fmt.Printf("\n   %d event(s):\n", len(batch))
	for i, event := range batch {
		c.displayEvent(i+1, event)
	}
	fmt.Println()
	return nil
}

func (c *Console) displayEvent(index int, event *model.LogEvent) {
	fmt.Printf("   [%d] %s  source=%s/%s\n", index, event.Timestamp.Format("2006-01-02T15:04:05Z07:00"), event.SourceType, event.SourceName)
	for key, value := range event.Fields {
		fmt.Printf("       %s: %v\n", key, value)
	}
}

func (c *Console) Release() error { return nil }
