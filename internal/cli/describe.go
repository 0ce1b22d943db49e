package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/cruciblehq/reciperunner/internal/processors"
	"github.com/cruciblehq/reciperunner/internal/registry"
)

// DescribeCmd is the 'reciperunner describe' command (§4.4): exercises the
// registry's capability-discovery contract. With no argument it lists every
// registered processor_type; with one, it prints that processor's Describe
// and Examples.
type DescribeCmd struct {
	ProcessorType string `arg:"" optional:"" help:"Processor type to describe; omit to list every registered type."`
}

// Run executes the describe command.
func (c *DescribeCmd) Run(ctx context.Context) error {
	reg := registry.New()
	if err := processors.Register(reg); err != nil {
		return err
	}

	if c.ProcessorType == "" {
		types := reg.Types()
		sort.Strings(types)
		for _, t := range types {
			fmt.Println(t)
		}
		return nil
	}

	factory, err := reg.Lookup(c.ProcessorType)
	if err != nil {
		return err
	}

	d := factory.Describe()
	fmt.Printf("%s (%s)\n  %s\n", d.ProcessorType, d.Role, d.Summary)
	if len(d.Options) > 0 {
		fmt.Println("  options:")
		for _, opt := range d.Options {
			fmt.Printf("    - %s\n", opt)
		}
	}
	for _, ex := range factory.Examples() {
		fmt.Printf("  example: %v\n", ex)
	}
	return nil
}
