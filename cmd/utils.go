package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// Choice is a pflag.Value constrained to a fixed set of strings. Help
// text per value feeds shell completion.
type Choice struct {
	value string
	help  map[string]string
}

func NewChoice(def string, help map[string]string) Choice {
	if _, ok := help[def]; !ok {
		panic(fmt.Sprintf("default %q not among the allowed values", def))
	}
	return Choice{value: def, help: help}
}

func (c *Choice) String() string { return c.value }
func (c *Choice) Type() string   { return "choice" }
func (c *Choice) Value() string  { return c.value }

func (c *Choice) Set(v string) error {
	if _, ok := c.help[v]; !ok {
		return fmt.Errorf("must be one of: %s", strings.Join(c.Options(), ", "))
	}
	c.value = v
	return nil
}

// Options returns the allowed values, sorted.
func (c *Choice) Options() []string {
	opts := make([]string, 0, len(c.help))
	for v := range c.help {
		opts = append(opts, v)
	}
	slices.Sort(opts)
	return opts
}

func (c *Choice) HelpString() string {
	return "[" + strings.Join(c.Options(), ", ") + "]"
}

func (c *Choice) CompletionFunc() func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var items []string
		for _, v := range c.Options() {
			if help := c.help[v]; help != "" {
				items = append(items, v+"\t"+help)
			} else {
				items = append(items, v)
			}
		}
		return items, cobra.ShellCompDirectiveDefault
	}
}
