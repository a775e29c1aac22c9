package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/config"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE:  runConfigSet,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get      func(*config.Config) any
	set      func(*config.Config, string) error
	writable bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"name": {
			get:      func(c *config.Config) any { return c.Name },
			set:      func(c *config.Config, v string) error { c.Name = v; return nil },
			writable: true,
		},
		"store.backend": {
			get:      func(c *config.Config) any { return c.Store.Backend },
			set:      func(c *config.Config, v string) error { c.Store.Backend = v; return nil },
			writable: true,
		},
		"store.path": {
			get: func(c *config.Config) any { return c.Store.Path },
		},
		"defaults.priority": {
			get:      func(c *config.Config) any { return c.Defaults.Priority },
			set:      func(c *config.Config, v string) error { c.Defaults.Priority = strings.ToLower(v); return nil },
			writable: true,
		},
		"defaults.sort": {
			get:      func(c *config.Config) any { return c.Defaults.Sort },
			set:      func(c *config.Config, v string) error { c.Defaults.Sort = v; return nil },
			writable: true,
		},
		"defaults.direction": {
			get:      func(c *config.Config) any { return c.Defaults.Direction },
			set:      func(c *config.Config, v string) error { c.Defaults.Direction = strings.ToLower(v); return nil },
			writable: true,
		},
		"defaults.page_size": {
			get: func(c *config.Config) any { return c.Defaults.PageSize },
			set: func(c *config.Config, v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidPageSize, "invalid page size %q", v)
				}
				c.Defaults.PageSize = n
				return nil
			},
			writable: true,
		},
		"page_sizes": {
			get: func(c *config.Config) any { return c.PageSizes },
		},
		"session.ttl": {
			get: func(c *config.Config) any { return c.Session.TTL },
		},
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"name",
		"store.backend",
		"store.path",
		"defaults.priority",
		"defaults.sort",
		"defaults.direction",
		"defaults.page_size",
		"page_sizes",
		"session.ttl",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.Wrap(clierr.InvalidInput, err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"key": key, "value": acc.get(cfg)})
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []int:
		parts := make([]string, 0, len(v))
		for _, n := range v {
			parts = append(parts, strconv.Itoa(n))
		}
		return strings.Join(parts, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
