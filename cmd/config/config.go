package configcmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/bjulian5/stackpr/internal/common"
	"github.com/bjulian5/stackpr/internal/config"
	"github.com/bjulian5/stackpr/internal/ui"
)

// Command prints the resolved settings
type Command struct {
	Settings *config.Settings
}

// Register registers the command with cobra
func (c *Command) Register(parent *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved settings",
		Long: `Show every setting with the value this repository resolves it to.

Settings come from, highest precedence first: flags, STACKPR_* environment
variables, .stackpr.yaml at the repository root, the user config file
($XDG_CONFIG_HOME/stackpr/config.yaml), and built-in defaults.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			clients, err := common.InitFromCommand(cmd)
			if err != nil {
				return err
			}
			c.Settings = clients.Settings
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context())
		},
	}
	parent.AddCommand(cmd)
}

// Run executes the command
func (c *Command) Run(ctx context.Context) error {
	entries := c.Settings.Entries()
	pairs := make([]ui.KeyValue, 0, len(entries))
	for _, e := range entries {
		pairs = append(pairs, ui.KeyValue{Key: e.Key, Value: e.Value})
	}
	ui.Print(ui.RenderBox("Settings", ui.RenderKeyValueList(pairs)))

	ui.Print("")
	if len(c.Settings.ConfigFiles) == 0 {
		ui.Print(ui.Dim("No config files found; using defaults"))
		return nil
	}
	ui.Print(ui.Dim("Read from:"))
	ui.Print(ui.RenderBulletList(c.Settings.ConfigFiles))
	return nil
}
