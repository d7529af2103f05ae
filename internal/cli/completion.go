package cli

import (
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// completionWriters generate the completion script of each supported shell.
var completionWriters = map[string]func(*cobra.Command, io.Writer) error{
	"bash": (*cobra.Command).GenBashCompletion,
	"zsh":  (*cobra.Command).GenZshCompletion,
	"fish": func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
}

func (c *CLI) completionCommand() *cobra.Command {
	shells := make([]string, 0, len(completionWriters))
	for name := range completionWriters {
		shells = append(shells, name)
	}
	slices.Sort(shells)

	return &cobra.Command{
		Use:   "completion bash|fish|zsh",
		Short: "Print a shell completion script",
		Example: `  source <(leveler completion bash)
  leveler completion zsh > "${fpath[1]}/_leveler"
  leveler completion fish > ~/.config/fish/completions/leveler.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             shells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionWriters[args[0]](cmd.Root(), c.Out)
		},
	}
}
