package cmd

import (
	"github.com/chris-regnier/focusflow/internal/shell"
	"github.com/spf13/cobra"
)

func newInitShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init <shell>",
		Short: "Output shell integration script",
		Long: `Output shell integration script for eval.

Generates shell-specific initialization code that sets up:
- Shell completions
- Prompt hook exporting FOCUSFLOW_* status variables
- focusflow_prompt_info helper function

Supported shells: bash, zsh, fish`,
		Example: `  # Add to ~/.bashrc
  eval "$(focusflow init bash)"

  # Add to ~/.zshrc
  eval "$(focusflow init zsh)"

  # Add to ~/.config/fish/config.fish
  focusflow init fish | source`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: shell.Shells,
		RunE: func(cmd *cobra.Command, args []string) error {
			return shell.WriteInit(cmd.OutOrStdout(), args[0])
		},
	}
}
