package main

import (
	"github.com/spf13/cobra"

	"mercator-hq/llmstxt/pkg/cli"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate shell completion script for llmstxt.

To load completions:

Bash:
  $ source <(llmstxt completion bash)
  # To load permanently:
  $ llmstxt completion bash > /etc/bash_completion.d/llmstxt

Zsh:
  $ llmstxt completion zsh > "${fpath[1]}/_llmstxt"
  $ compinit

Fish:
  $ llmstxt completion fish | source
  # To load permanently:
  $ llmstxt completion fish > ~/.config/fish/completions/llmstxt.fish

PowerShell:
  PS> llmstxt completion powershell | Out-String | Invoke-Expression
  # To load permanently, add to your PowerShell profile
`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletion(out)
		default:
			return cli.NewUsageError("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
