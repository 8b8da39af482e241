/*
Package cli provides helpers shared by the llmstxt commands.

Output Formatting:

Command results render as text, JSON or CSV. Results implementing Tabular
print as aligned columns in text mode and as rows in CSV mode:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, runs); err != nil {
		return err
	}

Errors:

UsageError, ConfigError and CommandError classify command failures;
ExitCode maps them to the process exit status.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
