/*
Package cli provides command-line helpers shared by the flowmaker commands.

Output Formatting:

Commands print results as text or JSON, selected with --output:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	formatter := cli.NewFormatter(format)
	if err := formatter.FormatTo(cmd.OutOrStdout(), result); err != nil {
		return err
	}

Results implementing Texter control their text rendering; a rendered
diagram prints as its bare graph text so it can be piped into a file.

Errors and Exit Codes:

ConfigError and config.ValidationError exit with ExitConfig, anything else
with ExitFailure. CompileErrorDetail prints a compile error with its line,
surrounding source and suggestion.

Progress Reporting:

Batch commands such as lint report progress on stderr:

	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "files")
	progress.Start(int64(len(files)))
	...
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
