package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/sfs"
	"github.com/sagarc03/sfs/clientcli"
)

var version = "dev"

// exitError carries a process exit status once the failure has already been
// rendered.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func newRootCmd() *cobra.Command {
	settings := viper.New()

	cmd := &cobra.Command{
		Use:     "sfs",
		Version: version,
		Short:   "Client for the Secure File Service",
		Long: `sfs uploads, downloads, deletes and lists files stored in a
Secure File Service, organized by organization and context.

Methods:
  put               zip --local-file-path and upload it as <name>.zip
  get               download <name> into --local-file-path
  delete            delete <name>
  list_files        list the files of a context
  file_most_recent  show the newest file of a context
  list_contexts     list contexts

Credentials and the service URL fall back to TOWER_USERNAME,
TOWER_PASSWORD and SFS_UPLOAD_URL.`,
		Example: `  sfs -o acme -c backups -l ./dump --url https://sfs.example.com
  sfs -m get -o acme -c backups -n acme_backups_1700000000 -l ./restore
  sfs -m file_most_recent -o acme -c backups --output json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSFS(cmd, settings)
		},
	}

	clientcli.BindFlags(cmd.Flags())
	bindSettings(settings, cmd.Flags())

	return cmd
}

func runSFS(cmd *cobra.Command, settings *viper.Viper) error {
	setupLogging(cmd.ErrOrStderr(), settings.GetString(keyEnv), settings.GetString(keyLogLevel))

	formatter, err := clientcli.NewFormatter(settings.GetString(keyOutput), settings.GetBool(keyQuiet))
	if err != nil {
		return err
	}

	op, result, err := run(cmd.Context(), cmd.Flags(), settings.GetDuration(keyTimeout))
	if err != nil {
		slog.Debug("operation failed", "method", op, "err", err)
		if ferr := formatter.FormatFailure(cmd.OutOrStdout(), sfs.FailureFrom(err)); ferr != nil {
			return fmt.Errorf("write failure: %w", ferr)
		}
		return &exitError{code: 1}
	}

	if err := formatter.FormatResult(cmd.OutOrStdout(), op, result); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}

func run(ctx context.Context, flags *pflag.FlagSet, timeout time.Duration) (sfs.Operation, *sfs.Result, error) {
	params := clientcli.Resolve(
		clientcli.ParamsFromEnv(os.LookupEnv),
		clientcli.ParamsFromFlags(flags),
	)
	slog.Debug("resolved parameters", "params", params)

	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("get working directory: %w", err)
	}

	inv, err := params.Invocation(time.Now(), cwd)
	if err != nil {
		return sfs.Operation(params.Method), nil, err
	}

	client, err := clientcli.New(clientcli.ConfigFromInvocation(inv), clientcli.WithTimeout(timeout))
	if err != nil {
		return inv.Operation, nil, err
	}

	result, err := sfs.NewExecutor(client, slog.Default()).Execute(ctx, inv)
	return inv.Operation, result, err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}
