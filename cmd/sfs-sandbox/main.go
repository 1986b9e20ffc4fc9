package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/sfs/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "sfs-sandbox",
	Short:   "Local Secure File Service compatible server",
	Long: `sfs-sandbox serves the Secure File Service REST API from a local
directory so the sfs client can be used without a remote deployment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if f, _ := cmd.Flags().GetString("config"); f != "" {
			files = append(files, f)
		}

		cfg, err := config.Load(files, cmd.Flags())
		if err != nil {
			return err
		}
		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./sandbox.yaml)")
	rootCmd.PersistentFlags().String("storage-path", "", "storage directory (default: ./sandbox-data, env: SFS_SANDBOX_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: SFS_SANDBOX_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
