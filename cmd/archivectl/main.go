package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/track87/chaos-mesh-archive/sdk/config"
)

var (
	// Version information set at build time.
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfgFile string
	logMode string
	output  string
	cfg     *config.Config
	log     = ctrl.Log.WithName("archivectl")
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error(err, "command failed")
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "archivectl",
	Short: "Inspect chaos-mesh experiment archives",
	Long: `archivectl builds archive records of finished chaos-mesh experiments and
shows how the dashboard presents each experiment kind.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, config.WithLogMode(logMode))
		if err != nil {
			return err
		}
		cfg = loaded

		ctrl.SetLogger(zap.New(zap.UseDevMode(cfg.LogMode == "development")))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("archivectl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&logMode, "log-mode", "", "log mode (development, production)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "output format (table, json)")

	rootCmd.AddCommand(versionCmd)
}
