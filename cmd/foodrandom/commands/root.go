package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "foodrandom",
	Short: "foodrandom - saved recipe box",
	Long:  `Stores recipes in a local SQLite database, imports recipe batches from S3, and displays saved recipes.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().String("sqlite-path", ".artifacts/recipes.db", "SQLite database path")
	rootCmd.PersistentFlags().String("fsm-db-path", ".artifacts/fsm", "FSM BoltDB path")
	rootCmd.PersistentFlags().String("s3-bucket", "foodrandom-recipes", "S3 bucket name")
	rootCmd.PersistentFlags().String("s3-region", "us-east-1", "S3 region")
	rootCmd.PersistentFlags().String("work-dir", "/tmp/foodrandom", "Directory for downloads and cached images")
	rootCmd.PersistentFlags().Int64("max-payload-size", 4*1024*1024, "Max batch document size in bytes")
	rootCmd.PersistentFlags().Int("max-batch-size", 500, "Max recipes per batch")
	rootCmd.PersistentFlags().Int("fsm-max-retries", 5, "Max retries per import state")

	viper.BindPFlag("sqlite-path", rootCmd.PersistentFlags().Lookup("sqlite-path"))
	viper.BindPFlag("fsm-db-path", rootCmd.PersistentFlags().Lookup("fsm-db-path"))
	viper.BindPFlag("s3-bucket", rootCmd.PersistentFlags().Lookup("s3-bucket"))
	viper.BindPFlag("s3-region", rootCmd.PersistentFlags().Lookup("s3-region"))
	viper.BindPFlag("work-dir", rootCmd.PersistentFlags().Lookup("work-dir"))
	viper.BindPFlag("max-payload-size", rootCmd.PersistentFlags().Lookup("max-payload-size"))
	viper.BindPFlag("max-batch-size", rootCmd.PersistentFlags().Lookup("max-batch-size"))
	viper.BindPFlag("fsm-max-retries", rootCmd.PersistentFlags().Lookup("fsm-max-retries"))
}
