package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "brandchat",
	Short: "Retrieval-augmented chat assistant for a retail brand",
	Long: `Brandchat answers shopper questions from a product catalog and, in
admin mode, answers questions about an uploaded PDF document using
retrieval-augmented generation. It runs as an interactive terminal
chat or as an HTTP server with a WebSocket chat endpoint.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "brandchat.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
