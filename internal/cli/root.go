package cli

import (
	"github.com/spf13/cobra"

	"bloodcell/config"
)

var version = "dev"

// Execute собирает дерево команд и запускает CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "bloodcell",
		Short:         "Blood smear cell counter backed by a YOLO detector",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("bloodcell version {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.ConfigPath, "config", config.DefaultConfigPath, "Path to bloodcell.yml (optional)")
	flags.StringVar(&opts.ModelPath, "model", "", "Path to the ONNX model")
	flags.StringVar(&opts.LabelsPath, "labels", "", "Path to the model data.yaml with class names")
	flags.Float32Var(&opts.Confidence, "conf", 0, "Minimum detection confidence")
	flags.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newAnalyzeCmd(opts),
	)

	return rootCmd
}

type rootOptions struct {
	ConfigPath string
	ModelPath  string
	LabelsPath string
	Confidence float32
	LogLevel   string
}
