package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bloodcell/internal/api/rest"
)

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	var imagePath, annotatePath string

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a local smear image and print the /predict JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if imagePath == "" {
				return errors.New("--image is required")
			}

			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			imageData, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			rt, err := newRuntime(cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			analysis, err := rt.app.AnalysisService.Analyze(cmd.Context(), imageData)
			if err != nil {
				return err
			}

			if annotatePath != "" {
				annotated, err := rt.app.AnalysisService.Annotate(imageData, analysis)
				if err != nil {
					return fmt.Errorf("annotate: %w", err)
				}
				if err := os.WriteFile(annotatePath, annotated, 0o644); err != nil {
					return fmt.Errorf("write annotated image: %w", err)
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rest.NewPredictResponse(analysis))
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the image to analyze")
	cmd.Flags().StringVar(&annotatePath, "annotate", "", "Write a JPEG with detection boxes to this path")
	return cmd
}
