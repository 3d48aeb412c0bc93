package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/glucoscreen/internal/extract"
	"github.com/ZanzyTHEbar/glucoscreen/internal/locale"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract the fields of a lab report and assess them",
	Long:  "Reads page 1 of a PDF or plain text report, prints the extracted fields and, when all eight are present, the assessment.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}

		doc, err := extract.New().ExtractDocument(data)
		if err != nil {
			return err
		}
		if !doc.Complete() {
			if err := printJSON(cmd.OutOrStdout(), documentResponse{Document: doc}); err != nil {
				return err
			}
			return fmt.Errorf("report is missing %d fields: %v", len(doc.Missing), doc.Missing)
		}

		p, err := trainedPipeline(cmd.Context(), appConfig)
		if err != nil {
			return err
		}

		assessment, err := p.AssessExtracted(doc.Fields)
		if err != nil {
			return err
		}

		lang, _ := cmd.Flags().GetString("lang")
		catalog, err := locale.NewCatalog(appConfig.Locale.Default)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), documentResponse{
			Document: doc,
			Assessment: &assessmentResponse{
				Assessment: assessment,
				Verdict:    catalog.Resolve(lang, "").Verdict(true, assessment.AtRisk),
			},
		})
	},
}

func init() {
	extractCmd.Flags().String("lang", "", "Language of the verdict (default: locale.default)")
}
