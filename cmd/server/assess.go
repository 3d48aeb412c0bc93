package main

import (
	"github.com/spf13/cobra"

	"github.com/ZanzyTHEbar/glucoscreen/internal/locale"
	"github.com/ZanzyTHEbar/glucoscreen/internal/types"
)

// assessFlags maps each field to its command line flag
var assessFlags = [types.NumFeatures]string{
	types.Pregnancies:              "pregnancies",
	types.Glucose:                  "glucose",
	types.BloodPressure:            "blood-pressure",
	types.SkinThickness:            "skin-thickness",
	types.Insulin:                  "insulin",
	types.BMI:                      "bmi",
	types.DiabetesPedigreeFunction: "dpf",
	types.Age:                      "age",
}

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Assess one manually entered vector",
	Long:  "Trains the model on the configured dataset and scores one vector. Unset flags keep the form defaults.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var v types.FeatureVector
		for _, f := range types.Fields {
			val, err := cmd.Flags().GetFloat64(assessFlags[f])
			if err != nil {
				return err
			}
			v[f] = val
		}
		lang, _ := cmd.Flags().GetString("lang")

		p, err := trainedPipeline(cmd.Context(), appConfig)
		if err != nil {
			return err
		}

		assessment, err := p.AssessManual(v)
		if err != nil {
			return err
		}

		catalog, err := locale.NewCatalog(appConfig.Locale.Default)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), assessmentResponse{
			Assessment: assessment,
			Verdict:    catalog.Resolve(lang, "").Verdict(false, assessment.AtRisk),
		})
	},
}

func init() {
	for _, f := range types.Fields {
		assessCmd.Flags().Float64(assessFlags[f], types.DefaultVector[f], f.ReportLabel())
	}
	assessCmd.Flags().String("lang", "", "Language of the verdict (default: locale.default)")
}
