package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mwhitfield/alphascore/internal/modelconfig"
)

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect and validate scoring models",
	Long: `Lists, shows and validates scoring model definitions.

Models come from the model directory (MODEL_DIR), or the builtin
presets when that directory does not exist.

Subcommands:
  list      - list available models
  show      - show one model's components, bands and ratings
  validate  - validate a model file without running it

Example:
  go run ./cmd/alphascore models list
  go run ./cmd/alphascore models show quality-momentum
  go run ./cmd/alphascore models validate config/models/custom.yaml`,
}

var (
	modelsListCmd = &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE:  listModels,
	}

	modelsShowCmd = &cobra.Command{
		Use:   "show [model_id]",
		Short: "Show one model in detail",
		Args:  cobra.ExactArgs(1),
		RunE:  showModel,
	}

	modelsValidateCmd = &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a model file",
		Args:  cobra.ExactArgs(1),
		RunE:  validateModel,
	}
)

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsValidateCmd)
}

func listModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	models, err := loadModels(cfg)
	if err != nil {
		return err
	}

	PrintHeader("Available Models")

	columns := []string{"ID", "VERSION", "COMPONENTS", "RATINGS", "HASH"}
	widths := []int{20, 8, 10, 8, 12}
	PrintTableHeader(columns, widths)

	for _, m := range models {
		hash, err := modelconfig.Hash(m)
		if err != nil {
			return fmt.Errorf("hash model %s: %w", m.Meta.ModelID, err)
		}
		PrintTableRow([]string{
			m.Meta.ModelID,
			m.Meta.Version,
			strconv.Itoa(len(m.Components)),
			strconv.Itoa(len(m.Ratings)),
			hash[:12],
		}, widths)
	}

	fmt.Printf("\n%d models\n", len(models))
	return nil
}

func showModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	model, err := resolveModel(cfg, args[0])
	if err != nil {
		return err
	}

	PrintHeader(fmt.Sprintf("Model %s v%s", model.Meta.ModelID, model.Meta.Version))
	if model.Meta.Description != "" {
		fmt.Printf("  %s\n", model.Meta.Description)
		PrintSeparator()
	}

	for _, component := range model.Components {
		fmt.Printf("\n  %s (weight %.2f, max %.0f points)\n",
			component.Name, component.Weight, component.MaxPoints())
		for _, binding := range component.Bindings {
			fmt.Printf("    %s (%s)\n", binding.Feature, binding.Direction)
			for _, band := range binding.Bands {
				if band.UpperBound != nil {
					fmt.Printf("      < %-10g -> %g\n", *band.UpperBound, band.Points)
				} else {
					fmt.Printf("      otherwise    -> %g\n", band.Points)
				}
			}
		}
	}

	fmt.Println("\n  Ratings:")
	for _, rating := range model.Ratings {
		fmt.Printf("    >= %-5g %s\n", rating.Min, rating.Label)
	}

	for _, warning := range modelconfig.Warn(model) {
		fmt.Println()
		PrintWarning(fmt.Sprintf("%s: %s", warning.Code, warning.Message))
	}

	return nil
}

func validateModel(cmd *cobra.Command, args []string) error {
	path := args[0]

	model, _, err := modelconfig.Load(path)
	if err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return fmt.Errorf("model validation failed")
	}

	hash, err := modelconfig.Hash(model)
	if err != nil {
		return fmt.Errorf("hash model: %w", err)
	}

	PrintSuccess(fmt.Sprintf("%s is valid", path))
	PrintKeyValue("Model", model.Meta.ModelID, 10)
	PrintKeyValue("Version", model.Meta.Version, 10)
	PrintKeyValue("Components", len(model.Components), 10)
	PrintKeyValue("Hash", hash[:12], 10)

	for _, warning := range modelconfig.Warn(model) {
		PrintWarning(fmt.Sprintf("%s: %s", warning.Code, warning.Message))
	}

	return nil
}
