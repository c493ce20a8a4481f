package cli

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/countrymap/internal/core"
	"github.com/JonMunkholm/countrymap/internal/fixture"
	"github.com/spf13/cobra"
)

var importJSON bool

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Merge codes and names from a JSON or YAML file",
	Long: `Reads a list of {iso, names} entries and merges them into the registry.
The format follows the extension: .json, .yaml or .yml.

Existing codes and names are kept; a name already registered under any
code is skipped. The whole file is applied in one transaction.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importJSON, "json", false, "print the created rows as JSON")
}

func runImport(cmd *cobra.Command, args []string) error {
	entries, err := fixture.Load(args[0])
	if err != nil {
		return err
	}

	return withService(cmd.Context(), func(svc *core.Service) error {
		result, err := svc.MergeCountries(cmd.Context(), entries)
		if err != nil {
			return fmt.Errorf("%s\n  cause: %w", core.FormatUserError(err), err)
		}
		return printMergeResult(cmd, result)
	})
}

func printMergeResult(cmd *cobra.Command, result *core.MergeResult) error {
	out := cmd.OutOrStdout()
	if importJSON {
		if result == nil {
			result = &core.MergeResult{Codes: []core.CountryCode{}, Names: []core.CountryName{}}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if result == nil {
		fmt.Fprintln(out, "nothing new")
		return nil
	}
	fmt.Fprintf(out, "created %d codes and %d names\n", len(result.Codes), len(result.Names))
	return nil
}
