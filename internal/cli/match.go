package cli

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/countrymap/internal/core"
	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match ISO [NAME...]",
	Short: "Report which names are registered for a code",
	Example: `  countryctl match CAN Canada Kanada Mexico
  {"iso":"CAN","match_count":2,"matches":["Canada","Kanada"]}`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func runMatch(cmd *cobra.Command, args []string) error {
	req := core.MatchRequest{ISO: args[0], Countries: args[1:]}

	return withService(cmd.Context(), func(svc *core.Service) error {
		result, err := svc.MatchCountryNames(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("%s\n  cause: %w", core.FormatUserError(err), err)
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	})
}
