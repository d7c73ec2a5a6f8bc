package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/autospark/pkg/models"
)

// completeKinds completes the kind argument of add with each kind's description.
func completeKinds(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveDefault
	}
	var kinds []string
	for _, k := range models.KnownKinds() {
		if strings.HasPrefix(string(k.Kind), toComplete) {
			kinds = append(kinds, string(k.Kind)+"\t"+k.Description)
		}
	}
	return kinds, cobra.ShellCompDirectiveNoFileComp
}

// completeDirections completes the second argument of move.
func completeDirections(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 1 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"up", "down"}, cobra.ShellCompDirectiveNoFileComp
}
