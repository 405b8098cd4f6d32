package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/maltedev/price-registry-scraper/internal/models"
)

func init() {
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Lists the values accepted by the run filters.",
	Run: func(cmd *cobra.Command, args []string) {
		years := models.Years(time.Now())
		labels := make([]string, len(years))
		for i, y := range years {
			labels[i] = strconv.Itoa(y)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "view types:  %s, %s\n", models.ViewMonthly, models.ViewQuarterly)
		fmt.Fprintf(w, "monthly:     %s\n", strings.Join(models.Periods(models.ViewMonthly), ", "))
		fmt.Fprintf(w, "quarterly:   %s\n", strings.Join(models.Periods(models.ViewQuarterly), ", "))
		fmt.Fprintf(w, "years:       %s\n", strings.Join(labels, ", "))
		fmt.Fprintf(w, "regions:     %s\n", strings.Join(models.Regions, ", "))
		fmt.Fprintf(w, "sub-regions: %s (all), or any sub-region label shown by the site\n", models.SubRegionAll)
	},
}
