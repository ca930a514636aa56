package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/mpjhorner/specdash/internal/flow"
	"github.com/mpjhorner/specdash/internal/model"
	"github.com/mpjhorner/specdash/internal/project"
)

var detectFlow string

var detectCmd = &cobra.Command{
	Use:   "detect [path]",
	Short: "Show which flow the dashboard would use",
	Long: `Report the flow detected for a workspace, where its marker lives and
which other flows are present, without starting the dashboard.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func init() {
	detectCmd.Flags().StringVar(&detectFlow, "flow", "", "flow to check instead of detecting one")
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	root, err := workspaceRoot(args)
	if err != nil {
		return err
	}

	d, err := flow.Detect(root, detectFlow)
	if err != nil {
		return err
	}
	f := d.EffectiveFlow()

	if d.Detected {
		fmt.Printf("%s %s flow\n", successStyle.Render("✓"), boldStyle.Render(f.DisplayName()))
	} else {
		fmt.Printf("%s no flow marker found, showing %s guidance\n", warnStyle.Render("!"), f.DisplayName())
	}
	fmt.Printf("  %s %s\n", dimStyle.Render("marker:   "), flow.MarkerPath(root, f))
	fmt.Printf("  %s %s\n", dimStyle.Render("source:   "), d.Source)

	available := "none"
	if len(d.AvailableFlows) > 0 {
		available = strings.Join(lo.Map(d.AvailableFlows, func(f model.Flow, _ int) string {
			return string(f)
		}), ", ")
	}
	fmt.Printf("  %s %s\n", dimStyle.Render("available:"), available)

	if p := project.Resolve(root); p.Name != "" {
		fmt.Printf("  %s %s\n", dimStyle.Render("project:  "), p.Name)
	}
	if d.Warning != "" {
		fmt.Printf("\n%s %s\n", warnStyle.Render("!"), d.Warning)
	}
	return nil
}
