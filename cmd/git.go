package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mpjhorner/specdash/internal/git"
	"github.com/mpjhorner/specdash/internal/render"
)

var (
	gitDiff    bool
	gitCommits int
)

var gitCmd = &cobra.Command{
	Use:   "git [path]",
	Short: "Show the git changes the dashboard sees",
	Long: `Print the branch, the changed files per bucket and the most recent
commits of the repository containing path. With --diff every change is
followed by its diff.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGit,
}

func init() {
	gitCmd.Flags().BoolVar(&gitDiff, "diff", false, "print the diff of every change")
	gitCmd.Flags().IntVarP(&gitCommits, "commits", "n", 5, "number of recent commits to show")
	rootCmd.AddCommand(gitCmd)
}

func runGit(cmd *cobra.Command, args []string) error {
	root, err := workspaceRoot(args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	cs := git.Collect(ctx, root)
	if !cs.Available {
		fmt.Printf("%s git unavailable: %s\n", warnStyle.Render("!"), cs.Error)
		return nil
	}

	branch := cs.Branch
	if cs.Upstream != "" {
		branch += dimStyle.Render(fmt.Sprintf(" -> %s (+%d/-%d)", cs.Upstream, cs.Ahead, cs.Behind))
	}
	fmt.Printf("%s %s\n", boldStyle.Render("Branch:"), branch)
	if !git.IsRepo(root) {
		fmt.Printf("%s %s\n", boldStyle.Render("Root:  "), cs.Root)
	}

	if cs.Clean {
		fmt.Printf("%s working tree clean\n", successStyle.Render("✓"))
	} else {
		fmt.Printf("%s %d changed files\n", warnStyle.Render("!"), cs.Counts.Total)
	}

	for _, b := range git.Buckets() {
		files := cs.Files(b)
		if len(files) == 0 {
			continue
		}
		fmt.Printf("\n%s\n", boldStyle.Render(fmt.Sprintf("%s (%d)", b, len(files))))
		for _, fc := range files {
			fmt.Printf("  %s %s\n", dimStyle.Render(fc.Code), fc.RelativePath)
			if !gitDiff {
				continue
			}
			diff, err := git.Diff(ctx, cs, fc, b)
			if err != nil {
				fmt.Printf("    %s %v\n", errorStyle.Render("✗"), err)
				continue
			}
			for _, line := range render.HighlightDiff(diff) {
				fmt.Println("    " + line)
			}
		}
	}

	if gitCommits > 0 {
		commits, err := git.GetRecentCommits(ctx, cs.Root, gitCommits)
		if err == nil && len(commits) > 0 {
			fmt.Printf("\n%s\n", boldStyle.Render("Recent commits"))
			fmt.Println("  " + strings.Join(commits, "\n  "))
		}
	}
	return nil
}
