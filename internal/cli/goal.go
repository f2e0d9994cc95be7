package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hobbysprout/sprout/internal/milestone"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage milestone goals",
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your goals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Milestone.LoadGoals(cmd.Context()); err != nil {
			return err
		}
		goals := app.Milestone.Goals()
		if len(goals) == 0 {
			fmt.Println("no goals yet; create one with `sprout goal create`")
			return nil
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tHOBBY\tSTATUS\tDESCRIPTION")
		for _, g := range goals {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.ID, g.Hobby, goalStatus(g), g.Description)
		}
		return w.Flush()
	},
}

var goalCreateCmd = &cobra.Command{
	Use:   "create <hobby> <description>",
	Short: "Create a goal for a hobby",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		g, err := app.Milestone.CreateGoal(cmd.Context(), args[1], args[0])
		if err != nil {
			return err
		}
		fmt.Printf("created goal %s\n", g.ID)
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show a goal and its steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Milestone.LoadGoals(cmd.Context()); err != nil {
			return err
		}
		if err := app.Milestone.LoadGoal(cmd.Context(), args[0]); err != nil {
			return err
		}
		g := app.Milestone.CurrentGoal()
		if g == nil {
			return fmt.Errorf("goal %s not found", args[0])
		}
		fmt.Printf("%s (%s, %s)\n", g.Description, g.Hobby, goalStatus(*g))
		printSteps(app.Milestone.Steps())
		fmt.Printf("progress: %d%%\n", app.Milestone.Progress())
		return nil
	},
}

var goalCloseCmd = &cobra.Command{
	Use:   "close <goal-id>",
	Short: "Retire a goal without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Milestone.CloseGoal(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("closed goal %s\n", args[0])
		return nil
	},
}

func goalStatus(g milestone.Goal) string {
	switch {
	case g.Completed:
		return "completed"
	case g.IsActive:
		return "active"
	default:
		return "closed"
	}
}

func printSteps(steps []milestone.Step) {
	if len(steps) == 0 {
		fmt.Println("  (no steps)")
		return
	}
	for _, st := range steps {
		mark := " "
		if st.IsComplete {
			mark = "x"
		}
		fmt.Printf("  [%s] %s  %s\n", mark, st.ID, st.Description)
	}
}

func init() {
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalCreateCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalCloseCmd)
}
