package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stepCmd = &cobra.Command{
	Use:   "step",
	Short: "Manage steps within a goal",
}

var stepListCmd = &cobra.Command{
	Use:   "list <goal-id>",
	Short: "List a goal's steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Milestone.LoadSteps(cmd.Context(), args[0]); err != nil {
			return err
		}
		printSteps(app.Milestone.Steps())
		return nil
	},
}

var stepAddCmd = &cobra.Command{
	Use:   "add <goal-id> <description>",
	Short: "Add a step to a goal",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		id, err := app.Milestone.AddStep(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("added step %s\n", id)
		return nil
	},
}

var stepDoneCmd = &cobra.Command{
	Use:   "done <goal-id> <step-id>",
	Short: "Mark a step complete",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		// Select the goal first so completion can roll up into goal state.
		if err := app.Milestone.LoadGoals(cmd.Context()); err != nil {
			return err
		}
		if err := app.Milestone.LoadGoal(cmd.Context(), args[0]); err != nil {
			return err
		}
		if err := app.Milestone.CompleteStep(cmd.Context(), args[1]); err != nil {
			return err
		}
		fmt.Printf("progress: %d%%\n", app.Milestone.Progress())
		if g := app.Milestone.CurrentGoal(); g != nil && g.Completed {
			fmt.Println("goal completed!")
		}
		return nil
	},
}

var stepRemoveCmd = &cobra.Command{
	Use:   "rm <goal-id> <step-id>",
	Short: "Remove a step from a goal",
	Args:  cobra.ExactArgs(2),
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
		if err := app.Milestone.RemoveStep(cmd.Context(), args[1]); err != nil {
			return err
		}
		fmt.Printf("removed step %s\n", args[1])
		return nil
	},
}

var stepGenerateCmd = &cobra.Command{
	Use:   "generate <goal-id>",
	Short: "Generate a starter plan for a goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		regen, _ := cmd.Flags().GetBool("replace")
		if regen {
			err = app.Milestone.RegenerateSteps(cmd.Context(), args[0])
		} else {
			err = app.Milestone.GenerateSteps(cmd.Context(), args[0])
		}
		if err != nil {
			return err
		}
		printSteps(app.Milestone.Steps())
		return nil
	},
	Args: cobra.ExactArgs(1),
}

func init() {
	stepGenerateCmd.Flags().Bool("replace", false, "discard existing steps and generate a fresh plan")
	stepCmd.AddCommand(stepListCmd)
	stepCmd.AddCommand(stepAddCmd)
	stepCmd.AddCommand(stepDoneCmd)
	stepCmd.AddCommand(stepRemoveCmd)
	stepCmd.AddCommand(stepGenerateCmd)
}
