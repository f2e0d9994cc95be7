package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "View and edit your profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile and hobbies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Profile.LoadProfile(cmd.Context()); err != nil {
			return err
		}
		p := app.Profile.Profile()
		if p.Name == "" {
			fmt.Println("name: (not set)")
		} else {
			fmt.Printf("name: %s\n", p.Name)
		}
		if p.Image != "" {
			fmt.Printf("image: %s\n", p.Image)
		}
		hobbies := app.Profile.Hobbies()
		if len(hobbies) == 0 {
			fmt.Println("hobbies: none")
			return nil
		}
		fmt.Println("hobbies:")
		for _, h := range hobbies {
			state := "paused"
			if h.Active {
				state = "active"
			}
			fmt.Printf("  %s (%s)\n", h.Name, state)
		}
		return nil
	},
}

var profileSetNameCmd = &cobra.Command{
	Use:   "set-name <name>",
	Short: "Set your display name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Profile.SetName(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("name set to %s\n", args[0])
		return nil
	},
}

var profileSetImageCmd = &cobra.Command{
	Use:   "set-image <url>",
	Short: "Set your profile image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Profile.SetImage(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("image updated")
		return nil
	},
}

var hobbyCmd = &cobra.Command{
	Use:   "hobby",
	Short: "Manage your hobbies",
}

var hobbyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your hobbies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Profile.LoadProfile(cmd.Context()); err != nil {
			return err
		}
		for _, h := range app.Profile.Hobbies() {
			mark := " "
			if h.Active {
				mark = "*"
			}
			fmt.Printf("%s %s\n", mark, h.Name)
		}
		return nil
	},
}

var hobbyAddCmd = &cobra.Command{
	Use:   "add <hobby>",
	Short: "Take up a hobby",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Profile.SetHobby(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("added %s\n", args[0])
		return nil
	},
}

var hobbyOnCmd = &cobra.Command{
	Use:   "on <hobby>",
	Short: "Mark a hobby active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Profile.SetHobbyActive(cmd.Context(), args[0])
	},
}

var hobbyOffCmd = &cobra.Command{
	Use:   "off <hobby>",
	Short: "Pause a hobby",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()
		return app.Profile.SetHobbyInactive(cmd.Context(), args[0])
	},
}

func init() {
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetNameCmd)
	profileCmd.AddCommand(profileSetImageCmd)
	hobbyCmd.AddCommand(hobbyListCmd)
	hobbyCmd.AddCommand(hobbyAddCmd)
	hobbyCmd.AddCommand(hobbyOnCmd)
	hobbyCmd.AddCommand(hobbyOffCmd)
}
