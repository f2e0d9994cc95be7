package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take the hobby-matching quiz",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := requireAuth()
		if err != nil {
			return err
		}
		defer app.Close()

		runner := app.Quiz
		if err := runner.LoadQuestions(cmd.Context()); err != nil {
			return err
		}
		if runner.Total() == 0 {
			return fmt.Errorf("no quiz questions available")
		}

		in := bufio.NewReader(os.Stdin)
		pos := 1
		for {
			q := runner.Current()
			if q == nil {
				break
			}
			fmt.Printf("\n[%d/%d] %s\n", pos, runner.Total(), q.Text)
			for i, opt := range q.Options {
				fmt.Printf("  %d) %s\n", i+1, opt)
			}
			fmt.Print("> ")
			line, err := in.ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return fmt.Errorf("quiz aborted: %w", err)
			}
			answer := resolveAnswer(q.Options, strings.TrimSpace(line))
			if answer == "" {
				fmt.Println("please pick an option or type an answer")
				continue
			}
			if err := runner.SubmitResponse(cmd.Context(), q.ID, answer); err != nil {
				return err
			}
			if !runner.Next() {
				break
			}
			pos++
		}

		match, err := runner.GenerateHobbyMatch(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("\nyour match: %s\n", match.Hobby)
		if err := app.Profile.SetHobby(cmd.Context(), match.Hobby); err != nil {
			fmt.Fprintf(os.Stderr, "could not add %s to your hobbies: %v\n", match.Hobby, err)
		} else {
			fmt.Printf("%s added to your hobbies\n", match.Hobby)
		}
		return nil
	},
}

// resolveAnswer interprets the input as a 1-based option index when it parses
// as one, otherwise as free text.
func resolveAnswer(options []string, input string) string {
	if input == "" {
		return ""
	}
	var n int
	if _, err := fmt.Sscanf(input, "%d", &n); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}
	return input
}
