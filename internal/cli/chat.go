package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maintlog/backend/internal/assistant"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive terminal assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, asst, err := setup()
		if err != nil {
			return err
		}

		state := assistant.NewConversationState()
		fmt.Println("\nMaintenance Assistant (type 'exit' to quit)")

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}
			fmt.Println(asst.AnswerWithState(cmd.Context(), line, state))
		}
		return scanner.Err()
	},
}
