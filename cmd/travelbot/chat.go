package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mansiraturi/travelbot/pkg/travelbot"
)

// chatCmd represents the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Plan a trip interactively in the terminal",
	Long: `Starts a terminal conversation with the planner. Type your trip request,
answer the follow-up questions, and the finished itinerary prints when
the conversation completes. Pass --conversation to resume one that was
interrupted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		logger := newLogger(cmd, cfg)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		orch, cleanup, err := buildOrchestrator(ctx, cfg, logger)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()

		conversationID, _ := cmd.Flags().GetString("conversation")

		if err := runChat(ctx, orch, conversationID); err != nil && !errors.Is(err, context.Canceled) {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringP("conversation", "c", "", "Conversation ID to resume")
}

func runChat(ctx context.Context, orch *travelbot.Orchestrator, conversationID string) error {
	// Resuming: an empty message re-delivers the pending question
	// without advancing anything.
	if conversationID != "" {
		res, err := orch.Step(ctx, conversationID, "")
		if err != nil {
			return err
		}
		if done := printResult(res); done {
			return nil
		}
	} else {
		fmt.Println("Where would you like to go? (exit to quit)")
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(color.GreenString("you> "))
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "exit" || message == "quit" {
			break
		}
		if message == "" && conversationID == "" {
			continue
		}

		res, err := orch.Step(ctx, conversationID, message)
		if err != nil {
			return err
		}
		conversationID = res.ConversationID

		if done := printResult(res); done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if conversationID != "" {
		fmt.Printf("Resume later with: travelbot chat --conversation %s\n", conversationID)
	}
	return nil
}

// printResult relays the step outcome and reports whether the
// conversation finished.
func printResult(res *travelbot.StepResult) bool {
	if res.Done {
		fmt.Println(color.CyanString("travelbot> ") + "Here is your plan:")
		fmt.Println()
		fmt.Println(res.Itinerary.Render())
		return true
	}
	fmt.Println(color.CyanString("travelbot> ") + res.Prompt)
	return false
}
