// Package app hosts the interactive chat session.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/manifoldco/promptui"

	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/conversation"
	"github.com/MohamedAlturfiSVG/ezbedrock-go/pkg/message"
)

// SlashCommand represents a command that starts with /
type SlashCommand struct {
	Name        string
	Description string
	Handler     func(*conversation.Conversation) bool // Returns true if should exit
}

// getSlashCommands returns all available slash commands
func getSlashCommands() []SlashCommand {
	return []SlashCommand{
		{
			Name:        "help",
			Description: "Show available commands and usage information",
			Handler: func(c *conversation.Conversation) bool {
				showInteractiveHelp()
				return false
			},
		},
		{
			Name:        "history",
			Description: "Show the full conversation history (never compacted)",
			Handler: func(c *conversation.Conversation) bool {
				printHistory(c.FullHistory())
				return false
			},
		},
		{
			Name:        "context",
			Description: "Show the active context window and its token estimate",
			Handler: func(c *conversation.Conversation) bool {
				printHistory(c.History())
				fmt.Printf("\n📊 Estimated context usage: %d tokens\n", c.CurrentUsage())
				return false
			},
		},
		{
			Name:        "clear",
			Description: "Clear conversation history and start fresh",
			Handler: func(c *conversation.Conversation) bool {
				c.Clear()
				fmt.Println("🧹 Conversation history cleared.")
				return false
			},
		},
		{
			Name:        "quit",
			Description: "Exit the chat session",
			Handler: func(c *conversation.Conversation) bool {
				fmt.Println("👋 Goodbye!")
				return true
			},
		},
		{
			Name:        "exit",
			Description: "Exit the chat session (alias for quit)",
			Handler: func(c *conversation.Conversation) bool {
				fmt.Println("👋 Goodbye!")
				return true
			},
		},
	}
}

// handleSlashCommand processes commands that start with /
// Returns true if the command requests program exit, false otherwise
func handleSlashCommand(input string, c *conversation.Conversation) bool {
	// Just "/" shows the interactive command selector
	if strings.TrimSpace(input) == "/" {
		return showCommandSelector(c)
	}

	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false
	}

	commandName := strings.TrimPrefix(parts[0], "/")
	commands := getSlashCommands()

	for _, cmd := range commands {
		if cmd.Name == commandName {
			return cmd.Handler(c)
		}
	}

	fmt.Printf("❌ Unknown command: /%s\n", commandName)
	fmt.Println("💡 Available commands:")
	for _, cmd := range commands {
		fmt.Printf("  /%s - %s\n", cmd.Name, cmd.Description)
	}
	return false
}

// showCommandSelector shows an interactive command selector using promptui
func showCommandSelector(c *conversation.Conversation) bool {
	commands := getSlashCommands()

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}?",
		Active:   "▸ {{ .Name | cyan }} - {{ .Description | faint }}",
		Inactive: "  {{ .Name | cyan }} - {{ .Description | faint }}",
		Selected: "{{ .Name | red | cyan }}",
	}

	searcher := func(input string, index int) bool {
		name := strings.ReplaceAll(strings.ToLower(commands[index].Name), " ", "")
		input = strings.ReplaceAll(strings.ToLower(input), " ", "")
		return strings.Contains(name, input)
	}

	prompt := promptui.Select{
		Label:     "Choose a command",
		Items:     commands,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	i, _, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			fmt.Println("\nCancelled.")
			return false
		}
		fmt.Printf("Command selection failed: %v\n", err)
		return false
	}
	return commands[i].Handler(c)
}

// StartChat runs the readline-based chat loop over a conversation session.
func StartChat(ctx context.Context, conv *conversation.Conversation, modelID string) {
	rlCfg := &readline.Config{
		Prompt:            "> ",
		HistoryFile:       "/tmp/ezbedrock_history",
		AutoComplete:      createAutoCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
		FuncFilterInputRune: filterInput,
	}

	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		fmt.Printf("❌ Failed to initialize interactive mode: %v\n", err)
		fmt.Println("💡 Please use one-shot mode instead: ezbedrock \"your prompt here\"")
		return
	}
	defer rl.Close()

	fmt.Println("\n🚀 Welcome to ezbedrock chat!")
	fmt.Printf("🧠 Model: %s\n", modelID)
	fmt.Println("💬 Commands start with '/', everything else goes to the model.")
	fmt.Println(strings.Repeat("=", 60))

	for {
		fmt.Print("\n")
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		userInput := strings.TrimSpace(line)
		if userInput == "" {
			continue
		}

		if strings.HasPrefix(userInput, "/") {
			if handleSlashCommand(userInput, conv) {
				break
			}
			continue
		}

		// Allow Ctrl+C to cancel the in-flight request without quitting.
		execCtx, cancel := context.WithCancel(ctx)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT)
		go func() {
			select {
			case <-sigChan:
				fmt.Println()
				cancel()
			case <-execCtx.Done():
			}
		}()

		reply, sendErr := conv.Send(execCtx, userInput, nil)

		wasCanceled := execCtx.Err() == context.Canceled
		signal.Stop(sigChan)
		close(sigChan)
		cancel()

		if sendErr != nil {
			if wasCanceled {
				fmt.Println("🔄 Ready for next message.")
			} else {
				fmt.Printf("❌ Error: %v\n", sendErr)
			}
			continue
		}

		fmt.Printf("🤖 %s\n", reply)
	}
}

func printHistory(turns []message.Turn) {
	if len(turns) == 0 {
		fmt.Println("📜 No conversation history found.")
		return
	}
	for _, t := range turns {
		switch t.Role {
		case message.RoleUser:
			fmt.Printf("👤 You: %s\n", t.Content)
		case message.RoleAssistant:
			fmt.Printf("🤖 Assistant: %s\n", t.Content)
		case message.RoleSummary:
			fmt.Printf("📝 %s\n", t.Content)
		case message.RoleSystem:
			fmt.Printf("⚙️  System: %s\n", t.Content)
		}
	}
}

// createAutoCompleter creates an autocompletion function for readline
func createAutoCompleter() *readline.PrefixCompleter {
	commands := getSlashCommands()
	var pcItems []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		pcItems = append(pcItems, readline.PcItem("/"+cmd.Name))
	}
	pcItems = append(pcItems, readline.PcItem("/"))
	return readline.NewPrefixCompleter(pcItems...)
}

// filterInput filters input runes to handle special keys
func filterInput(r rune) (rune, bool) {
	switch r {
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showInteractiveHelp() {
	commands := getSlashCommands()
	fmt.Println("\n📚 Chat Commands:")
	fmt.Println("  /                - Show interactive command selector")
	for _, cmd := range commands {
		fmt.Printf("  /%-15s - %s\n", cmd.Name, cmd.Description)
	}
	fmt.Println("\n⌨️  Ctrl+C cancels an in-flight request; Ctrl+D exits.")
	fmt.Println("💡 Old turns are summarized automatically when the context budget fills up.")
}
