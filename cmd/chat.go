package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/urbanthreadz/brandchat/internal/auth"
	"github.com/urbanthreadz/brandchat/internal/rag"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant in the terminal",
	Long: `Starts an interactive chat session. Customer mode answers from the
product catalog; admin mode answers from the indexed document and
requires the admin key. Type /mode to switch modes and /exit to quit.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	index, err := openIndex(cfg, embedder)
	if err != nil {
		return err
	}
	assistant, err := buildAssistant(cfg, embedder, index)
	if err != nil {
		return err
	}

	authn := auth.NewStatic(cfg.AdminKey)
	session := rag.NewSession()

	if err := selectMode(session, authn); err != nil {
		return err
	}

	fmt.Println("Type your question, /mode to switch modes, /exit to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s] > ", session.Mode())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/exit", "/quit":
			return nil
		case "/mode":
			if err := selectMode(session, authn); err != nil {
				return err
			}
			continue
		}

		answer, err := assistant.Ask(context.Background(), session, line)
		if err != nil && answer == "" {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(answer)
		fmt.Println()
	}
	return scanner.Err()
}

// selectMode prompts for a mode and, for admin mode, the admin key.
// Switching modes starts a fresh conversation.
func selectMode(session *rag.Session, authn auth.Authenticator) error {
	modePrompt := promptui.Select{
		Label: "Select mode",
		Items: []string{"customer", "admin"},
	}
	_, modeStr, err := modePrompt.Run()
	if err != nil {
		return fmt.Errorf("mode selection: %w", err)
	}

	mode := rag.Mode(modeStr)
	if mode == rag.ModeAdmin && !session.Authenticated() {
		keyPrompt := promptui.Prompt{
			Label: "Admin key",
			Mask:  '*',
		}
		key, err := keyPrompt.Run()
		if err != nil {
			return fmt.Errorf("admin key: %w", err)
		}
		if !authn.Authenticate(key) {
			fmt.Fprintln(os.Stderr, "Invalid admin key; staying in customer mode.")
			session.SwitchMode(rag.ModeCustomer)
			return nil
		}
		session.SetAuthenticated(true)
	}

	session.SwitchMode(mode)
	return nil
}
