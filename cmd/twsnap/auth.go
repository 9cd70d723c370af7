package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"twsnap/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Twitter API credentials",
	Long: `Manage stored Twitter API key sets securely.

Credentials are stored using:
  - System keychain (when available)
  - Environment variables (read-only fallback)

Each stored key set is a full OAuth 1.0a credential: consumer key,
consumer secret, access token and access token secret. Every key set
crawls in parallel with its own rate-limit budget.

Never share your credentials or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store a Twitter API key set securely",
	Long: `Store a Twitter API key set securely in the system keychain.

You will be prompted for:
  - A label for the key set (if not provided)
  - Consumer key and consumer secret
  - Access token and access token secret

To get these values:
1. Create an app in the Twitter developer portal
2. Open the app's "Keys and tokens" page
3. Generate a consumer key pair and an access token pair`,
	Example: `  # Interactive login
  twsnap auth login

  # Login with a label
  twsnap auth login research`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [label]",
	Short: "Remove a stored key set",
	Long: `Remove a stored Twitter API key set.

If no label is provided, you will be shown a list of stored key sets
to choose from.`,
	Example: `  # Interactive logout
  twsnap auth logout

  # Logout a specific key set
  twsnap auth logout research`,
	Args: cobra.MaximumNArgs(1),
	Run:  runLogout,
}

// listCmd represents the auth list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored key sets",
	Long:  `List all stored Twitter API key sets with sanitized credential information.`,
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(listCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to initialize credential manager:", err)
		os.Exit(1)
	}

	var label string
	if len(args) > 0 {
		label = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	if label == "" {
		fmt.Print("Key set label: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error: failed to read label:", err)
			os.Exit(1)
		}
		label = strings.TrimSpace(input)
	}

	if label == "" {
		fmt.Fprintln(os.Stderr, "Error: label is required")
		os.Exit(1)
	}

	// Check if the key set already exists
	if existing, _ := manager.Retrieve(label); existing != nil {
		fmt.Printf("\nKey set '%s' already exists. Update credentials? (y/N): ", label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return
		}
	}

	fmt.Println("\nEnter your API keys (they will be hidden as you type):")
	fmt.Println()

	fmt.Print("Consumer key: ")
	consumerKey, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to read consumer key:", err)
		os.Exit(1)
	}

	fmt.Print("Consumer secret: ")
	consumerSecret, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to read consumer secret:", err)
		os.Exit(1)
	}

	fmt.Print("Access token: ")
	accessToken, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to read access token:", err)
		os.Exit(1)
	}

	fmt.Print("Access token secret: ")
	accessTokenSecret, err := readPassword()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to read access token secret:", err)
		os.Exit(1)
	}

	account := &auth.Account{
		Label:             label,
		ConsumerKey:       consumerKey,
		ConsumerSecret:    consumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessTokenSecret,
		LastModified:      time.Now(),
	}

	fmt.Println("\nStoring credentials securely...")
	if err := manager.Store(account); err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to store credentials:", err)
		os.Exit(1)
	}

	fmt.Printf("\nKey set saved: %s\n", label)
	fmt.Println("\nStart a snapshot run with:")
	fmt.Println("  twsnap run --users <user_id>[,<user_id>...]")
	fmt.Printf("\nUse this key set exclusively:\n")
	fmt.Printf("  twsnap run --users <user_id> --account %s\n", label)
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to initialize credential manager:", err)
		os.Exit(1)
	}

	if len(args) == 0 {
		accounts, err := manager.List()
		if err != nil || len(accounts) == 0 {
			fmt.Fprintln(os.Stderr, "No stored key sets found")
			return
		}

		if len(accounts) == 1 {
			account := accounts[0]
			reader := bufio.NewReader(os.Stdin)
			fmt.Printf("Remove key set '%s'? (y/N): ", account.Label)
			input, _ := reader.ReadString('\n')
			if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
				return
			}

			if err := manager.Delete(account.Label); err != nil {
				fmt.Fprintln(os.Stderr, "Error: failed to remove key set:", err)
				os.Exit(1)
			}
			fmt.Println("Key set removed:", account.Label)
			return
		}

		// Multiple key sets, show menu
		fmt.Println("Select key set to remove:")
		for i, account := range accounts {
			fmt.Printf("  %d. %s\n", i+1, account.Label)
		}
		fmt.Printf("  0. Cancel\n\n")

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Choice: ")
		input, _ := reader.ReadString('\n')

		var choice int
		fmt.Sscanf(strings.TrimSpace(input), "%d", &choice)

		if choice < 1 || choice > len(accounts) {
			return
		}

		account := accounts[choice-1]
		if err := manager.Delete(account.Label); err != nil {
			fmt.Fprintln(os.Stderr, "Error: failed to remove key set:", err)
			os.Exit(1)
		}
		fmt.Println("Key set removed:", account.Label)
		return
	}

	label := args[0]
	if err := manager.Delete(label); err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to remove key set:", err)
		os.Exit(1)
	}
	fmt.Println("Key set removed:", label)
}

func runList(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to initialize credential manager:", err)
		os.Exit(1)
	}

	accounts, err := manager.List()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: failed to list key sets:", err)
		os.Exit(1)
	}

	if len(accounts) == 0 {
		fmt.Println("No stored key sets. Use 'twsnap auth login' to add one.")
		return
	}

	fmt.Println("Stored key sets:")
	fmt.Println()

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. Label: %s\n", i+1, sanitized.Label)
		fmt.Printf("   Consumer Key: %s\n", sanitized.ConsumerKey)
		fmt.Printf("   Access Token: %s\n", sanitized.AccessToken)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}
}

// readPassword reads a secret from stdin without echoing
func readPassword() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
