package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/salesdash/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╔═╗┌─┐┬  ┌─┐┌─┐╔╦╗┌─┐┌─┐┬ ┬
  ╚═╗├─┤│  ├┤ └─┐ ║║├─┤└─┐├─┤
  ╚═╝┴ ┴┴─┘└─┘└─┘═╩╝┴ ┴└─┘┴ ┴
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.Print(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "salesdash",
		Short: "Sales admin dashboard for the CRM API",
		Long: `salesdash serves the sales admin dashboard.

Pages are rendered on the server and kept live over a WebSocket.
Every figure comes from the remote CRM API:

  • Summary of daily, monthly and yearly transactions
  • Customer list with create, detail and edit panels
  • Transaction list and invoices
  • Profile and password change`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		serveCmd(),
		configCmd(),
		versionCmd(),
	)
	return root
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
