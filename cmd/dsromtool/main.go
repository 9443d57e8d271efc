// Command dsromtool inspects and manipulates Nintendo DS cartridge
// images: dumping header fields, decoding icons, running the secure
// area setup transform, and printing the synthesized chip ID.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitrocart/dsrom/pkg/log"
)

var logger log.Logger = log.New()

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsromtool",
		Short: "Inspect and manipulate Nintendo DS cartridge images",
	}

	cmd.AddCommand(headerCmd())
	cmd.AddCommand(iconCmd())
	cmd.AddCommand(setupCmd())
	cmd.AddCommand(chipIDCmd())

	return cmd
}
