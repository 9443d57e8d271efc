package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitrocart/dsrom/internal/dsslot/rom"
	"github.com/nitrocart/dsrom/pkg/romfile"
)

func chipIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chipid <rom-file>",
		Short: "Print the synthesized chip ID for a cartridge image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := romfile.Load(args[0])
			if err != nil {
				return err
			}
			defer loaded.Close()

			fmt.Printf("%08X\n", rom.ChipID(int64(loaded.Contents.Len())))
			return nil
		},
	}
}
