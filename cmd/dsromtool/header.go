package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nitrocart/dsrom/internal/dsslot/rom"
	"github.com/nitrocart/dsrom/pkg/romfile"
)

func headerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "header <rom-file>",
		Short: "Print the cartridge header fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := romfile.Load(args[0])
			if err != nil {
				return err
			}
			defer loaded.Close()

			var header [rom.HeaderSize]byte
			loaded.Contents.ReadHeader(header[:])

			fmt.Printf("Game code:   %08X\n", loaded.Contents.GameCode())
			fmt.Printf("Image size:  %d bytes\n", loaded.Contents.Len())
			fmt.Printf("Icon offset: %08X\n", rom.HeaderIconTitleOffset(header[:]))
			fmt.Printf("Fingerprint: %016X\n", loaded.Fingerprint)
			return nil
		},
	}
}
