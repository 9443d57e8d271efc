package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nitrocart/dsrom/internal/dsslot/rom"
	"github.com/nitrocart/dsrom/pkg/romfile"
)

func setupCmd() *cobra.Command {
	var (
		arm7BIOSPath string
		directBoot   bool
		outPath      string
		dsi          bool
	)

	cmd := &cobra.Command{
		Use:   "setup <rom-file>",
		Short: "Transform a cartridge image's secure area and write the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := romfile.Load(args[0])
			if err != nil {
				return err
			}
			defer loaded.Close()

			model := rom.ModelDS
			if dsi {
				model = rom.ModelDSi
			}

			var opts []rom.Option
			opts = append(opts, rom.WithLogger(logger))
			if arm7BIOSPath != "" {
				bios, err := os.ReadFile(arm7BIOSPath)
				if err != nil {
					return fmt.Errorf("read ARM7 BIOS: %w", err)
				}
				opts = append(opts, rom.WithARM7BIOS(bios))
			}

			dev, err := rom.NewDevice(loaded.Contents, model, opts...)
			if err != nil {
				return err
			}

			if err := dev.Setup(directBoot); err != nil {
				return err
			}

			if outPath == "" {
				fmt.Println("setup applied (no output path given, result not written)")
				return nil
			}
			return writeContents(outPath, loaded.Contents)
		},
	}

	cmd.Flags().StringVar(&arm7BIOSPath, "arm7-bios", "", "ARM7 BIOS image used to derive the key schedule")
	cmd.Flags().BoolVar(&directBoot, "direct-boot", false, "decrypt for direct boot instead of re-encrypting for BIOS boot")
	cmd.Flags().StringVar(&outPath, "out", "", "path to write the transformed image to")
	cmd.Flags().BoolVar(&dsi, "dsi", false, "validate image size against the DSi address space instead of DS")

	return cmd
}

func writeContents(path string, c rom.Contents) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	const chunk = 1 << 20
	buf := make([]byte, chunk)
	for addr := 0; addr < c.Len(); addr += chunk {
		n := chunk
		if remaining := c.Len() - addr; n > remaining {
			n = remaining
		}
		c.ReadSlice(addr, buf[:n])
		if _, err := f.Write(buf[:n]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

