package main

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.design/x/clipboard"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"

	"github.com/nitrocart/dsrom/internal/dsslot/rom"
	"github.com/nitrocart/dsrom/pkg/romfile"
)

func iconCmd() *cobra.Command {
	var (
		outPath string
		scale   int
		clip    bool
	)

	cmd := &cobra.Command{
		Use:   "icon <rom-file>",
		Short: "Decode a cartridge's icon and write it as an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := romfile.Load(args[0])
			if err != nil {
				return err
			}
			defer loaded.Close()

			pixels, ok := rom.DecodeIconFromHeader(loaded.Contents)
			if !ok {
				return fmt.Errorf("icon resource is out of range for this image")
			}

			img := image.NewNRGBA(image.Rect(0, 0, rom.IconWidth, rom.IconHeight))
			for y := 0; y < rom.IconHeight; y++ {
				for x := 0; x < rom.IconWidth; x++ {
					p := pixels[y*rom.IconWidth+x]
					img.Set(x, y, color.NRGBA{
						R: byte(p),
						G: byte(p >> 8),
						B: byte(p >> 16),
						A: byte(p >> 24),
					})
				}
			}

			out := image.Image(img)
			if scale > 1 {
				scaled := image.NewNRGBA(image.Rect(0, 0, rom.IconWidth*scale, rom.IconHeight*scale))
				xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
				out = scaled
			}

			if clip {
				if err := writeToClipboard(out); err != nil {
					return fmt.Errorf("copy icon to clipboard: %w", err)
				}
				fmt.Println("icon copied to clipboard")
			}

			if outPath == "" {
				return nil
			}
			return writeImageFile(outPath, out)
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "path to write the decoded icon to (.png or .bmp)")
	cmd.Flags().IntVar(&scale, "scale", 1, "integer upscale factor applied before writing/copying")
	cmd.Flags().BoolVar(&clip, "clipboard", false, "copy the decoded icon to the system clipboard")

	return cmd
}

func writeImageFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	switch filepath.Ext(path) {
	case ".bmp":
		return bmp.Encode(f, img)
	default:
		return encodePNG(f, img)
	}
}

func encodePNG(w *os.File, img image.Image) error {
	return png.Encode(w, img)
}

func writeToClipboard(img image.Image) error {
	if err := clipboard.Init(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	return nil
}
