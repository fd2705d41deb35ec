// meshtool is a CLI utility for working with remastered SRM/TRM model files.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/remesh/internal/config"
	"github.com/Faultbox/remesh/internal/logger"
	"github.com/Faultbox/remesh/pkg/formats"
	"github.com/Faultbox/remesh/pkg/mesh"
	"github.com/Faultbox/remesh/pkg/texture"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	switch command {
	case "info":
		cmdInfo(cfg, args)
	case "convert":
		cmdConvert(cfg, args)
	case "verify":
		cmdVerify(cfg, args)
	case "textures", "tex":
		cmdTextures(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - Soul Reaver / Tomb Raider remaster model utility

Usage:
  meshtool [flags] <command> [options]

Commands:
  info <file>                          Show model information
  convert <in> <out> [-version V1-V3]  Decode and re-encode a model
  verify <file>                        Check an in-memory decode/encode round-trip
  textures <file> [-patch]             Resolve (and patch) sibling DDS textures

Examples:
  meshtool info RAZIEL.SRM
  meshtool convert RAZIEL.SRM RAZIEL2.SRM -version V2
  meshtool verify LARA.TRM
  meshtool textures RAZIEL.SRM -patch`)
}

func decodeOptions(cfg *config.Config) formats.DecodeOptions {
	return formats.DecodeOptions{
		Logger:         logger.Log,
		MaxPaddingScan: cfg.Decode.MaxPaddingScan,
	}
}

func cmdInfo(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file>")
		os.Exit(1)
	}

	d, variant, err := formats.DecodeFileWith(args[0], decodeOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:     %s\n", args[0])
	fmt.Printf("Format:   %s\n", variant)
	fmt.Printf("Magic:    %q\n", d.Magic)
	fmt.Printf("Vertices: %d\n", d.VertexCount())
	fmt.Printf("Faces:    %d\n", d.FaceCount())
	fmt.Printf("Bones:    %d\n", len(d.SkinGroups()))

	switch {
	case d.SRM != nil:
		fmt.Printf("Shaders:  %d\n", len(d.SRM.Shaders))
		fmt.Printf("Constant: %d\n", d.SRM.Constant)
	case d.SRM2 != nil:
		fmt.Printf("Version:  %d\n", d.SRM2.Version)
		fmt.Printf("Unknown:  %d floats, %d bytes\n", len(d.SRM2.UnknownFloats), len(d.SRM2.UnknownBytes))
	case d.TRM != nil:
		fmt.Printf("Shaders:  %d\n", len(d.TRM.Shaders))
		fmt.Printf("Padding:  %d + %d zero bytes\n", d.TRM.TexturePadding, d.TRM.FacePadding)
	}

	fmt.Println("Textures:")
	for i, name := range d.Textures {
		fmt.Printf("  [%d] %s\n", i, name)
	}
}

func cmdConvert(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	versionStr := fs.String("version", cfg.Export.Version, "Export version (V1, V2 or V3)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert <in> <out> [-version V1|V2|V3]")
		os.Exit(1)
	}

	version, err := formats.ParseExportVersion(*versionStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	d, variant, err := formats.DecodeFileWith(fs.Arg(0), decodeOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Log.Info("decoded model",
		zap.String("file", fs.Arg(0)),
		zap.Stringer("format", variant),
		zap.Int("vertices", d.VertexCount()))

	out, err := formats.EncodeModel(d, version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(fs.Arg(1), out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%d bytes, %s, textures tagged %s)\n",
		fs.Arg(1), len(out), version, version.PixelFormat())
}

func cmdVerify(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool verify <file>")
		os.Exit(1)
	}

	opts := decodeOptions(cfg)
	d, variant, err := formats.DecodeFileWith(args[0], opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var out []byte
	switch variant {
	case formats.VariantSRM:
		out, err = formats.EncodeSRM(d)
	case formats.VariantSRM2:
		out, err = formats.EncodeSRM2(d, d.SRM2.Version)
	default:
		out, err = formats.EncodeTRM(d)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Encode error: %v\n", err)
		os.Exit(1)
	}

	var again *mesh.Data
	switch variant {
	case formats.VariantSRM:
		again, err = formats.DecodeSRMWith(out, opts)
	case formats.VariantSRM2:
		again, err = formats.DecodeSRM2With(out, opts)
	default:
		again, err = formats.DecodeTRMWith(out, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Re-decode error: %v\n", err)
		os.Exit(1)
	}

	if again.VertexCount() != d.VertexCount() || again.FaceCount() != d.FaceCount() ||
		len(again.Textures) != len(d.Textures) {
		fmt.Fprintf(os.Stderr, "Round-trip mismatch: %d/%d vertices, %d/%d faces, %d/%d textures\n",
			again.VertexCount(), d.VertexCount(),
			again.FaceCount(), d.FaceCount(),
			len(again.Textures), len(d.Textures))
		os.Exit(1)
	}

	fmt.Printf("OK: %s round-trips (%s, %d bytes)\n", args[0], variant, len(out))
}

func cmdTextures(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	patch := fs.Bool("patch", false, "Patch DDS header flags in place")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool textures <file> [-patch]")
		os.Exit(1)
	}

	d, variant, err := formats.DecodeFileWith(fs.Arg(0), decodeOptions(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	dir := cfg.Textures.Dir
	if dir == "" {
		dir = texture.DirFor(fs.Arg(0))
	}
	doPatch := *patch && cfg.Textures.PatchFlags

	found := 0
	for _, name := range d.Textures {
		var paths []string
		if variant == formats.VariantTRM {
			if p := texture.ResolveTRM(dir, name); p != "" {
				paths = []string{p}
			}
		} else {
			paths = texture.ResolveSRM(dir, name).Paths()
		}

		if len(paths) == 0 {
			fmt.Printf("  %-32s (not found)\n", name)
			continue
		}
		for _, p := range paths {
			found++
			status := ""
			if doPatch {
				if err := texture.PatchFlags(p); err != nil {
					status = fmt.Sprintf(" patch failed: %v", err)
				} else {
					status = " patched"
				}
			}
			fmt.Printf("  %s%s\n", p, status)
		}
	}
	fmt.Printf("%d texture file(s) under %s\n", found, dir)
}
