// meshtool converts meshes and rewrites MJCF models through Blender.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/Faultbox/meshforge/internal/config"
	"github.com/Faultbox/meshforge/internal/logger"
	"github.com/Faultbox/meshforge/pkg/convert"
	"github.com/Faultbox/meshforge/pkg/mjcf"
	"github.com/Faultbox/meshforge/pkg/scene"
	"github.com/Faultbox/meshforge/pkg/scene/blender"
)

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "convert", "dae2stl":
		cmdConvert(args)
	case "mjcf":
		cmdMJCF(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - mesh conversion and MJCF rewriting through Blender

Usage:
  meshtool [global options] <command> [options]

Global options:
  -config <file>    Config file (default ./config.yaml or user config dir)
  -blender <path>   Blender executable
  -debug            Debug logging
  -log-file <file>  Also log to a rotating file

Commands:
  convert <dir>               Convert every .dae in dir to .stl next to it
  mjcf <model.xml> [out.xml]  Split OBJ mesh assets into per-object STL files
  config [-save f|-save-user] Print (and optionally save) the effective configuration

Examples:
  meshtool convert ./tiago/meshes
  meshtool -blender /opt/blender/blender mjcf kitchen.xml
  meshtool mjcf -ext .obj -relative kitchen.xml kitchen_stl.xml`)
}

// setup loads config and initializes logging.
func setup() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// openScene starts Blender and wraps it in a scene context.
func openScene(ctx context.Context, cfg *config.Config) (*scene.Context, func()) {
	sess, err := blender.Start(ctx, blender.Options{
		Executable:     cfg.Blender.Executable,
		Args:           cfg.Blender.Args,
		FactoryStartup: cfg.Blender.FactoryStartup,
	}, logger.Named("blender"))
	if err != nil {
		fail("starting blender", err)
	}
	closer := func() {
		if err := sess.Close(); err != nil {
			logger.Error("closing blender", zap.Error(err))
		}
	}
	return scene.NewContext(sess, logger.Named("scene")), closer
}

func fail(what string, err error) {
	logger.Error(what+" failed", zap.Error(err))
	logger.Sync()
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	from := fs.String("from", "", "Source extension (.dae or .obj)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool convert [-from .dae] <dir>")
		os.Exit(1)
	}

	cfg := setup()
	defer logger.Sync()
	if *from != "" {
		cfg.Convert.SourceExt = *from
		if err := cfg.Validate(); err != nil {
			fail("convert", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sc, closeScene := openScene(ctx, cfg)

	conv := convert.New(sc)
	conv.SourceExt = cfg.Convert.SourceExt
	conv.TargetExt = cfg.Convert.TargetExt

	written, err := conv.ConvertDir(fs.Arg(0))
	closeScene()
	if err != nil {
		fail("convert", err)
	}
	for _, path := range written {
		fmt.Println(path)
	}
	logger.Info("conversion finished",
		zap.String("dir", fs.Arg(0)),
		zap.Int("files", len(written)))
}

func cmdMJCF(args []string) {
	fs := flag.NewFlagSet("mjcf", flag.ExitOnError)
	var exts stringList
	fs.Var(&exts, "ext", "Only split meshes with this file extension (repeatable)")
	relative := fs.Bool("relative", false, "Write generated files relative to meshdir")
	indent := fs.Int("indent", -1, "Re-indent output with N spaces (0 keeps whitespace)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool mjcf [-ext .obj] [-relative] <model.xml> [out.xml]")
		os.Exit(1)
	}

	cfg := setup()
	defer logger.Sync()
	if len(exts) > 0 {
		cfg.MJCF.MeshExtensions = exts
	}
	if *relative {
		cfg.MJCF.RelativeFiles = true
	}
	if *indent >= 0 {
		cfg.MJCF.Indent = *indent
	}
	if err := cfg.Validate(); err != nil {
		fail("mjcf", err)
	}

	in := fs.Arg(0)
	out := cfg.MJCF.Output
	if fs.NArg() > 1 {
		out = fs.Arg(1)
	}
	if out == "" {
		out = in
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	sc, closeScene := openScene(ctx, cfg)

	b := mjcf.NewBuilder(sc)
	b.Options = mjcf.Options{
		Extensions:    cfg.MJCF.MeshExtensions,
		RelativeFiles: cfg.MJCF.RelativeFiles,
	}
	b.Indent = cfg.MJCF.Indent

	plan, err := b.Build(in, out)
	closeScene()
	if err != nil {
		fail("mjcf", err)
	}

	for _, m := range plan.Removed {
		fmt.Printf("%s -> %d meshes\n", m.Name, len(plan.Replacements(m.Name)))
	}
	logger.Info("mjcf rewritten",
		zap.String("path", out),
		zap.Int("removed", len(plan.Removed)),
		zap.Int("generated", len(plan.Generated())))
}

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	save := fs.String("save", "", "Also write the effective config to this file")
	saveUser := fs.Bool("save-user", false, "Also write the effective config to the user config dir")
	fs.Parse(args)

	cfg := setup()
	defer logger.Sync()
	if _, err := cfg.WriteTo(os.Stdout); err != nil {
		fail("config", err)
	}
	if *save != "" {
		if err := cfg.SaveTo(*save); err != nil {
			fail("config", err)
		}
		logger.Info("config saved", zap.String("path", *save))
	}
	if *saveUser {
		if err := cfg.Save(); err != nil {
			fail("config", err)
		}
		logger.Info("config saved", zap.String("dir", config.ConfigDir()))
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint(*s)
}

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
