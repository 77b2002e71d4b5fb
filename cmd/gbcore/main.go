package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"
	"github.com/valerio/go-gbcore/gbcore"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Description = "A Game Boy (DMG) emulator core"
	app.Usage = "gbcore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.Uint64Flag{
			Name:  "instructions",
			Usage: "Maximum number of instructions to execute",
			Value: 10_000_000,
		},
		cli.BoolFlag{
			Name:  "header",
			Usage: "Print the cartridge header and exit",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	emu, err := gbcore.NewWithFile(romPath)
	if err != nil {
		return err
	}

	if c.Bool("header") {
		fmt.Print(emu.GetMMU().Cartridge().HeaderString())
		return nil
	}

	limit := c.Uint64("instructions")
	slog.Info("Starting emulation", "rom", romPath, "instruction_limit", limit)

	if err := emu.Run(limit); err != nil {
		slog.Error("Emulation stopped", "state", emu.DebugState())
		return err
	}

	slog.Info("Emulation finished", "state", emu.DebugState())
	if out := emu.SerialOutput(); out != "" {
		fmt.Print(out)
	}
	return nil
}
