// Command csidx-build reads an input file, builds a compressed succinct
// FM-index over it, and writes the result to a .csidx file.
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/Soham-Moholkar/csidx"
	"github.com/Soham-Moholkar/csidx/config"
)

func main() {
	app := &cli.App{
		Name:      "csidx-build",
		Usage:     "build a compressed succinct FM-index over a text file",
		ArgsUsage: "<input>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-sentinel",
				Usage: "do not append a sentinel byte even if the input's last byte isn't already strictly minimal",
			},
			&cli.BoolFlag{
				Name:  "stats",
				Usage: "print a build-statistics tree after building",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file (defaults to the built-in defaults)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output .csidx path (defaults to <input>.csidx)",
			},
		},
		Action: build,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "csidx-build: %v\n", err)
		os.Exit(1)
	}
}

func build(c *cli.Context) error {
	if c.NArg() < 1 {
		return cli.Exit("usage: csidx-build <input>", 1)
	}
	inputPath := c.Args().First()

	text, err := os.ReadFile(inputPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("reading %s: %v", inputPath, err), 1)
	}

	if !c.Bool("no-sentinel") {
		minimal := len(text) > 0
		for i := 0; minimal && i < len(text)-1; i++ {
			if text[i] <= text[len(text)-1] {
				minimal = false
			}
		}
		if !minimal {
			text = append(bytes.Clone(text), 0x00)
		}
	}

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	b, err := csidx.Build(text, cfg)
	if err != nil {
		return cli.Exit(fmt.Sprintf("building index: %v", err), 1)
	}

	outPath := c.String("output")
	if outPath == "" {
		outPath = inputPath + ".csidx"
	}
	if err := b.Save(outPath); err != nil {
		return cli.Exit(fmt.Sprintf("saving %s: %v", outPath, err), 1)
	}

	fmt.Printf("wrote %s (%d bytes indexed)\n", outPath, len(text))
	if c.Bool("stats") {
		stats := b.Stats()
		fmt.Printf("alphabet size: %d, learned occ: %v, veb layout: %v, build time: %s\n",
			stats.AlphabetSize, stats.LearnedOcc, stats.VEBLayout, stats.BuildDuration)
		stats.Sizes.Print(0)
	}
	return nil
}
