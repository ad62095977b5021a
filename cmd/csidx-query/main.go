// Command csidx-query opens a built .csidx file and answers count,
// locate, and extract queries against it from the command line.
package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/Soham-Moholkar/csidx"
)

func main() {
	app := &cli.App{
		Name:  "csidx-query",
		Usage: "query a compressed succinct FM-index",
		Commands: []*cli.Command{
			{
				Name:      "count",
				Usage:     "count occurrences of a pattern",
				ArgsUsage: "<index.csidx> <pattern>",
				Action:    countCommand,
			},
			{
				Name:      "locate",
				Usage:     "list occurrence positions of a pattern",
				ArgsUsage: "<index.csidx> <pattern>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "maximum number of positions to return",
						Value: 100,
					},
				},
				Action: locateCommand,
			},
			{
				Name:      "extract",
				Usage:     "print text[pos:pos+length)",
				ArgsUsage: "<index.csidx> <pos> <length>",
				Action:    extractCommand,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "csidx-query: %v\n", err)
		os.Exit(1)
	}
}

func openIndex(c *cli.Context, minArgs int) (*csidx.Index, []string, error) {
	if c.NArg() < minArgs {
		return nil, nil, cli.Exit(fmt.Sprintf("usage: csidx-query %s %s", c.Command.Name, c.Command.ArgsUsage), 1)
	}
	idx, err := csidx.Open(c.Args().Get(0))
	if err != nil {
		return nil, nil, cli.Exit(err.Error(), 1)
	}
	return idx, c.Args().Slice()[1:], nil
}

func countCommand(c *cli.Context) error {
	idx, rest, err := openIndex(c, 2)
	if err != nil {
		return err
	}
	defer idx.Close()
	fmt.Println(idx.Count([]byte(rest[0])))
	return nil
}

func locateCommand(c *cli.Context) error {
	idx, rest, err := openIndex(c, 2)
	if err != nil {
		return err
	}
	defer idx.Close()
	positions, err := idx.Locate([]byte(rest[0]), c.Int("limit"))
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })
	for _, p := range positions {
		fmt.Println(p)
	}
	return nil
}

func extractCommand(c *cli.Context) error {
	idx, rest, err := openIndex(c, 3)
	if err != nil {
		return err
	}
	defer idx.Close()
	pos, err := strconv.ParseUint(rest[0], 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid pos %q: %v", rest[0], err), 1)
	}
	length, err := strconv.ParseUint(rest[1], 10, 64)
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid length %q: %v", rest[1], err), 1)
	}
	data, err := idx.Extract(pos, length)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	os.Stdout.Write(data)
	fmt.Println()
	return nil
}
