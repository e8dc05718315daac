package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	glspserver "github.com/tliron/glsp/server"
	"github.com/urfave/cli/v2"

	"github.com/CWBudde/go-nrs-lsp/internal/lsp"
	"github.com/CWBudde/go-nrs-lsp/internal/server"
)

var log = commonlog.GetLogger("nrs-lsp.main")

// logLevels maps --log-level values to commonlog verbosity.
var logLevels = map[string]int{
	"error": 0,
	"warn":  1,
	"info":  2,
	"debug": 3,
}

func main() {
	app := &cli.App{
		Name:    lsp.Name,
		Usage:   "Language server for nrs",
		Version: lsp.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "error",
				Usage: "Log level: debug, info, warn, error",
			},
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Log file path (default: stderr)",
			},
		},
		Before: setupLogging,
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the language server",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:      "check",
				Usage:     "Report diagnostics for nrs files",
				ArgsUsage: "[patterns...]",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Number of files compiled in parallel (0 = GOMAXPROCS)",
					},
					&cli.BoolFlag{
						Name:  "no-color",
						Usage: "Disable colored output",
					},
				},
				Action: check,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(c *cli.Context) error {
					fmt.Fprintf(c.App.Writer, "%s version %s\n", lsp.Name, color.New(color.FgGreen, color.Bold).Sprint(lsp.Version))
					return nil
				},
			},
		},
	}
	app.Flags = append(app.Flags, serveFlags()...)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "tcp",
			Usage: "Run server in TCP mode (for debugging)",
		},
		&cli.IntFlag{
			Name:  "port",
			Value: 8765,
			Usage: "TCP port to listen on (used with --tcp)",
		},
	}
}

// setupLogging configures commonlog from the global flags.
func setupLogging(c *cli.Context) error {
	verbosity, ok := logLevels[c.String("log-level")]
	if !ok {
		return fmt.Errorf("unknown log level %q", c.String("log-level"))
	}

	var path *string
	if file := c.String("log-file"); file != "" {
		path = &file
	}
	commonlog.Configure(verbosity, path)
	return nil
}

func serve(c *cli.Context) error {
	lsp.SetServer(server.New())
	glspServer := glspserver.NewServer(lsp.NewHandler(), lsp.Name, false)

	if c.Bool("tcp") {
		addr := fmt.Sprintf("127.0.0.1:%d", c.Int("port"))
		log.Infof("%s %s listening on %s", lsp.Name, lsp.Version, addr)
		if err := glspServer.RunTCP(addr); err != nil {
			return fmt.Errorf("TCP server: %w", err)
		}
		return nil
	}

	log.Infof("%s %s serving on stdio", lsp.Name, lsp.Version)
	if err := glspServer.RunStdio(); err != nil {
		return fmt.Errorf("STDIO server: %w", err)
	}
	return nil
}
