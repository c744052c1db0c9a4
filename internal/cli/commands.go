// Package cli builds the ytresolve command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/famomatic/ytresolve/client"
	"github.com/famomatic/ytresolve/internal/logging"
	"github.com/famomatic/ytresolve/internal/server"
)

// Options holds all command-line options.
type Options struct {
	// Network
	ProxyURL  string        // --proxy
	Timeout   time.Duration // --timeout
	UserAgent string        // --user-agent
	Rate      float64       // --rate
	Burst     int           // --burst

	// Transforms
	Engine        string        // --engine
	ScriptTimeout time.Duration // --script-timeout

	// Cookies
	CookiesFile string // --cookies

	// Verbosity / Debug
	Debug   bool   // --debug
	LogFile string // --log-file

	// serve
	Port int // --port

	// resolve
	ClientID      string // --client
	RequestedData string // --data
}

func (o *Options) clientConfig(logger *slog.Logger) client.Config {
	return client.Config{
		ProxyURL:       o.ProxyURL,
		RequestTimeout: o.Timeout,
		UserAgent:      o.UserAgent,
		Engine:         o.Engine,
		ScriptTimeout:  o.ScriptTimeout,
		RateLimit:      o.Rate,
		Burst:          o.Burst,
		SlogLogger:     logger,
	}
}

func (o *Options) cookies() ([]client.Cookie, error) {
	if o.CookiesFile == "" {
		return nil, nil
	}
	return client.LoadCookiesFile(o.CookiesFile)
}

// NewRootCommand returns the ytresolve command with its subcommands.
// Command output goes to out, logs go to stderr.
func NewRootCommand(out io.Writer) *cobra.Command {
	opts := &Options{}
	var logger *slog.Logger
	var closeLog func() error

	root := &cobra.Command{
		Use:           "ytresolve",
		Short:         "Resolve YouTube videos into metadata and direct download URLs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger, closeLog = logging.Setup(opts.Debug, opts.LogFile)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if closeLog != nil {
				return closeLog()
			}
			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&opts.ProxyURL, "proxy", "", "Proxy URL for upstream requests")
	f.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "Timeout of a single upstream request")
	f.StringVar(&opts.UserAgent, "user-agent", "", "User agent for watch pages and player scripts")
	f.Float64Var(&opts.Rate, "rate", 0, "Maximum upstream requests per second (0 = unlimited)")
	f.IntVar(&opts.Burst, "burst", 1, "Request burst allowed by --rate")
	f.StringVar(&opts.Engine, "engine", "goja", "Script engine for player transforms (goja, otto)")
	f.DurationVar(&opts.ScriptTimeout, "script-timeout", 0, "Timeout of a single transform evaluation")
	f.StringVar(&opts.CookiesFile, "cookies", "", "Netscape cookies.txt file")
	f.BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	f.StringVarP(&opts.LogFile, "log-file", "l", "", "Append logs to this file as well")

	root.AddCommand(
		newServeCommand(opts, &logger),
		newResolveCommand(opts, &logger, out),
		newClientsCommand(opts, &logger, out),
	)
	return root
}

func newServeCommand(opts *Options, logger **slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Port <= 0 || opts.Port >= 65536 {
				return fmt.Errorf("invalid port %d: must be between 1 and 65535", opts.Port)
			}
			c, err := client.New(opts.clientConfig(*logger))
			if err != nil {
				return err
			}
			jar, err := opts.cookies()
			if err != nil {
				return err
			}
			if len(jar) > 0 {
				c.SetDefaultCookies(jar)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(c, *logger).Run(ctx, ":"+strconv.Itoa(opts.Port))
		},
	}
	cmd.Flags().IntVarP(&opts.Port, "port", "p", 5150, "Port to listen on")
	return cmd
}

func newResolveCommand(opts *Options, logger **slog.Logger, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <video id or url>",
		Short: "Resolve one video and print the answer as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(opts.clientConfig(*logger))
			if err != nil {
				return err
			}
			jar, err := opts.cookies()
			if err != nil {
				return err
			}
			res, err := c.Resolve(cmd.Context(), args[0], client.ResolveOptions{
				ClientID:      opts.ClientID,
				RequestedData: opts.RequestedData,
				Cookies:       jar,
			})
			if err != nil {
				return err
			}
			if err := writeJSON(out, res.Answer); err != nil {
				return err
			}
			if res.Err != nil {
				return fmt.Errorf("resolution failed: %s", res.Err.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.ClientID, "client", "c", "auto", "Client persona id (see 'clients')")
	cmd.Flags().StringVar(&opts.RequestedData, "data", "all", "Requested data: web_page, raw_video_info, parsed_video_info, urls, all")
	return cmd
}

func newClientsCommand(opts *Options, logger **slog.Logger, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "clients",
		Short: "List the client personas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client.New(opts.clientConfig(*logger))
			if err != nil {
				return err
			}
			return writeJSON(out, c.Clients())
		},
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Execute runs the command tree with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}
