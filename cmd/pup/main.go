// pup talks to Alberto from the terminal.
//
//	pup status
//	pup agents
//	pup chat -m "Tell me a joke"
//	pup chat -i
//
// Connection settings come from PUP_BASE_URL, PUP_API_KEY (or SYN_API_KEY /
// OPEN_API_KEY), PUP_CONNECT_TIMEOUT, PUP_READ_TIMEOUT and
// PUP_DNS_OVERRIDES, and can be overridden with global flags.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/AlbertoRoca-web/pup-sdk/pkg/client"
)

// usageError is reported with exit status 2.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode(err, os.Stderr))
}

func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	var usage *usageError
	if errors.As(err, &usage) {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 2
	}
	var sdkErr *client.SDKError
	if errors.As(err, &sdkErr) && sdkErr.IsTransport() {
		fmt.Fprintf(stderr, "Connection error: %v\n", err)
		return 1
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

type globalFlags struct {
	baseURL      string
	apiKey       string
	timeout      time.Duration
	dnsOverrides string
	verbose      bool
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var g globalFlags
	flagSet := pflag.NewFlagSet("pup", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&g.baseURL, "base-url", "", "bridge base URL (default $PUP_BASE_URL or "+client.DefaultBaseURL+")")
	flagSet.StringVar(&g.apiKey, "api-key", "", "bearer token sent to the bridge")
	flagSet.DurationVar(&g.timeout, "timeout", 0, "read timeout for each request")
	flagSet.StringVar(&g.dnsOverrides, "dns-overrides", "", "YAML file pinning hostnames to IP addresses")
	flagSet.BoolVarP(&g.verbose, "verbose", "v", false, "log requests to stderr")
	flagSet.Usage = func() { printUsage(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usagef("%v", err)
	}

	if flagSet.Changed("timeout") && g.timeout <= 0 {
		return usagef("--timeout must be positive, got %s", g.timeout)
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printUsage(stderr, flagSet)
		return usagef("missing command")
	}

	c, err := newClient(g, flagSet, stderr)
	if err != nil {
		return err
	}

	switch rest[0] {
	case "status":
		return runStatus(ctx, c, stdout)
	case "agents":
		return runAgents(ctx, c, stdout)
	case "chat":
		return runChat(ctx, c, rest[1:], stdin, stdout, stderr)
	default:
		return usagef("unknown command %q", rest[0])
	}
}

func newClient(g globalFlags, flagSet *pflag.FlagSet, stderr io.Writer) (*client.Client, error) {
	cfg, err := client.ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if flagSet.Changed("base-url") {
		cfg.BaseURL = g.baseURL
	}
	if flagSet.Changed("api-key") {
		cfg.APIKey = g.apiKey
	}
	if flagSet.Changed("timeout") {
		cfg.ReadTimeout = g.timeout
	}
	if flagSet.Changed("dns-overrides") {
		overrides, err := client.LoadDNSOverrides(g.dnsOverrides)
		if err != nil {
			return nil, err
		}
		cfg.DNSOverrides = overrides
	}
	if g.verbose {
		cfg.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).
			With().Timestamp().Logger()
	}
	return client.NewWithConfig(cfg)
}

func runStatus(ctx context.Context, c *client.Client, stdout io.Writer) error {
	status, err := c.Status(ctx)
	if err != nil {
		return err
	}

	mode := "live"
	if status.DemoMode {
		mode = "demo"
	}
	fmt.Fprintf(stdout, "Alberto %s at %s\n", status.Version, c.BaseURL())
	fmt.Fprintf(stdout, "Available: %t\n", status.Available)
	fmt.Fprintf(stdout, "Mode:      %s\n", mode)
	if status.Message != "" {
		fmt.Fprintf(stdout, "Message:   %s\n", status.Message)
	}
	fmt.Fprintln(stdout, "Capabilities:")
	for _, capability := range status.Capabilities {
		mark := " "
		if capability.Enabled {
			mark = "x"
		}
		fmt.Fprintf(stdout, "  [%s] %s\n", mark, capability.Name)
	}
	return nil
}

func runAgents(ctx context.Context, c *client.Client, stdout io.Writer) error {
	agents, err := c.ListAgents(ctx)
	if err != nil {
		return err
	}
	for _, name := range agents {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func runChat(ctx context.Context, c *client.Client, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		message     string
		interactive bool
		reasoning   bool
	)
	flagSet := pflag.NewFlagSet("chat", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&message, "message", "m", "", "message to send to Alberto")
	flagSet.BoolVarP(&interactive, "interactive", "i", false, "start an interactive chat")
	flagSet.BoolVarP(&reasoning, "reasoning", "r", false, "ask for the model's reasoning")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return usagef("chat: %v", err)
	}

	var opts []client.ChatOption
	if reasoning {
		opts = append(opts, client.WithReasoning())
	}

	switch {
	case interactive:
		return interactiveChat(ctx, c, stdin, stdout, opts)
	case message != "":
		resp, err := c.Chat(ctx, message, opts...)
		if err != nil {
			return err
		}
		printResponse(stdout, "Alberto: "+resp.Response, resp.Reasoning)
		return nil
	default:
		return usagef("chat: provide a message with --message or use --interactive")
	}
}

func interactiveChat(ctx context.Context, c *client.Client, stdin io.Reader, stdout io.Writer, opts []client.ChatOption) error {
	fmt.Fprintln(stdout, "Alberto Interactive Chat")
	fmt.Fprintln(stdout, "Type 'quit', 'exit', or press Ctrl+D to stop")
	fmt.Fprintln(stdout)

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(stdout, "\nGoodbye!")
			return scanner.Err()
		}

		message := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(message) {
		case "":
			continue
		case "quit", "exit", "q":
			fmt.Fprintln(stdout, "Goodbye!")
			return nil
		}

		resp, err := c.Chat(ctx, message, opts...)
		if err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(stdout, "Error: %v\n", err)
			continue
		}
		printResponse(stdout, "Alberto: "+resp.Response, resp.Reasoning)
	}
}

func printResponse(stdout io.Writer, line, reasoning string) {
	fmt.Fprintln(stdout, line)
	if reasoning != "" {
		fmt.Fprintf(stdout, "Reasoning: %s\n", reasoning)
	}
}

func printUsage(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `pup: talk to Alberto the code puppy.

Usage:
  pup [global flags] status
  pup [global flags] agents
  pup [global flags] chat (-m MESSAGE | -i) [-r]

Global flags:
%s`, flagSet.FlagUsages())
}
