package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/errshape/errshape/internal/app"
	"github.com/errshape/errshape/internal/config"
	"github.com/errshape/errshape/internal/domain"
	"github.com/errshape/errshape/internal/output"
	"github.com/errshape/errshape/internal/payload"
	"github.com/errshape/errshape/internal/record"
	"github.com/errshape/errshape/internal/redact"
	"github.com/errshape/errshape/internal/upstream"
)

type rootFlags struct {
	Format      string
	Input       string
	Message     string
	Description string
	HTTPCode    string
	ParseXML    bool
	Token       string
}

var (
	newUpstreamClient              = upstream.New
	newConfigStore                 = config.NewStore
	newCorrelationID               = domain.NewCorrelationID
	stdinReader          io.Reader = os.Stdin
	stdoutWriter         io.Writer = os.Stdout
	stderrWriter         io.Writer = os.Stderr
)

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:          "errshape",
		Short:        "Normalize messy upstream error payloads",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(*flags, "")
		},
	}

	cmd.PersistentFlags().StringVar(&flags.Format, "format", "human", "Output format: human or json")
	cmd.PersistentFlags().StringVar(&flags.Input, "input", "json", "Payload format: json or yaml")

	cmd.AddCommand(newInspectCmd(flags))
	cmd.AddCommand(newWrapCmd(flags))
	cmd.AddCommand(newProbeCmd(flags))
	cmd.AddCommand(newEndpointCmd())

	return cmd
}

func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderrWriter, err)
		return 1
	}

	return 0
}

func newInspectCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Normalize an error payload from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runInspect(*flags, path)
		},
	}
	cmd.Flags().StringVar(&flags.Message, "message", "", "Override message (suppresses the payload search)")
	cmd.Flags().StringVar(&flags.Description, "description", "", "Override description (used with --message)")
	cmd.Flags().StringVar(&flags.HTTPCode, "http-code", "", "Override HTTP code (used with --message)")
	cmd.Flags().BoolVar(&flags.ParseXML, "parse-xml", false, "Treat the payload's error field as XML text")

	return cmd
}

func newWrapCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "wrap <message>",
		Short: "Build an operation error record from a plain message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrap(*flags, args[0])
		},
	}
}

func newProbeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "probe [url|endpoint]",
		Short: "Request an upstream and normalize its error response",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				target = args[0]
			}
			return runProbe(cmd.Context(), *flags, target)
		},
	}
	cmd.Flags().StringVar(&flags.Token, "token", "", "Bearer token (overrides configured endpoint token)")

	return cmd
}

func newEndpointCmd() *cobra.Command {
	endpointCmd := &cobra.Command{Use: "endpoint", Short: "Manage configured upstream endpoints"}
	endpointCmd.AddCommand(
		newEndpointAddCmd(),
		newEndpointListCmd(),
		newEndpointUseCmd(),
		newEndpointNextCmd(),
		newEndpointRemoveCmd(),
	)

	return endpointCmd
}

func newEndpointAddCmd() *cobra.Command {
	addURL := ""
	addToken := ""
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add or update an upstream endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withConfigStore(func(store *config.Store) error {
				return store.AddEndpoint(args[0], addURL, addToken)
			}); err != nil {
				return fmt.Errorf("add endpoint: %w", err)
			}
			return nil
		},
	}
	addCmd.Flags().StringVar(&addURL, "url", "", "Endpoint URL")
	addCmd.Flags().StringVar(&addToken, "token", "", "Bearer token sent when probing")
	_ = addCmd.MarkFlagRequired("url")

	return addCmd
}

func newEndpointListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withConfigStore(printEndpoints)
		},
	}
}

func newEndpointUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <name>",
		Short: "Set active endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withConfigStore(func(store *config.Store) error {
				return store.UseEndpoint(args[0])
			}); err != nil {
				return fmt.Errorf("use endpoint: %w", err)
			}
			return nil
		},
	}
}

func newEndpointNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Cycle active endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := cycleEndpoint()
			if err != nil {
				return fmt.Errorf("cycle endpoint: %w", err)
			}
			_, _ = fmt.Fprintln(stdoutWriter, name)
			return nil
		},
	}
}

func newEndpointRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove configured endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := withConfigStore(func(store *config.Store) error {
				return store.RemoveEndpoint(args[0])
			}); err != nil {
				return fmt.Errorf("remove endpoint: %w", err)
			}
			return nil
		},
	}
}

func runInspect(flags rootFlags, path string) error {
	data, err := readPayload(path)
	if err != nil {
		return err
	}

	format, err := payload.ParseFormat(flags.Input)
	if err != nil {
		return err
	}

	rec, err := app.NewService(nil).Inspect(newCorrelationID(), app.InspectInput{
		Data:   data,
		Format: format,
		Options: record.Options{
			Message:     flags.Message,
			Description: flags.Description,
			HTTPCode:    flags.HTTPCode,
			ParseXML:    flags.ParseXML,
		},
	})
	if err != nil {
		return err
	}

	return printRecord(flags.Format, rec, "")
}

func runWrap(flags rootFlags, message string) error {
	rec := app.NewService(nil).Wrap(newCorrelationID(), message)

	return printRecord(flags.Format, rec, "")
}

func runProbe(parent context.Context, flags rootFlags, target string) error {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	probeURL, token, err := resolveProbeTarget(flags, target)
	if err != nil {
		return err
	}

	service := app.NewService(newUpstreamClient(token))
	correlation := newCorrelationID()

	report, err := runWithProgress(flags.Format, "Probing upstream", func() (app.ProbeReport, error) {
		return service.Probe(ctx, correlation, probeURL)
	})
	if err != nil {
		return sanitizeError(err, token)
	}

	if report.Record != nil {
		scrubbed := scrubRecord(*report.Record, token)
		report.Record = &scrubbed
	}

	return printOutput(flags.Format, output.RenderProbeHuman(report), report)
}

// resolveProbeTarget accepts either a literal URL or the name of a
// configured endpoint; an empty target means the active endpoint.
func resolveProbeTarget(flags rootFlags, target string) (string, string, error) {
	if parsed, err := url.Parse(target); err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") {
		return target, flags.Token, nil
	}

	store, err := newConfigStore()
	if err != nil {
		return "", "", err
	}

	endpoint, err := store.Resolve(target)
	if err != nil {
		return "", "", err
	}

	token := flags.Token
	if token == "" {
		token = endpoint.Token
	}

	return endpoint.URL, token, nil
}

func readPayload(path string) ([]byte, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdinReader)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload file: %w", err)
	}

	return data, nil
}

func withConfigStore(action func(*config.Store) error) error {
	store, err := newConfigStore()
	if err != nil {
		return err
	}

	return action(store)
}

func printEndpoints(store *config.Store) error {
	file, err := store.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(file.Endpoints) == 0 {
		_, _ = fmt.Fprintln(stdoutWriter, "no configured endpoints")
		return nil
	}

	for _, endpoint := range file.Endpoints {
		prefix := "  "
		if endpoint.Name == file.ActiveEndpoint {
			prefix = "* "
		}
		_, _ = fmt.Fprintf(stdoutWriter, "%s%s  %s\n", prefix, endpoint.Name, endpoint.URL)
	}

	return nil
}

func cycleEndpoint() (string, error) {
	var name string
	err := withConfigStore(func(store *config.Store) error {
		next, err := store.CycleEndpoint()
		if err != nil {
			return err
		}
		name = next
		return nil
	})
	if err != nil {
		return "", err
	}

	return name, nil
}

func printRecord(format string, rec record.Record, token string) error {
	scrubbed := scrubRecord(rec, token)

	return printOutput(format, output.RenderRecordHuman(scrubbed), scrubbed)
}

// scrubRecord masks credentials everywhere the upstream may have
// echoed them: the extracted fields as well as the stored cause.
func scrubRecord(rec record.Record, token string) record.Record {
	rec.Message = redact.String(rec.Message, token)
	rec.Description = redact.String(rec.Description, token)
	rec.Cause = redact.Tree(rec.Cause, token)

	return rec
}

func printOutput(format string, human string, jsonPayload any) error {
	switch format {
	case "human":
		_, _ = fmt.Fprintln(stdoutWriter, human)
		return nil
	case "json":
		rendered, err := output.RenderJSON(jsonPayload)
		if err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		_, _ = fmt.Fprintln(stdoutWriter, rendered)
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func sanitizeError(err error, token string) error {
	return errors.New(redact.String(err.Error(), token))
}

func runWithProgress[T any](format string, message string, operation func() (T, error)) (T, error) {
	if !shouldRenderProgress(format) {
		return operation()
	}

	writer := progress.NewWriter()
	writer.SetAutoStop(true)
	writer.SetMessageLength(28)
	writer.SetTrackerLength(18)
	writer.SetUpdateFrequency(100 * time.Millisecond)
	writer.SetOutputWriter(stdoutWriter)
	writer.Style().Visibility.ETA = false
	writer.Style().Visibility.ETAOverall = false
	writer.Style().Visibility.Percentage = false
	writer.Style().Visibility.Speed = false
	writer.Style().Visibility.SpeedOverall = false
	writer.Style().Visibility.Time = false
	writer.Style().Visibility.TrackerOverall = false
	writer.Style().Visibility.Value = false

	tracker := progress.Tracker{Message: message, Total: 0, Units: progress.UnitsDefault}
	writer.AppendTracker(&tracker)

	go writer.Render()

	result, err := operation()
	if err != nil {
		tracker.MarkAsErrored()
	} else {
		tracker.MarkAsDone()
	}

	for writer.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}

	return result, err
}

func shouldRenderProgress(format string) bool {
	if format != "human" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	file, ok := stdoutWriter.(*os.File)
	if !ok {
		return false
	}

	return term.IsTerminal(int(file.Fd()))
}
