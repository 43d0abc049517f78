package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dvp2015/xpypact/internal/telemetry"
	"github.com/dvp2015/xpypact/internal/ui"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry [FILE]",
	Short: "View JSONL telemetry events of collect and watch runs",
	Long: `Reads and formats a JSONL telemetry file written with --telemetry.

Without FILE, the configured telemetry_path is used.
With --follow (-f), watches the file for new events (like tail -f).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	telemetryCmd.Flags().String("session", "", "only events of this session")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	session, _ := cmd.Flags().GetString("session")

	path := viper.GetString("telemetry_path")
	if len(args) == 1 {
		path = args[0]
	}
	if path == "" {
		return errors.New("telemetry: no file given and telemetry_path is not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	out := cmd.OutOrStdout()
	show := func(evt telemetry.Event) error {
		if session == "" || evt.Session == session {
			printEvent(out, evt)
		}
		return nil
	}

	// Print all existing events.
	lines := &lineReader{r: bufio.NewReader(f)}
	if err := lines.read(show); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		return nil
	}
	ctx, cancel := setupSignalContext(cmd.Context(), ui.NewWriter(cmd.ErrOrStderr()))
	defer cancel()
	return tailFollow(ctx, lines, path, show)
}

// lineReader yields complete JSONL lines, holding back a trailing partial
// line until the rest of it is written.
type lineReader struct {
	r       *bufio.Reader
	partial string
}

// read decodes the complete lines available. Lines that are not valid
// events are printed raw.
func (l *lineReader) read(fn func(telemetry.Event) error) error {
	for {
		chunk, err := l.r.ReadString('\n')
		if errors.Is(err, io.EOF) {
			l.partial += chunk
			return nil
		}
		if err != nil {
			return err
		}
		line := strings.TrimSpace(l.partial + chunk)
		l.partial = ""
		if line == "" {
			continue
		}
		if derr := telemetry.Decode(strings.NewReader(line), fn); derr != nil {
			fmt.Fprintf(os.Stderr, "??? %s\n", line)
		}
	}
}

// tailFollow watches the file for new data using fsnotify and prints new events.
func tailFollow(ctx context.Context, lines *lineReader, path string, fn func(telemetry.Event) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if err := lines.read(fn); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent prints a human-readable representation of evt.
func printEvent(w io.Writer, evt telemetry.Event) {
	ts := evt.Timestamp.Local().Format(time.TimeOnly)
	parts := []string{fmt.Sprintf("[%s]", ts), evt.Kind}

	if evt.Session != "" {
		parts = append(parts, fmt.Sprintf("session=%.8s", evt.Session))
	}
	if evt.Path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", evt.Path))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}
