// Package main provides the CLI entrypoint for presshold.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/velsh/presshold/internal/bridge"
	"github.com/velsh/presshold/internal/config"
	"github.com/velsh/presshold/internal/model"
	"github.com/velsh/presshold/internal/monitor"
	"github.com/velsh/presshold/internal/sequence"
	"github.com/velsh/presshold/internal/session"
	"github.com/velsh/presshold/internal/tui"
)

const (
	defaultBridgeURL  = "ws://127.0.0.1:9230/telemetry"
	defaultLevels     = 2
	defaultPolicy     = "dwell"
	defaultDwellMs    = 750
	defaultCooldownMs = 3000
	defaultRetryMs    = 3000
)

var (
	practiceBridgeURL  string
	practiceLevels     int
	practicePolicy     string
	practiceDwellMs    int
	practiceCooldownMs int
	practiceRetryMs    int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "presshold",
		Short:         "Analog keyboard pressure trainer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPracticeCmd,
	}

	rootCmd.Flags().StringVar(&practiceBridgeURL, "bridge", defaultBridgeURL, "hardware bridge websocket URL")
	rootCmd.Flags().IntVar(&practiceLevels, "levels", defaultLevels, "pressure level count (2 or 3)")
	rootCmd.Flags().StringVar(&practicePolicy, "policy", defaultPolicy, "hold policy (dwell or peak)")
	rootCmd.Flags().IntVar(&practiceDwellMs, "dwell-ms", defaultDwellMs, "minimum hold duration in ms (dwell policy)")
	rootCmd.Flags().IntVar(&practiceCooldownMs, "cooldown-ms", defaultCooldownMs, "pause between attempts in ms")
	rootCmd.Flags().IntVar(&practiceRetryMs, "retry-ms", defaultRetryMs, "bridge reconnect backoff in ms")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMonitorCmd())

	return rootCmd
}

func runPracticeCmd(cmd *cobra.Command, _ []string) error {
	cfg, brd, err := buildPractice(cmd)
	if err != nil {
		return err
	}

	gen := sequence.New()
	ctrl := session.NewController(cfg, gen)
	model := tui.NewModel(ctrl, brd)
	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		brd.Disconnect()
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	brd.Disconnect()
	return nil
}

func buildPractice(cmd *cobra.Command) (model.Config, *bridge.Bridge, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "bridge", &practiceBridgeURL, fileCfg.Bridge.URL)
	applyIntConfig(cmd, "retry-ms", &practiceRetryMs, fileCfg.Bridge.RetryMs)
	applyIntConfig(cmd, "levels", &practiceLevels, fileCfg.Practice.Levels)
	applyStringConfig(cmd, "policy", &practicePolicy, fileCfg.Practice.Policy)
	applyIntConfig(cmd, "dwell-ms", &practiceDwellMs, fileCfg.Practice.DwellMs)
	applyIntConfig(cmd, "cooldown-ms", &practiceCooldownMs, fileCfg.Practice.CooldownMs)

	envCfg, err := config.ParseEnv()
	if err != nil {
		return model.Config{}, nil, fmt.Errorf("failed to load env config: %w", err)
	}
	if envCfg.BridgeURL != "" && !cmd.Flags().Changed("bridge") {
		practiceBridgeURL = envCfg.BridgeURL
	}

	cfg := model.Config{
		BridgeURL:  practiceBridgeURL,
		Levels:     practiceLevels,
		Policy:     practicePolicy,
		DwellMs:    practiceDwellMs,
		CooldownMs: practiceCooldownMs,
	}
	if err := validateConfig(cfg); err != nil {
		return model.Config{}, nil, err
	}

	retry := millis(practiceRetryMs)
	return cfg, bridge.New(cfg.BridgeURL, retry), nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newMonitorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Dump the decoded telemetry stream",
		Args:  cobra.NoArgs,
		RunE:  runMonitorCmd,
	}
	cmd.Flags().StringVar(&practiceBridgeURL, "bridge", defaultBridgeURL, "hardware bridge websocket URL")
	cmd.Flags().IntVar(&practiceRetryMs, "retry-ms", defaultRetryMs, "bridge reconnect backoff in ms")
	return cmd
}

func runMonitorCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "bridge", &practiceBridgeURL, fileCfg.Bridge.URL)
	applyIntConfig(cmd, "retry-ms", &practiceRetryMs, fileCfg.Bridge.RetryMs)

	envCfg, err := config.ParseEnv()
	if err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	if envCfg.BridgeURL != "" && !cmd.Flags().Changed("bridge") {
		practiceBridgeURL = envCfg.BridgeURL
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brd := bridge.New(practiceBridgeURL, millis(practiceRetryMs))
	return monitor.Run(ctx, brd, cmd.OutOrStdout(), width)
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# presshold configuration
# Uncomment a value to enable it. CLI flags override config values.

[practice]
# levels = %d          # Pressure level count: 2 (50/100) or 3 (30/60/100)
# policy = %q          # Hold policy: "dwell" or "peak"
# dwell-ms = %d        # Minimum hold duration (dwell policy)
# cooldown-ms = %d     # Pause between attempts

[bridge]
# url = %q
# retry-ms = %d        # Reconnect backoff
`,
		defaultLevels,
		defaultPolicy,
		defaultDwellMs,
		defaultCooldownMs,
		defaultBridgeURL,
		defaultRetryMs,
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.Levels != 2 && cfg.Levels != 3 {
		return fmt.Errorf("--levels must be 2 or 3")
	}
	if cfg.Policy != "dwell" && cfg.Policy != "peak" {
		return fmt.Errorf("--policy must be dwell or peak")
	}
	if cfg.DwellMs <= 0 {
		return fmt.Errorf("--dwell-ms must be > 0")
	}
	if cfg.CooldownMs <= 0 {
		return fmt.Errorf("--cooldown-ms must be > 0")
	}
	if strings.TrimSpace(cfg.BridgeURL) == "" {
		return fmt.Errorf("--bridge must not be empty")
	}
	return nil
}
