package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/volante/internal/app"
	"github.com/ayusman/volante/internal/binding"
	"github.com/ayusman/volante/internal/capture"
	"github.com/ayusman/volante/internal/detector"
	"github.com/ayusman/volante/internal/keyboard"
	"github.com/ayusman/volante/internal/player"
	"github.com/ayusman/volante/internal/plugin"
	"github.com/ayusman/volante/internal/preview"
	"github.com/ayusman/volante/internal/tray"
	"github.com/ayusman/volante/internal/tui"
)

const version = "0.0.1"

var (
	cameraIndex    int
	sourcePath     string
	singlePlayer   bool
	presetName     string
	dryRun         bool
	keyboardPlugin string
	pluginDir      string
	dbPath         string
	useTUI         bool
	useTray        bool
	usePreview     bool
)

var rootCmd = &cobra.Command{
	Use:   "volante",
	Short: "Steer racing games with your arms in front of a webcam",
	Long: `Volante watches one or two players through a webcam and turns their
arm poses into held keys: hands up, middle or down picks the high/mid/low key,
tilting the hands like a steering wheel picks the left/neutral/right key.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runController,
}

// Execute runs the root command and exits with status 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.IntVar(&cameraIndex, "camera-index", 0, "Camera device index")
	flags.StringVar(&sourcePath, "source", "", "Read frames from a video file and log keys instead of pressing them")
	flags.BoolVar(&singlePlayer, "single-player", false, "Control only player 1 with the leftmost person")
	flags.StringVar(&presetName, "preset", "", "Load key bindings from a stored preset")
	flags.BoolVar(&dryRun, "dry-run", false, "Log key events instead of pressing keys")
	flags.StringVar(&keyboardPlugin, "keyboard-plugin", "", "Press keys through the named plugin")
	flags.StringVar(&pluginDir, "plugin-dir", filepath.Join(volanteDir(), "plugins"), "Directory to discover plugins in")
	flags.BoolVar(&useTUI, "tui", false, "Show a terminal dashboard")
	flags.BoolVar(&useTray, "tray", false, "Show a system tray menu")
	flags.BoolVar(&usePreview, "preview", false, "Show the camera image with each player's controls")
	addKeyFlags(flags)

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Preset database path (default ~/.volante/volante.db)")
}

func runController(cmd *cobra.Command, args []string) error {
	if countTrue(useTUI, useTray, usePreview) > 1 {
		return errors.New("choose only one of --tui, --tray and --preview")
	}

	engine, config, err := buildEngine(cmd)
	if err != nil {
		return err
	}

	det, err := detector.NewPoseServiceDetector(detector.DefaultConfig())
	if err != nil {
		return fmt.Errorf("pose service unavailable: %w", err)
	}

	source := capture.New(capture.Config{
		DeviceID: cameraIndex,
		Path:     sourcePath,
		Mirror:   sourcePath == "",
	})

	a := app.New(app.Config{PublishFrames: usePreview}, source, det, engine)
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case useTUI:
		return runWithTUI(ctx, a)
	case useTray:
		return runWithTray(ctx, a, engineSlots())
	case usePreview:
		return runWithPreview(ctx, a, preview.NewOverlay(config.Gestures, engineSlots()))
	default:
		return a.Run(ctx)
	}
}

func engineSlots() int {
	if singlePlayer {
		return 1
	}
	return player.MaxSlots
}

// buildEngine resolves the key bindings and the key emitter. Every invalid
// key is reported before anything starts.
func buildEngine(cmd *cobra.Command) (*app.Engine, app.EngineConfig, error) {
	config := app.DefaultEngineConfig()
	config.Players.Slots = engineSlots()

	bindings, err := loadBindings(cmd)
	if err != nil {
		return nil, config, err
	}
	config.Bindings = bindings

	emitter, err := buildEmitter()
	if err != nil {
		return nil, config, err
	}

	engine, err := app.NewEngine(config, emitter)
	return engine, config, err
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func loadBindings(cmd *cobra.Command) (binding.Table, error) {
	if presetName == "" {
		return resolveBindings(cmd.Flags(), nil, "")
	}

	st, err := openStore(dbPath)
	if err != nil {
		return binding.Table{}, err
	}
	defer st.Close()
	return resolveBindings(cmd.Flags(), st.Presets(), presetName)
}

func buildEmitter() (keyboard.Emitter, error) {
	if keyboardPlugin != "" {
		mgr := plugin.NewManager(pluginDir)
		if err := mgr.Discover(); err != nil {
			return nil, fmt.Errorf("failed to discover plugins: %w", err)
		}
		em, err := keyboard.NewPluginEmitter(mgr, keyboardPlugin, plugin.NewExecutor(2000))
		if err != nil {
			return nil, fmt.Errorf("keyboard plugin: %w", err)
		}
		return em, nil
	}

	if dryRun || sourcePath != "" {
		return keyboard.NewLogEmitter(log.Default()), nil
	}

	em, err := keyboard.NewCommandEmitter(time.Second)
	if err != nil {
		return nil, fmt.Errorf("key injection unavailable: %w", err)
	}
	return em, nil
}

func runWithTUI(ctx context.Context, a *app.App) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logs := tui.NewLogWriter(100)
	log.SetOutput(logs)
	defer log.SetOutput(os.Stderr)

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
		cancel()
	}()

	uiErr := tui.Run(ctx, a.Engine(), logs.Lines())
	cancel()
	if err := <-done; err != nil {
		return err
	}
	return uiErr
}

// runWithPreview keeps the window on the calling (main) goroutine and the
// control loop on another. Quitting the window stops the loop.
func runWithPreview(ctx context.Context, a *app.App, overlay *preview.Overlay) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- a.Run(ctx)
	}()

	preview.NewWindow("volante", overlay).Run(ctx, a.Frames())
	cancel()
	return <-done
}

func runWithTray(ctx context.Context, a *app.App, slots int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := tray.New(slots)
	t.OnPause(a.SetPaused)
	t.OnQuit(cancel)
	go t.Watch(ctx, a.Engine().Snapshots())

	done := make(chan error, 1)
	go func() {
		err := a.Run(ctx)
		t.Quit()
		done <- err
	}()

	t.Run()
	cancel()
	return <-done
}
