package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"hps-sequence/buttons"
	"hps-sequence/config"
	"hps-sequence/debug"
	"hps-sequence/h2f"
	"hps-sequence/midi"
	"hps-sequence/sequencer"
	"hps-sequence/theme"
	"hps-sequence/tui"
)

// simPollInterval paces the control loop against the emulator when the
// config asks for a spinning loop, which would burn a core on a desktop.
const simPollInterval = time.Millisecond

var (
	Version = "dev"

	// Command-line configuration
	flags struct {
		config  string
		debug   bool
		sim     bool
		midiOut string
		midiIn  string
		kit     string
	}
)

var rootCmd = &cobra.Command{
	Use:   "hps-sequence [preset]",
	Short: "Keyboard step sequencer for the DE1-SoC",
	Long: `hps-sequence drives the piano roll display, key lamps and selectors of
the FPGA peripheral over the HPS-to-FPGA bridge. It records what is played on
the live keys and plays it back in time with the peripheral's sample counter.

Presets:
  drum   a one-bar drum loop
  demo   the demo song

With --sim the peripheral is emulated in memory and shown in the terminal.`,
	Version:       Version,
	Args:          cobra.ArbitraryArgs,
	ValidArgs:     sequencer.PresetNames(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVarP(&flags.config, "config", "c", "",
		"config file (default ~/.config/hps-sequence/config.json)")
	rootCmd.Flags().BoolVarP(&flags.debug, "debug", "d", false,
		"write the debug log")
	rootCmd.Flags().BoolVar(&flags.sim, "sim", false,
		"emulate the peripheral in the terminal")
	rootCmd.Flags().StringVar(&flags.midiOut, "midi-out", "",
		"mirror sequenced notes to this MIDI output port")
	rootCmd.Flags().StringVar(&flags.midiIn, "midi-in", "",
		"play the live keys from this MIDI input port (with --sim)")
	rootCmd.Flags().StringVar(&flags.kit, "kit", "",
		"drum kit for the MIDI mirror ("+strings.Join(midi.KitNames(), ", ")+")")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("midi-out") {
		cfg.MIDI.MirrorPort = flags.midiOut
	}
	if cmd.Flags().Changed("midi-in") {
		cfg.MIDI.InputPort = flags.midiIn
	}
	if cmd.Flags().Changed("kit") {
		cfg.MIDI.Kit = flags.kit
	}

	if flags.debug || cfg.Debug.Enabled {
		path, err := cfg.DebugPath()
		if err != nil {
			return errors.Wrap(err, "debug log path")
		}
		if err := debug.Enable(path); err != nil {
			return err
		}
		defer debug.Disable()
	}

	var (
		hw  h2f.Bridge
		sim *h2f.Sim
	)
	if flags.sim {
		sim = h2f.NewSim(nil)
		hw = sim
	} else {
		mmio, err := h2f.Open(cfg.Hardware.Device, cfg.Hardware.Base, cfg.Hardware.Span)
		if err != nil {
			return err
		}
		hw = mmio
	}
	defer hw.Close()

	opts := managerOptions(cfg)
	if sim != nil && opts.PollInterval == 0 {
		opts.PollInterval = simPollInterval
	}
	mgr := sequencer.NewManager(hw, opts)
	loadPreset(mgr, args)

	closeMIDI := attachMIDI(cfg, mgr, sim)
	defer closeMIDI()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if sim == nil {
		return ignoreCanceled(mgr.Run(ctx))
	}
	return runSim(ctx, cfg, mgr, sim)
}

// runSim runs the control loop in the background and the emulator front
// panel in the foreground. Either side ending stops the other.
func runSim(ctx context.Context, cfg *config.Config, mgr *sequencer.Manager, sim *h2f.Sim) error {
	palette, err := theme.Load(cfg.UI.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- mgr.Run(ctx)
	}()

	p := tea.NewProgram(tui.NewModel(sim, th, cfg.UI.Rows, cancel), tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, tuiErr := p.Run()
	cancel()
	runErr := <-done
	if tuiErr != nil {
		return errors.Wrap(tuiErr, "terminal UI")
	}
	return ignoreCanceled(runErr)
}

// loadPreset preloads the preset named by the first argument. No argument,
// or one that names no preset, starts with an empty store.
func loadPreset(mgr *sequencer.Manager, args []string) bool {
	if len(args) == 0 {
		return false
	}
	if !mgr.LoadPreset(args[0]) {
		warn("unknown preset %q ignored (presets: %s)",
			args[0], strings.Join(sequencer.PresetNames(), ", "))
		return false
	}
	return true
}

func managerOptions(cfg *config.Config) sequencer.Options {
	return sequencer.Options{
		Timing: sequencer.Timing{
			Subdivision: cfg.Timing.Subdivision,
			SubrowSteps: cfg.Timing.SubrowSteps,
		},
		Buttons: buttons.Timing{
			Debounce:       cfg.Buttons.Debounce,
			ScrollDelay:    cfg.Buttons.ScrollDelay,
			ScrollInterval: cfg.Buttons.ScrollInterval,
		},
		CounterBits:  cfg.Timing.CounterBits,
		PollInterval: cfg.Timing.PollInterval(),
		Octave:       cfg.Selection.Octave,
		Inst:         cfg.Selection.Inst,
	}
}

// attachMIDI opens the optional MIDI ports. MIDI is an extra: a port that
// cannot be opened is reported and skipped.
func attachMIDI(cfg *config.Config, mgr *sequencer.Manager, sim *h2f.Sim) func() {
	var closers []func() error

	if port := cfg.MIDI.MirrorPort; port != "" {
		mirror, err := midi.OpenMirror(port, midi.GetKit(cfg.MIDI.Kit))
		if err != nil {
			warn("midi out: %v", err)
		} else {
			mgr.Keyboard().AddListener(mirror)
			closers = append(closers, mirror.Close)
		}
	}

	if port := cfg.MIDI.InputPort; port != "" {
		if sim == nil {
			warn("midi in: %s ignored, the board has its own keys", port)
		} else if keys, err := midi.OpenKeyInput(port); err != nil {
			warn("midi in: %v", err)
		} else {
			sim.SetKeySource(keys.Keys)
			closers = append(closers, keys.Close)
		}
	}

	return func() {
		for _, c := range closers {
			if err := c(); err != nil {
				debug.Log("midi", "close: %v", err)
			}
		}
		if len(closers) > 0 {
			midi.CloseDriver()
		}
	}
}

func warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	debug.Log("main", "%s", msg)
	fmt.Fprintln(os.Stderr, "warning: "+msg)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
