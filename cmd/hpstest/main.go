// Command hpstest exercises the bridge and the MIDI driver by hand.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"hps-sequence/config"
	"hps-sequence/h2f"
	"hps-sequence/midi"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:          "hpstest",
		Short:        "Bridge and MIDI test scripts",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file")

	root.AddCommand(
		&cobra.Command{
			Use:   "inputs",
			Short: "Print the input word whenever it changes",
			RunE:  withBridge(pollInputs),
		},
		&cobra.Command{
			Use:   "tiles",
			Short: "Draw a test pattern on the piano roll",
			RunE:  withBridge(testTiles),
		},
		&cobra.Command{
			Use:   "keys",
			Short: "Sweep the key lamps through every instrument",
			RunE:  withBridge(sweepKeys),
		},
		&cobra.Command{
			Use:   "ports",
			Short: "List MIDI ports",
			RunE: func(cmd *cobra.Command, args []string) error {
				return listPorts()
			},
		},
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func withBridge(fn func(ctx context.Context, hw h2f.Bridge) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		hw, err := h2f.Open(cfg.Hardware.Device, cfg.Hardware.Base, cfg.Hardware.Span)
		if err != nil {
			return err
		}
		defer hw.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return fn(ctx, hw)
	}
}

func pollInputs(ctx context.Context, hw h2f.Bridge) error {
	fmt.Println("Polling inputs, ctrl+c to stop")
	var prev h2f.Inputs
	first := true
	for ctx.Err() == nil {
		in := h2f.DecodeInputs(hw.Inputs())
		// the counter always moves; report everything else
		cur := in
		cur.Count = prev.Count
		if first || cur != prev {
			fmt.Printf("buttons=%04b play=%v rec=%v keys=%012b count=%5d\n",
				^in.Buttons&h2f.ButtonsMask, in.Play, in.Record, in.Keys, in.Count)
			first = false
		}
		prev = in
		time.Sleep(time.Millisecond)
	}
	return nil
}

func testTiles(ctx context.Context, hw h2f.Bridge) error {
	fmt.Println("Drawing diagonal notes for every instrument")
	hw.SetTileOffset(0)
	hw.SetGridScroll(0)
	hw.SetSubtileScroll(0)
	for row := 0; row < h2f.Rows; row++ {
		for pitch := 0; pitch < h2f.Pitches; pitch++ {
			var data uint32
			if (row+pitch)%8 == 0 {
				inst := uint(pitch % 8)
				data = 7 << (inst * 3)
			}
			hw.SetTileState(uint16(row*h2f.Pitches+pitch), data)
		}
	}

	fmt.Println("Rotating the tile offset, ctrl+c to stop")
	var offset uint8
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(100 * time.Millisecond):
		}
		offset = (offset + 1) % h2f.Rows
		hw.SetTileOffset(offset)
	}
}

func sweepKeys(ctx context.Context, hw h2f.Bridge) error {
	fmt.Println("Sweeping key lamps, ctrl+c to stop")
	for inst := uint(0); ; inst = (inst + 1) % 8 {
		hw.SetActiveInst(uint8(inst))
		for key := uint8(0); key < h2f.Keys; key++ {
			hw.SetKeyState(key, 1<<inst)
			select {
			case <-ctx.Done():
				for k := uint8(0); k < h2f.Keys; k++ {
					hw.SetKeyState(k, 0)
				}
				return nil
			case <-time.After(20 * time.Millisecond):
			}
			hw.SetKeyState(key, 0)
		}
	}
}

func listPorts() error {
	fmt.Println("(waiting up to 3 seconds...)")
	ports, err := midi.ListPorts(3 * time.Second)
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	defer midi.CloseDriver()

	fmt.Println("=== MIDI Input Ports ===")
	for i, p := range ports.Ins {
		fmt.Printf("  %d: %s\n", i, p)
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range ports.Outs {
		fmt.Printf("  %d: %s\n", i, p)
	}
	return nil
}
