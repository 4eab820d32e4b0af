// dv3kctl exercises an AMBE-3000R vocoder attached over USB serial:
// identification queries, reset, rate selection, and whole-file
// encode/decode between WAV and raw channel frames.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.bug.st/serial"

	"github.com/ambetools/go-dv3k/audio"
	"github.com/ambetools/go-dv3k/protocol"
	"github.com/ambetools/go-dv3k/serialport"
	"github.com/ambetools/go-dv3k/vocoder"
)

var (
	flagConfig  string
	flagDevice  string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "dv3kctl",
		Short:         "Control and exercise an AMBE-3000R (DV3K) vocoder device",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "TOML config file")
	root.PersistentFlags().StringVarP(&flagDevice, "device", "d", "", "serial device path (default: autodetect)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging of raw frames")

	root.AddCommand(infoCmd(), resetCmd(), initCmd(), rateCmd(), encodeCmd(), decodeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dv3kctl:", err)
		os.Exit(1)
	}
}

// resolveSettings merges defaults, the optional config file, and
// command-line flags (flags win).
func resolveSettings() (settings, error) {
	cfg := defaultSettings()
	if flagConfig != "" {
		loaded, err := loadSettings(flagConfig)
		if err != nil {
			return settings{}, err
		}
		cfg = loaded
	}
	if flagDevice != "" {
		cfg.Device = flagDevice
	}
	if flagVerbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// openDevice opens the configured (or discovered) serial port and
// wraps it in a vocoder Device.
func openDevice(cfg settings) (*vocoder.Device, serial.Port, error) {
	path := cfg.Device
	if path == "" {
		found, err := serialport.Find()
		if err != nil {
			return nil, nil, err
		}
		path = found
	}

	port, err := serialport.Open(path)
	if err != nil {
		return nil, nil, err
	}

	level := zerolog.InfoLevel
	if cfg.Verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	dev := vocoder.New(port,
		vocoder.WithLogger(logger),
		vocoder.WithExchangeTimeout(cfg.Timeout),
	)
	return dev, port, nil
}

// prepare resets the chip and configures the rate and codec stages,
// the common preamble for any streaming work.
func prepare(ctx context.Context, dev *vocoder.Device, cfg settings) error {
	if err := dev.Reset(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if err := dev.SetRateT(ctx, cfg.RateIndex); err != nil {
		return fmt.Errorf("set rate %d: %w", cfg.RateIndex, err)
	}
	if err := dev.Init(ctx, protocol.InitFlags{Encoder: true, Decoder: true}); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	return nil
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Query product ID and firmware version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}
			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			ctx := cmd.Context()
			prodID, err := dev.ProductID(ctx)
			if err != nil {
				return fmt.Errorf("prodid: %w", err)
			}
			version, err := dev.Version(ctx)
			if err != nil {
				return fmt.Errorf("version: %w", err)
			}

			fmt.Println("product:", prodID)
			fmt.Println("version:", version)
			return nil
		},
	}
}

func resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the device and wait for READY",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}
			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			return dev.Reset(cmd.Context())
		},
	}
}

func initCmd() *cobra.Command {
	var ec bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the encoder and decoder stages",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}
			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			return dev.Init(cmd.Context(), protocol.InitFlags{
				Encoder:       true,
				Decoder:       true,
				EchoCanceller: ec,
			})
		},
	}
	cmd.Flags().BoolVar(&ec, "echo-canceller", false, "also initialize the echo canceller")
	return cmd
}

func rateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <index>",
		Short: "Select a RATET rate table entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return fmt.Errorf("rate index: %w", err)
			}
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}
			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			return dev.SetRateT(cmd.Context(), byte(idx))
		},
	}
}

func encodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode <in.wav> <out.ambe>",
		Short: "Compress a mono 16-bit WAV file to raw channel frames",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}

			wavData, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			samples, rate, err := audio.DecodeWAV(wavData)
			if err != nil {
				return err
			}
			if rate != audio.SampleRate {
				return fmt.Errorf("input is %d Hz, the chip wants %d Hz", rate, audio.SampleRate)
			}

			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			ctx := cmd.Context()
			if err := prepare(ctx, dev, cfg); err != nil {
				return err
			}

			var frames []protocol.BitArray
			for i, pcm := range audio.Frames(samples) {
				pkt, err := dev.EncodeSpeech(ctx, pcm)
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if pkt.ChanData == nil {
					return fmt.Errorf("frame %d: response carried no channel data", i)
				}
				frames = append(frames, *pkt.ChanData)
			}

			out, err := os.Create(args[1])
			if err != nil {
				return err
			}
			defer out.Close()
			return audio.WriteChannelFrames(out, frames)
		},
	}
}

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <in.ambe> <out.wav>",
		Short: "Decompress raw channel frames to a mono 16-bit WAV file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveSettings()
			if err != nil {
				return err
			}

			in, err := os.Open(args[0])
			if err != nil {
				return err
			}
			frames, err := audio.ReadChannelFrames(in)
			in.Close()
			if err != nil {
				return err
			}

			dev, port, err := openDevice(cfg)
			if err != nil {
				return err
			}
			defer port.Close()

			ctx := cmd.Context()
			if err := prepare(ctx, dev, cfg); err != nil {
				return err
			}

			var samples []int16
			for i, f := range frames {
				pkt, err := dev.DecodeChannel(ctx, f)
				if err != nil {
					return fmt.Errorf("frame %d: %w", i, err)
				}
				if pkt.Samples == nil {
					return fmt.Errorf("frame %d: response carried no speech data", i)
				}
				samples = append(samples, pkt.Samples...)
			}

			wavData, err := audio.EncodeWAV(samples, audio.SampleRate)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], wavData, 0o644)
		},
	}
}
