// Package app builds the groundlink command tree.
package app

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/groundlink-io/groundlink/cmd/groundlink/app/options"
	"github.com/groundlink-io/groundlink/internal/engine/firmware"
	"github.com/groundlink-io/groundlink/internal/engine/rate"
	"github.com/groundlink-io/groundlink/internal/mavlink"
	"github.com/groundlink-io/groundlink/pkg/log"
)

const commandDesc = `Groundlink is a ground-control protocol engine. It maintains a live mirror
of one vehicle's telemetry, issues acknowledged commands, transfers missions,
synchronizes the parameter catalog and serves the resulting state over HTTP.`

// NewCommand builds the root groundlink command.
func NewCommand() *cobra.Command {
	opts := options.NewOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:           "groundlink",
		Short:         "Run the Groundlink vehicle protocol engine",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(opts, configFile, cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to the groundlink configuration file.")
	opts.AddFlags(cmd.PersistentFlags())

	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newModesCommand())
	cmd.AddCommand(newRatesCommand(opts))

	return cmd
}

// loadConfig overlays the optional config file under the flag values and
// initializes logging. Explicit flags always win over file values.
func loadConfig(opts *options.Options, configFile string, cmd *cobra.Command) error {
	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to apply configuration: %w", err)
	}

	log.Init(opts.Log)
	return nil
}

func newRunCommand(opts *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect the vehicle link and serve the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Config()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			eng, err := cfg.New(ctx)
			if err != nil {
				return err
			}
			return eng.Run(ctx)
		},
	}
}

var vehicleTypes = map[string]uint8{
	"copter": mavlink.TypeQuadrotor,
	"rover":  mavlink.TypeGroundRover,
	"sub":    mavlink.TypeSubmarine,
	"plane":  mavlink.TypeFixedWing,
}

func newModesCommand() *cobra.Command {
	var autopilot, vehicleType string

	cmd := &cobra.Command{
		Use:   "modes",
		Short: "List the flight modes known for a firmware and vehicle type",
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, ok := vehicleTypes[vehicleType]
			if !ok {
				return fmt.Errorf("unknown vehicle type %q (want copter, rover, sub or plane)", vehicleType)
			}

			var fw firmware.Firmware = firmware.Generic{}
			if autopilot == "ardupilot" {
				fw = firmware.ArduPilot{}
			}

			table := uitable.New()
			table.AddRow("MODE", "VALUE", "INVOCABLE")
			for _, m := range fw.Modes(typ) {
				table.AddRow(m.Name, m.Value, !m.Internal)
			}
			fmt.Fprintln(os.Stdout, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&autopilot, "autopilot", "ardupilot", "Firmware family ('ardupilot' or 'generic').")
	cmd.Flags().StringVar(&vehicleType, "vehicle-type", "copter", "Vehicle type ('copter', 'rover', 'sub' or 'plane').")
	return cmd
}

func newRatesCommand(opts *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Show the effective telemetry rate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := rate.NewStore(opts.Engine.RatesFile, log.Std())
			if err != nil {
				return err
			}

			merged := rate.Merge(rate.Defaults(), store.Overrides())
			names := make([]string, 0, len(merged))
			for name := range merged {
				names = append(names, name)
			}
			sort.Strings(names)

			table := uitable.New()
			table.AddRow("MESSAGE", "MODE", "HZ", "INTERVAL_US")
			for _, name := range names {
				r := merged[name]
				table.AddRow(name, string(r.Mode), r.Hz, rate.IntervalMicros(r))
			}
			fmt.Fprintln(os.Stdout, table)
			return nil
		},
	}
}
