package main

import (
	"fmt"
	"os"

	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ovn-controller",
	Short: "Hypervisor-local OVN logical-to-physical network control daemon",
	Long: `ovn-controller watches the southbound logical-network database and
the local virtual-switch database, derives the OpenFlow and routing state
this chassis needs, and writes it back incrementally through a
dependency-ordered computation graph.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runDaemon,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"ovn-controller version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	rootCmd.Flags().String("ovnsb-db", "unix:/var/run/ovn/ovnsb_db.sock", "Southbound database remote")
	rootCmd.Flags().String("ovs-db", "unix:/var/run/openvswitch/db.sock", "Local virtual-switch database remote")
	rootCmd.Flags().String("chassis", "", "Chassis identity; overrides system-id-override and external_ids:system-id")
	rootCmd.Flags().String("system-id-override", "/etc/openvswitch/system-id-override", "Path to the system-id override file")
	rootCmd.Flags().String("unixctl-path", "/var/run/ovn/ovn-controller.ctl", "Control-surface Unix-domain socket path")
	rootCmd.Flags().String("ct-zone-db", "/var/lib/openvswitch/ovn-ct-zones.db", "Path to the local ct-zone persistence store")
	rootCmd.Flags().String("metrics-addr", "127.0.0.1:9476", "Prometheus metrics listen address")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}
