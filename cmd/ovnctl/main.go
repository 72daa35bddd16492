package main

import (
	"fmt"
	"os"

	"github.com/cuemby/ovncontroller/pkg/unixctl"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ovn-ctl",
	Short: "Control client for ovn-controller's unixctl socket",
	Long: `ovn-ctl dials a running ovn-controller's control socket and issues
one of its registered commands, printing the textual result.`,
}

func init() {
	rootCmd.PersistentFlags().String("socket", "/var/run/ovn/ovn-controller.ctl", "Path to the control socket")

	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(ctZoneListCmd)
	rootCmd.AddCommand(groupTableListCmd)
	rootCmd.AddCommand(meterTableListCmd)
	rootCmd.AddCommand(lflowCacheFlushCmd)
	rootCmd.AddCommand(lflowCacheStatsCmd)
}

func dialFromFlags(cmd *cobra.Command) (*unixctl.Client, error) {
	path, _ := cmd.Flags().GetString("socket")
	return unixctl.Dial(path)
}

func runOne(cmd *cobra.Command, command string, args ...string) error {
	c, err := dialFromFlags(cmd)
	if err != nil {
		return fmt.Errorf("ovn-ctl: %w", err)
	}
	defer c.Close()

	result, err := c.Call(command, args...)
	if err != nil {
		return fmt.Errorf("ovn-ctl: %s: %w", command, err)
	}
	if result != "" {
		fmt.Println(result)
	}
	return nil
}

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Issue an arbitrary control-surface command",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOne(cmd, args[0], args[1:]...)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "debug/status") },
}

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Force a full recompute on the next iteration",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "recompute") },
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the main loop",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "debug/pause") },
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume the main loop",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "debug/resume") },
}

var ctZoneListCmd = &cobra.Command{
	Use:   "ct-zone-list",
	Short: "List allocated connection-tracking zone ids",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "ct-zone-list") },
}

var groupTableListCmd = &cobra.Command{
	Use:   "group-table-list",
	Short: "List allocated OpenFlow group ids",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "group-table-list") },
}

var meterTableListCmd = &cobra.Command{
	Use:   "meter-table-list",
	Short: "List allocated OpenFlow meter ids",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "meter-table-list") },
}

var lflowCacheFlushCmd = &cobra.Command{
	Use:   "lflow-cache-flush",
	Short: "Flush the logical-flow translation cache",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "lflow-cache/flush") },
}

var lflowCacheStatsCmd = &cobra.Command{
	Use:   "lflow-cache-stats",
	Short: "Show logical-flow translation cache statistics",
	RunE:  func(cmd *cobra.Command, args []string) error { return runOne(cmd, "lflow-cache/show-stats") },
}
