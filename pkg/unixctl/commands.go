package unixctl

import (
	"context"
	"fmt"
	"strconv"
)

// Dependencies wires the control surface's command table to the running
// daemon's concrete state without this package importing pkg/engine or
// pkg/nodes directly — the caller (cmd/ovncontroller) supplies one closure
// per command, keeping unixctl a pure dispatch shell (spec.md §4.12, §6
// command list).
type Dependencies struct {
	Exit             func()
	Recompute        func()
	ResetSBCluster   func() error
	Pause            func()
	Resume           func()
	Status           func() string
	DelayNbCfgReport func(seconds int)
	CtZoneList       func() map[string]int32
	GroupTableList   func() map[int32]string
	MeterTableList   func() map[int32]string
	InjectPkt        func(microflow string) (string, error)
	LflowCacheFlush  func()
	LflowCacheStats  func() (entries int, bytes int)
	Dumps            map[string]func() string // keyed by the suffix after "debug/dump-"
}

// RegisterDaemonCommands registers every command named in spec.md §6
// against s, backed by deps.
func RegisterDaemonCommands(s *Server, deps Dependencies) {
	s.Register(Command{Name: "exit", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.Exit != nil {
			deps.Exit()
		}
		return "exiting", nil
	}})

	s.Register(Command{Name: "recompute", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.Recompute != nil {
			deps.Recompute()
		}
		return "recompute scheduled", nil
	}})

	s.Register(Command{Name: "sb-cluster-state-reset", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.ResetSBCluster == nil {
			return "", fmt.Errorf("unixctl: sb-cluster-state-reset not wired")
		}
		if err := deps.ResetSBCluster(); err != nil {
			return "", err
		}
		return "southbound connection state reset", nil
	}})

	s.Register(Command{Name: "debug/pause", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.Pause != nil {
			deps.Pause()
		}
		return "paused", nil
	}})

	s.Register(Command{Name: "debug/resume", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.Resume != nil {
			deps.Resume()
		}
		return "resumed", nil
	}})

	s.Register(Command{Name: "debug/status", ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.Status == nil {
			return "unknown", nil
		}
		return deps.Status(), nil
	}})

	s.Register(Command{Name: "debug/delay-nb-cfg-report", Handler: func(ctx context.Context, args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("unixctl: debug/delay-nb-cfg-report requires exactly one argument (seconds)")
		}
		seconds, err := strconv.Atoi(args[0])
		if err != nil {
			return "", fmt.Errorf("unixctl: invalid delay %q: %w", args[0], err)
		}
		if deps.DelayNbCfgReport != nil {
			deps.DelayNbCfgReport(seconds)
		}
		return fmt.Sprintf("nb_cfg report delayed by %ds", seconds), nil
	}})

	s.Register(Command{Name: "ct-zone-list", ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.CtZoneList == nil {
			return "", nil
		}
		return formatIntTable(deps.CtZoneList()), nil
	}})

	s.Register(Command{Name: "group-table-list", ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.GroupTableList == nil {
			return "", nil
		}
		return formatIDTable(deps.GroupTableList()), nil
	}})

	s.Register(Command{Name: "meter-table-list", ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.MeterTableList == nil {
			return "", nil
		}
		return formatIDTable(deps.MeterTableList()), nil
	}})

	s.Register(Command{Name: "inject-pkt", Handler: func(ctx context.Context, args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("unixctl: inject-pkt requires exactly one microflow argument")
		}
		if deps.InjectPkt == nil {
			return "", fmt.Errorf("unixctl: inject-pkt not wired")
		}
		return deps.InjectPkt(args[0])
	}})

	s.Register(Command{Name: "lflow-cache/flush", Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.LflowCacheFlush != nil {
			deps.LflowCacheFlush()
		}
		return "lflow cache flushed", nil
	}})

	s.Register(Command{Name: "lflow-cache/show-stats", ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
		if deps.LflowCacheStats == nil {
			return "", nil
		}
		entries, bytes := deps.LflowCacheStats()
		return fmt.Sprintf("entries=%d bytes=%d", entries, bytes), nil
	}})

	for suffix, dump := range deps.Dumps {
		suffix, dump := suffix, dump
		s.Register(Command{Name: "debug/dump-" + suffix, ReadOnly: true, Handler: func(ctx context.Context, args []string) (string, error) {
			return dump(), nil
		}})
	}
}

func formatIntTable(m map[string]int32) string {
	out := ""
	for k, v := range m {
		out += fmt.Sprintf("%s -> %d\n", k, v)
	}
	return out
}

func formatIDTable(m map[int32]string) string {
	out := ""
	for k, v := range m {
		out += fmt.Sprintf("%d: %s\n", k, v)
	}
	return out
}
