package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/ovncontroller/pkg/bridge"
	"github.com/cuemby/ovncontroller/pkg/config"
	"github.com/cuemby/ovncontroller/pkg/coordinator"
	"github.com/cuemby/ovncontroller/pkg/engine"
	"github.com/cuemby/ovncontroller/pkg/log"
	"github.com/cuemby/ovncontroller/pkg/metrics"
	"github.com/cuemby/ovncontroller/pkg/model"
	"github.com/cuemby/ovncontroller/pkg/monitor"
	"github.com/cuemby/ovncontroller/pkg/netlink"
	"github.com/cuemby/ovncontroller/pkg/nodes"
	"github.com/cuemby/ovncontroller/pkg/nodes/route"
	"github.com/cuemby/ovncontroller/pkg/openflow"
	"github.com/cuemby/ovncontroller/pkg/ovsdb"
	"github.com/cuemby/ovncontroller/pkg/translate"
	"github.com/cuemby/ovncontroller/pkg/unixctl"
	"github.com/spf13/cobra"
)

// runDaemon wires the full node graph and drives it until a shutdown signal
// arrives (spec.md §4.1, §5). The cobra flag parsing and process lifecycle
// here are ambient stack, not the Non-goal deep daemon-bootstrap machinery;
// southbound/vswitch wire-protocol decoding stays behind the pkg/ovsdb
// Source[R] seam, which spec.md §1 explicitly leaves opaque.
func runDaemon(cmd *cobra.Command, args []string) error {
	logger := log.WithComponent("main")

	ovnsbRemote, _ := cmd.Flags().GetString("ovnsb-db")
	ovsRemote, _ := cmd.Flags().GetString("ovs-db")
	chassisFlag, _ := cmd.Flags().GetString("chassis")
	overridePath, _ := cmd.Flags().GetString("system-id-override")
	unixctlPath, _ := cmd.Flags().GetString("unixctl-path")
	ctZoneDBPath, _ := cmd.Flags().GetString("ct-zone-db")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Database connections ---

	sbDialer := ovsdb.NewDialer("southbound", ovnsbRemote)
	ovsDialer := ovsdb.NewDialer("vswitch", ovsRemote)

	// --- Southbound tables ---

	chassisTbl := ovsdb.NewTable[model.Chassis]("chassis")
	chassisPrivateTbl := ovsdb.NewTable[model.ChassisPrivate]("chassis_private")
	templateVarTbl := ovsdb.NewTable[model.ChassisTemplateVar]("chassis_template_var")
	datapathBindingTbl := ovsdb.NewTable[model.DatapathBinding]("datapath_binding")
	portBindingTbl := ovsdb.NewTable[model.PortBinding]("port_binding")
	logicalFlowTbl := ovsdb.NewTable[model.LogicalFlow]("logical_flow")
	addressSetTbl := ovsdb.NewTable[model.AddressSet]("address_set")
	portGroupTbl := ovsdb.NewTable[model.PortGroup]("port_group")
	loadBalancerTbl := ovsdb.NewTable[model.LoadBalancer]("load_balancer")
	sbGlobalTbl := ovsdb.NewTable[model.SBGlobal]("sb_global")
	advertisedRouteTbl := ovsdb.NewTable[model.AdvertisedRoute]("advertised_route")
	advertisedMACBindingTbl := ovsdb.NewTable[model.AdvertisedMACBinding]("advertised_mac_binding")
	logicalDPGroupTbl := ovsdb.NewTable[model.LogicalDPGroup]("logical_dp_group")
	macBindingTbl := ovsdb.NewTable[model.MACBinding]("mac_binding")
	staticMACBindingTbl := ovsdb.NewTable[model.StaticMACBinding]("static_mac_binding")
	fdbTbl := ovsdb.NewTable[model.FDB]("fdb")
	multicastGroupTbl := ovsdb.NewTable[model.MulticastGroup]("multicast_group")

	// --- Virtual-switch tables ---

	interfaceTbl := ovsdb.NewTable[model.Interface]("interface")
	openVSwitchTbl := ovsdb.NewTable[model.OpenVSwitch]("open_vswitch")
	bridgeTbl := ovsdb.NewTable[model.Bridge]("bridge")

	eng := engine.New()

	sbLeaves := []engine.Node{
		ovsdb.NewLeafNode("chassis", chassisTbl, &dbSource[model.Chassis]{dialer: sbDialer}),
		ovsdb.NewLeafNode("chassis_private", chassisPrivateTbl, &dbSource[model.ChassisPrivate]{dialer: sbDialer}),
		ovsdb.NewLeafNode("chassis_template_var", templateVarTbl, &dbSource[model.ChassisTemplateVar]{dialer: sbDialer}),
		ovsdb.NewLeafNode("datapath_binding", datapathBindingTbl, &dbSource[model.DatapathBinding]{dialer: sbDialer}),
		ovsdb.NewLeafNode("port_binding", portBindingTbl, &dbSource[model.PortBinding]{dialer: sbDialer}),
		ovsdb.NewLeafNode("logical_flow", logicalFlowTbl, &dbSource[model.LogicalFlow]{dialer: sbDialer}),
		ovsdb.NewLeafNode("sb/address_set", addressSetTbl, &dbSource[model.AddressSet]{dialer: sbDialer}),
		ovsdb.NewLeafNode("sb/port_group", portGroupTbl, &dbSource[model.PortGroup]{dialer: sbDialer}),
		ovsdb.NewLeafNode("sb/load_balancer", loadBalancerTbl, &dbSource[model.LoadBalancer]{dialer: sbDialer}),
		ovsdb.NewLeafNode("sb_global", sbGlobalTbl, &dbSource[model.SBGlobal]{dialer: sbDialer}),
		ovsdb.NewLeafNode("advertised_route", advertisedRouteTbl, &dbSource[model.AdvertisedRoute]{dialer: sbDialer}),
		ovsdb.NewLeafNode("advertised_mac_binding", advertisedMACBindingTbl, &dbSource[model.AdvertisedMACBinding]{dialer: sbDialer}),
		ovsdb.NewLeafNode("logical_dp_group", logicalDPGroupTbl, &dbSource[model.LogicalDPGroup]{dialer: sbDialer}),
		ovsdb.NewLeafNode("mac_binding", macBindingTbl, &dbSource[model.MACBinding]{dialer: sbDialer}),
		ovsdb.NewLeafNode("static_mac_binding", staticMACBindingTbl, &dbSource[model.StaticMACBinding]{dialer: sbDialer}),
		ovsdb.NewLeafNode("fdb", fdbTbl, &dbSource[model.FDB]{dialer: sbDialer}),
		ovsdb.NewLeafNode("multicast_group", multicastGroupTbl, &dbSource[model.MulticastGroup]{dialer: sbDialer}),
	}
	vswitchLeaves := []engine.Node{
		ovsdb.NewLeafNode("interface", interfaceTbl, &dbSource[model.Interface]{dialer: ovsDialer}),
		ovsdb.NewLeafNode("open_vswitch", openVSwitchTbl, &dbSource[model.OpenVSwitch]{dialer: ovsDialer}),
		ovsdb.NewLeafNode("bridge", bridgeTbl, &dbSource[model.Bridge]{dialer: ovsDialer}),
	}
	for _, leaf := range sbLeaves {
		if err := eng.Register(leaf); err != nil {
			return err
		}
	}
	for _, leaf := range vswitchLeaves {
		if err := eng.Register(leaf); err != nil {
			return err
		}
	}

	// --- Write coordination ---

	coord := coordinator.New()
	sbro := coordinator.NewSBReadOnlyNode(coord)
	if err := eng.Register(sbro); err != nil {
		return err
	}

	// --- Configuration and chassis identity ---

	chassisName := chassisFlag
	resolveChassis := func() string {
		if chassisName != "" {
			return chassisName
		}
		ovs := openVSwitchTbl.Snapshot()
		var externalIDs map[string]string
		if len(ovs) > 0 {
			externalIDs = ovs[0].ExternalIDs
		}
		id, err := config.ResolveChassis(chassisFlag, overridePath, externalIDs)
		if err != nil {
			return ""
		}
		chassisName = id
		return chassisName
	}

	cfgFor := func() config.Config {
		ovs := openVSwitchTbl.Snapshot()
		if len(ovs) == 0 {
			return config.FromExternalIDs(nil)
		}
		return config.FromExternalIDs(ovs[0].ExternalIDs)
	}

	// --- Derived-state node graph (spec.md §4.4-§4.10) ---

	runtimeData := &nodes.RuntimeDataNode{
		Interfaces:       interfaceTbl,
		PortBindings:     portBindingTbl,
		DatapathBindings: datapathBindingTbl,
		Chassis:          resolveChassis,
		Coordinator:      coord,
	}
	if err := registerWithEdges(eng, runtimeData, "interface", "port_binding", "datapath_binding", coordinator.SBReadOnlyNodeName); err != nil {
		return err
	}

	mon := monitor.NewManager()

	ctZoneStore, err := nodes.OpenCtZoneStore(ctZoneDBPath)
	if err != nil {
		return fmt.Errorf("main: opening ct-zone store: %w", err)
	}
	defer ctZoneStore.Close()

	ctZone := &nodes.CtZoneNode{
		RuntimeData: runtimeData,
		Store:       ctZoneStore,
	}
	if err := registerWithEdges(eng, ctZone, nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	seqno := openflow.NewSeqnoTracker()
	ofWriter := &loggingWriter{seqno: seqno}

	ifStatus := &nodes.IfStatusNode{
		RuntimeData: runtimeData,
		Writer:      ofWriter,
		Seqno:       seqno,
	}
	if err := registerWithEdges(eng, ifStatus, nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	extend := nodes.NewExtendTables()
	cache := nodes.NewLflowCache(100000, 512*1024*1024, 50)
	depGraph := nodes.NewDepGraph()

	lflowTranslator := &translate.StubLogicalFlowTranslator{}
	pflowTranslator := &translate.StubPhysicalFlowTranslator{}

	addrSet := &nodes.AddrSetNode{
		AddressSets:  addressSetTbl,
		TemplateVars: templateVarTbl,
		Chassis:      resolveChassis,
		Deps:         depGraph,
	}
	if err := registerWithEdges(eng, addrSet, "sb/address_set", "chassis_template_var"); err != nil {
		return err
	}

	portGroup := &nodes.PortGroupNode{
		PortGroups:  portGroupTbl,
		RuntimeData: runtimeData,
	}
	if err := registerWithEdges(eng, portGroup, "sb/port_group", nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	loadBalancer := &nodes.LoadBalancerNode{
		LoadBalancers: loadBalancerTbl,
		RuntimeData:   runtimeData,
		Extend:        extend,
	}
	if err := registerWithEdges(eng, loadBalancer, "sb/load_balancer", nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	lflowOutput := &nodes.LflowOutputNode{
		RuntimeData:  runtimeData,
		LogicalFlows: logicalFlowTbl,
		AddrSets:     addrSet,
		PortGroups:   portGroup,
		Translator:   lflowTranslator,
		Cache:        cache,
		Extend:       extend,
		Writer:       ofWriter,
	}
	if err := registerWithEdges(eng, lflowOutput,
		nodes.RuntimeDataNodeName, "logical_flow",
		nodes.AddrSetNodeName, "sb/address_set",
		nodes.PortGroupNodeName, "sb/port_group",
		"chassis_template_var", "logical_dp_group", "sb/load_balancer",
		"mac_binding", "static_mac_binding", "fdb", "multicast_group",
	); err != nil {
		return err
	}

	pflowOutput := &nodes.PflowOutputNode{
		RuntimeData:  runtimeData,
		IfStatus:     ifStatus,
		PortBindings: portBindingTbl,
		Chassis:      resolveChassis,
		Translator:   pflowTranslator,
	}
	if err := registerWithEdges(eng, pflowOutput, nodes.RuntimeDataNodeName, nodes.IfStatusNodeName, "port_binding"); err != nil {
		return err
	}

	nbCfg := &nodes.NbCfgNode{
		SBGlobal:        sbGlobalTbl,
		ChassisPrivates: chassisPrivateTbl,
		ChassisName:     resolveChassis,
		Monitor:         mon,
		Seqno:           seqno,
		Writer:          ofWriter,
		Coordinator:     coord,
	}
	if err := registerWithEdges(eng, nbCfg, "sb_global", "chassis_private", coordinator.SBReadOnlyNodeName); err != nil {
		return err
	}

	// --- Route/neighbor/EVPN subsystem (spec.md §4.10) ---

	routeTbl := netlink.NewTable()
	neighborTbl := netlink.NewNeighborTable()

	devMapping := func() map[string]string { return cfgFor().DynamicRoutingPortMapping }
	resolveDev := func(port model.UUID) (string, bool) {
		dev, ok := devMapping()[string(port)]
		return dev, ok
	}
	resolveDatapathDev := func(dp model.UUID) (string, bool) {
		dev, ok := devMapping()[string(dp)]
		return dev, ok
	}
	portDatapath := func(port model.UUID) (model.UUID, bool) {
		for _, pb := range portBindingTbl.Snapshot() {
			if pb.UUID == port {
				return pb.Datapath, true
			}
		}
		return "", false
	}

	advertisedRouteSync := &route.AdvertisedRouteSyncNode{
		AdvertisedRoutes: advertisedRouteTbl,
		LocalDatapaths:   runtimeData.LocalDatapaths,
		ResolveDev:       resolveDev,
		Routes:           routeTbl,
	}
	if err := registerWithEdges(eng, advertisedRouteSync, "advertised_route", nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	learnedRouteSync := &route.LearnedRouteSyncNode{
		LocalPorts:   runtimeData.LocalPorts,
		ResolveDev:   resolveDev,
		PortDatapath: portDatapath,
		Source:       &netlinkRouteSource{},
		Coordinator:  coord,
	}
	if err := registerWithEdges(eng, learnedRouteSync, nodes.RuntimeDataNodeName, coordinator.SBReadOnlyNodeName); err != nil {
		return err
	}

	evpnSync := &route.EvpnSyncNode{
		AdvertisedMACBindings: advertisedMACBindingTbl,
		LocalDatapaths:        runtimeData.LocalDatapaths,
		ResolveDatapathDev:    resolveDatapathDev,
		Neighbors:             neighborTbl,
	}
	if err := registerWithEdges(eng, evpnSync, "advertised_mac_binding", nodes.RuntimeDataNodeName); err != nil {
		return err
	}

	// --- Control surface (spec.md §4.12, §6) ---

	ctlServer := unixctl.NewServer(unixctlPath)
	unixctl.RegisterDaemonCommands(ctlServer, unixctl.Dependencies{
		Exit:      cancel,
		Recompute: eng.SetForceRecompute,
		Status: func() string {
			health := metrics.GetHealth()
			return fmt.Sprintf("chassis=%s epoch=%d sb-writable=%t health=%s", resolveChassis(), eng.Epoch(), coord.Writable(coordinator.SouthboundDB), health.Status)
		},
		CtZoneList: func() map[string]int32 {
			return ctZone.Zones()
		},
		GroupTableList: func() map[int32]string {
			return extend.GroupOwners()
		},
		MeterTableList: func() map[int32]string {
			return extend.MeterOwners()
		},
		LflowCacheFlush: cache.Flush,
		LflowCacheStats: func() (int, int) {
			return cache.Len(), cache.SizeBytes()
		},
	})
	go func() {
		if err := ctlServer.ListenAndServe(ctx); err != nil {
			logger.Error().Err(err).Msg("unixctl server exited")
		}
	}()
	defer ctlServer.Close()

	// --- Metrics HTTP endpoint ---

	metrics.RegisterComponent("engine", true, "starting")
	metrics.RegisterComponent("southbound", false, "not yet connected")
	metrics.RegisterComponent("vswitch", false, "not yet connected")

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		mux.Handle("/live", metrics.LivenessHandler())
		if err := http.ListenAndServe(metricsAddr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server exited")
		}
	}()
	logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")

	if err := eng.InitializeAll(ctx); err != nil {
		return fmt.Errorf("main: initializing engine: %w", err)
	}
	defer eng.CleanupAll()

	// Integration bridge bootstrap is best-effort at startup; a failure here
	// does not stop the daemon since br-int may already be managed out of
	// band (spec.md §6 "Integration bridge creation").
	coord.SetWritable(coordinator.VswitchDB, true)
	bridgeStore := &vswitchBridgeStore{bridges: bridgeTbl, coordinator: coord}
	if err := bridge.EnsureIntegrationBridge(bridgeStore, cfgFor()); err != nil {
		logger.Warn().Err(err).Msg("integration bridge bootstrap failed")
	}
	if len(coord.PendingFor(coordinator.VswitchDB)) > 0 {
		coord.Commit(ctx, &loggingCommitter{})
	}
	coord.SetWritable(coordinator.VswitchDB, ovsDialer.Connected())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	logger.Info().Str("chassis", resolveChassis()).Msg("ovn-controller started")

	// The engine's only suspension point is PollBlock (spec.md §5); a
	// one-second fallback tick keeps the loop alive even if every real
	// input adapter's wake channel stays quiet, e.g. while a database
	// connection is down and nothing else would otherwise wake the loop.
	fallbackCh := make(chan struct{}, 1)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case fallbackCh <- struct{}{}:
				default:
				}
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("ovn-controller stopped")
			return nil
		default:
		}

		scope := monitor.LocalScope{
			LocalDatapaths: runtimeData.LocalDatapaths(),
			LocalPorts:     runtimeData.LocalPorts(),
			RelatedPorts:   runtimeData.RelatedPorts(),
		}
		mon.SetMonitorAll(cfgFor().OvnMonitorAll)
		mon.Recompute(scope, resolveChassis())
		coord.SetWritable(coordinator.SouthboundDB, sbDialer.Connected() && mon.Acked())
		coord.SetWritable(coordinator.VswitchDB, ovsDialer.Connected())

		coord.BeginIteration()
		recomputeAllowed := true
		result, err := eng.Run(ctx, recomputeAllowed)
		if err != nil {
			logger.Error().Err(err).Msg("engine iteration failed")
			metrics.UpdateComponent("engine", false, err.Error())
		} else {
			metrics.UpdateComponent("engine", true, result.String())
		}

		metrics.UpdateComponent("southbound", sbDialer.Connected(), "")
		metrics.UpdateComponent("vswitch", ovsDialer.Connected(), "")

		commitResult := coord.Commit(ctx, &loggingCommitter{})
		coordinator.ApplyRetry(commitResult, eng)

		metrics.LocalDatapathsTotal.Set(float64(len(runtimeData.LocalDatapaths())))
		metrics.LocalPortsTotal.Set(float64(len(runtimeData.LocalPorts())))
		metrics.LflowCacheEntries.Set(float64(cache.Len()))
		metrics.LflowCacheBytes.Set(float64(cache.SizeBytes()))
		metrics.CtZonesAllocated.Set(float64(len(ctZone.Zones())))

		sources := []engine.WakeSource{
			{Name: "fallback", Ready: fallbackCh},
		}
		engine.PollBlock(ctx, sources)
	}
}

// registerWithEdges registers n and wires each name in inputs as one of its
// inputs, in order (spec.md §3 "a list of input edges (ordered)").
func registerWithEdges(eng *engine.Engine, n engine.Node, inputs ...string) error {
	if err := eng.Register(n); err != nil {
		return err
	}
	for _, in := range inputs {
		if err := eng.AddEdge(in, n.Name()); err != nil {
			return err
		}
	}
	return nil
}
