/*
Package route implements the notify/status/diff-apply node pattern for the
route/neighbor/EVPN subsystem (spec.md §4.10): AdvertisedRouteSyncNode pushes
southbound-advertised routes into the host routing table via pkg/netlink,
LearnedRouteSyncNode reads the host's learned routes back and republishes
them as southbound LearnedRoute rows, and EvpnSyncNode maintains neighbor
entries for EVPN-advertised MAC/IP bindings.
*/
package route
