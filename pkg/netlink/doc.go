/*
Package netlink bridges the route/neighbor/EVPN subsystem (pkg/nodes/route)
to the host's routing table. It shells out to the "ip" command rather than
speaking the netlink wire protocol directly, grounded on the teacher's
pkg/network host-port publisher, which manages host firewall state the same
way: build an argument list, exec it, track what was installed for later
cleanup.
*/
package netlink
