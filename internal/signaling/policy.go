package signaling

import "net"

// sameLocalNetwork decides whether a viewer may join a room hosted at
// hostAddr. Joins are open unless both sides sit on private/local IPv4
// ranges, in which case they must share the first three octets: a
// LAN-hosted session stays on its LAN, while any public-address
// participant may join freely.
func sameLocalNetwork(hostAddr, viewerAddr string) bool {
	host := localIPv4(hostAddr)
	viewer := localIPv4(viewerAddr)
	if host == nil || viewer == nil {
		return true
	}
	return host[0] == viewer[0] && host[1] == viewer[1] && host[2] == viewer[2]
}

// localIPv4 returns the 4-byte form of addr when it is a private, loopback
// or link-local IPv4 address, nil otherwise. Addresses the policy cannot
// reason about (unparsable, IPv6, public) never cause a rejection.
func localIPv4(addr string) net.IP {
	if h, _, err := net.SplitHostPort(addr); err == nil {
		addr = h
	}
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil
	}
	if !ip.IsPrivate() && !ip.IsLoopback() && !ip.IsLinkLocalUnicast() {
		return nil
	}
	return v4
}
