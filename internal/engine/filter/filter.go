// Package filter decides which source IPs are subject to detection at all.
package filter

// Filter evaluates source IPs against the configured whitelist and
// blacklist. It holds no mutable state after construction and is safe for
// concurrent reads.
type Filter struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// New builds a Filter from the configured IP lists.
func New(whitelist, blacklist []string) *Filter {
	f := &Filter{
		whitelist: make(map[string]struct{}, len(whitelist)),
		blacklist: make(map[string]struct{}, len(blacklist)),
	}
	for _, ip := range whitelist {
		f.whitelist[ip] = struct{}{}
	}
	for _, ip := range blacklist {
		f.blacklist[ip] = struct{}{}
	}
	return f
}

// IsSuspicious reports whether traffic from ip should be evaluated by the
// detectors. Blacklisted IPs are always suspicious, even when also
// whitelisted. With a non-empty whitelist, any unlisted IP is suspicious.
// With both lists empty, all traffic is evaluated; nothing is "safe by
// default" unless explicitly whitelisted.
func (f *Filter) IsSuspicious(ip string) bool {
	if _, ok := f.blacklist[ip]; ok {
		return true
	}
	if len(f.whitelist) > 0 {
		_, ok := f.whitelist[ip]
		return !ok
	}
	return true
}
