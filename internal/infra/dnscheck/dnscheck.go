// Package dnscheck wraps the system resolver with bounded timeouts for
// domain verification probes.
package dnscheck

import (
	"context"
	"net"
	"strings"
	"time"
)

// Resolver performs CNAME lookups with a per-query timeout.
type Resolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// New creates a Resolver. A zero timeout defaults to 5 seconds.
func New(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		resolver: net.DefaultResolver,
		timeout:  timeout,
	}
}

// LookupCNAME resolves the canonical name for hostname. The returned target
// has its trailing dot removed. NXDOMAIN and timeouts come back as errors;
// callers treat any error as a failed probe, not a fault.
func (r *Resolver) LookupCNAME(ctx context.Context, hostname string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cname, err := r.resolver.LookupCNAME(ctx, hostname)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(cname, "."), nil
}
