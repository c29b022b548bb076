// Package discovery turns an nmap scan of the local network into placed
// floor-plan items.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"strings"
	"time"

	nmap "github.com/Ullaakut/nmap/v3"
)

var (
	// ErrNoTargets is returned when a scan has nothing to scan.
	ErrNoTargets = errors.New("no scan targets")
	// ErrInvalidTarget wraps a malformed CIDR range.
	ErrInvalidTarget = errors.New("invalid target")
)

// DefaultPorts covers the services used to guess an item's type.
const DefaultPorts = "22,53,80,161,443,445,3389,5900,8080"

// Scanner runs nmap against a list of targets
type Scanner struct {
	targets           []string
	timeout           time.Duration
	portRange         string
	serviceDetection  bool
	skipHostDiscovery bool
}

// Option configures a Scanner
type Option func(*Scanner)

// WithTimeout bounds the scan of each target
func WithTimeout(d time.Duration) Option {
	return func(s *Scanner) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPortRange sets the ports to scan, e.g. "80,443" or "22,80-443".
// An invalid range keeps the previous one.
func WithPortRange(ports string) Option {
	return func(s *Scanner) {
		if validated, err := parsePorts(ports); err == nil {
			s.portRange = validated
		}
	}
}

// WithServiceDetection toggles version detection (-sV)
func WithServiceDetection(enabled bool) Option {
	return func(s *Scanner) {
		s.serviceDetection = enabled
	}
}

// WithSkipHostDiscovery treats every target as up (-Pn), for networks
// that drop ICMP.
func WithSkipHostDiscovery(skip bool) Option {
	return func(s *Scanner) {
		s.skipHostDiscovery = skip
	}
}

// NewScanner validates targets (CIDR ranges, addresses or host names) and
// applies opts.
func NewScanner(targets []string, opts ...Option) (*Scanner, error) {
	expanded, err := expandTargets(targets)
	if err != nil {
		return nil, err
	}
	if len(expanded) == 0 {
		return nil, ErrNoTargets
	}
	s := &Scanner{
		targets:   expanded,
		timeout:   5 * time.Minute,
		portRange: DefaultPorts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Targets returns the normalised target list
func (s *Scanner) Targets() []string {
	return append([]string(nil), s.targets...)
}

// Scan runs nmap over every target in turn and returns the hosts that are
// up. A failing target is logged and skipped; Scan fails only when every
// target failed.
func (s *Scanner) Scan(ctx context.Context) ([]Host, error) {
	log.Printf("Discovery: scanning %d targets: %v (ports %s)", len(s.targets), s.targets, s.portRange)

	var (
		hosts   []Host
		lastErr error
		okCount int
	)
	for _, target := range s.targets {
		run, err := s.scanTarget(ctx, target)
		if err != nil {
			log.Printf("Discovery: error scanning %s: %v", target, err)
			lastErr = err
			if ctx.Err() != nil {
				return hosts, ctx.Err()
			}
			continue
		}
		okCount++
		hosts = append(hosts, HostsFromRun(run)...)
	}
	if okCount == 0 && lastErr != nil {
		return nil, lastErr
	}

	log.Printf("Discovery: scan complete, %d hosts up", len(hosts))
	return hosts, nil
}

func (s *Scanner) scanTarget(ctx context.Context, target string) (*nmap.Run, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := []nmap.Option{
		nmap.WithTargets(target),
		nmap.WithPorts(s.portRange),
	}
	if s.serviceDetection {
		opts = append(opts, nmap.WithServiceInfo())
	}
	if s.skipHostDiscovery {
		opts = append(opts, nmap.WithSkipHostDiscovery())
	}

	scanner, err := nmap.NewScanner(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}
	if warnings != nil && len(*warnings) > 0 {
		log.Printf("Discovery: warnings for %s: %v", target, *warnings)
	}
	return result, nil
}

// expandTargets normalises CIDR ranges and passes other targets through.
// nmap expands the ranges itself.
func expandTargets(targets []string) ([]string, error) {
	var expanded []string
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if strings.Contains(target, "/") {
			_, ipNet, err := net.ParseCIDR(target)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidTarget, target, err)
			}
			expanded = append(expanded, ipNet.String())
			continue
		}
		expanded = append(expanded, target)
	}
	return expanded, nil
}

// parsePorts checks a port list such as "22,80-443,8080".
func parsePorts(portRange string) (string, error) {
	if strings.TrimSpace(portRange) == "" {
		return "", fmt.Errorf("empty port range")
	}
	for _, part := range strings.Split(portRange, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := parsePort(lo)
		if err != nil {
			return "", err
		}
		if !isRange {
			continue
		}
		end, err := parsePort(hi)
		if err != nil {
			return "", err
		}
		if end < start {
			return "", fmt.Errorf("invalid port range: %s", part)
		}
	}
	return portRange, nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return 0, fmt.Errorf("invalid port number: %s", s)
	}
	return port, nil
}
