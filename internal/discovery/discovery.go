// Package discovery implements LAN peer discovery over mDNS/DNS-SD (C6, spec
// §4.6), advertising this node's presence and watching for others.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"

	"openclipboard/internal/domain/interfaces"
	"openclipboard/internal/logging"
	"openclipboard/internal/nodeerr"
)

var log = logging.Get("discovery")

const serviceType = "_openclipboard._tcp"
const serviceDomain = "local."

// peerTTL and sweepInterval govern disappearance detection (spec §4.6
// "emit on_peer_lost(peer_id) on disappearance"): zeroconf's Browse only
// calls back on (re)announcement, never on departure, so a peer not
// re-announced within peerTTL is swept and reported lost.
const (
	peerTTL       = 30 * time.Second
	sweepInterval = 10 * time.Second
)

// Discovery advertises this node via mDNS and watches for peer
// advertisements, reporting sightings through a DiscoverySink.
type Discovery struct {
	selfPeerID string

	mu      sync.Mutex
	started bool
	server  *zeroconf.Server
	cancel  context.CancelFunc

	seenMu sync.Mutex
	seen   map[string]time.Time
}

// New builds an idle Discovery for selfPeerID; selfPeerID is used to filter
// this node's own advertisement out of discovery callbacks.
func New(selfPeerID string) *Discovery {
	return &Discovery{selfPeerID: selfPeerID, seen: make(map[string]time.Time)}
}

// Start advertises name/port over mDNS and begins browsing for other
// OpenClipboard instances on the LAN. Calling Start while already started is
// a no-op (spec §4.6 "idempotent repeated start_discovery calls").
func (d *Discovery) Start(name string, port int, sink interfaces.DiscoverySink) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return nil
	}

	txt := []string{
		"peer_id=" + d.selfPeerID,
		"name=" + name,
		"port=" + strconv.Itoa(port),
	}
	server, err := zeroconf.Register(d.selfPeerID, serviceType, serviceDomain, port, txt, nil)
	if err != nil {
		return fmt.Errorf("%w: register mdns service: %v", nodeerr.ErrIO, err)
	}
	d.server = server

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.started = true

	go d.browseLoop(ctx, sink)
	go d.expireLoop(ctx, sink)
	log.Infof("advertising %s as %s on port %d", d.selfPeerID, name, port)
	return nil
}

// expireLoop periodically sweeps peers not re-announced within peerTTL and
// reports them lost, since mDNS browsing is announcement-driven and never
// tells us directly when a peer goes away.
func (d *Discovery) expireLoop(ctx context.Context, sink interfaces.DiscoverySink) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.sweepExpired(sink)
		}
	}
}

func (d *Discovery) sweepExpired(sink interfaces.DiscoverySink) {
	now := time.Now()

	d.seenMu.Lock()
	var lost []string
	for peerID, lastSeen := range d.seen {
		if now.Sub(lastSeen) > peerTTL {
			lost = append(lost, peerID)
			delete(d.seen, peerID)
		}
	}
	d.seenMu.Unlock()

	for _, peerID := range lost {
		log.Infof("peer %s not re-announced within %s, reporting lost", peerID, peerTTL)
		if sink != nil {
			sink.OnPeerLost(peerID)
		}
	}
}

func (d *Discovery) browseLoop(ctx context.Context, sink interfaces.DiscoverySink) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		log.Errorf("create mdns resolver: %v", err)
		return
	}

	entries := make(chan *zeroconf.ServiceEntry, 16)
	go func() {
		for entry := range entries {
			d.handleEntry(entry, sink)
		}
	}()

	if err := resolver.Browse(ctx, serviceType, serviceDomain, entries); err != nil {
		log.Errorf("browse mdns: %v", err)
	}
	<-ctx.Done()
}

func (d *Discovery) handleEntry(entry *zeroconf.ServiceEntry, sink interfaces.DiscoverySink) {
	fields := parseTXT(entry.Text)
	peerID := fields["peer_id"]
	if peerID == "" || peerID == d.selfPeerID {
		return
	}
	name := fields["name"]
	if name == "" {
		name = entry.Instance
	}

	var addr string
	if len(entry.AddrIPv4) > 0 {
		addr = net.JoinHostPort(entry.AddrIPv4[0].String(), strconv.Itoa(entry.Port))
	} else if len(entry.AddrIPv6) > 0 {
		addr = net.JoinHostPort(entry.AddrIPv6[0].String(), strconv.Itoa(entry.Port))
	} else {
		return
	}

	d.seenMu.Lock()
	d.seen[peerID] = time.Now()
	d.seenMu.Unlock()

	if sink != nil {
		sink.OnPeerDiscovered(peerID, name, addr)
	}
}

func parseTXT(records []string) map[string]string {
	out := make(map[string]string, len(records))
	for _, r := range records {
		for i := 0; i < len(r); i++ {
			if r[i] == '=' {
				out[r[:i]] = r[i+1:]
				break
			}
		}
	}
	return out
}

// Stop withdraws the mDNS advertisement and stops browsing.
func (d *Discovery) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.started {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.server != nil {
		d.server.Shutdown()
	}
	d.started = false

	d.seenMu.Lock()
	d.seen = make(map[string]time.Time)
	d.seenMu.Unlock()
}
