package main

import (
	"fmt"
	"net"
	"sync"

	"github.com/lumatime/lumen-core/internal/link"
)

// hostRadio adapts the host operating system's network stack to the
// link.Radio interface. The OS owns the actual wireless association;
// this adapter reports whether a usable non-loopback interface is up
// and synthesizes link events from that view.
//
// On appliance builds a real driver binding replaces this adapter; the
// machine's semantics do not change.
type hostRadio struct {
	mu         sync.Mutex
	ssid       string
	associated bool

	// notify delivers synthesized events to the link machine. Set once
	// during wiring, before the machine starts.
	notify func(link.Event)
}

func newHostRadio() *hostRadio {
	return &hostRadio{}
}

// Connect records the target network and confirms host connectivity.
// The link-up event is delivered asynchronously, mirroring a real
// driver's association callback.
func (r *hostRadio) Connect(creds link.Credentials) error {
	addr, ok := hostAddress()
	if !ok {
		return fmt.Errorf("no usable network interface")
	}

	r.mu.Lock()
	r.ssid = creds.SSID
	r.associated = true
	notify := r.notify
	r.mu.Unlock()

	if notify != nil {
		go notify(link.Event{Kind: link.EventLinkUp, Address: addr})
	}
	return nil
}

func (r *hostRadio) Disconnect() error {
	r.mu.Lock()
	r.associated = false
	r.mu.Unlock()
	return nil
}

// AccessPoint reports the current association. The monitor uses this
// to reconcile believed state against the host's actual connectivity.
func (r *hostRadio) AccessPoint() (link.AccessPoint, error) {
	r.mu.Lock()
	ssid := r.ssid
	associated := r.associated
	r.mu.Unlock()

	if !associated {
		return link.AccessPoint{}, fmt.Errorf("not associated")
	}
	if _, ok := hostAddress(); !ok {
		return link.AccessPoint{}, fmt.Errorf("no usable network interface")
	}
	return link.AccessPoint{SSID: ssid}, nil
}

func (r *hostRadio) SetPowerSave(bool) error {
	return nil
}

// hostAddress returns the first global unicast address of an up,
// non-loopback interface.
func hostAddress() (string, bool) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", false
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok || ipNet.IP.IsLoopback() || !ipNet.IP.IsGlobalUnicast() {
				continue
			}
			return ipNet.IP.String(), true
		}
	}
	return "", false
}
