package discovery

import (
	"fmt"
	"log"
	"sort"
	"strings"

	nmap "github.com/Ullaakut/nmap/v3"

	"floorlink/internal/catalog"
	"floorlink/internal/domain"
)

// Host is one live host from a scan
type Host struct {
	IP        string
	Hostname  string
	MAC       string
	Vendor    string
	OpenPorts []int
	Services  []string
}

// Label is the short host name when there is one, otherwise the address.
func (h Host) Label() string {
	if h.Hostname == "" {
		return h.IP
	}
	if short, _, ok := strings.Cut(h.Hostname, "."); ok && len(short) > 2 {
		return short
	}
	return h.Hostname
}

var wellKnownPorts = map[int]string{
	22:   "ssh",
	53:   "dns",
	80:   "http",
	161:  "snmp",
	443:  "https",
	445:  "smb",
	3389: "rdp",
	5900: "vnc",
	8080: "http-alt",
}

// HostsFromRun extracts the hosts that are up from an nmap result
func HostsFromRun(run *nmap.Run) []Host {
	if run == nil {
		return nil
	}
	var hosts []Host
	for _, h := range run.Hosts {
		if len(h.Addresses) == 0 || h.Status.State != "up" {
			continue
		}
		hosts = append(hosts, hostFromNmap(h))
	}
	return hosts
}

func hostFromNmap(h nmap.Host) Host {
	var host Host
	for _, addr := range h.Addresses {
		switch addr.AddrType {
		case "ipv4":
			if host.IP == "" {
				host.IP = addr.Addr
			}
		case "mac":
			host.MAC = strings.ToUpper(addr.Addr)
			host.Vendor = addr.Vendor
		}
	}
	if host.IP == "" {
		host.IP = h.Addresses[0].Addr
	}
	if len(h.Hostnames) > 0 {
		host.Hostname = h.Hostnames[0].Name
	}

	for _, p := range h.Ports {
		if p.State.State != "open" {
			continue
		}
		host.OpenPorts = append(host.OpenPorts, int(p.ID))
		name := p.Service.Name
		if name == "" {
			name = wellKnownPorts[int(p.ID)]
		}
		if name == "" {
			name = fmt.Sprintf("unknown-%d", p.ID)
		}
		host.Services = append(host.Services, name)
	}
	sort.Ints(host.OpenPorts)
	return host
}

// InferType guesses an item type from open ports. Hosts with nothing
// recognisable are workstations.
func InferType(ports []int) string {
	open := make(map[int]bool, len(ports))
	for _, p := range ports {
		open[p] = true
	}
	web := open[80] || open[443] || open[8080]

	switch {
	case open[53] && web:
		return "router"
	case open[161] && !open[22]:
		return "switch"
	case open[22] || web:
		return "server"
	default:
		return "workstation"
	}
}

// Items places one item per new host on grid. Hosts whose address already
// appears as an "ip" property in existing are skipped, so rescanning adds
// only newcomers. Non-router items get their uplink pointed at the first
// router when they have none.
func Items(cat *catalog.Catalog, hosts []Host, existing []domain.Item, grid catalog.Grid) []domain.Item {
	known := make(map[string]bool)
	all := append([]domain.Item(nil), existing...)
	for _, item := range existing {
		if ip, ok := item.Properties.Get("ip"); ok && ip != "" {
			known[ip] = true
		}
	}

	var placed []domain.Item
	for _, h := range hosts {
		if h.IP == "" || known[h.IP] {
			continue
		}
		known[h.IP] = true

		typeName := InferType(h.OpenPorts)
		if _, ok := cat.Get(typeName); !ok {
			typeName = fallbackType(cat)
		}
		item, err := cat.Place(typeName, grid.At(len(all)), all)
		if err != nil {
			log.Printf("Discovery: skipping %s: %v", h.IP, err)
			continue
		}
		item.Label = h.Label()
		item.Properties = item.Properties.Set("ip", h.IP)
		if h.MAC != "" {
			item.Properties = item.Properties.Set("mac", h.MAC)
		}
		if len(h.Services) > 0 {
			item.Properties = item.Properties.Set("services", strings.Join(h.Services, ","))
		}
		all = append(all, item)
		placed = append(placed, item)
	}

	router := firstOfType(all, "router")
	if router == "" {
		return placed
	}
	for i := range placed {
		if placed[i].Type == "router" {
			continue
		}
		if up, _ := placed[i].Properties.Get("uplink"); up == "" {
			placed[i].Properties = placed[i].Properties.Set("uplink", router)
		}
	}
	return placed
}

func fallbackType(cat *catalog.Catalog) string {
	if _, ok := cat.Get("workstation"); ok {
		return "workstation"
	}
	if names := cat.Names(); len(names) > 0 {
		return names[0]
	}
	return ""
}

func firstOfType(items []domain.Item, typeName string) string {
	for _, item := range items {
		if item.Type == typeName {
			return item.ID
		}
	}
	return ""
}
