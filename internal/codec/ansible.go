package codec

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"floorlink/internal/catalog"
	"floorlink/internal/domain"
)

// AnsibleCodec imports an Ansible inventory as placed items and exports
// items back to an inventory grouped by type.
type AnsibleCodec struct {
	Grid catalog.Grid
}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec() *AnsibleCodec {
	return &AnsibleCodec{Grid: catalog.DefaultGrid()}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
	Hosts    map[string]ansibleHost     `yaml:"hosts,omitempty"`
	Vars     map[string]interface{}     `yaml:"vars,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
	Vars  map[string]interface{} `yaml:"vars,omitempty"`
}

type ansibleHost struct {
	AnsibleHost string                 `yaml:"ansible_host,omitempty"`
	Vars        map[string]interface{} `yaml:",inline"`
}

// Parse imports items from an Ansible inventory. Hosts are visited in
// group then host name order, laid out on the grid, and every host is
// given an uplink to the router or gateway if one is found.
func (c *AnsibleCodec) Parse(r io.Reader) (*domain.Project, error) {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		return nil, fmt.Errorf("failed to parse Ansible inventory: %w", err)
	}

	var items []domain.Item
	seen := make(map[string]bool)
	var routerID string

	add := func(hostID, groupName string, host ansibleHost) {
		if seen[hostID] {
			return
		}
		seen[hostID] = true
		item := c.hostToItem(hostID, groupName, host)
		item.DocumentPosition = c.Grid.At(len(items))
		items = append(items, item)
		if routerID == "" && item.Type == "router" {
			routerID = hostID
		}
	}

	for _, groupName := range sortedKeys(inv.All.Children) {
		group := inv.All.Children[groupName]
		for _, hostID := range sortedKeys(group.Hosts) {
			add(hostID, groupName, group.Hosts[hostID])
		}
	}
	for _, hostID := range sortedKeys(inv.All.Hosts) {
		add(hostID, "all", inv.All.Hosts[hostID])
	}

	// Infer connections - connect all hosts to the router if found
	if routerID != "" {
		for i := range items {
			if items[i].ID != routerID && !items[i].Properties.Has("uplink") {
				items[i].Properties = items[i].Properties.Set("uplink", routerID)
			}
		}
	}

	return finish(&domain.Project{Items: items})
}

func (c *AnsibleCodec) hostToItem(hostID, groupName string, host ansibleHost) domain.Item {
	item := domain.Item{ID: hostID, Label: hostID}

	if host.AnsibleHost != "" {
		item.Properties = item.Properties.Set("ip", host.AnsibleHost)
	}
	item.Properties = item.Properties.Set("group", groupName)
	for _, key := range sortedKeys(host.Vars) {
		if key == "ansible_host" || domain.IsIdentityField(key) {
			continue
		}
		item.Properties = item.Properties.Set(key, fmt.Sprint(host.Vars[key]))
	}

	item.Type = inferType(groupName, host.Vars)
	return item
}

// inferType picks a catalog type from device_type, role, then group name.
func inferType(groupName string, vars map[string]interface{}) string {
	if deviceType, ok := vars["device_type"].(string); ok {
		switch strings.ToLower(deviceType) {
		case "router", "gateway", "firewall":
			return "router"
		case "switch", "access_point", "ap", "wifi":
			return "switch"
		case "workstation", "desktop", "laptop":
			return "workstation"
		case "server", "controller":
			return "server"
		}
	}

	if role, ok := vars["role"].(string); ok {
		roleLower := strings.ToLower(role)
		switch {
		case strings.Contains(roleLower, "router") || strings.Contains(roleLower, "gateway"):
			return "router"
		case strings.Contains(roleLower, "switch"):
			return "switch"
		case strings.Contains(roleLower, "desktop") || strings.Contains(roleLower, "workstation"):
			return "workstation"
		}
	}

	groupLower := strings.ToLower(groupName)
	switch {
	case strings.Contains(groupLower, "router") || strings.Contains(groupLower, "network"):
		return "router"
	case strings.Contains(groupLower, "switch"):
		return "switch"
	case strings.Contains(groupLower, "workstation") || strings.Contains(groupLower, "desktop"):
		return "workstation"
	}
	return "server"
}

// Export writes items as an inventory with one group per item type.
func (c *AnsibleCodec) Export(p *domain.Project, w io.Writer) error {
	inv := ansibleInventory{
		All: ansibleGroup{
			Children: make(map[string]ansibleGroupDef),
		},
	}

	for _, item := range p.Items {
		groupName, _ := item.Properties.Get("group")
		if groupName == "" {
			groupName = item.Type + "s"
		}
		group, ok := inv.All.Children[groupName]
		if !ok {
			group = ansibleGroupDef{Hosts: make(map[string]ansibleHost)}
		}

		host := ansibleHost{Vars: make(map[string]interface{})}
		host.AnsibleHost, _ = item.Properties.Get("ip")
		for _, prop := range item.Properties {
			if prop.Key != "ip" && prop.Key != "group" {
				host.Vars[prop.Key] = prop.Value
			}
		}
		host.Vars["device_type"] = item.Type

		group.Hosts[item.ID] = host
		inv.All.Children[groupName] = group
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
