package tools

// ToolDescription is the name and description of a tool
type ToolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

// ToolsDescription lists tools
type ToolsDescription struct {
	Tools []ToolDescription `json:"Tools" yaml:"Tools"`
}

// Describe returns the descriptions of the registered tools
func (r *Registry) Describe() *ToolsDescription {
	d := &ToolsDescription{}
	for _, e := range r.List() {
		d.Tools = append(d.Tools, ToolDescription{
			Name:        e.Name,
			Description: e.Description,
		})
	}
	return d
}
