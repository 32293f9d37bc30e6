package api

// Document is the top-level shape of a hierarchy file.
type Document struct {
	Hierarchy *Hierarchy `yaml:"Hierarchy" json:"Hierarchy"`
}

// Hierarchy describes one dimension as a nested tree of nodes.
type Hierarchy struct {
	// Name is the dimension label. It names the tabular columns.
	Name string `yaml:"name" json:"name"`
	// IDGeneration selects how ids are produced for nodes that declare none:
	// name, uuid, error or incremental.
	IDGeneration string `yaml:"id_generation" json:"id_generation"`
	// Childs are the top-level nodes, in source order.
	Childs []Node `yaml:"childs" json:"childs"`
}

// Node is one entry of the nested description.
type Node struct {
	Name string `yaml:"name" json:"name"`
	// ID is the declared identifier: an integer or a string. Nil when absent.
	ID     any    `yaml:"id,omitempty" json:"id,omitempty"`
	Childs []Node `yaml:"childs,omitempty" json:"childs,omitempty"`
}
