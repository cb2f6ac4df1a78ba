package parser

import (
	"os"

	"gopkg.in/yaml.v3"
)

// parseYAMLFile reads and parses a YAML file into a node tree.
// The node tree preserves line numbers and mapping key order, both of
// which the AST depends on.
func parseYAMLFile(path string) (*yaml.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseYAMLBytes(data)
}

// parseYAMLBytes parses YAML bytes into a node tree.
func parseYAMLBytes(data []byte) (*yaml.Node, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// documentRoot unwraps the document node to its single content node.
// An empty document returns nil.
func documentRoot(node *yaml.Node) *yaml.Node {
	if node == nil {
		return nil
	}
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		return node.Content[0]
	}
	return node
}
