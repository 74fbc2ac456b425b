// Package menu walks a nested selection menu on a line-oriented terminal.
//
// A menu definition is a JSON or YAML mapping. Keys are shown as numbered
// choices; a mapping value opens a submenu, a list of strings selects those
// units, the string "copy_circ" asks for a manual copy, and any other string
// selects that one unit.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManualDirective is the leaf value that requests a manual copy.
const ManualDirective = "copy_circ"

// DefaultTitle heads the top level of the menu.
const DefaultTitle = "circmerge"

// ErrAborted is returned when input ends before a leaf is chosen.
var ErrAborted = errors.New("menu aborted")

// Menu is a parsed menu definition. Key order follows the source text.
type Menu struct {
	Title string
	root  *yaml.Node
}

// Selection is the outcome of a menu run.
type Selection struct {
	// Names are the units to transfer, in order.
	Names []string `json:"names,omitempty"`

	// Manual is set when the manual-copy directive was picked.
	Manual bool `json:"manual,omitempty"`

	// Path lists the keys chosen to reach the leaf.
	Path []string `json:"path"`
}

// Parse reads a JSON or YAML menu definition.
func Parse(data []byte) (*Menu, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, errors.New("failed to parse menu: empty document")
		}
		root = root.Content[0]
	}
	root = resolve(root)
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse menu: top level must be a mapping, got %s", kindName(root))
	}
	if err := validate(root, nil); err != nil {
		return nil, fmt.Errorf("failed to parse menu: %w", err)
	}

	return &Menu{Title: DefaultTitle, root: root}, nil
}

// Run prompts on out and reads choices from in until a leaf is picked.
func (m *Menu) Run(in io.Reader, out io.Writer) (*Selection, error) {
	reader := bufio.NewReader(in)

	type level struct {
		node *yaml.Node
		key  string
	}
	var history []level
	current := m.root
	parentKey := ""

	for {
		if current.Kind != yaml.MappingNode {
			sel := leafSelection(current)
			for _, h := range history[1:] {
				sel.Path = append(sel.Path, h.key)
			}
			sel.Path = append(sel.Path, parentKey)
			return sel, nil
		}

		if parentKey != "" {
			fmt.Fprintf(out, "\n=== %s ===\n", parentKey)
		} else {
			fmt.Fprintf(out, "\n=== %s ===\n", m.Title)
		}

		keys := mappingKeys(current)
		for i, key := range keys {
			fmt.Fprintf(out, "%d. %s\n", i+1, key)
		}
		if len(history) > 0 {
			fmt.Fprintf(out, "%d. Back\n", len(keys)+1)
		}

		fmt.Fprint(out, "\nPick a number: ")
		line, err := reader.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, ErrAborted
			}
			return nil, fmt.Errorf("failed to read choice: %w", err)
		}

		choice, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr != nil || choice < 1 {
			fmt.Fprintln(out, "Invalid choice, try again.")
			continue
		}

		if len(history) > 0 && choice == len(keys)+1 {
			last := history[len(history)-1]
			history = history[:len(history)-1]
			current, parentKey = last.node, last.key
			continue
		}

		if choice > len(keys) {
			fmt.Fprintln(out, "Invalid choice, try again.")
			continue
		}

		history = append(history, level{node: current, key: parentKey})
		parentKey = keys[choice-1]
		current = resolve(current.Content[2*(choice-1)+1])
	}
}

// Leaves returns every unit name reachable from the menu, in menu order and
// without duplicates.
func (m *Menu) Leaves() []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(n *yaml.Node)
	walk = func(n *yaml.Node) {
		n = resolve(n)
		switch n.Kind {
		case yaml.MappingNode:
			for i := 1; i < len(n.Content); i += 2 {
				walk(n.Content[i])
			}
		default:
			for _, name := range leafSelection(n).Names {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
			}
		}
	}
	walk(m.root)
	return names
}

func leafSelection(n *yaml.Node) *Selection {
	switch n.Kind {
	case yaml.SequenceNode:
		sel := &Selection{}
		for _, item := range n.Content {
			sel.Names = append(sel.Names, resolve(item).Value)
		}
		return sel
	default:
		if n.Value == ManualDirective {
			return &Selection{Manual: true}
		}
		return &Selection{Names: []string{n.Value}}
	}
}

func validate(n *yaml.Node, path []string) error {
	n = resolve(n)
	switch n.Kind {
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			return fmt.Errorf("%s: empty submenu", where(path))
		}
		for i := 0; i < len(n.Content); i += 2 {
			key := n.Content[i].Value
			if err := validate(n.Content[i+1], append(path, key)); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if resolve(item).Kind != yaml.ScalarNode {
				return fmt.Errorf("%s: list entries must be unit names", where(path))
			}
		}
	case yaml.ScalarNode:
		if n.Value == "" {
			return fmt.Errorf("%s: empty unit name", where(path))
		}
	default:
		return fmt.Errorf("%s: unsupported %s", where(path), kindName(n))
	}
	return nil
}

func mappingKeys(n *yaml.Node) []string {
	keys := make([]string, 0, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		keys = append(keys, n.Content[i].Value)
	}
	return keys
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func where(path []string) string {
	if len(path) == 0 {
		return "menu"
	}
	return strings.Join(path, " > ")
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}
