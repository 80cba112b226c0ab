package inspect

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TypeScriptInspector extracts exports and import specifiers from
// TypeScript and JavaScript sources.
type TypeScriptInspector struct {
	tsParser *sitter.Parser
	jsParser *sitter.Parser
}

// NewTypeScriptInspector creates a TS/JS inspector.
func NewTypeScriptInspector() *TypeScriptInspector {
	ts := sitter.NewParser()
	ts.SetLanguage(typescript.GetLanguage())

	js := sitter.NewParser()
	js.SetLanguage(javascript.GetLanguage())

	return &TypeScriptInspector{tsParser: ts, jsParser: js}
}

func (t *TypeScriptInspector) Language() string {
	return "typescript"
}

func (t *TypeScriptInspector) Extensions() []string {
	return []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}
}

func (t *TypeScriptInspector) Inspect(filename string, content []byte) (*FileRecord, error) {
	p := t.tsParser
	if isJavaScript(filename) {
		p = t.jsParser
	}

	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	record := &FileRecord{
		Path:    filename,
		Exports: make([]Export, 0),
		Imports: ImportSet{
			Internal: make([]string, 0),
			External: make([]string, 0),
		},
		Lines: countLines(content),
	}

	t.walk(tree.RootNode(), content, record)
	return record, nil
}

func isJavaScript(filename string) bool {
	for _, ext := range []string{".js", ".jsx", ".mjs", ".cjs"} {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

func (t *TypeScriptInspector) walk(node *sitter.Node, content []byte, record *FileRecord) {
	switch node.Type() {
	case "import_statement":
		if spec := sourceSpecifier(node, content); spec != "" {
			record.addImport(spec)
		}
		return

	case "export_statement":
		t.extractExportStatement(node, content, record)
		return

	case "call_expression":
		// CommonJS require().
		if spec := requireSpecifier(node, content); spec != "" {
			record.addImport(spec)
		}

	case "expression_statement":
		// CommonJS module.exports / exports.name assignments.
		if exp, ok := commonJSExport(node, content); ok {
			record.Exports = append(record.Exports, exp)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		t.walk(node.Child(i), content, record)
	}
}

func (t *TypeScriptInspector) extractExportStatement(node *sitter.Node, content []byte, record *FileRecord) {
	// Re-exports also count as imports: export {a} from './x', export * from './x'.
	spec := sourceSpecifier(node, content)
	if spec != "" {
		record.addImport(spec)
	}

	isDefault := false
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == "default" {
			isDefault = true
			break
		}
	}

	if decl := node.ChildByFieldName("declaration"); decl != nil {
		for _, exp := range declarationExports(decl, content) {
			exp.IsDefault = isDefault
			record.Exports = append(record.Exports, exp)
		}
		// Still need require() calls inside exported declarations.
		for i := 0; i < int(node.ChildCount()); i++ {
			t.walkRequires(node.Child(i), content, record)
		}
		return
	}

	if isDefault {
		name := "default"
		if value := node.ChildByFieldName("value"); value != nil && value.Type() == "identifier" {
			name = value.Content(content)
		}
		record.Exports = append(record.Exports, Export{Name: name, Kind: "const", IsDefault: true})
		return
	}

	kind := "const"
	if spec != "" {
		kind = "reexport"
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "export_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				specNode := child.Child(j)
				if specNode.Type() != "export_specifier" {
					continue
				}
				name := specNode.ChildByFieldName("name").Content(content)
				if alias := specNode.ChildByFieldName("alias"); alias != nil {
					name = alias.Content(content)
				}
				record.Exports = append(record.Exports, Export{Name: name, Kind: kind})
			}
		case "*":
			record.Exports = append(record.Exports, Export{Name: "*", Kind: "reexport"})
		case "namespace_export":
			name := strings.TrimSpace(strings.TrimPrefix(child.Content(content), "*"))
			name = strings.TrimSpace(strings.TrimPrefix(name, "as"))
			record.Exports = append(record.Exports, Export{Name: name, Kind: "reexport"})
		}
	}
}

func (t *TypeScriptInspector) walkRequires(node *sitter.Node, content []byte, record *FileRecord) {
	if node == nil {
		return
	}
	if node.Type() == "call_expression" {
		if spec := requireSpecifier(node, content); spec != "" {
			record.addImport(spec)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		t.walkRequires(node.Child(i), content, record)
	}
}

// declarationExports lists the exports produced by a declaration node.
func declarationExports(decl *sitter.Node, content []byte) []Export {
	name := func() string {
		if n := decl.ChildByFieldName("name"); n != nil {
			return n.Content(content)
		}
		return ""
	}

	switch decl.Type() {
	case "function_declaration", "generator_function_declaration":
		if n := name(); n != "" {
			return []Export{{Name: n, Kind: "function"}}
		}
		return []Export{{Name: "default", Kind: "function"}}
	case "class_declaration", "abstract_class_declaration":
		if n := name(); n != "" {
			return []Export{{Name: n, Kind: "class"}}
		}
		return []Export{{Name: "default", Kind: "class"}}
	case "interface_declaration":
		return []Export{{Name: name(), Kind: "interface"}}
	case "type_alias_declaration":
		return []Export{{Name: name(), Kind: "type"}}
	case "enum_declaration":
		return []Export{{Name: name(), Kind: "enum"}}
	case "lexical_declaration", "variable_declaration":
		exports := make([]Export, 0, 1)
		for i := 0; i < int(decl.ChildCount()); i++ {
			child := decl.Child(i)
			if child.Type() != "variable_declarator" {
				continue
			}
			nameNode := child.ChildByFieldName("name")
			if nameNode == nil || nameNode.Type() != "identifier" {
				continue
			}
			kind := "const"
			if value := child.ChildByFieldName("value"); value != nil {
				switch value.Type() {
				case "arrow_function", "function", "function_expression":
					kind = "function"
				}
			}
			exports = append(exports, Export{Name: nameNode.Content(content), Kind: kind})
		}
		return exports
	}
	return nil
}

// sourceSpecifier returns the unquoted module specifier of an import or
// re-export statement, or "" when the node has none.
func sourceSpecifier(node *sitter.Node, content []byte) string {
	source := node.ChildByFieldName("source")
	if source == nil {
		for i := 0; i < int(node.ChildCount()); i++ {
			if node.Child(i).Type() == "string" {
				source = node.Child(i)
				break
			}
		}
	}
	if source == nil {
		return ""
	}
	return unquote(source.Content(content))
}

func requireSpecifier(call *sitter.Node, content []byte) string {
	fn := call.ChildByFieldName("function")
	if fn == nil || fn.Type() != "identifier" || fn.Content(content) != "require" {
		return ""
	}
	args := call.ChildByFieldName("arguments")
	if args == nil {
		return ""
	}
	for i := 0; i < int(args.ChildCount()); i++ {
		if args.Child(i).Type() == "string" {
			return unquote(args.Child(i).Content(content))
		}
	}
	return ""
}

// commonJSExport recognizes module.exports = ... and exports.<name> = ...
func commonJSExport(stmt *sitter.Node, content []byte) (Export, bool) {
	if stmt.ChildCount() == 0 {
		return Export{}, false
	}
	assign := stmt.Child(0)
	if assign.Type() != "assignment_expression" {
		return Export{}, false
	}
	left := assign.ChildByFieldName("left")
	if left == nil || left.Type() != "member_expression" {
		return Export{}, false
	}
	object := left.ChildByFieldName("object")
	property := left.ChildByFieldName("property")
	if object == nil || property == nil {
		return Export{}, false
	}

	switch object.Content(content) {
	case "module":
		if property.Content(content) == "exports" {
			return Export{Name: "default", Kind: "const", IsDefault: true}, true
		}
	case "exports":
		return Export{Name: property.Content(content), Kind: "const"}, true
	}
	return Export{}, false
}

func unquote(s string) string {
	if len(s) >= 2 {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}

func (r *FileRecord) addImport(spec string) {
	if spec == "" {
		return
	}
	if strings.HasPrefix(spec, "./") || strings.HasPrefix(spec, "../") || spec == "." || spec == ".." {
		r.Imports.Internal = append(r.Imports.Internal, spec)
		return
	}
	r.Imports.External = append(r.Imports.External, spec)
}
