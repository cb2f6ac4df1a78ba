// Package parser provides YAML parsing and AST construction for GBS spec
// documents.
//
// The parser reads a spec document (YAML format), checks its structure,
// and constructs the typed document tree consumed by the resolver and
// validator.
//
// # Basic Usage
//
// Parse a spec file:
//
//	p := parser.NewParser()
//	doc, err := p.Parse("config/genomes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Entries:", len(doc.Entries))
//
// Parse from memory:
//
//	yamlData := []byte(`
//	vars:
//	  release: "102"
//	data:
//	  - name: mus_musculus
//	    taxonid: "10090"
//	`)
//
//	doc, err := p.ParseBytes(yamlData, "memory://spec")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Layer multiple files (a base spec plus site overrides):
//
//	doc, err := p.ParseMulti([]string{
//	    "config/genomes.yaml",
//	    "config/site.yaml",
//	})
//
// # Configuration
//
// Configure parser limits:
//
//	p := parser.NewParser().
//	    WithMaxFileSize(5 * 1024 * 1024). // 5MB limit
//	    WithMaxDepth(15)                  // Max nesting depth
//
// # Error Handling
//
// The parser returns rich errors with location and context:
//
//	doc, err := p.ParseFile("genomes.yaml")
//	if err != nil {
//	    if errList, ok := err.(*errors.ErrorList); ok {
//	        for _, e := range errList.Errors {
//	            fmt.Println(e.Error())
//	        }
//	    } else {
//	        fmt.Println(err)
//	    }
//	}
//
// # Parsing Stages
//
// The parser operates in two stages:
//
// 1. YAML Parsing: Read YAML into a node tree with positions
//
// 2. AST Building: Transform the node tree to typed document values
//
// The two-stage approach preserves YAML line numbers on every value, so
// resolution errors deep inside an entry still point at the source line.
// Indirection syntax (@name, @@name, =name, merge templates) is kept
// verbatim as string values at this stage; the resolver interprets it.
package parser
