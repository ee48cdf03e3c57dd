package output

// Document is the serialized form of one Compilation.
// Keys follow the declaration model; empty sections are omitted.
type Document struct {
	Scope `yaml:",inline"`

	// System holds declarations from system headers (include_system only)
	System *Scope `yaml:"system,omitempty" json:"system,omitempty"`

	Macros      []*MacroOutput      `yaml:"macros,omitempty" json:"macros,omitempty"`
	Includes    []*IncludeOutput    `yaml:"includes,omitempty" json:"includes,omitempty"`
	Diagnostics []*DiagnosticOutput `yaml:"diagnostics,omitempty" json:"diagnostics,omitempty"`
}

// Scope lists the members of a namespace, class or compilation root in
// insertion order.
type Scope struct {
	Namespaces []*NamespaceOutput `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
	Classes    []*ClassOutput     `yaml:"classes,omitempty" json:"classes,omitempty"`
	Enums      []*EnumOutput      `yaml:"enums,omitempty" json:"enums,omitempty"`
	Functions  []*FunctionOutput  `yaml:"functions,omitempty" json:"functions,omitempty"`
	Fields     []*FieldOutput     `yaml:"fields,omitempty" json:"fields,omitempty"`
	Typedefs   []*TypedefOutput   `yaml:"typedefs,omitempty" json:"typedefs,omitempty"`
}

// NamespaceOutput is a namespace and its members.
type NamespaceOutput struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
	Inline   bool   `yaml:"inline,omitempty" json:"inline,omitempty"`
	Scope    `yaml:",inline"`
}

// ClassOutput is a class, struct or union.
type ClassOutput struct {
	Name     string `yaml:"name" json:"name"`
	Kind     string `yaml:"kind" json:"kind"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`

	// Template is the template kind; normal classes leave it empty
	Template string `yaml:"template,omitempty" json:"template,omitempty"`

	// Display renders template parameters or specialization arguments
	// Example: "Box<int, 4>"
	Display    string   `yaml:"display,omitempty" json:"display,omitempty"`
	Bases      []string `yaml:"bases,omitempty" json:"bases,omitempty"`
	Visibility string   `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Abstract   bool     `yaml:"abstract,omitempty" json:"abstract,omitempty"`
	Final      bool     `yaml:"final,omitempty" json:"final,omitempty"`
	Anonymous  bool     `yaml:"anonymous,omitempty" json:"anonymous,omitempty"`
	Size       int64    `yaml:"size,omitempty" json:"size,omitempty"`
	Align      int64    `yaml:"align,omitempty" json:"align,omitempty"`
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Comment    string   `yaml:"comment,omitempty" json:"comment,omitempty"`

	Constructors []*FunctionOutput `yaml:"constructors,omitempty" json:"constructors,omitempty"`
	Destructors  []*FunctionOutput `yaml:"destructors,omitempty" json:"destructors,omitempty"`
	Scope        `yaml:",inline"`
}

// EnumOutput is an enumeration with its items.
type EnumOutput struct {
	Name        string            `yaml:"name" json:"name"`
	Location    string            `yaml:"location,omitempty" json:"location,omitempty"`
	Scoped      bool              `yaml:"scoped,omitempty" json:"scoped,omitempty"`
	IntegerType string            `yaml:"integer_type,omitempty" json:"integer_type,omitempty"`
	Visibility  string            `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Items       []*EnumItemOutput `yaml:"items,omitempty" json:"items,omitempty"`
	Attributes  []string          `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Comment     string            `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// EnumItemOutput is one enumerator.
type EnumItemOutput struct {
	Name  string `yaml:"name" json:"name"`
	Value int64  `yaml:"value" json:"value"`
	Init  string `yaml:"init,omitempty" json:"init,omitempty"`
}

// FunctionOutput is a free function, method, constructor or destructor.
type FunctionOutput struct {
	Name     string `yaml:"name" json:"name"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`

	// Signature is the rendered function type
	// Example: "int (const char *, int)"
	Signature  string             `yaml:"signature,omitempty" json:"signature,omitempty"`
	Parameters []*ParameterOutput `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Flags      []string           `yaml:"flags,omitempty" json:"flags,omitempty"`
	Storage    string             `yaml:"storage,omitempty" json:"storage,omitempty"`
	Visibility string             `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Template   []string           `yaml:"template,omitempty" json:"template,omitempty"`
	Definition bool               `yaml:"definition,omitempty" json:"definition,omitempty"`
	Attributes []string           `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Comment    string             `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// ParameterOutput is one function parameter.
type ParameterOutput struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Type    string `yaml:"type" json:"type"`
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

// FieldOutput is a member or global variable.
type FieldOutput struct {
	Name       string `yaml:"name" json:"name"`
	Location   string `yaml:"location,omitempty" json:"location,omitempty"`
	Type       string `yaml:"type,omitempty" json:"type,omitempty"`
	Storage    string `yaml:"storage,omitempty" json:"storage,omitempty"`
	Visibility string `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	ConstExpr  bool   `yaml:"constexpr,omitempty" json:"constexpr,omitempty"`
	Anonymous  bool   `yaml:"anonymous,omitempty" json:"anonymous,omitempty"`

	// Offset is the byte offset inside the owning record (dense only)
	Offset   *int64 `yaml:"offset,omitempty" json:"offset,omitempty"`
	BitWidth int    `yaml:"bit_width,omitempty" json:"bit_width,omitempty"`

	Init       string   `yaml:"init,omitempty" json:"init,omitempty"`
	Value      any      `yaml:"value,omitempty" json:"value,omitempty"`
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Comment    string   `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// TypedefOutput is a typedef or alias declaration.
type TypedefOutput struct {
	Name       string   `yaml:"name" json:"name"`
	Location   string   `yaml:"location,omitempty" json:"location,omitempty"`
	Type       string   `yaml:"type,omitempty" json:"type,omitempty"`
	Visibility string   `yaml:"visibility,omitempty" json:"visibility,omitempty"`
	Attributes []string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	Comment    string   `yaml:"comment,omitempty" json:"comment,omitempty"`
}

// MacroOutput is a #define.
type MacroOutput struct {
	Name       string   `yaml:"name" json:"name"`
	Location   string   `yaml:"location,omitempty" json:"location,omitempty"`
	Parameters []string `yaml:"parameters,omitempty" json:"parameters,omitempty"`
	Value      string   `yaml:"value,omitempty" json:"value,omitempty"`

	// Tokens are "kind:text" pairs (dense only)
	Tokens []string `yaml:"tokens,omitempty" json:"tokens,omitempty"`
}

// IncludeOutput is an #include directive of a user file.
type IncludeOutput struct {
	File     string `yaml:"file" json:"file"`
	Resolved string `yaml:"resolved,omitempty" json:"resolved,omitempty"`
	System   bool   `yaml:"system,omitempty" json:"system,omitempty"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
}

// DiagnosticOutput is one diagnostic message. Diagnostics are emitted at
// every density.
type DiagnosticOutput struct {
	Severity string `yaml:"severity" json:"severity"`
	Message  string `yaml:"message" json:"message"`
	Location string `yaml:"location,omitempty" json:"location,omitempty"`
}
