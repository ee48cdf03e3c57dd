package store

import "time"

// Run is one exported Compilation.
type Run struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Declarations int       `json:"declarations"`
	Diagnostics  int       `json:"diagnostics"`
	HasErrors    bool      `json:"has_errors"`
}

// Declaration is one named element of an exported Compilation.
type Declaration struct {
	RunID    string `json:"run_id"`
	Seq      int    `json:"seq"`
	Kind     string `json:"kind"` // namespace, class, struct, union, enum, enum_item, function, field, typedef
	Name     string `json:"name"`
	FullName string `json:"full_name"` // geo::Point::x
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Parent   string `json:"parent,omitempty"` // full name of the owner, empty at the root
	Type     string `json:"type,omitempty"`   // type spelling or function signature
	IsSystem bool   `json:"is_system,omitempty"`
}

// Attribute is a reconstructed attribute of an exported declaration.
type Attribute struct {
	RunID     string `json:"run_id"`
	DeclSeq   int    `json:"decl_seq"`
	Kind      string `json:"kind"` // system, annotate, comment, token
	Name      string `json:"name"`
	Scope     string `json:"scope,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// Diagnostic is a diagnostic message of an exported run.
type Diagnostic struct {
	RunID    string `json:"run_id"`
	Seq      int    `json:"seq"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
}

// Macro is an exported #define. Parameters is nil for object-like macros.
type Macro struct {
	RunID      string   `json:"run_id"`
	Seq        int      `json:"seq"`
	Name       string   `json:"name"`
	Parameters []string `json:"parameters,omitempty"`
	Value      string   `json:"value,omitempty"`
	File       string   `json:"file,omitempty"`
	Line       int      `json:"line,omitempty"`
}
