// Package models defines the domain types for vaultlink.
package models

// LinkKind distinguishes the two cross-reference syntaxes.
type LinkKind string

const (
	// LinkWiki is a reference-style link: [[target]] or [[target|label]].
	LinkWiki LinkKind = "wiki"
	// LinkMarkdown is a label-style link: [label](target).
	LinkMarkdown LinkKind = "markdown"
)

// Document is a Markdown file read from the vault during a scan.
type Document struct {
	Path    string `json:"path"` // relative to vault root, slash separated
	Content string `json:"-"`
}

// Link is one outbound reference found in a document.
type Link struct {
	Kind   LinkKind `json:"kind"`
	Target string   `json:"target"`
	Label  string   `json:"label"`
	Line   int      `json:"line"` // 1-based
	Raw    string   `json:"raw"`
}

// Backlink is one inbound reference to an analyzed note.
type Backlink struct {
	SourceFile string   `json:"sourceFile"`
	Context    string   `json:"context"`
	LinkType   LinkKind `json:"linkType"`
	Line       int      `json:"lineNumber"`
}

// Entry is a file or directory returned by a vault browse.
type Entry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "directory"
}

// Entry types.
const (
	EntryFile      = "file"
	EntryDirectory = "directory"
)

// Vault change kinds announced to event subscribers.
const (
	ChangeNoteCreated = "note.created"
	ChangeNoteUpdated = "note.updated"
	ChangeTagRenamed  = "tag.renamed"
	ChangeMOCCreated  = "moc.created"
)
