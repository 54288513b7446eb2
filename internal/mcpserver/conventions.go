package mcpserver

// Conventions documents how the vault tools read notes, so clients write
// content the analyses will recognize.
const Conventions = `# Vault Conventions

Notes are UTF-8 Markdown files ending in ` + "`.md`" + `. Every other file is an
attachment: it can be a link target but is never scanned.

## Tags

- Inline: a ` + "`#`" + ` followed by letters, digits, ` + "`_`, `-`" + ` or ` + "`/`" + `
  (` + "`#project`, `#area/work`" + `).
- Front matter: a single-line list, ` + "`tags: [project, \"area/work\"]`" + `.
  Entries are reported with a leading ` + "`#`" + `.
- Renaming ` + "`#proj`" + ` only touches whole tags; ` + "`#projection`" + ` is left alone.

## Links

- Wikilinks: ` + "`[[folder/note]]`" + ` or ` + "`[[folder/note|label]]`" + `. The target is
  relative to the vault root; ` + "`.md`" + ` may be omitted.
- Label links: ` + "`[label](other.md)`" + `. The target is relative to the linking
  note; a leading ` + "`/`" + ` makes it vault-root relative. Targets containing
  ` + "`://`" + ` are external unless they end in ` + "`.md`" + `.
- A link resolves when ` + "`target.md`" + ` or ` + "`target`" + ` exists.

## Front matter

A YAML block fenced by ` + "`---`" + ` lines at the very start of the note. A
` + "`description:`" + ` field is used as the note's summary in maps of contents.

## Templates

Templates live in the template folder. ` + "`{{name}}`" + ` placeholders are filled
from the caller's variables; ` + "`date`, `time`, `datetime`" + ` always use the current
time, ` + "`uuid`" + ` is generated and ` + "`slug`" + ` is derived from ` + "`title`" + ` unless given.
`
