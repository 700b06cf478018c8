package mcpserver

// SyntaxGuide is the Markdown cheat sheet offered to MCP clients. It is the
// same sample shown in the empty input pane.
const SyntaxGuide = `# Enter a title

Write the body here...

## Heading 2

- List item
- List item
  - Press Tab on a list line to nest it, Shift-Tab to lift it back

- [ ] Task
- [x] Done task

**Bold** *Italic* ` + "`code`" + ` ~~struck~~

` + "```" + `javascript
console.log('Hello World');
` + "```" + `

> Quote

| Column | Column |
|:-------|-------:|
| left   | right  |

[Link](https://example.com)

You can drag and drop PNG images!
`
