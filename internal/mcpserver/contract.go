package mcpserver

// TrackedNoteFormat describes how a note records the gist it is published
// to, so an LLM can tell tracked notes apart and avoid breaking the link.
const TrackedNoteFormat = `# gistnote Tracked Note Format

A note is published to a private GitHub Gist with one of the save tools.
Saving it "as a new updateable gist" records the gist in the note's YAML
frontmatter:

` + "```" + `markdown
---
title: Any existing keys are kept in place
gist_id: 3f1c0ad2b9e44c7f8e21       # last path segment of gist_url
gist_url: https://gist.github.com/3f1c0ad2b9e44c7f8e21
---

Body text, published as-is together with the frontmatter.
` + "```" + `

## Rules

1. ` + "`gist_id`" + ` and ` + "`gist_url`" + ` are written together and are always strings.
2. Other frontmatter keys and their order are never changed, and the body is
   kept byte for byte.
3. ` + "`update_existing_gist`" + ` pushes the whole file to the gist named by
   ` + "`gist_id`" + `. Without it the tool fails and nothing is sent.
4. Removing ` + "`gist_id`" + ` stops tracking; the gist itself is not deleted.
5. The gist file name is the note's file name (for example ` + "`notes.md`" + `).
6. Gists are always private (secret). Nothing is ever published publicly.
`
