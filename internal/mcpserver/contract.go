package mcpserver

// DocFormatContract describes the canonical Markdown document format that
// LLM consumers should follow when creating or updating guideline documents.
const DocFormatContract = `# Ansuz Guideline Document Contract

Every Markdown document stored in the corpus MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Human-readable title        # RECOMMENDED – used in search, nav, graph
tags:                               # OPTIONAL – YAML list; used for filtering
  - tag-one
  - tag-two
---

# Title as the first heading

Body text in standard Markdown.

Use relative links to reference other documents: [error handling](../go/errors.md).
Link to a section with a fragment: [retries](http-clients.md#retries).
` + "```" + `

## Rules

1. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes. Names are
   lowercase, kebab-case (e.g. ` + "`" + `go/error-handling.md` + "`" + `).
2. **Links between documents** are standard Markdown inline links whose
   destination is a relative path including the ` + "`" + `.md` + "`" + ` extension.
   A leading ` + "`" + `/` + "`" + ` resolves from the corpus root. Never link outside
   the corpus.
3. **Fragments** target heading anchors. Anchors are the GitHub-style slug
   of the heading text: lowercase, spaces become hyphens, punctuation is
   dropped (` + "`" + `## Error Handling` + "`" + ` → ` + "`" + `#error-handling` + "`" + `).
4. **Code fences** MUST declare a language tag (` + "```" + `go, ` + "```" + `bash, ...).
   Untagged fences are flagged by lint.
5. **Headings** must be unique per document; duplicates are flagged because
   their anchors collide.
6. **Frontmatter** is optional YAML between ` + "`" + `---` + "`" + ` fences at the very top.
   When the corpus carries a frontmatter schema, documents must validate
   against it.
7. **Tags** are lowercase, kebab-case (e.g. ` + "`" + `code-review` + "`" + `, ` + "`" + `api-design` + "`" + `).
8. **Encoding** is UTF-8 with a trailing newline.

## Assets & Images

- Upload assets via the ` + "`" + `upload_asset` + "`" + ` tool. It returns a ` + "`" + `markdownImage` + "`" + ` field ready to paste into the document body.
- Assets are stored in the shared ` + "`" + `assets/` + "`" + ` directory (flat, no sub-folders).
- Reference them from any document with a root-relative path: ` + "`" + `![description](/assets/filename.png)` + "`" + `
- Supported formats: png, jpg, jpeg, gif, webp, svg, pdf.
- Lint verifies that every referenced asset exists.

## Example

` + "```" + `markdown
---
title: HTTP client guidelines
tags:
  - go
  - networking
---

# HTTP client guidelines

Always set a timeout. See [context propagation](../go/context.md) for
cancellation rules.

![Request lifecycle](/assets/request-lifecycle.png)

## Retries

Retry idempotent requests only, with exponential backoff.
` + "```" + `
`
