package mcpserver

// ManifestFormat documents the repository manifest JSON that the catalog
// ingests, so that LLM consumers can read tool output and author manifests.
const ManifestFormat = `# Repository Manifest Format

A repository is described by one JSON document served over http(s) or read
from a file URL. Every field is optional; wrong-typed fields are treated as
absent rather than rejecting the document.

## Top level

` + "```" + `json
{
  "name": "My Repo",
  "description": "Tweaks for the home screen",
  "icon": "icon.png",
  "packages": [ ... ],
  "featured": [ ... ]
}
` + "```" + `

- The document MUST be a JSON object.
- ` + "`packages`" + ` and ` + "`featured`" + ` MUST be lists when present. ` + "`null`" + ` counts as empty.
- Relative asset references (icon, banner, path, screenshots) are resolved
  against the manifest URL.

## Package entry

| key | type | default |
|---|---|---|
| bundleid | string | none |
| name | string | none |
| author | string | none |
| description | string | none |
| long_description | string | none |
| version | string | none |
| icon, banner | string (URL) | none |
| path | string (URL) | none, the download location |
| screenshots | list of string | empty |
| varOnly | bool | true |

## Identifiers

Each package is stored under an identifier unique within its repository:

1. The declared ` + "`bundleid`" + `, or ` + "`org.example.unknown`" + ` when missing.
2. If that is already taken, the smallest decimal suffix 0, 1, 2, ... that
   makes it unique (` + "`a.b`, `a.b0`, `a.b1`" + `).

Tools take this identifier, not the declared bundleid.

## Featured entry

| key | type | default |
|---|---|---|
| name | string | linked package name |
| bundleid | string | none, links to the package with this identifier |
| banner | string (URL) | linked package banner |
| fontcolor | string | none |
| showname | bool | true |
| square | bool | false |

## Addressing

Repositories are addressed by their zero-based position in the configured
source list. A manifest that cannot be fetched or parsed still occupies its
slot as a failed placeholder whose description carries the error.
`
