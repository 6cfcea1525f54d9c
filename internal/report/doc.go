// Package report renders monitor reports as TOON, Markdown, HTML, plain name lists, and YAML.
package report
