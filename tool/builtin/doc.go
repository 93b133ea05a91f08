// Package builtin ships ready-made tools for common agent tasks: arithmetic
// evaluation, web search summaries, web page scraping and controlled shell
// command execution.
package builtin
