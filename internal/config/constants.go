// Package config holds small constants shared across the CORE pipeline
// stages and the CLI/REPL entry points.
package config

// Prompt is printed before reading each line in interactive mode.
const Prompt = " >>> "

// QuitCommand terminates the interactive loop when typed alone on a line.
const QuitCommand = "q"

// SourceFileExtension is the conventional extension for program files.
const SourceFileExtension = ".fal"
