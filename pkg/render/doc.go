// Package render turns worlds and fillings into files.
//
// Diagrams of the world graph live in the [nodelink] subpackage. Text and
// JSON spoiler logs are produced by package spoiler.
package render
