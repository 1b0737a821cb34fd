// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the conversion pipeline that turns layer
// images into a compressed machine program, decoupled from any specific
// entrypoint like a CLI.
package app
