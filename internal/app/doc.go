// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary lifecycle that wires the graph
// model, the presentation loop, the render scheduler and the display
// surfaces together, decoupled from any specific entrypoint like a CLI.
package app
