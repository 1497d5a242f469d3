// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the render lifecycle (load the graph
// description, decode input images, build, execute, write outputs),
// decoupled from any specific entrypoint like a CLI.
package app
