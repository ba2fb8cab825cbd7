// The galaxypad command is a terminal-driven showcase for the package
// github.com/akesling/galaxypad: it loads a Galaxy definitions file, drives
// the interaction protocol against a remote alien server (without -remote,
// any exchange the protocol requests is an error), and prints a per-image
// pixel-count summary of the resulting image list as it reads click
// coordinates from stdin.
//
// Usage:
//
//	-defs filename
//		  Galaxy definitions file to load (default "galaxy.txt")
//	-remote url
//		  alien server endpoint to POST modulations to
//	-apikey key
//		  API key sent as the remote endpoint's apiKey query parameter
//	-timeout duration
//		  per-exchange remote request timeout (default 10s)
//	-budget int
//		  reducer step budget per galaxy evaluation, 0 for unlimited
//	-noraw
//		  disable raw terminal IO for click input
//	-list-primitives
//		  print the reducer's built-in operator names and exit
//	-debug
//		  enable debug diagnostics and full-stacktrace error reporting
//
// Click coordinates are read one per line from stdin as "x,y" pairs,
// interpreted in a coordinate system centered on the origin.
package main
