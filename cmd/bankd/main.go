/*
main.go - Application entry point

PURPOSE:
  Boots the bank simulation daemon. All real work happens in the cobra
  commands (serve, simulate, seed); this file only dispatches.

SEE ALSO:
  - root.go: command tree and shared setup
  - serve.go: HTTP server startup
*/
package main

func main() {
	Execute()
}
