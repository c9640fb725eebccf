// Command gvctl is the host CLI for the mediated file authority: the
// core exposes an in-process API only, so this is a thin cobra-based
// client wiring a single process's config/policy/authority together and
// driving it from the shell.
package main

import "github.com/wyd-tools/gamevault/cmd/gvctl/cmd"

func main() {
	cmd.Execute()
}
