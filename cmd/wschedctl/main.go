// The wschedctl command provides a command-line interface for managing
// Wrale Scheduler shows and permissions.
package main

import "github.com/wrale/wrale-scheduler/internal/wschedctl/cmd"

func main() {
	cmd.Execute()
}
