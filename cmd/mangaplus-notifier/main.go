// Command mangaplus-notifier checks a MANGA Plus title for chapters the
// user has not acknowledged yet and notifies about them.
package main

import (
	"os"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	if err := Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
