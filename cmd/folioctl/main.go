// Command folioctl administers a folio deployment: admin session, dashboard
// operations and site maintenance.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
