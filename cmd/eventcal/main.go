// Command eventcal runs the event calendar API and its maintenance tasks.
//
// @title Event Calendar API
// @version 1.0
// @description Bookable calendar events with capacity-limited participation.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT from /auth/login.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
