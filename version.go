package main

import "fmt"

const (
	APP_NAME    = "Pagewright"
	APP_VERSION = "0.3.0"
)

// Set at link stage via `-ldflags "-X main.GIT_COMMIT=$(git rev-parse --short HEAD)"`
var GIT_COMMIT string

func versionString() string {
	if GIT_COMMIT != "" {
		return fmt.Sprintf("%s (%s)", APP_VERSION, GIT_COMMIT)
	}
	return APP_VERSION
}
