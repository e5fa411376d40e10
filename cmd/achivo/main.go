package main

import (
	"fmt"
	"os"

	_ "achivo/docs" // Import generated docs
)

// @title Achivo API
// @version 1.0
// @description Goal-setting assistant backend
// @description Turns a guided conversation into a goal hierarchy and serves it to the dashboard

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey SessionCookie
// @in cookie
// @name achivo_session

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
