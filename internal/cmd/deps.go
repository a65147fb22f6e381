package cmd

import "os"

var (
	envGet = os.Getenv
	// stdinIsPiped reports whether convert should read stdin when no
	// source is given.
	stdinIsPiped = inputHasData
)
