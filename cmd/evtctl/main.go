package main

import (
	"os"

	"evt/internal/evtctl"
)

func main() { os.Exit(evtctl.Main()) }
