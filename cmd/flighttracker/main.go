package main

import (
	"flighttracker-backend/cmd/flighttracker/commands"
	"flighttracker-backend/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
