package main

import (
	"context"
	"log"
	"os"

	ufcli "github.com/urfave/cli/v3"

	"portalsync/cmd"
)

// make version a variable so the build system can inject it
var version = "unknown"

func main() {
	var runCmd *ufcli.Command

	args := os.Args
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "sync":
			runCmd = cmd.SyncCli()
			args = append([]string{os.Args[0]}, os.Args[2:]...)
		default:
			runCmd = cmd.ServerCli()
		}
	} else {
		runCmd = cmd.ServerCli()
	}

	if err := runCmd.Run(context.Background(), args); err != nil {
		log.Fatal(err)
	}
}
