package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/fictiondb/tests/helpers"
)

func main() {
	var showHelp bool
	flag.BoolVar(&showHelp, "h", false, "show help")
	var envFilename string
	flag.StringVar(&envFilename, "f", "", "path to the .env file")
	flag.Parse()

	usage := `
Run the fictiondb testcontainers with the environment variables from the .env file.
The service, its database and (with AUTH_PROVIDER=authorizer) an Authorizer instance
stay up until interrupted.

Usage:

testcontainers [-h] [-f ENV_FILE_PATH]

ENV_FILE_PATH: path to the .env file

example
  testcontainers -f /path/to/something/.env
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	if envFilename != "" {
		slog.Info("loading environment variables", "file", envFilename)
		if err := godotenv.Load(envFilename); err != nil {
			slog.Error("failed to load environment variables", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no environment file specified, using current environment variables")
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGTSTP, syscall.SIGQUIT)

	ready := make(chan *helpers.TestContainers, 1)
	go func() {
		testContainers, err := helpers.CreateAllTestContainers(nil)
		if err != nil {
			slog.Error("failed to create test containers", "error", err)
			os.Exit(1)
		}
		ready <- testContainers
	}()

	var testContainers *helpers.TestContainers
	for testContainers == nil {
		select {
		case tc := <-ready:
			testContainers = tc
			slog.Info("test containers running, interrupt to stop")
		case sig := <-sigs:
			slog.Info("received signal before containers were ready, exiting", "signal", sig.String())
			return
		}
	}

	sig := <-sigs
	slog.Info("received signal, terminating test containers", "signal", sig.String())
	testContainers.Terminate(nil)
}
