package main

import (
	"flag"
	"log"
)

var (
	GitCommit string
	GitTag    string
	BuildTime string
)

func main() {
	configFile := flag.String("config", "./config.yml", "path to the yaml configuration file")
	role := flag.String("role", "", "role to run as: editor, console or backend")
	flag.Parse()

	app, err := NewApp(*configFile, *role)
	if err != nil {
		log.Fatal("application failed to initialized: ", err)
	}
	err = app.Run()
	if err != nil {
		log.Fatal("application exited. check logs for more details.", err)
	}
}
