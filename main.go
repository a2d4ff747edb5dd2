package main

import (
	"carrental_service/startup"
	"carrental_service/startup/config"
)

func main() {
	cfg := config.NewConfig()
	server := startup.NewServer(cfg)
	server.Start()
}
