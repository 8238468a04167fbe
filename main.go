package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/camden-git/jeudelamort/config"
)

const (
	releaseVersion = "1.0.0"
)

func main() {
	log.SetFlags(0)
	if err := godotenv.Load(); err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}
