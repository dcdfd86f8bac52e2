package main

import (
	"github.com/joho/godotenv"
	"github.com/workmate-ai/assistant-be/cmd"
)

func main() {
	// .env is optional; deployments inject secrets through the environment.
	_ = godotenv.Load()
	cmd.Execute()
}
