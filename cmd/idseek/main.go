package main

import "github.com/dbsmedya/idseek/cmd/idseek/cmd"

func main() {
	cmd.Execute()
}
