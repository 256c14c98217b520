package main

import "github.com/schoolcms/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
