package main

import "github.com/frahmantamala/timekeeper/cmd"

func main() {
	cmd.Execute()
}
