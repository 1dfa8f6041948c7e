package main

import "github.com/zylpheon/TheZylpheonAdmin/cmd"

func main() {
	cmd.Execute()
}
