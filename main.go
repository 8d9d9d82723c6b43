package main

import "github.com/SaugatGautam100/courseplex-sub001/cmd"

func main() {
	cmd.Execute()
}
