package main

import "github.com/dvp2015/xpypact/cmd"

func main() {
	cmd.Execute()
}
